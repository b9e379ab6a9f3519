package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsTable = "ledger_schema_migrations"

type Repository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRepository(db *pgxpool.Pool, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InsertTransactions(ctx context.Context, transactions []model.Transaction) (int64, error) {
	query := `
		INSERT INTO transactions (id, owner_id, bank, occurred_at, amount, type, currency, category, account_number, description)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, tx := range transactions {
		var category sql.NullString
		if tx.Category != nil {
			category = sql.NullString{String: string(*tx.Category), Valid: true}
		}

		batch.Queue(query,
			tx.ID,
			tx.OwnerID,
			tx.Bank,
			tx.Timestamp,
			tx.Amount.String(),
			string(tx.Type),
			string(tx.Currency),
			category,
			sql.NullString{String: tx.AccountNumber, Valid: tx.AccountNumber != ""},
			sql.NullString{String: tx.Description, Valid: tx.Description != ""},
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range transactions {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error("failed to insert transaction", zap.Error(err))
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

func (r *Repository) SumByGroup(ctx context.Context, ownerID int64, period model.Period) ([]model.GroupTotal, error) {
	query := `
		SELECT type, currency, COALESCE(category, ''), SUM(amount)::text
		FROM transactions
		WHERE owner_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		GROUP BY type, currency, category
	`

	rows, err := r.db.Query(ctx, query, ownerID, period.Start, period.End)
	if err != nil {
		r.logger.Error("failed to sum transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var totals []model.GroupTotal
	for rows.Next() {
		var (
			total model.GroupTotal
			sum   string
		)
		if err := rows.Scan(&total.Type, &total.Currency, &total.Category, &sum); err != nil {
			return nil, err
		}

		total.Total, err = decimal.NewFromString(sum)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sum %q: %w", sum, err)
		}
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

// ListUncategorized pages through transactions without a category in id
// order, starting after afterID. ownerID 0 lists every owner.
func (r *Repository) ListUncategorized(ctx context.Context, ownerID int64, afterID string, limit int) ([]model.Transaction, error) {
	query := `
		SELECT id, owner_id, bank, occurred_at, amount::text, type, currency, account_number, description
		FROM transactions
		WHERE category IS NULL AND id > $1 AND ($2::bigint = 0 OR owner_id = $2)
		ORDER BY id
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, afterID, ownerID, limit)
	if err != nil {
		r.logger.Error("failed to list uncategorized transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var (
			tx                         model.Transaction
			amount, txType, currency   string
			accountNumber, description sql.NullString
		)
		if err := rows.Scan(
			&tx.ID,
			&tx.OwnerID,
			&tx.Bank,
			&tx.Timestamp,
			&amount,
			&txType,
			&currency,
			&accountNumber,
			&description,
		); err != nil {
			return nil, err
		}

		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
		}
		tx.Type = model.ParseType(txType)
		tx.Currency = model.Currency(currency)
		tx.AccountNumber = accountNumber.String
		tx.Description = description.String
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// SetCategory assigns a category only if the transaction has none yet.
func (r *Repository) SetCategory(ctx context.Context, transactionID string, category model.Category) (bool, error) {
	query := `
		UPDATE transactions
		SET category = $1
		WHERE id = $2 AND category IS NULL
	`

	tag, err := r.db.Exec(ctx, query, string(category), transactionID)
	if err != nil {
		r.logger.Error("failed to set category", zap.String("transaction_id", transactionID), zap.Error(err))
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
