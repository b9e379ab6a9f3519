package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiribu/budget-buddy/internal/pkg/postgres"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsTable = "user_schema_migrations"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteConflict = errors.New("invite already exists")
)

type User struct {
	ID                 int64
	TelegramID         int64
	Username           sql.NullString
	FirstName          string
	LastName           sql.NullString
	LanguageCode       sql.NullString
	AcceptedInviteCode sql.NullString
	CreatedAt          time.Time
}

type Invite struct {
	TelegramID int64
	Code       string
	CreatedAt  time.Time
}

// UserInfo is what the chat platform tells us about a user on /start.
type UserInfo struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	InviteCode   string
}

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

const userColumns = `id, telegram_id, username, first_name, last_name, language_code, accepted_invite_code, created_at`

// GetOrCreateUser inserts the user or refreshes their profile. A previously
// accepted invite code is kept when the new one is empty.
func (r *Repository) GetOrCreateUser(ctx context.Context, info UserInfo) (*User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, language_code, accepted_invite_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    language_code = EXCLUDED.language_code,
		    accepted_invite_code = COALESCE(EXCLUDED.accepted_invite_code, users.accepted_invite_code)
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, query,
		info.TelegramID,
		nullString(info.Username),
		info.FirstName,
		nullString(info.LastName),
		nullString(info.LanguageCode),
		nullString(info.InviteCode),
	)

	user, err := scanUser(row)
	if err != nil {
		r.logger.Error("failed to get or create user", zap.Int64("telegram_id", info.TelegramID), zap.Error(err))
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("failed to get user by telegram id", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetInviteByTelegramID(ctx context.Context, telegramID int64) (*Invite, error) {
	return r.getInvite(ctx, `SELECT telegram_id, code, created_at FROM invites WHERE telegram_id = $1`, telegramID)
}

func (r *Repository) GetInviteByCode(ctx context.Context, code string) (*Invite, error) {
	return r.getInvite(ctx, `SELECT telegram_id, code, created_at FROM invites WHERE code = $1`, code)
}

func (r *Repository) getInvite(ctx context.Context, query string, arg interface{}) (*Invite, error) {
	var invite Invite

	err := r.db.QueryRow(ctx, query, arg).Scan(&invite.TelegramID, &invite.Code, &invite.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		r.logger.Error("failed to get invite", zap.Error(err))
		return nil, err
	}

	return &invite, nil
}

// CreateInvite fails with ErrInviteConflict when the owner already has an
// invite or the code is taken.
func (r *Repository) CreateInvite(ctx context.Context, telegramID int64, code string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO invites (telegram_id, code) VALUES ($1, $2)`, telegramID, code)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ErrInviteConflict, err)
		}
		r.logger.Error("failed to create invite", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return err
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.LanguageCode,
		&user.AcceptedInviteCode,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
