package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/kiribu/budget-buddy/internal/ledger/ledgerpb"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"github.com/kiribu/budget-buddy/internal/statement"
	"github.com/kiribu/budget-buddy/internal/user/userpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type OwnerCache interface {
	GetOwnerID(ctx context.Context, telegramID int64) (int64, bool, error)
	SetOwnerID(ctx context.Context, telegramID, ownerID int64) error
}

type Statements interface {
	Banks() []statement.Bank
	Parse(bank, filename string, document io.Reader) ([]model.Transaction, error)
}

type Handler struct {
	users         userpb.UserServiceClient
	ledger        ledgerpb.LedgerServiceClient
	cache         OwnerCache
	statements    Statements
	validate      *validator.Validate
	maxUploadSize int64
	logger        *zap.Logger
}

func NewHandler(
	users userpb.UserServiceClient,
	ledger ledgerpb.LedgerServiceClient,
	cache OwnerCache,
	statements Statements,
	maxUploadSize int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:         users,
		ledger:        ledger,
		cache:         cache,
		statements:    statements,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/bot/start", h.Start)
		r.Get("/banks", h.ListBanks)
		r.Get("/report", h.GetReport)
		r.Get("/analytics", h.GetAnalytics)
		r.Post("/statements", h.UploadStatement)
		r.Post("/invites", h.CreateInvite)
	})
}

// getOwnerID resolves the budget a telegram user works on, through the cache
// first.
func (h *Handler) getOwnerID(ctx context.Context, telegramID int64) (int64, error) {
	ownerID, found, err := h.cache.GetOwnerID(ctx, telegramID)
	if err != nil {
		h.logger.Warn("failed to read owner cache", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
	if found {
		return ownerID, nil
	}

	resp, err := h.users.GetUserByTelegramId(ctx, &userpb.GetUserByTelegramIdRequest{
		TelegramId: telegramID,
	})
	if err != nil {
		return 0, err
	}

	if err := h.cache.SetOwnerID(ctx, telegramID, resp.BudgetOwnerId); err != nil {
		h.logger.Warn("failed to write owner cache", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	return resp.BudgetOwnerId, nil
}

type startRequest struct {
	TelegramID   int64  `json:"telegram_id" validate:"required"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
	InviteCode   string `json:"invite_code" validate:"omitempty,alphanum,lowercase,min=8,max=12"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	resp, err := h.users.GetOrCreateUser(ctx, &userpb.GetOrCreateUserRequest{
		TelegramId:   req.TelegramID,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		LanguageCode: req.LanguageCode,
		InviteCode:   req.InviteCode,
	})
	if err != nil {
		h.logger.Error("failed to get or create user", zap.Error(err))
		h.respondRPCError(w, err, "failed to create user")
		return
	}

	if err := h.cache.SetOwnerID(ctx, req.TelegramID, resp.BudgetOwnerId); err != nil {
		h.logger.Warn("failed to write owner cache", zap.Int64("telegram_id", req.TelegramID), zap.Error(err))
	}

	body := map[string]interface{}{
		"user_id":         resp.UserId,
		"budget_owner_id": resp.BudgetOwnerId,
	}
	if resp.Inviter != nil {
		body["inviter"] = map[string]string{
			"first_name": resp.Inviter.FirstName,
			"last_name":  resp.Inviter.LastName,
		}
	}

	h.respondJSON(w, http.StatusOK, body)
}

func (h *Handler) ListBanks(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"banks": h.statements.Banks(),
	})
}

type reportQuery struct {
	TelegramID int64  `validate:"required"`
	Start      string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End        string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	telegramID, _ := strconv.ParseInt(q.Get("telegram_id"), 10, 64)
	query := reportQuery{
		TelegramID: telegramID,
		Start:      q.Get("start"),
		End:        q.Get("end"),
	}
	if err := h.validate.Struct(query); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	ownerID, err := h.getOwnerID(ctx, query.TelegramID)
	if err != nil {
		h.respondRPCError(w, err, "user not found")
		return
	}

	resp, err := h.ledger.GetReport(ctx, &ledgerpb.GetReportRequest{
		OwnerID: ownerID,
		Start:   mustParseTime(query.Start),
		End:     mustParseTime(query.End),
	})
	if err != nil {
		h.logger.Error("failed to get report", zap.Int64("owner_id", ownerID), zap.Error(err))
		h.respondRPCError(w, err, "failed to get report")
		return
	}

	h.respondJSON(w, http.StatusOK, resp.Report)
}

type analyticsQuery struct {
	TelegramID    int64  `validate:"required"`
	OriginalStart string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	OriginalEnd   string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ComparedStart string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ComparedEnd   string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	telegramID, _ := strconv.ParseInt(q.Get("telegram_id"), 10, 64)
	query := analyticsQuery{
		TelegramID:    telegramID,
		OriginalStart: q.Get("original_start"),
		OriginalEnd:   q.Get("original_end"),
		ComparedStart: q.Get("compared_start"),
		ComparedEnd:   q.Get("compared_end"),
	}
	if err := h.validate.Struct(query); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	ownerID, err := h.getOwnerID(ctx, query.TelegramID)
	if err != nil {
		h.respondRPCError(w, err, "user not found")
		return
	}

	resp, err := h.ledger.GetAnalytics(ctx, &ledgerpb.GetAnalyticsRequest{
		OwnerID:  ownerID,
		Original: model.NewPeriod(mustParseTime(query.OriginalStart), mustParseTime(query.OriginalEnd)),
		Compared: model.NewPeriod(mustParseTime(query.ComparedStart), mustParseTime(query.ComparedEnd)),
	})
	if err != nil {
		h.logger.Error("failed to get analytics", zap.Int64("owner_id", ownerID), zap.Error(err))
		h.respondRPCError(w, err, "failed to get analytics")
		return
	}

	h.respondJSON(w, http.StatusOK, resp.Analytics)
}

type uploadForm struct {
	TelegramID int64  `validate:"required"`
	Bank       string `validate:"required"`
}

func (h *Handler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "statement is too large")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	telegramID, _ := strconv.ParseInt(r.FormValue("telegram_id"), 10, 64)
	form := uploadForm{
		TelegramID: telegramID,
		Bank:       r.FormValue("bank"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	transactions, err := h.statements.Parse(form.Bank, header.Filename, file)
	if err != nil {
		h.logger.Warn("failed to parse statement",
			zap.String("bank", form.Bank),
			zap.String("file", header.Filename),
			zap.Error(err))
		switch {
		case errors.Is(err, statement.ErrUnsupportedFileType):
			h.respondError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, statement.ErrUnknownBank):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.respondError(w, http.StatusUnprocessableEntity, "failed to read statement")
		}
		return
	}
	if len(transactions) == 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "no transactions found in statement")
		return
	}

	ctx := r.Context()
	ownerID, err := h.getOwnerID(ctx, form.TelegramID)
	if err != nil {
		h.respondRPCError(w, err, "user not found")
		return
	}

	resp, err := h.ledger.ImportTransactions(ctx, &ledgerpb.ImportTransactionsRequest{
		OwnerID:      ownerID,
		Transactions: transactions,
	})
	if err != nil {
		h.logger.Error("failed to import transactions", zap.Int64("owner_id", ownerID), zap.Error(err))
		h.respondRPCError(w, err, "failed to import transactions")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"stored":   resp.Stored,
		"batch_id": resp.BatchID,
	})
}

type inviteRequest struct {
	TelegramID int64 `json:"telegram_id" validate:"required"`
}

func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.users.GetOrCreateInvite(r.Context(), &userpb.GetOrCreateInviteRequest{
		TelegramId: req.TelegramID,
	})
	if err != nil {
		h.logger.Error("failed to create invite", zap.Error(err))
		h.respondRPCError(w, err, "failed to create invite")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"code": resp.Code,
	})
}

// mustParseTime is only called on values the validator accepted.
func mustParseTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

func (h *Handler) respondRPCError(w http.ResponseWriter, err error, fallback string) {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument:
		h.respondError(w, http.StatusBadRequest, st.Message())
	case codes.NotFound:
		h.respondError(w, http.StatusNotFound, st.Message())
	case codes.Unavailable:
		h.respondError(w, http.StatusServiceUnavailable, "service unavailable")
	case codes.DeadlineExceeded:
		h.respondError(w, http.StatusGatewayTimeout, "service timed out")
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
