package handler

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kiribu/budget-buddy/internal/user/repository"
	"github.com/kiribu/budget-buddy/internal/user/service"
	"github.com/kiribu/budget-buddy/internal/user/userpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Users interface {
	GetOrCreateUser(ctx context.Context, info repository.UserInfo) (*service.Profile, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*service.Profile, error)
	GetOrCreateInvite(ctx context.Context, telegramID int64) (string, error)
}

type Handler struct {
	service Users
	logger  *zap.Logger
}

var _ userpb.UserServiceServer = (*Handler)(nil)

func NewHandler(svc Users, logger *zap.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

func (h *Handler) GetOrCreateUser(ctx context.Context, req *userpb.GetOrCreateUserRequest) (*userpb.UserResponse, error) {
	if req.TelegramId == 0 {
		return nil, status.Error(codes.InvalidArgument, "telegram_id is required")
	}

	profile, err := h.service.GetOrCreateUser(ctx, repository.UserInfo{
		TelegramID:   req.TelegramId,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		LanguageCode: req.LanguageCode,
		InviteCode:   req.InviteCode,
	})
	if err != nil {
		h.logger.Error("failed to get or create user", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to get or create user: %v", err)
	}

	return toResponse(profile), nil
}

func (h *Handler) GetUserByTelegramId(ctx context.Context, req *userpb.GetUserByTelegramIdRequest) (*userpb.UserResponse, error) {
	profile, err := h.service.GetUserByTelegramID(ctx, req.TelegramId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, status.Errorf(codes.NotFound, "user not found")
		}
		h.logger.Error("failed to get user by telegram id", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to get user: %v", err)
	}

	return toResponse(profile), nil
}

func (h *Handler) GetOrCreateInvite(ctx context.Context, req *userpb.GetOrCreateInviteRequest) (*userpb.InviteResponse, error) {
	if req.TelegramId == 0 {
		return nil, status.Error(codes.InvalidArgument, "telegram_id is required")
	}

	code, err := h.service.GetOrCreateInvite(ctx, req.TelegramId)
	if err != nil {
		h.logger.Error("failed to get or create invite", zap.Error(err))
		if errors.Is(err, service.ErrInviteGeneration) {
			return nil, status.Error(codes.ResourceExhausted, err.Error())
		}
		return nil, status.Errorf(codes.Internal, "failed to get or create invite: %v", err)
	}

	return &userpb.InviteResponse{
		Code: code,
	}, nil
}

func toResponse(profile *service.Profile) *userpb.UserResponse {
	user := profile.User
	resp := &userpb.UserResponse{
		UserId:        user.ID,
		TelegramId:    user.TelegramID,
		Username:      getStringValue(user.Username),
		FirstName:     user.FirstName,
		LastName:      getStringValue(user.LastName),
		LanguageCode:  getStringValue(user.LanguageCode),
		BudgetOwnerId: profile.BudgetOwnerID,
		CreatedAt:     user.CreatedAt,
	}
	if profile.Inviter != nil {
		resp.Inviter = &userpb.Inviter{
			UserId:    profile.Inviter.ID,
			FirstName: profile.Inviter.FirstName,
			LastName:  getStringValue(profile.Inviter.LastName),
		}
	}
	return resp
}

func getStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
