package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiribu/budget-buddy/internal/user/repository"
	"go.uber.org/zap"
)

type Store interface {
	GetOrCreateUser(ctx context.Context, info repository.UserInfo) (*repository.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*repository.User, error)
	GetInviteByTelegramID(ctx context.Context, telegramID int64) (*repository.Invite, error)
	GetInviteByCode(ctx context.Context, code string) (*repository.Invite, error)
	CreateInvite(ctx context.Context, telegramID int64, code string) error
}

// Profile is a user together with the budget they work on. A user who
// accepted an invite shares the inviter's budget.
type Profile struct {
	User          *repository.User
	Inviter       *repository.User
	BudgetOwnerID int64
}

type Service struct {
	repo    Store
	newCode func() string
	logger  *zap.Logger
}

func NewService(repo Store, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		newCode: GenerateInviteCode,
		logger:  logger,
	}
}

// GetOrCreateUser registers the user or refreshes their profile. An invite
// code is remembered only when it resolves to another user; unknown codes are
// ignored.
func (s *Service) GetOrCreateUser(ctx context.Context, info repository.UserInfo) (*Profile, error) {
	if info.InviteCode != "" {
		inviter, err := s.inviterByCode(ctx, info.InviteCode)
		if err != nil {
			return nil, err
		}
		if inviter == nil || inviter.TelegramID == info.TelegramID {
			s.logger.Info("ignoring invite code",
				zap.Int64("telegram_id", info.TelegramID),
				zap.String("code", info.InviteCode))
			info.InviteCode = ""
		}
	}

	user, err := s.repo.GetOrCreateUser(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return s.profile(ctx, user)
}

func (s *Service) GetUserByTelegramID(ctx context.Context, telegramID int64) (*Profile, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}

	return s.profile(ctx, user)
}

func (s *Service) profile(ctx context.Context, user *repository.User) (*Profile, error) {
	profile := &Profile{
		User:          user,
		BudgetOwnerID: user.ID,
	}
	if !user.AcceptedInviteCode.Valid {
		return profile, nil
	}

	inviter, err := s.inviterByCode(ctx, user.AcceptedInviteCode.String)
	if err != nil {
		return nil, err
	}
	if inviter != nil && inviter.ID != user.ID {
		profile.Inviter = inviter
		profile.BudgetOwnerID = inviter.ID
	}
	return profile, nil
}

// inviterByCode returns nil without error when the code or its owner is
// unknown.
func (s *Service) inviterByCode(ctx context.Context, code string) (*repository.User, error) {
	invite, err := s.repo.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	inviter, err := s.repo.GetUserByTelegramID(ctx, invite.TelegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inviter: %w", err)
	}
	return inviter, nil
}
