package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/kiribu/budget-buddy/internal/user/repository"
	"go.uber.org/zap"
)

const (
	inviteAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
	inviteMinLength     = 8
	inviteMaxLength     = 12
	maxInviteGeneration = 10
)

var ErrInviteGeneration = errors.New("could not generate a unique invite code")

// GenerateInviteCode returns a random code of 8 to 12 lowercase letters and
// digits.
func GenerateInviteCode() string {
	code := make([]byte, inviteMinLength+rand.IntN(inviteMaxLength-inviteMinLength+1))
	for i := range code {
		code[i] = inviteAlphabet[rand.IntN(len(inviteAlphabet))]
	}
	return string(code)
}

// GetOrCreateInvite returns the user's invite code, creating one on first use.
// Collisions with existing codes are retried with a fresh code.
func (s *Service) GetOrCreateInvite(ctx context.Context, telegramID int64) (string, error) {
	for attempt := 1; attempt <= maxInviteGeneration; attempt++ {
		invite, err := s.repo.GetInviteByTelegramID(ctx, telegramID)
		if err == nil {
			return invite.Code, nil
		}
		if !errors.Is(err, repository.ErrInviteNotFound) {
			return "", fmt.Errorf("failed to get invite: %w", err)
		}

		code := s.newCode()
		err = s.repo.CreateInvite(ctx, telegramID, code)
		if err == nil {
			s.logger.Info("invite created", zap.Int64("telegram_id", telegramID))
			return code, nil
		}
		if !errors.Is(err, repository.ErrInviteConflict) {
			return "", fmt.Errorf("failed to create invite: %w", err)
		}

		s.logger.Debug("invite code collision", zap.Int("attempt", attempt))
	}

	return "", ErrInviteGeneration
}
