package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/kiribu/budget-buddy/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	users   map[int64]*repository.User
	invites map[int64]*repository.Invite
	nextID  int64
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[int64]*repository.User),
		invites: make(map[int64]*repository.Invite),
	}
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, info repository.UserInfo) (*repository.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[info.TelegramID]
	if !ok {
		f.nextID++
		user = &repository.User{ID: f.nextID, TelegramID: info.TelegramID}
		f.users[info.TelegramID] = user
	}
	user.FirstName = info.FirstName
	user.Username = sql.NullString{String: info.Username, Valid: info.Username != ""}
	if info.InviteCode != "" {
		user.AcceptedInviteCode = sql.NullString{String: info.InviteCode, Valid: true}
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) GetUserByTelegramID(_ context.Context, telegramID int64) (*repository.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[telegramID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) GetInviteByTelegramID(_ context.Context, telegramID int64) (*repository.Invite, error) {
	if f.err != nil {
		return nil, f.err
	}
	invite, ok := f.invites[telegramID]
	if !ok {
		return nil, repository.ErrInviteNotFound
	}
	return invite, nil
}

func (f *fakeStore) GetInviteByCode(_ context.Context, code string) (*repository.Invite, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, invite := range f.invites {
		if invite.Code == code {
			return invite, nil
		}
	}
	return nil, repository.ErrInviteNotFound
}

func (f *fakeStore) CreateInvite(_ context.Context, telegramID int64, code string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.invites[telegramID]; ok {
		return repository.ErrInviteConflict
	}
	for _, invite := range f.invites {
		if invite.Code == code {
			return repository.ErrInviteConflict
		}
	}
	f.invites[telegramID] = &repository.Invite{TelegramID: telegramID, Code: code}
	return nil
}

func TestGenerateInviteCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]{8,12}$`)
	for i := 0; i < 200; i++ {
		code := GenerateInviteCode()
		assert.Regexp(t, pattern, code)
	}
}

func TestGetOrCreateUser_WithoutInvite(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())

	profile, err := svc.GetOrCreateUser(context.Background(), repository.UserInfo{TelegramID: 100, FirstName: "Ada"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", profile.User.FirstName)
	assert.Nil(t, profile.Inviter)
	assert.Equal(t, profile.User.ID, profile.BudgetOwnerID)
}

func TestGetOrCreateUser_AcceptsInvite(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	inviter, err := svc.GetOrCreateUser(ctx, repository.UserInfo{TelegramID: 1, FirstName: "Grace"})
	require.NoError(t, err)
	code, err := svc.GetOrCreateInvite(ctx, 1)
	require.NoError(t, err)

	invited, err := svc.GetOrCreateUser(ctx, repository.UserInfo{TelegramID: 2, FirstName: "Alan", InviteCode: code})
	require.NoError(t, err)

	require.NotNil(t, invited.Inviter)
	assert.Equal(t, "Grace", invited.Inviter.FirstName)
	assert.Equal(t, inviter.User.ID, invited.BudgetOwnerID)

	again, err := svc.GetOrCreateUser(ctx, repository.UserInfo{TelegramID: 2, FirstName: "Alan"})
	require.NoError(t, err)
	assert.Equal(t, inviter.User.ID, again.BudgetOwnerID, "the accepted invite is remembered")

	looked, err := svc.GetUserByTelegramID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, inviter.User.ID, looked.BudgetOwnerID)
}

func TestGetOrCreateUser_IgnoresUnknownAndOwnCode(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	profile, err := svc.GetOrCreateUser(ctx, repository.UserInfo{TelegramID: 5, FirstName: "Lin", InviteCode: "nosuchcode"})
	require.NoError(t, err)
	assert.Nil(t, profile.Inviter)
	assert.False(t, store.users[5].AcceptedInviteCode.Valid)

	code, err := svc.GetOrCreateInvite(ctx, 5)
	require.NoError(t, err)

	profile, err = svc.GetOrCreateUser(ctx, repository.UserInfo{TelegramID: 5, FirstName: "Lin", InviteCode: code})
	require.NoError(t, err)
	assert.Nil(t, profile.Inviter)
	assert.Equal(t, profile.User.ID, profile.BudgetOwnerID)
}

func TestGetUserByTelegramID_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())

	_, err := svc.GetUserByTelegramID(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestGetOrCreateInvite_ReturnsExisting(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())
	ctx := context.Background()

	first, err := svc.GetOrCreateInvite(ctx, 7)
	require.NoError(t, err)
	second, err := svc.GetOrCreateInvite(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetOrCreateInvite_RetriesOnCollision(t *testing.T) {
	store := newFakeStore()
	store.invites[1] = &repository.Invite{TelegramID: 1, Code: "taken000"}
	svc := NewService(store, zap.NewNop())

	codes := []string{"taken000", "taken000", "fresh123"}
	svc.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	code, err := svc.GetOrCreateInvite(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "fresh123", code)
}

func TestGetOrCreateInvite_GivesUp(t *testing.T) {
	store := newFakeStore()
	store.invites[1] = &repository.Invite{TelegramID: 1, Code: "taken000"}
	svc := NewService(store, zap.NewNop())
	svc.newCode = func() string { return "taken000" }

	_, err := svc.GetOrCreateInvite(context.Background(), 2)
	assert.ErrorIs(t, err, ErrInviteGeneration)
}

func TestGetOrCreateInvite_StoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	svc := NewService(store, zap.NewNop())

	_, err := svc.GetOrCreateInvite(context.Background(), 2)
	assert.ErrorIs(t, err, store.err)
}
