package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"invitebot-backend/internal/domain"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockInviteLinkRepo
type MockInviteLinkRepo struct {
	mock.Mock
}

func (m *MockInviteLinkRepo) Create(ctx context.Context, link *domain.InviteLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}
func (m *MockInviteLinkRepo) GetByID(ctx context.Context, id int64) (*domain.InviteLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteLink), args.Error(1)
}
func (m *MockInviteLinkRepo) FindByToken(ctx context.Context, token string) (*domain.InviteLink, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteLink), args.Error(1)
}
func (m *MockInviteLinkRepo) FindActiveUnexpired(ctx context.Context, inviterID int64, now time.Time) (*domain.InviteLink, error) {
	args := m.Called(ctx, inviterID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteLink), args.Error(1)
}
func (m *MockInviteLinkRepo) Consume(ctx context.Context, id int64, now time.Time) (domain.ConsumeOutcome, error) {
	args := m.Called(ctx, id, now)
	return args.Get(0).(domain.ConsumeOutcome), args.Error(1)
}
func (m *MockInviteLinkRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockInviteLinkRepo) ListByInviter(ctx context.Context, inviterID int64) ([]domain.InviteLink, error) {
	args := m.Called(ctx, inviterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InviteLink), args.Error(1)
}

// MockInvitationLogRepo
type MockInvitationLogRepo struct {
	mock.Mock
}

func (m *MockInvitationLogRepo) Create(ctx context.Context, entry *domain.InvitationLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockInvitationLogRepo) GetLatestByInvitee(ctx context.Context, inviteeID int64) (*domain.InvitationLog, error) {
	args := m.Called(ctx, inviteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvitationLog), args.Error(1)
}

// MockMessenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendReply(ctx context.Context, chatID int64, topicID int, replyTo int, text string) error {
	args := m.Called(ctx, chatID, topicID, replyTo, text)
	return args.Error(0)
}
func (m *MockMessenger) SendMessage(ctx context.Context, telegramUserID int64, text string) error {
	args := m.Called(ctx, telegramUserID, text)
	return args.Error(0)
}
func (m *MockMessenger) CreateInviteLink(ctx context.Context, expireAt time.Time, memberLimit int) (string, error) {
	args := m.Called(ctx, expireAt, memberLimit)
	return args.String(0), args.Error(1)
}
func (m *MockMessenger) RevokeInviteLink(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockMessenger) ForwardMessage(ctx context.Context, fromChatID int64, messageID int, destTopicID int) error {
	args := m.Called(ctx, fromChatID, messageID, destTopicID)
	return args.Error(0)
}
func (m *MockMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}
func (m *MockMessenger) GetMembershipStatus(ctx context.Context, telegramUserID int64) (domain.MembershipStatus, error) {
	args := m.Called(ctx, telegramUserID)
	return args.Get(0).(domain.MembershipStatus), args.Error(1)
}
