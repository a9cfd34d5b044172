package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/service"
)

var requester = domain.UserInfo{TelegramID: 100, Username: "alice", FirstName: "Alice"}

func upsertAs(id int64) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = id
	}
}

func newInvitationService(userRepo *MockUserRepo, linkRepo *MockInviteLinkRepo, logRepo *MockInvitationLogRepo, msgr *MockMessenger) service.InvitationService {
	return service.NewInvitationService(userRepo, linkRepo, logRepo, msgr, 5*time.Minute, 20)
}

func TestInvitationService_RequestSingle(t *testing.T) {
	ctx := context.Background()

	t.Run("Issued", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		linkRepo := new(MockInviteLinkRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, linkRepo, new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipMember, nil)
		linkRepo.On("FindActiveUnexpired", ctx, int64(1), mock.Anything).Return(nil, nil)
		msgr.On("CreateInviteLink", ctx, mock.Anything, 1).Return("https://t.me/+abc", nil)
		linkRepo.On("Create", ctx, mock.MatchedBy(func(l *domain.InviteLink) bool {
			return l.Token == "https://t.me/+abc" && l.InviterID == 1
		})).Return(nil)

		res := svc.RequestSingle(ctx, requester)
		assert.Equal(t, service.OutcomeIssued, res.Kind)
		assert.Equal(t, "https://t.me/+abc", res.Token)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), res.ExpiresAt, 5*time.Second)
		linkRepo.AssertExpectations(t)
	})

	t.Run("ConflictReturnsExistingLink", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		linkRepo := new(MockInviteLinkRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, linkRepo, new(MockInvitationLogRepo), msgr)

		existing := &domain.InviteLink{
			ID:        7,
			Token:     "https://t.me/+existing",
			InviterID: 1,
			IsActive:  true,
			ExpiresAt: time.Now().Add(3 * time.Minute),
		}
		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipMember, nil)
		linkRepo.On("FindActiveUnexpired", ctx, int64(1), mock.Anything).Return(existing, nil)

		res := svc.RequestSingle(ctx, requester)
		assert.Equal(t, service.OutcomeConflict, res.Kind)
		assert.Equal(t, "https://t.me/+existing", res.Token)
		assert.Greater(t, res.Remaining, 2*time.Minute)
		msgr.AssertNotCalled(t, "CreateInviteLink", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DeniedForNonMember", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		linkRepo := new(MockInviteLinkRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, linkRepo, new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipNonMember, nil)

		res := svc.RequestSingle(ctx, requester)
		assert.Equal(t, service.OutcomeDenied, res.Kind)
		assert.NotEmpty(t, res.Reason)
	})

	t.Run("FailedOnMembershipCheckError", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, new(MockInviteLinkRepo), new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipNonMember, errors.New("network down"))

		res := svc.RequestSingle(ctx, requester)
		assert.Equal(t, service.OutcomeFailed, res.Kind)
	})

	t.Run("RevokesOrphanedLinkOnStoreFailure", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		linkRepo := new(MockInviteLinkRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, linkRepo, new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipMember, nil)
		linkRepo.On("FindActiveUnexpired", ctx, int64(1), mock.Anything).Return(nil, nil)
		msgr.On("CreateInviteLink", ctx, mock.Anything, 1).Return("https://t.me/+abc", nil)
		linkRepo.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))
		msgr.On("RevokeInviteLink", ctx, "https://t.me/+abc").Return(nil)

		res := svc.RequestSingle(ctx, requester)
		assert.Equal(t, service.OutcomeFailed, res.Kind)
		msgr.AssertCalled(t, "RevokeInviteLink", ctx, "https://t.me/+abc")
	})
}

func TestInvitationService_RequestBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("DeniedForNonAdmin", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, new(MockInviteLinkRepo), new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipMember, nil)

		res := svc.RequestBatch(ctx, requester, 5)
		assert.Equal(t, service.OutcomeDenied, res.Kind)
	})

	t.Run("DeniedForNonPositiveCount", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, new(MockInviteLinkRepo), new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipAdministrator, nil)

		res := svc.RequestBatch(ctx, requester, 0)
		assert.Equal(t, service.OutcomeDenied, res.Kind)
	})

	t.Run("ClampsToConfiguredMaximum", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		linkRepo := new(MockInviteLinkRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, linkRepo, new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipOwner, nil)
		msgr.On("CreateInviteLink", ctx, mock.Anything, 1).Return("https://t.me/+x", nil)
		linkRepo.On("Create", ctx, mock.Anything).Return(nil)

		res := svc.RequestBatch(ctx, requester, 25)
		assert.Equal(t, service.OutcomeIssued, res.Kind)
		assert.True(t, res.Clamped)
		assert.Len(t, res.Tokens, 20)
		msgr.AssertNumberOfCalls(t, "CreateInviteLink", 20)
	})

	t.Run("MidBatchFailureReportsPartialSuccess", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		linkRepo := new(MockInviteLinkRepo)
		msgr := new(MockMessenger)
		svc := newInvitationService(userRepo, linkRepo, new(MockInvitationLogRepo), msgr)

		userRepo.On("Upsert", ctx, mock.Anything).Run(upsertAs(1)).Return(nil)
		msgr.On("GetMembershipStatus", ctx, int64(100)).Return(domain.MembershipAdministrator, nil)
		msgr.On("CreateInviteLink", ctx, mock.Anything, 1).Return("https://t.me/+x", nil).Twice()
		msgr.On("CreateInviteLink", ctx, mock.Anything, 1).Return("", errors.New("flood limit"))
		linkRepo.On("Create", ctx, mock.Anything).Return(nil)

		res := svc.RequestBatch(ctx, requester, 5)
		assert.Equal(t, service.OutcomeFailed, res.Kind)
		assert.True(t, res.Partial)
		assert.Len(t, res.Tokens, 2)
	})
}

func TestInvitationService_LookupInviter(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownUser", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		svc := newInvitationService(userRepo, new(MockInviteLinkRepo), new(MockInvitationLogRepo), new(MockMessenger))

		userRepo.On("GetByUsername", ctx, "ghost").Return(nil, nil)

		_, err := svc.LookupInviter(ctx, "@ghost")
		assert.ErrorIs(t, err, service.ErrUnknownUser)
	})

	t.Run("NoAttribution", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		logRepo := new(MockInvitationLogRepo)
		svc := newInvitationService(userRepo, new(MockInviteLinkRepo), logRepo, new(MockMessenger))

		userRepo.On("GetByTelegramID", ctx, int64(200)).Return(&domain.User{ID: 2, TelegramID: 200}, nil)
		logRepo.On("GetLatestByInvitee", ctx, int64(2)).Return(nil, nil)

		attr, err := svc.LookupInviter(ctx, "200")
		assert.NoError(t, err)
		assert.Nil(t, attr)
	})

	t.Run("MostRecentEntryWins", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		linkRepo := new(MockInviteLinkRepo)
		logRepo := new(MockInvitationLogRepo)
		svc := newInvitationService(userRepo, linkRepo, logRepo, new(MockMessenger))

		linkID := int64(9)
		invitedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		userRepo.On("GetByTelegramID", ctx, int64(200)).Return(&domain.User{ID: 2, TelegramID: 200, FirstName: "Bob"}, nil)
		logRepo.On("GetLatestByInvitee", ctx, int64(2)).Return(&domain.InvitationLog{
			ID: 5, InviterID: 1, InviteeID: 2, InviteLinkID: &linkID, InvitedAt: invitedAt,
		}, nil)
		userRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, TelegramID: 100, FirstName: "Alice"}, nil)
		linkRepo.On("GetByID", ctx, int64(9)).Return(&domain.InviteLink{ID: 9, Token: "https://t.me/+abc", InviterID: 1}, nil)

		attr, err := svc.LookupInviter(ctx, "200")
		assert.NoError(t, err)
		assert.Equal(t, "Alice", attr.Inviter.FirstName)
		assert.Equal(t, "Bob", attr.Invitee.FirstName)
		assert.Equal(t, "https://t.me/+abc", attr.Link.Token)
		assert.Equal(t, invitedAt, attr.InvitedAt)
	})
}
