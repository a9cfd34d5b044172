package service

import (
	"context"
	"fmt"
	"time"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/repository"
	"invitebot-backend/internal/transport"
)

type joinService struct {
	userRepo repository.UserRepository
	linkRepo repository.InviteLinkRepository
	logRepo  repository.InvitationLogRepository
	msgr     transport.Messenger
	groupID  int64
}

func NewJoinService(
	userRepo repository.UserRepository,
	linkRepo repository.InviteLinkRepository,
	logRepo repository.InvitationLogRepository,
	msgr transport.Messenger,
	groupID int64,
) JoinService {
	return &joinService{
		userRepo: userRepo,
		linkRepo: linkRepo,
		logRepo:  logRepo,
		msgr:     msgr,
		groupID:  groupID,
	}
}

func (s *joinService) ProcessJoin(ctx context.Context, ev domain.JoinEvent) error {
	if ev.GroupID != s.groupID {
		return nil
	}
	// Only transitions into membership matter; kicks, leaves and bans are
	// different event shapes.
	if !ev.NewStatus.IsMember() || ev.OldStatus.IsMember() {
		return nil
	}

	invitee := &domain.User{
		TelegramID: ev.Invitee.TelegramID,
		Username:   ev.Invitee.Username,
		FirstName:  ev.Invitee.FirstName,
		LastName:   ev.Invitee.LastName,
	}
	if err := s.userRepo.Upsert(ctx, invitee); err != nil {
		return fmt.Errorf("failed to upsert invitee: %w", err)
	}

	if ev.LinkToken == "" {
		// Organic join, nothing to attribute.
		return nil
	}

	link, err := s.linkRepo.FindByToken(ctx, ev.LinkToken)
	if err != nil {
		return fmt.Errorf("failed to resolve link token: %w", err)
	}
	if link == nil || !link.IsActive {
		// Stale or foreign link reference; not a user-visible condition.
		logger.Info("Join cited an unknown or inactive link", "invitee", ev.Invitee.TelegramID)
		return nil
	}

	now := time.Now().UTC()
	outcome, err := s.linkRepo.Consume(ctx, link.ID, now)
	if err != nil {
		return fmt.Errorf("failed to consume link: %w", err)
	}
	switch outcome {
	case domain.ConsumeExpired:
		// The platform let the join through past our expiry clock; no
		// attribution is recorded for it.
		logger.Info("Join cited an expired link", "invitee", ev.Invitee.TelegramID, "link_id", link.ID)
		return nil
	case domain.ConsumeAlreadyInactive:
		logger.Info("Join cited an already consumed link", "invitee", ev.Invitee.TelegramID, "link_id", link.ID)
		return nil
	}

	entry := &domain.InvitationLog{
		InviterID:    link.InviterID,
		InviteeID:    invitee.ID,
		InviteLinkID: &link.ID,
		InvitedAt:    now,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record attribution: %w", err)
	}

	s.notifyInviter(ctx, link.InviterID, invitee)
	logger.Info("Recorded invitation",
		"inviter_id", link.InviterID, "invitee_id", invitee.ID, "link_id", link.ID)
	return nil
}

// notifyInviter is best effort: the attribution row stays regardless of
// whether the DM goes through.
func (s *joinService) notifyInviter(ctx context.Context, inviterID int64, invitee *domain.User) {
	inviter, err := s.userRepo.GetByID(ctx, inviterID)
	if err != nil {
		logger.Error("Could not load inviter for notification", "inviter_id", inviterID, "error", err)
		return
	}

	text := fmt.Sprintf("User %s has joined using your invite link.", invitee.FirstName)
	if invitee.Username != "" {
		text = fmt.Sprintf("User %s (@%s) has joined using your invite link.", invitee.FirstName, invitee.Username)
	}
	if err := s.msgr.SendMessage(ctx, inviter.TelegramID, text); err != nil {
		logger.Error("Could not notify inviter", "inviter_id", inviterID, "error", err)
	}
}
