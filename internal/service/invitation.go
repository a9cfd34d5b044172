package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/repository"
	"invitebot-backend/internal/transport"
)

var ErrUnknownUser = errors.New("user has never interacted with the bot")

// OutcomeKind classifies a link-issuance result for the caller. Denied and
// Conflict are policy outcomes, not errors; Failed covers transport and
// storage faults, which are logged here and never retried.
type OutcomeKind string

const (
	OutcomeIssued   OutcomeKind = "ISSUED"
	OutcomeConflict OutcomeKind = "CONFLICT"
	OutcomeDenied   OutcomeKind = "DENIED"
	OutcomeFailed   OutcomeKind = "FAILED"
)

type SingleResult struct {
	Kind      OutcomeKind
	Token     string
	ExpiresAt time.Time
	Remaining time.Duration // set on Conflict: time left on the existing link
	Reason    string        // set on Denied
}

type BatchResult struct {
	Kind      OutcomeKind
	Tokens    []string
	Requested int
	Clamped   bool
	Partial   bool // transport failed mid-batch; len(Tokens) links exist
	Reason    string
}

// Attribution answers "who invited this user".
type Attribution struct {
	Inviter   *domain.User
	Invitee   *domain.User
	Link      *domain.InviteLink
	InvitedAt time.Time
}

type invitationService struct {
	userRepo repository.UserRepository
	linkRepo repository.InviteLinkRepository
	logRepo  repository.InvitationLogRepository
	msgr     transport.Messenger
	ttl      time.Duration
	maxBatch int
}

func NewInvitationService(
	userRepo repository.UserRepository,
	linkRepo repository.InviteLinkRepository,
	logRepo repository.InvitationLogRepository,
	msgr transport.Messenger,
	ttl time.Duration,
	maxBatch int,
) InvitationService {
	return &invitationService{
		userRepo: userRepo,
		linkRepo: linkRepo,
		logRepo:  logRepo,
		msgr:     msgr,
		ttl:      ttl,
		maxBatch: maxBatch,
	}
}

func (s *invitationService) RequestSingle(ctx context.Context, requester domain.UserInfo) SingleResult {
	inviter := &domain.User{
		TelegramID: requester.TelegramID,
		Username:   requester.Username,
		FirstName:  requester.FirstName,
		LastName:   requester.LastName,
	}
	if err := s.userRepo.Upsert(ctx, inviter); err != nil {
		logger.Error("Failed to upsert requester", "telegram_id", requester.TelegramID, "error", err)
		return SingleResult{Kind: OutcomeFailed}
	}

	status, err := s.msgr.GetMembershipStatus(ctx, requester.TelegramID)
	if err != nil {
		logger.Error("Membership check failed", "telegram_id", requester.TelegramID, "error", err)
		return SingleResult{Kind: OutcomeFailed}
	}
	if !status.IsMember() {
		return SingleResult{Kind: OutcomeDenied, Reason: "you must be a member of the group to request an invite link"}
	}

	now := time.Now().UTC()

	// Repeated requests before expiry return the existing link instead of
	// issuing a new one, so at most one link per inviter is live.
	existing, err := s.linkRepo.FindActiveUnexpired(ctx, inviter.ID, now)
	if err != nil {
		logger.Error("Active link lookup failed", "inviter_id", inviter.ID, "error", err)
		return SingleResult{Kind: OutcomeFailed}
	}
	if existing != nil {
		return SingleResult{
			Kind:      OutcomeConflict,
			Token:     existing.Token,
			ExpiresAt: existing.ExpiresAt,
			Remaining: existing.Remaining(now),
		}
	}

	link, err := s.issue(ctx, inviter.ID, now)
	if err != nil {
		return SingleResult{Kind: OutcomeFailed}
	}
	return SingleResult{Kind: OutcomeIssued, Token: link.Token, ExpiresAt: link.ExpiresAt}
}

func (s *invitationService) RequestBatch(ctx context.Context, requester domain.UserInfo, count int) BatchResult {
	inviter := &domain.User{
		TelegramID: requester.TelegramID,
		Username:   requester.Username,
		FirstName:  requester.FirstName,
		LastName:   requester.LastName,
	}
	if err := s.userRepo.Upsert(ctx, inviter); err != nil {
		logger.Error("Failed to upsert requester", "telegram_id", requester.TelegramID, "error", err)
		return BatchResult{Kind: OutcomeFailed, Requested: count}
	}

	status, err := s.msgr.GetMembershipStatus(ctx, requester.TelegramID)
	if err != nil {
		logger.Error("Membership check failed", "telegram_id", requester.TelegramID, "error", err)
		return BatchResult{Kind: OutcomeFailed, Requested: count}
	}
	if !status.IsAdmin() {
		return BatchResult{Kind: OutcomeDenied, Requested: count, Reason: "batch invites require administrator privileges"}
	}
	if count < 1 {
		return BatchResult{Kind: OutcomeDenied, Requested: count, Reason: "count must be a positive number"}
	}

	clamped := false
	if count > s.maxBatch {
		count = s.maxBatch
		clamped = true
	}

	// Issued strictly in sequence: a mid-batch failure leaves a well-defined
	// "first N succeeded" boundary and nothing is rolled back.
	tokens := make([]string, 0, count)
	for i := 0; i < count; i++ {
		link, err := s.issue(ctx, inviter.ID, time.Now().UTC())
		if err != nil {
			return BatchResult{
				Kind:      OutcomeFailed,
				Tokens:    tokens,
				Requested: count,
				Clamped:   clamped,
				Partial:   len(tokens) > 0,
			}
		}
		tokens = append(tokens, link.Token)
	}

	return BatchResult{Kind: OutcomeIssued, Tokens: tokens, Requested: count, Clamped: clamped}
}

// issue creates one platform link and records it in the ledger. If the
// ledger write fails after the platform call succeeded, the orphaned
// platform link is revoked best-effort so it cannot be consumed untracked.
func (s *invitationService) issue(ctx context.Context, inviterID int64, now time.Time) (*domain.InviteLink, error) {
	expiresAt := now.Add(s.ttl)

	token, err := s.msgr.CreateInviteLink(ctx, expiresAt, 1)
	if err != nil {
		logger.Error("Failed to create invite link", "inviter_id", inviterID, "error", err)
		return nil, err
	}

	link := &domain.InviteLink{
		Token:     token,
		InviterID: inviterID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		logger.Error("Failed to record invite link", "inviter_id", inviterID, "error", err)
		if revokeErr := s.msgr.RevokeInviteLink(ctx, token); revokeErr != nil {
			logger.Error("Failed to revoke orphaned invite link", "error", revokeErr)
		}
		return nil, err
	}
	return link, nil
}

func (s *invitationService) LookupInviter(ctx context.Context, inviteeRef string) (*Attribution, error) {
	invitee, err := s.resolveRef(ctx, inviteeRef)
	if err != nil {
		return nil, err
	}

	entry, err := s.logRepo.GetLatestByInvitee(ctx, invitee.ID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	inviter, err := s.userRepo.GetByID(ctx, entry.InviterID)
	if err != nil {
		return nil, err
	}

	attr := &Attribution{Inviter: inviter, Invitee: invitee, InvitedAt: entry.InvitedAt}
	if entry.InviteLinkID != nil {
		// The link reference is nullable in the schema; tolerate a missing row.
		if link, err := s.linkRepo.GetByID(ctx, *entry.InviteLinkID); err == nil && link != nil {
			attr.Link = link
		}
	}
	return attr, nil
}

func (s *invitationService) LinksOf(ctx context.Context, inviterRef string) (*domain.User, []domain.InviteLink, error) {
	inviter, err := s.resolveRef(ctx, inviterRef)
	if err != nil {
		return nil, nil, err
	}
	links, err := s.linkRepo.ListByInviter(ctx, inviter.ID)
	if err != nil {
		return nil, nil, err
	}
	return inviter, links, nil
}

// resolveRef turns "@handle" or a numeric telegram id into a directory row.
func (s *invitationService) resolveRef(ctx context.Context, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	var (
		user *domain.User
		err  error
	)
	if handle, ok := strings.CutPrefix(ref, "@"); ok {
		user, err = s.userRepo.GetByUsername(ctx, handle)
	} else if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		user, err = s.userRepo.GetByTelegramID(ctx, id)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}
