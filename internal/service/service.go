package service

import (
	"context"

	"invitebot-backend/internal/domain"
)

type DirectoryService interface {
	// Upsert records the identity or refreshes its mutable fields, returning
	// the directory row.
	Upsert(ctx context.Context, info domain.UserInfo) (*domain.User, error)
}

type InvitationService interface {
	RequestSingle(ctx context.Context, requester domain.UserInfo) SingleResult
	RequestBatch(ctx context.Context, requester domain.UserInfo, count int) BatchResult
	// LookupInviter resolves an invitee reference ("@handle" or a numeric
	// telegram id) to its most recent attribution. Returns ErrUnknownUser
	// when the reference matches nobody, and (nil, nil) when the user is
	// known but was never attributed.
	LookupInviter(ctx context.Context, inviteeRef string) (*Attribution, error)
	// LinksOf lists every ledger row owned by the referenced inviter.
	LinksOf(ctx context.Context, inviterRef string) (*domain.User, []domain.InviteLink, error)
}

type JoinService interface {
	// ProcessJoin runs the join-event state machine. The returned error is
	// for unexpected storage failures only; policy outcomes (stale token,
	// expired link, organic join) are handled internally and logged.
	ProcessJoin(ctx context.Context, ev domain.JoinEvent) error
}

type RelayService interface {
	// HandleGroupMessage suppresses service messages in the target group and
	// forwards source-topic messages to the destination topic. Best effort;
	// failures are logged only.
	HandleGroupMessage(ctx context.Context, msg domain.MessageEvent)
}
