package transport

import (
	"context"
	"time"

	"invitebot-backend/internal/domain"
)

// Messenger is the messaging-platform collaborator. Every call is a single
// attempt against the platform; callers convert failures into their own
// outcome types and never retry.
type Messenger interface {
	// SendReply posts text into a chat, optionally inside a forum topic
	// (topicID 0 means none) and as a reply to replyTo (0 means none).
	SendReply(ctx context.Context, chatID int64, topicID int, replyTo int, text string) error
	// SendMessage sends a direct message to a user.
	SendMessage(ctx context.Context, telegramUserID int64, text string) error
	// CreateInviteLink asks the platform for a new invite link into the
	// target group, expiring at expireAt and usable memberLimit times.
	CreateInviteLink(ctx context.Context, expireAt time.Time, memberLimit int) (string, error)
	RevokeInviteLink(ctx context.Context, token string) error
	// ForwardMessage forwards a message from the target group into the
	// destination topic of the same group.
	ForwardMessage(ctx context.Context, fromChatID int64, messageID int, destTopicID int) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// GetMembershipStatus resolves the user's standing in the target group.
	GetMembershipStatus(ctx context.Context, telegramUserID int64) (domain.MembershipStatus, error)
}
