// Package handler maps incoming transport events to service calls and
// renders service outcomes as chat replies.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/service"
	"invitebot-backend/internal/transport"
)

const apologyText = "Sorry, something went wrong on my side. Please try again later."

type Handler struct {
	directory  service.DirectoryService
	invitation service.InvitationService
	join       service.JoinService
	relay      service.RelayService
	msgr       transport.Messenger
	groupID    int64
}

func New(
	directory service.DirectoryService,
	invitation service.InvitationService,
	join service.JoinService,
	relay service.RelayService,
	msgr transport.Messenger,
	groupID int64,
) *Handler {
	return &Handler{
		directory:  directory,
		invitation: invitation,
		join:       join,
		relay:      relay,
		msgr:       msgr,
		groupID:    groupID,
	}
}

// HandleMessage routes one incoming message: known commands go to the
// command table, everything else to the relay/suppression path. A slash
// message nobody claims is still an ordinary user message.
func (h *Handler) HandleMessage(ctx context.Context, msg domain.MessageEvent) {
	if cmd, arg, ok := parseCommand(msg.Text); ok && h.handleCommand(ctx, msg, cmd, arg) {
		return
	}
	h.relay.HandleGroupMessage(ctx, msg)
}

// HandleMembership forwards a membership change to the join processor.
func (h *Handler) HandleMembership(ctx context.Context, ev domain.JoinEvent) {
	if err := h.join.ProcessJoin(ctx, ev); err != nil {
		logger.Error("Join event processing failed", "invitee", ev.Invitee.TelegramID, "error", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg domain.MessageEvent, cmd, arg string) bool {
	switch cmd {
	case "start":
		h.onStart(ctx, msg)
	case "invite":
		h.onInvite(ctx, msg)
	case "invites":
		h.onInvites(ctx, msg, arg)
	case "whoinvited":
		h.onWhoInvited(ctx, msg, arg)
	default:
		return false
	}
	return true
}

func (h *Handler) onStart(ctx context.Context, msg domain.MessageEvent) {
	if _, err := h.directory.Upsert(ctx, msg.Sender); err != nil {
		logger.Error("Failed to record user on /start", "telegram_id", msg.Sender.TelegramID, "error", err)
	}
	h.reply(ctx, msg, "Hi!\nI'm Invite Bot.\nUse /invite to get a one-time invite link.")
}

func (h *Handler) onInvite(ctx context.Context, msg domain.MessageEvent) {
	res := h.invitation.RequestSingle(ctx, msg.Sender)
	switch res.Kind {
	case service.OutcomeIssued:
		h.reply(ctx, msg, fmt.Sprintf("Here is your one-time invite link (valid for %s):\n%s",
			formatDuration(time.Until(res.ExpiresAt)), res.Token))
	case service.OutcomeConflict:
		h.reply(ctx, msg, fmt.Sprintf("You already have an active invite link (expires in %s):\n%s",
			formatDuration(res.Remaining), res.Token))
	case service.OutcomeDenied:
		h.reply(ctx, msg, res.Reason)
	default:
		h.reply(ctx, msg, apologyText)
	}
}

func (h *Handler) onInvites(ctx context.Context, msg domain.MessageEvent, arg string) {
	count, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		h.reply(ctx, msg, "Usage: /invites <count>")
		return
	}

	res := h.invitation.RequestBatch(ctx, msg.Sender, count)
	switch res.Kind {
	case service.OutcomeIssued:
		text := fmt.Sprintf("Issued %d invite link(s):\n%s", len(res.Tokens), strings.Join(res.Tokens, "\n"))
		if res.Clamped {
			text = fmt.Sprintf("Request clamped to the maximum of %d links.\n%s", res.Requested, text)
		}
		h.reply(ctx, msg, text)
	case service.OutcomeDenied:
		h.reply(ctx, msg, res.Reason)
	default:
		if res.Partial {
			h.reply(ctx, msg, fmt.Sprintf("Only %d of %d links could be issued before the platform call failed:\n%s",
				len(res.Tokens), res.Requested, strings.Join(res.Tokens, "\n")))
			return
		}
		h.reply(ctx, msg, apologyText)
	}
}

func (h *Handler) onWhoInvited(ctx context.Context, msg domain.MessageEvent, arg string) {
	if strings.TrimSpace(arg) == "" {
		h.reply(ctx, msg, "Usage: /whoinvited <@username|telegram id>")
		return
	}

	status, err := h.msgr.GetMembershipStatus(ctx, msg.Sender.TelegramID)
	if err != nil {
		h.reply(ctx, msg, apologyText)
		return
	}
	if !status.IsAdmin() {
		h.reply(ctx, msg, "Only group administrators can look up invitations.")
		return
	}

	attr, err := h.invitation.LookupInviter(ctx, arg)
	if errors.Is(err, service.ErrUnknownUser) {
		h.reply(ctx, msg, fmt.Sprintf("I have never seen %s.", strings.TrimSpace(arg)))
		return
	}
	if err != nil {
		h.reply(ctx, msg, apologyText)
		return
	}
	if attr == nil {
		h.reply(ctx, msg, fmt.Sprintf("%s joined without a tracked invite link.", strings.TrimSpace(arg)))
		return
	}

	h.reply(ctx, msg, fmt.Sprintf("%s was invited by %s on %s.",
		attr.Invitee.DisplayName(), attr.Inviter.DisplayName(), attr.InvitedAt.Format("2006-01-02 15:04 MST")))
}

func (h *Handler) reply(ctx context.Context, msg domain.MessageEvent, text string) {
	if err := h.msgr.SendReply(ctx, msg.ChatID, msg.TopicID, msg.MessageID, text); err != nil {
		logger.Error("Could not send reply", "chat_id", msg.ChatID, "error", err)
	}
}

// parseCommand splits "/cmd@BotName rest" into ("cmd", "rest", true).
func parseCommand(text string) (cmd, arg string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if head == "" {
		return "", "", false
	}
	if at := strings.Index(head, "@"); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
