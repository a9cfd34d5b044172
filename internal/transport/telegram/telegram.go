// Package telegram implements the transport.Messenger collaborator on top
// of the Telegram Bot API and feeds incoming updates to the handler layer.
package telegram

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/handler"
	"invitebot-backend/internal/logger"
)

type Client struct {
	api     *bot.Bot
	groupID int64
	h       *handler.Handler
}

// New creates the long-polling client. Bind must be called before Run so
// updates have somewhere to go.
func New(token string, groupID int64) (*Client, error) {
	c := &Client{groupID: groupID}

	api, err := bot.New(token,
		bot.WithDefaultHandler(c.onUpdate),
		bot.WithAllowedUpdates(bot.AllowedUpdates{"message", "chat_member"}),
	)
	if err != nil {
		return nil, err
	}
	c.api = api
	return c, nil
}

// Bind attaches the event handler. Separate from New because the handler
// needs the client as its Messenger.
func (c *Client) Bind(h *handler.Handler) {
	c.h = h
}

// Run starts long polling and blocks until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	c.api.Start(ctx)
}

// onUpdate dispatches each update on its own goroutine so one slow external
// call cannot delay unrelated events.
func (c *Client) onUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if c.h == nil {
		return
	}
	go c.dispatch(ctx, update)
}

func (c *Client) dispatch(ctx context.Context, update *models.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Update handler panicked", "update_id", update.ID, "panic", r)
		}
	}()

	switch {
	case update.Message != nil:
		c.h.HandleMessage(ctx, messageEvent(update.Message))
	case update.ChatMember != nil:
		c.h.HandleMembership(ctx, joinEvent(update.ChatMember))
	}
}

func messageEvent(msg *models.Message) domain.MessageEvent {
	ev := domain.MessageEvent{
		ChatID:           msg.Chat.ID,
		MessageID:        msg.ID,
		TopicID:          msg.MessageThreadID,
		Text:             msg.Text,
		IsServiceMessage: isServiceMessage(msg),
	}
	if msg.From != nil {
		ev.Sender = userInfo(msg.From)
	}
	return ev
}

func joinEvent(upd *models.ChatMemberUpdated) domain.JoinEvent {
	ev := domain.JoinEvent{
		GroupID:   upd.Chat.ID,
		OldStatus: membershipStatus(upd.OldChatMember),
		NewStatus: membershipStatus(upd.NewChatMember),
	}
	if u := chatMemberUser(upd.NewChatMember); u != nil {
		ev.Invitee = userInfo(u)
	}
	if upd.InviteLink != nil {
		ev.LinkToken = upd.InviteLink.InviteLink
	}
	return ev
}

func userInfo(u *models.User) domain.UserInfo {
	return domain.UserInfo{
		TelegramID: u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsBot:      u.IsBot,
	}
}

func membershipStatus(m models.ChatMember) domain.MembershipStatus {
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return domain.MembershipOwner
	case models.ChatMemberTypeAdministrator:
		return domain.MembershipAdministrator
	case models.ChatMemberTypeMember:
		return domain.MembershipMember
	case models.ChatMemberTypeRestricted:
		// Restricted users are still in the group when is_member is set.
		if m.Restricted != nil && m.Restricted.IsMember {
			return domain.MembershipMember
		}
		return domain.MembershipNonMember
	default:
		return domain.MembershipNonMember
	}
}

func chatMemberUser(m models.ChatMember) *models.User {
	switch {
	case m.Owner != nil:
		return m.Owner.User
	case m.Administrator != nil:
		// Administrator is the one variant that holds the user by value.
		return &m.Administrator.User
	case m.Member != nil:
		return m.Member.User
	case m.Restricted != nil:
		return m.Restricted.User
	case m.Left != nil:
		return m.Left.User
	case m.Banned != nil:
		return m.Banned.User
	}
	return nil
}

func isServiceMessage(msg *models.Message) bool {
	return len(msg.NewChatMembers) > 0 ||
		msg.LeftChatMember != nil ||
		msg.NewChatTitle != "" ||
		len(msg.NewChatPhoto) > 0 ||
		msg.DeleteChatPhoto ||
		msg.GroupChatCreated ||
		msg.SupergroupChatCreated ||
		msg.MessageAutoDeleteTimerChanged != nil
}

// Messenger implementation

func (c *Client) SendReply(ctx context.Context, chatID int64, topicID int, replyTo int, text string) error {
	logger.ExternalServiceCall("telegram", "sendMessage", "chat_id", chatID)
	params := &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: topicID,
		Text:            text,
	}
	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
	}
	_, err := c.api.SendMessage(ctx, params)
	logger.ExternalServiceResult("telegram", "sendMessage", err)
	return err
}

func (c *Client) SendMessage(ctx context.Context, telegramUserID int64, text string) error {
	logger.ExternalServiceCall("telegram", "sendMessage", "user_id", telegramUserID)
	_, err := c.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: telegramUserID,
		Text:   text,
	})
	logger.ExternalServiceResult("telegram", "sendMessage", err)
	return err
}

func (c *Client) CreateInviteLink(ctx context.Context, expireAt time.Time, memberLimit int) (string, error) {
	logger.ExternalServiceCall("telegram", "createChatInviteLink", "group_id", c.groupID)
	link, err := c.api.CreateChatInviteLink(ctx, &bot.CreateChatInviteLinkParams{
		ChatID:      c.groupID,
		ExpireDate:  int(expireAt.Unix()),
		MemberLimit: memberLimit,
	})
	logger.ExternalServiceResult("telegram", "createChatInviteLink", err)
	if err != nil {
		return "", err
	}
	return link.InviteLink, nil
}

func (c *Client) RevokeInviteLink(ctx context.Context, token string) error {
	logger.ExternalServiceCall("telegram", "revokeChatInviteLink", "group_id", c.groupID)
	_, err := c.api.RevokeChatInviteLink(ctx, &bot.RevokeChatInviteLinkParams{
		ChatID:     c.groupID,
		InviteLink: token,
	})
	logger.ExternalServiceResult("telegram", "revokeChatInviteLink", err)
	return err
}

func (c *Client) ForwardMessage(ctx context.Context, fromChatID int64, messageID int, destTopicID int) error {
	logger.ExternalServiceCall("telegram", "forwardMessage", "message_id", messageID)
	_, err := c.api.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:          c.groupID,
		FromChatID:      fromChatID,
		MessageID:       messageID,
		MessageThreadID: destTopicID,
	})
	logger.ExternalServiceResult("telegram", "forwardMessage", err)
	return err
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	logger.ExternalServiceCall("telegram", "deleteMessage", "message_id", messageID)
	_, err := c.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	logger.ExternalServiceResult("telegram", "deleteMessage", err)
	return err
}

func (c *Client) GetMembershipStatus(ctx context.Context, telegramUserID int64) (domain.MembershipStatus, error) {
	logger.ExternalServiceCall("telegram", "getChatMember", "user_id", telegramUserID)
	member, err := c.api.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: c.groupID,
		UserID: telegramUserID,
	})
	logger.ExternalServiceResult("telegram", "getChatMember", err)
	if err != nil {
		return "", err
	}
	return membershipStatus(*member), nil
}
