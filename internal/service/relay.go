package service

import (
	"context"
	"sync"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/transport"
)

type relayService struct {
	msgr          transport.Messenger
	groupID       int64
	sourceTopicID int
	destTopicID   int

	warnOnce sync.Once
}

// NewRelayService wires the topic relay. Source and destination topic ids of
// zero leave the relay disabled; service-message suppression stays on.
func NewRelayService(msgr transport.Messenger, groupID int64, sourceTopicID, destTopicID int) RelayService {
	return &relayService{
		msgr:          msgr,
		groupID:       groupID,
		sourceTopicID: sourceTopicID,
		destTopicID:   destTopicID,
	}
}

func (s *relayService) HandleGroupMessage(ctx context.Context, msg domain.MessageEvent) {
	if msg.ChatID != s.groupID {
		return
	}

	if msg.IsServiceMessage {
		if err := s.msgr.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
			logger.Error("Could not delete service message", "message_id", msg.MessageID, "error", err)
		}
		return
	}

	if msg.Sender.IsBot {
		return
	}
	if s.sourceTopicID == 0 || s.destTopicID == 0 {
		s.warnOnce.Do(func() {
			logger.Warn("Topic relay is not configured; skipping forwards")
		})
		return
	}
	if msg.TopicID != s.sourceTopicID {
		return
	}

	if err := s.msgr.ForwardMessage(ctx, msg.ChatID, msg.MessageID, s.destTopicID); err != nil {
		logger.Error("Could not forward topic message", "message_id", msg.MessageID, "error", err)
	}
}
