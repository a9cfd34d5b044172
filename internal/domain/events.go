package domain

// UserInfo is the raw identity attached to an incoming transport event,
// before the directory has assigned a local id.
type UserInfo struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	IsBot      bool
}

// JoinEvent is a membership-change notification from the transport.
// LinkToken is empty for organic joins.
type JoinEvent struct {
	GroupID   int64
	Invitee   UserInfo
	OldStatus MembershipStatus
	NewStatus MembershipStatus
	LinkToken string
}

// MessageEvent is a user-authored or service message observed in a chat.
// TopicID is zero for messages outside a forum topic.
type MessageEvent struct {
	ChatID           int64
	MessageID        int
	TopicID          int
	Sender           UserInfo
	Text             string
	IsServiceMessage bool
}
