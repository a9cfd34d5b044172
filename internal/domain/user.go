package domain

import "time"

// User is one identity record per Telegram account. Handle and name fields
// are refreshed on every observed interaction; rows are never deleted.
type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName returns the best human-readable name available for the user.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return name
}

type MembershipStatus string

const (
	MembershipNonMember     MembershipStatus = "NON_MEMBER"
	MembershipMember        MembershipStatus = "MEMBER"
	MembershipAdministrator MembershipStatus = "ADMINISTRATOR"
	MembershipOwner         MembershipStatus = "OWNER"
)

// IsMember reports whether the status grants group membership.
func (s MembershipStatus) IsMember() bool {
	return s == MembershipMember || s == MembershipAdministrator || s == MembershipOwner
}

// IsAdmin reports whether the status grants elevated privileges.
func (s MembershipStatus) IsAdmin() bool {
	return s == MembershipAdministrator || s == MembershipOwner
}
