package models

import (
	"time"

	"infinite-experiment/clanhall/internal/constants"
)

// MembershipState is the user's position in the membership state machine.
// It is derived from the stored fields, never persisted.
type MembershipState string

const (
	StateUnaffiliated  MembershipState = "unaffiliated"
	StatePendingInvite MembershipState = "pending_invite"
	StateMember        MembershipState = "member"
	StateCoLeader      MembershipState = "co_leader"
	StateLeader        MembershipState = "leader"
)

// User is one person's clan affiliation within one guild.
type User struct {
	ID                  ID                 `json:"id"`
	GuildID             ID                 `json:"guildId"`
	UserID              ID                 `json:"userId"`
	ClanID              ID                 `json:"clanId"`
	Role                constants.ClanRole `json:"role"`
	PendingInviteClanID ID                 `json:"pendingInviteClanId"`
	InvitedByUserID     ID                 `json:"invitedByUserId"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// UserDefaults is the template merged under every new user record.
func UserDefaults() map[string]any {
	return UnaffiliatedFields()
}

// UnaffiliatedFields is the field set that returns a user to Unaffiliated.
func UnaffiliatedFields() map[string]any {
	return map[string]any{
		"clanId":              nil,
		"role":                nil,
		"pendingInviteClanId": nil,
		"invitedByUserId":     nil,
	}
}

func (u *User) State() MembershipState {
	if !u.ClanID.IsZero() {
		switch u.Role {
		case constants.RoleLeader:
			return StateLeader
		case constants.RoleCoLeader:
			return StateCoLeader
		default:
			return StateMember
		}
	}
	if !u.PendingInviteClanID.IsZero() {
		return StatePendingInvite
	}
	return StateUnaffiliated
}

func (u *User) InClan() bool { return !u.ClanID.IsZero() }

func (u *User) HasPendingInvite() bool { return !u.PendingInviteClanID.IsZero() }

// JoinClan affiliates the user with clanID in role and drops any invite.
func (u *User) JoinClan(clanID ID, role constants.ClanRole) {
	u.ClanID = clanID
	u.Role = role
	u.ClearInvite()
}

func (u *User) ClearInvite() {
	u.PendingInviteClanID = ""
	u.InvitedByUserID = ""
}

// ResetAffiliation clears clan, role and invite.
func (u *User) ResetAffiliation() {
	u.ClanID = ""
	u.Role = constants.RoleNone
	u.ClearInvite()
}
