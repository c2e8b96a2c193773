package models

import (
	"time"

	"infinite-experiment/clanhall/internal/constants"
)

// Clan is one group inside a guild.
type Clan struct {
	ID          ID     `json:"id"`
	GuildID     ID     `json:"guildId"`
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	LeaderID    ID     `json:"leaderId"`
	CoLeaderIDs []ID   `json:"coLeaderIds"`
	MemberIDs   []ID   `json:"memberIds"`
	Bounty      int    `json:"bounty"`
	Color       string `json:"color,omitempty"`
	Visible     bool   `json:"visible"`

	PendingDisbandRequestedBy ID         `json:"pendingDisbandRequestedBy"`
	PendingDisbandRequestedAt *time.Time `json:"pendingDisbandRequestedAt"`

	// Platform asset handles, stored verbatim.
	RoleID         ID `json:"roleId"`
	LeaderRoleID   ID `json:"leaderRoleId"`
	CoLeaderRoleID ID `json:"coLeaderRoleId"`
	CategoryID     ID `json:"categoryId"`
	TextChannelID  ID `json:"textChannelId"`
	VoiceChannelID ID `json:"voiceChannelId"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// ClanDefaults is the template merged under every new clan.
func ClanDefaults() map[string]any {
	return map[string]any{
		"tag":                       nil,
		"coLeaderIds":               []string{},
		"memberIds":                 []string{},
		"bounty":                    0,
		"visible":                   false,
		"pendingDisbandRequestedBy": nil,
		"pendingDisbandRequestedAt": nil,
		"roleId":                    nil,
		"leaderRoleId":              nil,
		"coLeaderRoleId":            nil,
		"categoryId":                nil,
		"textChannelId":             nil,
		"voiceChannelId":            nil,
	}
}

// MemberCount counts the leader, co-leaders and members.
func (c *Clan) MemberCount() int {
	return 1 + len(c.CoLeaderIDs) + len(c.MemberIDs)
}

func (c *Clan) IsLeader(userID ID) bool {
	return !userID.IsZero() && c.LeaderID == userID
}

func (c *Clan) IsCoLeader(userID ID) bool {
	return ContainsID(c.CoLeaderIDs, userID)
}

func (c *Clan) IsMember(userID ID) bool {
	return ContainsID(c.MemberIDs, userID)
}

// Has reports whether userID holds any role in the clan.
func (c *Clan) Has(userID ID) bool {
	return c.IsLeader(userID) || c.IsCoLeader(userID) || c.IsMember(userID)
}

// RoleOf derives a user's role from the roster.
func (c *Clan) RoleOf(userID ID) constants.ClanRole {
	switch {
	case c.IsLeader(userID):
		return constants.RoleLeader
	case c.IsCoLeader(userID):
		return constants.RoleCoLeader
	case c.IsMember(userID):
		return constants.RoleMember
	default:
		return constants.RoleNone
	}
}

// AddMember adds userID as a plain member. Adding an existing member is a no-op.
func (c *Clan) AddMember(userID ID) {
	c.MemberIDs = AppendUniqueID(c.MemberIDs, userID)
}

// RemoveFromRoles drops userID from both the co-leader and member sets.
func (c *Clan) RemoveFromRoles(userID ID) {
	c.CoLeaderIDs = RemoveID(c.CoLeaderIDs, userID)
	c.MemberIDs = RemoveID(c.MemberIDs, userID)
}

// Promote moves a member into the co-leader set.
func (c *Clan) Promote(userID ID) {
	c.MemberIDs = RemoveID(c.MemberIDs, userID)
	c.CoLeaderIDs = AppendUniqueID(c.CoLeaderIDs, userID)
}

// Demote moves a co-leader into the member set.
func (c *Clan) Demote(userID ID) {
	c.CoLeaderIDs = RemoveID(c.CoLeaderIDs, userID)
	c.MemberIDs = AppendUniqueID(c.MemberIDs, userID)
}

// TransferLeadership makes newLeader the leader and the previous leader a co-leader.
func (c *Clan) TransferLeadership(newLeader ID) {
	previous := c.LeaderID
	c.RemoveFromRoles(newLeader)
	c.LeaderID = newLeader
	if !previous.IsZero() && previous != newLeader {
		c.CoLeaderIDs = AppendUniqueID(c.CoLeaderIDs, previous)
	}
}

// AllMemberIDs lists the leader, then co-leaders, then members.
func (c *Clan) AllMemberIDs() []ID {
	out := make([]ID, 0, c.MemberCount())
	if !c.LeaderID.IsZero() {
		out = append(out, c.LeaderID)
	}
	for _, id := range c.CoLeaderIDs {
		out = AppendUniqueID(out, id)
	}
	for _, id := range c.MemberIDs {
		out = AppendUniqueID(out, id)
	}
	return out
}

func (c *Clan) HasPendingDisband() bool {
	return !c.PendingDisbandRequestedBy.IsZero()
}

func (c *Clan) ClearPendingDisband() {
	c.PendingDisbandRequestedBy = ""
	c.PendingDisbandRequestedAt = nil
}

// Normalize replaces nil role sets with empty ones so they persist as [].
func (c *Clan) Normalize() {
	if c.CoLeaderIDs == nil {
		c.CoLeaderIDs = []ID{}
	}
	if c.MemberIDs == nil {
		c.MemberIDs = []ID{}
	}
}

// Label renders "Name [TAG]" for logs and notifications.
func (c *Clan) Label() string {
	if c.Tag == "" {
		return c.Name
	}
	return c.Name + " [" + c.Tag + "]"
}
