package models

import (
	"time"

	"infinite-experiment/clanhall/internal/constants"
)

// GuildConfig holds per-guild settings and the shared asset handles created
// during setup.
type GuildConfig struct {
	ID                     ID  `json:"id"`
	GuildID                ID  `json:"guildId"`
	ClanMemberLimit        int `json:"clanMemberLimit"`
	LogChannelID           ID  `json:"logChannelId"`
	ClanChannelsCategoryID ID  `json:"clanChannelsCategoryId"`
	ClanLogsCategoryID     ID  `json:"clanLogsCategoryId"`
	LeaderRoleID           ID  `json:"leaderRoleId"`
	CoLeaderRoleID         ID  `json:"coLeaderRoleId"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func GuildConfigDefaults() map[string]any {
	return map[string]any{
		"clanMemberLimit":        constants.DefaultClanMemberLimit,
		"logChannelId":           nil,
		"clanChannelsCategoryId": nil,
		"clanLogsCategoryId":     nil,
		"leaderRoleId":           nil,
		"coLeaderRoleId":         nil,
	}
}

// MemberLimit returns the configured cap, falling back to the default for
// records written before the field existed.
func (g *GuildConfig) MemberLimit() int {
	if g == nil || g.ClanMemberLimit <= 0 {
		return constants.DefaultClanMemberLimit
	}
	return g.ClanMemberLimit
}

// IsSetUp reports whether clan creation has what it needs.
func (g *GuildConfig) IsSetUp() bool {
	return g != nil &&
		!g.ClanChannelsCategoryID.IsZero() &&
		!g.LeaderRoleID.IsZero() &&
		!g.CoLeaderRoleID.IsZero()
}

// HasApprovalSink reports whether disband requests can be routed to admins.
func (g *GuildConfig) HasApprovalSink() bool {
	return g != nil && !g.LogChannelID.IsZero()
}
