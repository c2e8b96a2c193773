package models

import "time"

// InviteEvent is sent to the invitee through the notifier.
type InviteEvent struct {
	GuildID      ID     `json:"guildId"`
	ClanID       ID     `json:"clanId"`
	ClanName     string `json:"clanName"`
	ClanTag      string `json:"clanTag"`
	InviterID    ID     `json:"inviterId"`
	InviteeID    ID     `json:"inviteeId"`
	AcceptToken  string `json:"acceptToken"`
	DeclineToken string `json:"declineToken"`
}

// DisbandEvent covers both the approval request and its resolution.
type DisbandEvent struct {
	GuildID      ID        `json:"guildId"`
	ClanID       ID        `json:"clanId"`
	ClanName     string    `json:"clanName"`
	ClanTag      string    `json:"clanTag"`
	LogChannelID ID        `json:"logChannelId"`
	RequestedBy  ID        `json:"requestedBy"`
	RequestedAt  time.Time `json:"requestedAt"`
	ApproveToken string    `json:"approveToken,omitempty"`
	DenyToken    string    `json:"denyToken,omitempty"`
	ResolvedBy   ID        `json:"resolvedBy,omitempty"`
	Approved     bool      `json:"approved"`
}

// AuditEntry is one line in the guild's audit trail.
type AuditEntry struct {
	GuildID  ID        `json:"guildId"`
	Action   string    `json:"action"`
	ActorID  ID        `json:"actorId"`
	TargetID ID        `json:"targetId,omitempty"`
	ClanID   ID        `json:"clanId,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}
