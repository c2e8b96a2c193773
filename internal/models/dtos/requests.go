package dtos

type CreateClanReq struct {
	Name string `json:"name" validate:"required"`
}

// TargetUserReq names the user an invite, kick, promote, demote or transfer
// acts on.
type TargetUserReq struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

// InviteReplyReq optionally pins the clan the caller believes they were
// invited to. An empty ClanID answers whatever invite is pending.
type InviteReplyReq struct {
	ClanID string `json:"clan_id" validate:"omitempty,max=64"`
}

type ClanColorReq struct {
	Color string `json:"color" validate:"required,max=16"`
}

type ResolveApprovalReq struct {
	Token string `json:"token" validate:"required"`
}

type MemberLimitReq struct {
	Limit int `json:"limit" validate:"required"`
}

type BountyReq struct {
	Bounty *int `json:"bounty" validate:"required"`
}

type VisibilityReq struct {
	Visible *bool `json:"visible" validate:"required"`
}

// SetupReq carries existing channel and role IDs to reuse instead of letting
// the bot create new ones. Every field is optional.
type SetupReq struct {
	LogChannelID           string `json:"log_channel_id" validate:"omitempty,max=64"`
	ClanChannelsCategoryID string `json:"clan_channels_category_id" validate:"omitempty,max=64"`
	ClanLogsCategoryID     string `json:"clan_logs_category_id" validate:"omitempty,max=64"`
	LeaderRoleID           string `json:"leader_role_id" validate:"omitempty,max=64"`
	CoLeaderRoleID         string `json:"co_leader_role_id" validate:"omitempty,max=64"`
}
