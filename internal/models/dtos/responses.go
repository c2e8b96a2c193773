package dtos

import (
	"infinite-experiment/clanhall/internal/models"
)

type InviteResp struct {
	Clan      *models.Clan `json:"clan"`
	InviteeID models.ID    `json:"invitee_id"`
	Delivered bool         `json:"delivered"`
}

type DisbandResp struct {
	ClanID     models.ID `json:"clan_id"`
	ClanName   string    `json:"clan_name"`
	ClanTag    string    `json:"clan_tag"`
	UsersReset int       `json:"users_reset"`
}

type ClanListResp struct {
	Clans []models.Clan `json:"clans"`
	Count int           `json:"count"`
}
