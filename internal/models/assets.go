package models

// GuildAssets are the shared channels and roles created when a guild is set up.
type GuildAssets struct {
	LogChannelID           ID `json:"logChannelId"`
	ClanChannelsCategoryID ID `json:"clanChannelsCategoryId"`
	ClanLogsCategoryID     ID `json:"clanLogsCategoryId"`
	LeaderRoleID           ID `json:"leaderRoleId"`
	CoLeaderRoleID         ID `json:"coLeaderRoleId"`
}

// ClanAssetRequest describes the platform assets a new clan needs.
type ClanAssetRequest struct {
	GuildID      ID     `json:"guildId"`
	ClanName     string `json:"clanName"`
	ClanTag      string `json:"clanTag"`
	LeaderUserID ID     `json:"leaderUserId"`
	ParentID     ID     `json:"parentCategoryId"`
	ChannelName  string `json:"channelName"`
}

// ClanAssets are the opaque handles returned by the provisioner. The clan
// stores them verbatim.
type ClanAssets struct {
	RoleID         ID `json:"roleId"`
	LeaderRoleID   ID `json:"leaderRoleId"`
	CoLeaderRoleID ID `json:"coLeaderRoleId"`
	CategoryID     ID `json:"categoryId"`
	TextChannelID  ID `json:"textChannelId"`
	VoiceChannelID ID `json:"voiceChannelId"`
}

// Assets returns the handles currently stored on the clan.
func (c *Clan) Assets() ClanAssets {
	return ClanAssets{
		RoleID:         c.RoleID,
		LeaderRoleID:   c.LeaderRoleID,
		CoLeaderRoleID: c.CoLeaderRoleID,
		CategoryID:     c.CategoryID,
		TextChannelID:  c.TextChannelID,
		VoiceChannelID: c.VoiceChannelID,
	}
}

// ApplyAssets copies provisioner handles onto the clan.
func (c *Clan) ApplyAssets(a ClanAssets) {
	c.RoleID = a.RoleID
	c.LeaderRoleID = a.LeaderRoleID
	c.CoLeaderRoleID = a.CoLeaderRoleID
	c.CategoryID = a.CategoryID
	c.TextChannelID = a.TextChannelID
	c.VoiceChannelID = a.VoiceChannelID
}

// Apply copies setup results onto the guild config. Empty handles leave the
// existing value in place.
func (g *GuildConfig) Apply(a GuildAssets) {
	set := func(dst *ID, v ID) {
		if !v.IsZero() {
			*dst = v
		}
	}
	set(&g.LogChannelID, a.LogChannelID)
	set(&g.ClanChannelsCategoryID, a.ClanChannelsCategoryID)
	set(&g.ClanLogsCategoryID, a.ClanLogsCategoryID)
	set(&g.LeaderRoleID, a.LeaderRoleID)
	set(&g.CoLeaderRoleID, a.CoLeaderRoleID)
}
