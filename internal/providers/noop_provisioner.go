package providers

import (
	"context"
	"fmt"

	"infinite-experiment/clanhall/internal/models"
)

// NoopProvisioner is used when no platform webhook is configured. Clan records
// still work; role and channel handles are synthesized so lookups stay stable.
type NoopProvisioner struct{}

func (NoopProvisioner) SetupGuild(ctx context.Context, guildID models.ID) (*models.GuildAssets, error) {
	local := func(kind string) models.ID {
		return models.ID(fmt.Sprintf("local-%s-%s", kind, guildID))
	}
	return &models.GuildAssets{
		ClanChannelsCategoryID: local("clan-category"),
		ClanLogsCategoryID:     local("clan-logs"),
		LeaderRoleID:           local("leader-role"),
		CoLeaderRoleID:         local("co-leader-role"),
	}, nil
}

func (NoopProvisioner) CreateClanAssets(ctx context.Context, req models.ClanAssetRequest) (*models.ClanAssets, error) {
	return &models.ClanAssets{
		RoleID: models.ID(fmt.Sprintf("local-role-%s-%s", req.GuildID, req.ClanTag)),
	}, nil
}

func (NoopProvisioner) DeleteClanAssets(ctx context.Context, guildID models.ID, assets models.ClanAssets) error {
	return nil
}

func (NoopProvisioner) GrantRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error {
	return nil
}

func (NoopProvisioner) RevokeRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error {
	return nil
}

func (NoopProvisioner) SetClanColor(ctx context.Context, guildID, roleID models.ID, color string) error {
	return nil
}

func (NoopProvisioner) RenameClanChannel(ctx context.Context, guildID, channelID models.ID, name string) error {
	return nil
}

func (NoopProvisioner) SetClanVisibility(ctx context.Context, guildID, channelID models.ID, visible bool) error {
	return nil
}
