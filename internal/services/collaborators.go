package services

import (
	"context"

	"infinite-experiment/clanhall/internal/models"
)

// AssetProvisioner creates and edits the platform roles and channels that
// mirror a clan. The service stores the returned handles without reading them.
type AssetProvisioner interface {
	SetupGuild(ctx context.Context, guildID models.ID) (*models.GuildAssets, error)
	CreateClanAssets(ctx context.Context, req models.ClanAssetRequest) (*models.ClanAssets, error)
	DeleteClanAssets(ctx context.Context, guildID models.ID, assets models.ClanAssets) error
	GrantRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error
	RevokeRoles(ctx context.Context, guildID, userID models.ID, roleIDs ...models.ID) error
	SetClanColor(ctx context.Context, guildID, roleID models.ID, color string) error
	RenameClanChannel(ctx context.Context, guildID, channelID models.ID, name string) error
	SetClanVisibility(ctx context.Context, guildID, channelID models.ID, visible bool) error
}

// Notifier delivers approval workflow events to the bot.
type Notifier interface {
	InviteIssued(ctx context.Context, event models.InviteEvent) error
	DisbandRequested(ctx context.Context, event models.DisbandEvent) error
	DisbandResolved(ctx context.Context, event models.DisbandEvent) error
}

// AuditLog records state changes. Implementations must not block callers on
// delivery failures.
type AuditLog interface {
	Record(ctx context.Context, entry models.AuditEntry)
}
