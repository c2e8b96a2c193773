package repositories

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/models"
)

type GuildConfigRepository struct {
	store *docstore.Store
	group singleflight.Group
}

func NewGuildConfigRepository(store *docstore.Store) *GuildConfigRepository {
	return &GuildConfigRepository{store: store}
}

// Get returns nil when the guild has no config yet.
func (r *GuildConfigRepository) Get(ctx context.Context, guildID models.ID) (*models.GuildConfig, error) {
	doc, err := r.store.FindOne(ctx, constants.CollectionGuildConfigs, docstore.Eq("guildId", guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild config %s: %w", guildID, err)
	}
	return decodeOne[models.GuildConfig](doc)
}

// GetOrCreate returns the guild's config, creating the default one lazily.
func (r *GuildConfigRepository) GetOrCreate(ctx context.Context, guildID models.ID) (*models.GuildConfig, error) {
	if cfg, err := r.Get(ctx, guildID); err != nil || cfg != nil {
		return cfg, err
	}

	v, err, _ := r.group.Do(guildID.String(), func() (any, error) {
		if cfg, err := r.Get(ctx, guildID); err != nil || cfg != nil {
			return cfg, err
		}
		doc, err := r.store.Create(ctx, constants.CollectionGuildConfigs, docstore.Document{"guildId": guildID})
		if err != nil {
			return nil, fmt.Errorf("failed to create guild config %s: %w", guildID, err)
		}
		return decodeOne[models.GuildConfig](doc)
	})
	if err != nil {
		return nil, err
	}
	cfg := *v.(*models.GuildConfig)
	return &cfg, nil
}

func (r *GuildConfigRepository) Save(ctx context.Context, cfg *models.GuildConfig) error {
	doc, err := docstore.FromStruct(cfg)
	if err != nil {
		return err
	}
	saved, err := r.store.Save(ctx, constants.CollectionGuildConfigs, doc)
	if err != nil {
		return fmt.Errorf("failed to save guild config %s: %w", cfg.GuildID, err)
	}
	return saved.Decode(cfg)
}

func (r *GuildConfigRepository) ListAll(ctx context.Context) ([]models.GuildConfig, error) {
	docs, err := r.store.Find(ctx, constants.CollectionGuildConfigs, docstore.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list guild configs: %w", err)
	}
	return decodeAll[models.GuildConfig](docs)
}
