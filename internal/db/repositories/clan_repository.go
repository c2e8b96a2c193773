package repositories

import (
	"context"
	"fmt"
	"strings"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/models"
)

type ClanRepository struct {
	store *docstore.Store
}

func NewClanRepository(store *docstore.Store) *ClanRepository {
	return &ClanRepository{store: store}
}

func (r *ClanRepository) findOne(ctx context.Context, q docstore.Query) (*models.Clan, error) {
	doc, err := r.store.FindOne(ctx, constants.CollectionClans, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clan: %w", err)
	}
	return decodeOne[models.Clan](doc)
}

// FindByID returns nil when the clan does not exist.
func (r *ClanRepository) FindByID(ctx context.Context, id models.ID) (*models.Clan, error) {
	if id.IsZero() {
		return nil, nil
	}
	return r.findOne(ctx, docstore.Eq(docstore.FieldID, id))
}

// FindInGuild returns the clan only if it belongs to guildID.
func (r *ClanRepository) FindInGuild(ctx context.Context, guildID, id models.ID) (*models.Clan, error) {
	if id.IsZero() {
		return nil, nil
	}
	return r.findOne(ctx, docstore.And(
		docstore.Eq("guildId", guildID),
		docstore.Eq(docstore.FieldID, id),
	))
}

func (r *ClanRepository) FindByName(ctx context.Context, guildID models.ID, name string) (*models.Clan, error) {
	return r.findOne(ctx, docstore.And(
		docstore.Eq("guildId", guildID),
		docstore.Eq("name", name),
	))
}

func (r *ClanRepository) FindByTag(ctx context.Context, guildID models.ID, tag string) (*models.Clan, error) {
	return r.findOne(ctx, docstore.And(
		docstore.Eq("guildId", guildID),
		docstore.Eq("tag", strings.ToUpper(tag)),
	))
}

// FindByNameOrTag matches the exact name, or the tag case-insensitively.
func (r *ClanRepository) FindByNameOrTag(ctx context.Context, guildID models.ID, value string) (*models.Clan, error) {
	return r.findOne(ctx, docstore.And(
		docstore.Eq("guildId", guildID),
		docstore.Or(
			docstore.Eq("name", value),
			docstore.Eq("tag", strings.ToUpper(value)),
		),
	))
}

func (r *ClanRepository) TagExists(ctx context.Context, guildID models.ID, tag string) (bool, error) {
	n, err := r.store.Count(ctx, constants.CollectionClans, docstore.And(
		docstore.Eq("guildId", guildID),
		docstore.Eq("tag", tag),
	))
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return n > 0, nil
}

func (r *ClanRepository) ListByGuild(ctx context.Context, guildID models.ID) ([]models.Clan, error) {
	docs, err := r.store.Find(ctx, constants.CollectionClans, docstore.Eq("guildId", guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to list clans: %w", err)
	}
	return decodeAll[models.Clan](docs)
}

func (r *ClanRepository) ListAll(ctx context.Context) ([]models.Clan, error) {
	docs, err := r.store.Find(ctx, constants.CollectionClans, docstore.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list clans: %w", err)
	}
	return decodeAll[models.Clan](docs)
}

// Create inserts a new clan and returns it with id and timestamps.
func (r *ClanRepository) Create(ctx context.Context, clan *models.Clan) (*models.Clan, error) {
	clan.Normalize()
	fields, err := creationFields(clan)
	if err != nil {
		return nil, err
	}
	doc, err := r.store.Create(ctx, constants.CollectionClans, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create clan %s: %w", clan.Name, err)
	}
	return decodeOne[models.Clan](doc)
}

// Save replaces the stored clan and refreshes clan in place.
func (r *ClanRepository) Save(ctx context.Context, clan *models.Clan) error {
	clan.Normalize()
	doc, err := docstore.FromStruct(clan)
	if err != nil {
		return err
	}
	saved, err := r.store.Save(ctx, constants.CollectionClans, doc)
	if err != nil {
		return fmt.Errorf("failed to save clan %s: %w", clan.ID, err)
	}
	return saved.Decode(clan)
}

func (r *ClanRepository) Delete(ctx context.Context, id models.ID) (bool, error) {
	deleted, err := r.store.DeleteOne(ctx, constants.CollectionClans, docstore.Eq(docstore.FieldID, id))
	if err != nil {
		return false, fmt.Errorf("failed to delete clan %s: %w", id, err)
	}
	return deleted, nil
}
