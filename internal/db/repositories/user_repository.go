package repositories

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/models"
)

type UserRepository struct {
	store *docstore.Store
	group singleflight.Group
}

func NewUserRepository(store *docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func userQuery(guildID, userID models.ID) docstore.Query {
	return docstore.And(
		docstore.Eq("guildId", guildID),
		docstore.Eq("userId", userID),
	)
}

// FindByUserID returns nil when the user has never been referenced.
func (r *UserRepository) FindByUserID(ctx context.Context, guildID, userID models.ID) (*models.User, error) {
	doc, err := r.store.FindOne(ctx, constants.CollectionUsers, userQuery(guildID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	return decodeOne[models.User](doc)
}

// GetOrCreate returns the user's record, creating an unaffiliated one on
// first reference. Concurrent callers for the same key share one creation.
func (r *UserRepository) GetOrCreate(ctx context.Context, guildID, userID models.ID) (*models.User, error) {
	if user, err := r.FindByUserID(ctx, guildID, userID); err != nil || user != nil {
		return user, err
	}

	key := guildID.String() + ":" + userID.String()
	v, err, _ := r.group.Do(key, func() (any, error) {
		if user, err := r.FindByUserID(ctx, guildID, userID); err != nil || user != nil {
			return user, err
		}
		doc, err := r.store.Create(ctx, constants.CollectionUsers, docstore.Document{
			"guildId": guildID,
			"userId":  userID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
		}
		return decodeOne[models.User](doc)
	})
	if err != nil {
		return nil, err
	}
	user := *v.(*models.User)
	return &user, nil
}

// Save replaces the stored user and refreshes user in place.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	doc, err := docstore.FromStruct(user)
	if err != nil {
		return err
	}
	saved, err := r.store.Save(ctx, constants.CollectionUsers, doc)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return saved.Decode(user)
}

// ResetMany returns every listed user to Unaffiliated in a single write.
func (r *UserRepository) ResetMany(ctx context.Context, guildID models.ID, userIDs []models.ID) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	n, err := r.store.UpdateMany(ctx, constants.CollectionUsers,
		docstore.And(
			docstore.Eq("guildId", guildID),
			docstore.In("userId", userIDs),
		),
		models.UnaffiliatedFields(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset %d users: %w", len(userIDs), err)
	}
	return n, nil
}

// ClearInvitesTo drops every pending invite pointing at clanID.
func (r *UserRepository) ClearInvitesTo(ctx context.Context, guildID, clanID models.ID) (int, error) {
	n, err := r.store.UpdateMany(ctx, constants.CollectionUsers,
		docstore.And(
			docstore.Eq("guildId", guildID),
			docstore.Eq("pendingInviteClanId", clanID),
		),
		docstore.Document{"pendingInviteClanId": nil, "invitedByUserId": nil},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear invites to %s: %w", clanID, err)
	}
	return n, nil
}

func (r *UserRepository) ListByClan(ctx context.Context, guildID, clanID models.ID) ([]models.User, error) {
	docs, err := r.store.Find(ctx, constants.CollectionUsers, docstore.And(
		docstore.Eq("guildId", guildID),
		docstore.Eq("clanId", clanID),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list users of clan %s: %w", clanID, err)
	}
	return decodeAll[models.User](docs)
}

func (r *UserRepository) ListByGuild(ctx context.Context, guildID models.ID) ([]models.User, error) {
	docs, err := r.store.Find(ctx, constants.CollectionUsers, docstore.Eq("guildId", guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to list users of guild %s: %w", guildID, err)
	}
	return decodeAll[models.User](docs)
}

func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	docs, err := r.store.Find(ctx, constants.CollectionUsers, docstore.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return decodeAll[models.User](docs)
}
