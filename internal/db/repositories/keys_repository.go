package repositories

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/models"
)

// ErrKeyNotFound is returned when an API key is unknown.
var ErrKeyNotFound = errors.New("api key not found")

const apiKeyPrefix = "ch_"

type KeysRepo struct {
	store *docstore.Store
}

func NewApiKeysRepo(store *docstore.Store) *KeysRepo {
	return &KeysRepo{store: store}
}

func (r *KeysRepo) GetStatus(ctx context.Context, key string) (*models.ApiKey, error) {
	doc, err := r.store.FindOne(ctx, constants.CollectionAPIKeys, docstore.Eq("key", key))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch api key: %w", err)
	}
	if doc == nil {
		return nil, ErrKeyNotFound
	}
	return decodeOne[models.ApiKey](doc)
}

// Create issues a new active key.
func (r *KeysRepo) Create(ctx context.Context, label string) (*models.ApiKey, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}
	doc, err := r.store.Create(ctx, constants.CollectionAPIKeys, docstore.Document{
		"key":    apiKeyPrefix + hex.EncodeToString(buf),
		"label":  label,
		"active": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}
	return decodeOne[models.ApiKey](doc)
}

// Revoke deactivates key and reports whether it existed.
func (r *KeysRepo) Revoke(ctx context.Context, key string) (bool, error) {
	n, err := r.store.UpdateMany(ctx, constants.CollectionAPIKeys, docstore.Eq("key", key), docstore.Document{"active": false})
	if err != nil {
		return false, fmt.Errorf("failed to revoke api key: %w", err)
	}
	return n > 0, nil
}

func (r *KeysRepo) List(ctx context.Context) ([]models.ApiKey, error) {
	docs, err := r.store.Find(ctx, constants.CollectionAPIKeys, docstore.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return decodeAll[models.ApiKey](docs)
}
