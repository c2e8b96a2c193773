package repositories

import (
	"fmt"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/docstore"
	"infinite-experiment/clanhall/internal/models"
)

// decodeOne converts a stored document into T. A nil document yields nil.
func decodeOne[T any](doc docstore.Document) (*T, error) {
	if doc == nil {
		return nil, nil
	}
	var out T
	if err := doc.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.Decode(&item); err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID(), err)
		}
		out = append(out, item)
	}
	return out, nil
}

// creationFields drops the store managed fields before Create.
func creationFields(v any) (docstore.Document, error) {
	doc, err := docstore.FromStruct(v)
	if err != nil {
		return nil, err
	}
	delete(doc, docstore.FieldID)
	delete(doc, docstore.FieldCreatedAt)
	delete(doc, docstore.FieldUpdatedAt)
	return doc, nil
}

// RegisterCollections declares every collection's defaults with the store.
func RegisterCollections(store *docstore.Store) error {
	for name, defaults := range collectionDefaults() {
		if err := store.Declare(name, defaults); err != nil {
			return fmt.Errorf("failed to declare %s: %w", name, err)
		}
	}
	return nil
}

func collectionDefaults() map[string]docstore.Document {
	return map[string]docstore.Document{
		constants.CollectionClans:        models.ClanDefaults(),
		constants.CollectionUsers:        models.UserDefaults(),
		constants.CollectionGuildConfigs: models.GuildConfigDefaults(),
		constants.CollectionAPIKeys:      models.ApiKeyDefaults(),
	}
}
