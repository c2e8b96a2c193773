package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// collectionRow holds one serialised collection.
type collectionRow struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Body      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (collectionRow) TableName() string { return "docstore_collections" }

// SQLBackend keeps every collection in one row of docstore_collections.
type SQLBackend struct {
	db *gorm.DB
}

var _ Backend = (*SQLBackend)(nil)

// NewSQLBackend creates the docstore_collections table if needed.
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		return nil, fmt.Errorf("failed to prepare docstore_collections: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Read(ctx context.Context, collection string) ([]byte, error) {
	var row collectionRow
	err := b.db.WithContext(ctx).Where("name = ?", collection).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection %s: %w", collection, err)
	}
	return []byte(row.Body), nil
}

func (b *SQLBackend) Write(ctx context.Context, collection string, data []byte) error {
	row := collectionRow{
		Name:      collection,
		Body:      string(data),
		UpdatedAt: time.Now().UTC(),
	}
	err := b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert collection %s: %w", collection, err)
	}
	return nil
}

func (b *SQLBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
