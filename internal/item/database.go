package item

import (
	"context"

	"gorm.io/gorm"
	"olympus.io/loot-of-olympus/internal/database"
)

type databaseRepository struct {
	db *gorm.DB
}

// NewDatabaseRepository keeps items in the postgres post_items table.
func NewDatabaseRepository(db *gorm.DB) Repository {
	return &databaseRepository{db: db}
}

func (r *databaseRepository) Get(ctx context.Context, postID string) (*Item, error) {
	entity, err := database.PostItem{}.SelectOne(ctx, r.db, postID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, ErrItemNotFound
	}
	return &Item{
		PostID:    entity.PostID,
		Question:  entity.Question,
		Answer:    entity.Answer,
		Name:      entity.Collectible,
		SetName:   entity.SetName,
		ImageURL:  entity.ImageURL,
		CreatedAt: entity.CreatedAt,
	}, nil
}

func (r *databaseRepository) Save(ctx context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return database.PostItem{
		PostID:      item.PostID,
		Question:    item.Question,
		Answer:      item.Answer,
		Collectible: item.Name,
		SetName:     item.SetName,
		ImageURL:    item.ImageURL,
		CreatedAt:   item.CreatedAt,
	}.Save(ctx, r.db)
}
