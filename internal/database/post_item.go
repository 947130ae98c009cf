package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"olympus.io/loot-of-olympus/pkg/errors"
)

// PostItem is the immutable record behind one published game post.
type PostItem struct {
	ID          int64     `gorm:"primaryKey"`
	PostID      string    `gorm:"type:varchar(100);uniqueIndex"`
	Question    string    `gorm:"type:varchar(500)"`
	Answer      string    `gorm:"type:varchar(200)"`
	Collectible string    `gorm:"type:varchar(200);index"`
	SetName     string    `gorm:"type:varchar(200)"`
	ImageURL    string    `gorm:"type:varchar(500)"`
	CreatedAt   time.Time `gorm:"type:timestamp"`
}

// Save inserts the item once; a second save of the same post id is ignored so a
// published item is never rewritten.
func (in PostItem) Save(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}},
		DoNothing: true,
	}).Create(&in).Error
	return errors.WrapAndReport(err, "save post item")
}

// SelectOne returns nil, nil when the post is unknown.
func (PostItem) SelectOne(ctx context.Context, db *gorm.DB, postID string) (*PostItem, error) {
	var entity PostItem
	err := db.WithContext(ctx).Where("post_id = ?", postID).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapAndReport(err, "query post item")
	}
	return &entity, nil
}
