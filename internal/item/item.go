package item

import (
	"context"
	"strings"
	"time"

	"olympus.io/loot-of-olympus/pkg/errors"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidItem  = errors.New("invalid item")
)

// Item is one published game post. It is written once at provisioning time and only
// read afterwards.
type Item struct {
	PostID    string    `json:"post_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Name      string    `json:"name"`
	SetName   string    `json:"set_name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (in *Item) Validate() error {
	switch {
	case in == nil:
		return errors.WithMessage(ErrInvalidItem, "nil item")
	case in.PostID == "":
		return errors.WithMessage(ErrInvalidItem, "post id not present")
	case strings.TrimSpace(in.Question) == "":
		return errors.WithMessage(ErrInvalidItem, "question not present")
	case strings.TrimSpace(in.Answer) == "":
		return errors.WithMessage(ErrInvalidItem, "answer not present")
	case in.Name == "":
		return errors.WithMessage(ErrInvalidItem, "collectible name not present")
	}
	return nil
}

// Repository stores published items.
type Repository interface {
	// Get returns ErrItemNotFound for unknown posts.
	Get(ctx context.Context, postID string) (*Item, error)
	// Save is insert-only, saving an existing post id keeps the stored item.
	Save(ctx context.Context, item *Item) error
}
