package item

import (
	"context"
	"sync"
)

type memoryRepository struct {
	rwLock sync.RWMutex
	items  map[string]Item
}

func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string]Item)}
}

func (r *memoryRepository) Get(_ context.Context, postID string) (*Item, error) {
	r.rwLock.RLock()
	defer r.rwLock.RUnlock()
	it, ok := r.items[postID]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

func (r *memoryRepository) Save(_ context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	r.rwLock.Lock()
	defer r.rwLock.Unlock()
	if _, ok := r.items[item.PostID]; ok {
		return nil
	}
	r.items[item.PostID] = *item
	return nil
}
