package item

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"olympus.io/loot-of-olympus/pkg/errors"
)

func sampleItem(postID string) *Item {
	return &Item{
		PostID:    postID,
		Question:  "What three-pronged spear does the god of the sea carry?",
		Answer:    "trident",
		Name:      "Trident of Poseidon",
		SetName:   "Gifts of the Olympians",
		ImageURL:  "https://example.com/trident.png",
		CreatedAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Item)
		valid  bool
	}{
		{name: "complete", mutate: func(*Item) {}, valid: true},
		{name: "missing post id", mutate: func(in *Item) { in.PostID = "" }},
		{name: "blank question", mutate: func(in *Item) { in.Question = "  " }},
		{name: "blank answer", mutate: func(in *Item) { in.Answer = " " }},
		{name: "missing collectible", mutate: func(in *Item) { in.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := sampleItem("p1")
			tt.mutate(it)
			err := it.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidItem))
		})
	}
	var nilItem *Item
	assert.True(t, errors.Is(nilItem.Validate(), ErrInvalidItem))
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, 8, c.Len())
	require.Len(t, c.Sets(), 2)
	for _, s := range c.Sets() {
		for _, e := range s.Entries {
			assert.Equal(t, s.Name, e.SetName)
		}
	}
	picked := c.Pick(rand.New(rand.NewSource(1)))
	assert.Contains(t, c.Entries(), picked)
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":          "sets: []",
		"nameless set":   "sets:\n  - items:\n      - {name: a, question: q, answer: a}",
		"missing answer": "sets:\n  - name: s\n    items:\n      - {name: a, question: q}",
		"duplicate": "sets:\n  - name: s\n    items:\n      - {name: a, question: q, answer: x}\n" +
			"      - {name: a, question: q2, answer: y}",
		"not yaml": "sets: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	doc := "sets:\n  - name: Small\n    items:\n      - {name: Lyre, image_url: 'https://x/lyre.png', question: Whose lyre?, answer: apollo}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Small", c.Entries()[0].SetName)
	assert.Equal(t, "https://x/lyre.png", c.Entries()[0].ImageURL)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Get(ctx, "p1")
	assert.True(t, errors.Is(err, ErrItemNotFound))

	require.NoError(t, repo.Save(ctx, sampleItem("p1")))
	second := sampleItem("p1")
	second.Answer = "something else"
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "trident", got.Answer)

	assert.Error(t, repo.Save(ctx, &Item{PostID: "p2"}))
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	backing := NewMemoryRepository()
	require.NoError(t, backing.Save(ctx, sampleItem("p1")))

	repo := NewCachedRepository(client, backing, time.Hour)
	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Trident of Poseidon", got.Name)
	assert.True(t, mr.Exists("item:p1:info"))
	assert.Equal(t, time.Hour, mr.TTL("item:p1:info"))

	cached, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, got, cached)

	_, err = repo.Get(ctx, "unknown")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestCachedRepository_SaveThroughKeepsFirst(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	repo := NewCachedRepository(client, NewMemoryRepository(), time.Hour)

	require.NoError(t, repo.Save(ctx, sampleItem("p1")))
	_, err := repo.Get(ctx, "p1")
	require.NoError(t, err)

	changed := sampleItem("p1")
	changed.Answer = "fork"
	require.NoError(t, repo.Save(ctx, changed))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "trident", got.Answer)
}

func TestCachedRepository_RedisOnly(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	repo := NewCachedRepository(client, nil, time.Hour)

	require.NoError(t, repo.Save(ctx, sampleItem("p1")))
	changed := sampleItem("p1")
	changed.Answer = "fork"
	require.NoError(t, repo.Save(ctx, changed))
	assert.Zero(t, mr.TTL("item:p1:info"))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "trident", got.Answer)

	_, err = repo.Get(ctx, "p2")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}
