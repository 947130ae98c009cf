package meta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadata(t *testing.T) {
	ctx := Begin(context.Background())
	assert.Equal(t, ctx, Begin(ctx))

	WithValue(ctx, UsernameKey, "alice")
	child, cancel := context.WithCancel(ctx)
	defer cancel()
	WithValue(child, PostIDKey, "p1")

	assert.Equal(t, "alice", Value(child, UsernameKey))
	assert.Equal(t, "p1", Value(ctx, PostIDKey))

	all := All(ctx)
	all[OutcomeKey] = "correct"
	assert.Nil(t, Value(ctx, OutcomeKey))
	assert.Len(t, All(ctx), 2)
}

func TestMetadata_WithoutBegin(t *testing.T) {
	ctx := context.Background()
	WithValue(ctx, UsernameKey, "alice")
	assert.Nil(t, Value(ctx, UsernameKey))
	assert.Nil(t, All(ctx))
}
