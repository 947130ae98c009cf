package meta

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Keys recorded by the request pipeline and printed with the request log.
const (
	RequestIDKey = "request_id"
	UsernameKey  = "username"
	PostIDKey    = "post_id"
	OutcomeKey   = "outcome"
)

// metadata is a per-request bag of values shared between middleware and handlers.
type metadata struct {
	carrier map[string]interface{}
	mu      sync.RWMutex
}

func (c *metadata) Value(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.carrier[key]
}

func (c *metadata) WithValue(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carrier[key] = value
}

func (c *metadata) snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make(map[string]interface{}, len(c.carrier))
	for k, v := range c.carrier {
		cp[k] = v
	}
	return cp
}

type contextKey struct{}

var metaContextKey = contextKey{}

// Begin attaches a metadata bag to parent, or returns parent untouched when it already
// carries one. Call it as close to the request root as possible.
func Begin(parent context.Context) context.Context {
	value := parent.Value(metaContextKey)
	if value == nil {
		meta := &metadata{
			carrier: make(map[string]interface{}),
		}
		return context.WithValue(parent, metaContextKey, meta)
	}
	return parent
}

func metadataFrom(parent context.Context) *metadata {
	value := parent.Value(metaContextKey)
	if value == nil {
		logrus.Debug("meta not found from context, should call meta.Begin() first?")
		return nil
	}
	return value.(*metadata)
}

// WithValue stores key/val in the metadata bag of parent.
func WithValue(parent context.Context, key string, val interface{}) {
	meta := metadataFrom(parent)
	if meta == nil {
		return
	}
	meta.WithValue(key, val)
}

// Value reads key from the metadata bag of parent.
func Value(parent context.Context, key string) interface{} {
	meta := metadataFrom(parent)
	if meta == nil {
		return nil
	}
	return meta.Value(key)
}

// All returns a copy of every value recorded on parent.
func All(parent context.Context) map[string]interface{} {
	meta := metadataFrom(parent)
	if meta == nil {
		return nil
	}
	return meta.snapshot()
}
