package starter

import (
	"context"

	"olympus.io/loot-of-olympus/internal/config"
)

type Startable interface {
	Start(ctx context.Context)
}

type Configurable interface {
	Apply(*config.Configuration)
}

type Stopable interface {
	Stop()
}

// Start applies conf to every Configurable element before starting it.
func Start(ctx context.Context, conf *config.Configuration, elems ...Startable) {
	for _, ele := range elems {
		if configurable, ok := ele.(Configurable); ok {
			configurable.Apply(conf)
		}
		ele.Start(ctx)
	}
}

// Stop stops elements in reverse start order.
func Stop(elems ...Startable) {
	for i := len(elems) - 1; i >= 0; i-- {
		if stopable, ok := elems[i].(Stopable); ok {
			stopable.Stop()
		}
	}
}
