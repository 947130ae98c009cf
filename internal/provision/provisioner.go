// Package provision publishes new item posts from the catalog, on demand and on a schedule.
package provision

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/atomic"
	"olympus.io/loot-of-olympus/internal/config"
	"olympus.io/loot-of-olympus/internal/databus"
	"olympus.io/loot-of-olympus/internal/item"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

var ErrSubredditRequired = errors.New("subreddit name is required")

type Option func(*Provisioner)

// WithImageResolver turns catalog image keys into urls.
func WithImageResolver(resolve func(key string) string) Option {
	return func(p *Provisioner) {
		p.imageURL = resolve
	}
}

func WithRand(r *rand.Rand) Option {
	return func(p *Provisioner) {
		p.rand = r
	}
}

func WithSubreddit(name string) Option {
	return func(p *Provisioner) {
		p.subreddit = name
	}
}

type Provisioner struct {
	catalog  *item.Catalog
	items    item.Repository
	bus      databus.Publisher
	node     *snowflake.Node
	imageURL func(key string) string

	subreddit string
	interval  time.Duration

	randLock sync.Mutex
	rand     *rand.Rand
	now      func() time.Time

	published atomic.Int64
	scheduler gocron.Scheduler
}

func NewProvisioner(catalog *item.Catalog, items item.Repository, bus databus.Publisher,
	node *snowflake.Node, opts ...Option) *Provisioner {
	p := &Provisioner{
		catalog: catalog,
		items:   items,
		bus:     bus,
		node:    node,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provisioner) Apply(conf *config.Configuration) {
	if conf == nil {
		return
	}
	p.interval = conf.Provision.Interval()
	if p.subreddit == "" {
		p.subreddit = conf.Provision.SubredditName
	}
}

// Start schedules recurring publishing when an interval is configured. The schedule
// stops with ctx.
func (p *Provisioner) Start(ctx context.Context) {
	if p.interval <= 0 {
		log.Info("Item provisioning schedule disabled")
		return
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Error(errors.WrapAndReport(err, "create provision scheduler"))
		return
	}
	_, err = s.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() {
			it, err := p.Publish(ctx)
			if err != nil {
				log.Errorf("scheduled item publish:%v", err)
				return
			}
			log.Infof("Scheduled item %v published with collectible %v", it.PostID, it.Name)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Error(errors.WrapAndReport(err, "schedule item publishing"))
		_ = s.Shutdown()
		return
	}
	p.scheduler = s
	s.Start()
	log.Infof("Item provisioning scheduled every %v", p.interval)
	go func() {
		<-ctx.Done()
		p.Stop()
	}()
}

func (p *Provisioner) Stop() {
	if p.scheduler == nil {
		return
	}
	if err := p.scheduler.Shutdown(); err != nil {
		log.Warnf("shutdown provision scheduler:%v", err)
	}
}

// Publish picks a catalog entry, stores it as a new item post and announces it.
func (p *Provisioner) Publish(ctx context.Context) (*item.Item, error) {
	if p.subreddit == "" {
		return nil, ErrSubredditRequired
	}
	entry := p.pick()
	it := &item.Item{
		PostID:    p.node.Generate().String(),
		Question:  entry.Question,
		Answer:    entry.Answer,
		Name:      entry.Name,
		SetName:   entry.SetName,
		ImageURL:  p.resolveImage(entry),
		CreatedAt: p.now(),
	}
	if err := p.items.Save(ctx, it); err != nil {
		return nil, errors.WithMessage(err, "save provisioned item")
	}
	p.published.Inc()
	evt := databus.ItemPublished{
		PostID:        it.PostID,
		SubredditName: p.subreddit,
		Collectible:   it.Name,
		SetName:       it.SetName,
		PublishedAt:   it.CreatedAt,
	}
	if err := p.bus.Publish(evt); err != nil {
		log.Warnf("publish item %v event:%v", it.PostID, err)
	}
	return it, nil
}

// PostURL is where clients are sent after a post was created.
func (p *Provisioner) PostURL(postID string) string {
	return fmt.Sprintf("https://reddit.com/r/%v/comments/%v", p.subreddit, postID)
}

func (p *Provisioner) Subreddit() string {
	return p.subreddit
}

// Published counts items published by this process.
func (p *Provisioner) Published() int64 {
	return p.published.Load()
}

func (p *Provisioner) pick() *item.Entry {
	p.randLock.Lock()
	defer p.randLock.Unlock()
	return p.catalog.Pick(p.rand)
}

func (p *Provisioner) resolveImage(e *item.Entry) string {
	if e.ImageURL != "" {
		return e.ImageURL
	}
	if e.ImageKey != "" && p.imageURL != nil {
		return p.imageURL(e.ImageKey)
	}
	return ""
}
