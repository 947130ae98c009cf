package starter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"olympus.io/loot-of-olympus/internal/config"
)

type probe struct {
	name  string
	trace *[]string
	conf  *config.Configuration
}

func (p *probe) Apply(conf *config.Configuration) {
	p.conf = conf
	*p.trace = append(*p.trace, p.name+":apply")
}

func (p *probe) Start(context.Context) {
	*p.trace = append(*p.trace, p.name+":start")
}

func (p *probe) Stop() {
	*p.trace = append(*p.trace, p.name+":stop")
}

type plain struct{ started bool }

func (p *plain) Start(context.Context) { p.started = true }

func TestStartAndStop(t *testing.T) {
	var trace []string
	conf := &config.Configuration{}
	a := &probe{name: "a", trace: &trace}
	b := &probe{name: "b", trace: &trace}
	c := &plain{}

	Start(context.Background(), conf, a, c, b)
	Stop(a, c, b)

	assert.Same(t, conf, a.conf)
	assert.True(t, c.started)
	assert.Equal(t, []string{"a:apply", "a:start", "b:apply", "b:start", "b:stop", "a:stop"}, trace)
}
