package item

import (
	_ "embed"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
	"olympus.io/loot-of-olympus/pkg/errors"
)

//go:embed catalog.yml
var defaultCatalog []byte

// Entry is a catalog question and the collectible it awards.
type Entry struct {
	Name     string `yaml:"name" json:"name"`
	SetName  string `yaml:"-" json:"set_name"`
	ImageKey string `yaml:"image_key" json:"-"`
	ImageURL string `yaml:"image_url" json:"image_url"`
	Question string `yaml:"question" json:"-"`
	Answer   string `yaml:"answer" json:"-"`
}

// Set is a named group of collectibles, shown together on the profile.
type Set struct {
	Name    string   `yaml:"name" json:"name"`
	Entries []*Entry `yaml:"items" json:"items"`
}

type Catalog struct {
	sets    []*Set
	entries []*Entry
}

type catalogFile struct {
	Sets []*Set `yaml:"sets"`
}

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file, an empty path means the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %v", path)
	}
	return ParseCatalog(dat)
}

func ParseCatalog(dat []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(dat, &f); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	c := &Catalog{sets: f.Sets}
	names := make(map[string]bool)
	for _, s := range f.Sets {
		if s.Name == "" {
			return nil, errors.New("catalog set without name")
		}
		for _, e := range s.Entries {
			e.SetName = s.Name
			switch {
			case e.Name == "":
				return nil, errors.Errorf("entry without name in set %v", s.Name)
			case strings.TrimSpace(e.Question) == "":
				return nil, errors.Errorf("entry %v has no question", e.Name)
			case strings.TrimSpace(e.Answer) == "":
				return nil, errors.Errorf("entry %v has no answer", e.Name)
			case names[e.Name]:
				return nil, errors.Errorf("duplicate catalog entry %v", e.Name)
			}
			names[e.Name] = true
			c.entries = append(c.entries, e)
		}
	}
	if len(c.entries) == 0 {
		return nil, errors.New("catalog has no entries")
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) Entries() []*Entry {
	return c.entries
}

func (c *Catalog) Sets() []*Set {
	return c.sets
}

// Pick returns a random entry using r.
func (c *Catalog) Pick(r *rand.Rand) *Entry {
	return c.entries[r.Intn(len(c.entries))]
}
