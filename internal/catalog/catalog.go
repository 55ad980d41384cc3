// Package catalog loads the static tutorial catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kalyxon/progress-server/internal/model"
)

//go:embed default.yaml
var defaultCatalog []byte

var _ model.Catalog = (*Catalog)(nil)

// Catalog is an ordered, immutable set of tutorials.
type Catalog struct {
	tutorials []model.Tutorial
	byID      map[string]int
}

type document struct {
	Tutorials []model.Tutorial `yaml:"tutorials"`
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file. An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return New(doc.Tutorials)
}

// New builds a catalog from tutorials, rejecting invalid or duplicate ids and
// entries without a category.
func New(tutorials []model.Tutorial) (*Catalog, error) {
	c := &Catalog{
		tutorials: make([]model.Tutorial, 0, len(tutorials)),
		byID:      make(map[string]int, len(tutorials)),
	}

	for _, t := range tutorials {
		if !model.ValidID(t.ID) {
			return nil, fmt.Errorf("invalid tutorial id %q", t.ID)
		}
		if t.Category == "" {
			return nil, fmt.Errorf("tutorial %q has no category", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tutorial id %q", t.ID)
		}
		c.byID[t.ID] = len(c.tutorials)
		c.tutorials = append(c.tutorials, t)
	}

	return c, nil
}

// All returns a copy of every tutorial in catalog order.
func (c *Catalog) All() []model.Tutorial {
	out := make([]model.Tutorial, len(c.tutorials))
	copy(out, c.tutorials)
	return out
}

// Get looks a tutorial up by id.
func (c *Catalog) Get(id string) (model.Tutorial, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Tutorial{}, false
	}
	return c.tutorials[i], true
}

// Categories returns category names in order of first appearance with their
// tutorial counts.
func (c *Catalog) Categories() []Category {
	var out []Category
	index := make(map[string]int)
	for _, t := range c.tutorials {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, Category{Name: t.Category})
		}
		out[i].Count++
	}
	return out
}

// Len returns the number of tutorials.
func (c *Catalog) Len() int {
	return len(c.tutorials)
}

// Category summarizes one catalog category.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
