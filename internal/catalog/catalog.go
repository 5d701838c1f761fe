// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package catalog provides the read-only registry of capability providers.
// Providers are loaded once from a YAML file and are immutable afterwards;
// the rest of the core references them by ID only.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/util"
)

// UnresolvedID is the sentinel provider ID used in selection plans when no
// catalog provider matches the required category. Callers must treat a plan
// carrying this ID as requiring fallback.
const UnresolvedID = "unresolved"

// Category classifies what a provider is for.
type Category string

const (
	// CategoryGeneration covers lightweight single-shot text generators.
	CategoryGeneration Category = "generation"
	// CategorySearch covers search-augmented providers.
	CategorySearch Category = "search"
	// CategoryReasoning covers multi-step/sequential reasoning providers.
	CategoryReasoning Category = "reasoning"
	// CategoryExecution covers code/tool-execution providers.
	CategoryExecution Category = "execution"
)

// ParseCategory validates and normalizes a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryGeneration:
		return CategoryGeneration, nil
	case CategorySearch:
		return CategorySearch, nil
	case CategoryReasoning:
		return CategoryReasoning, nil
	case CategoryExecution:
		return CategoryExecution, nil
	default:
		return "", fmt.Errorf("unknown provider category: %q", s)
	}
}

// Provider is a capability provider's static metadata. Immutable once loaded.
type Provider struct {
	// ID is the stable identifier used everywhere else in the core.
	ID string `yaml:"id" json:"id"`
	// Name is the human-readable provider name.
	Name string `yaml:"name" json:"name"`
	// Category tags what the provider is for.
	Category Category `yaml:"category" json:"category"`
	// Keywords are the provider's declared capability keywords, lowercased on load.
	Keywords []string `yaml:"keywords" json:"keywords"`
	// Description explains what the provider does.
	Description string `yaml:"description" json:"description"`
}

// Catalog is a read-only lookup of known providers.
type Catalog struct {
	providers  map[string]Provider
	byCategory map[Category][]Provider
	order      []string
}

type catalogFile struct {
	Providers []Provider `yaml:"providers"`
}

// Load reads a provider catalog from the YAML file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	c, err := New(file.Providers)
	if err != nil {
		return nil, err
	}

	log.Infof("Capability catalog loaded (%d providers, %s)", c.Len(), path)
	return c, nil
}

// New builds a catalog from a provider list, validating IDs and categories.
func New(providers []Provider) (*Catalog, error) {
	c := &Catalog{
		providers:  make(map[string]Provider, len(providers)),
		byCategory: make(map[Category][]Provider),
	}

	for _, p := range providers {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("catalog provider with empty id")
		}
		if p.ID == UnresolvedID {
			return nil, fmt.Errorf("provider id %q is reserved", UnresolvedID)
		}
		if !util.IsValidProviderID(p.ID) {
			return nil, fmt.Errorf("invalid provider id: %q", p.ID)
		}
		if _, exists := c.providers[p.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id: %q", p.ID)
		}
		cat, err := ParseCategory(string(p.Category))
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", p.ID, err)
		}
		p.Category = cat
		// Normalize into a fresh slice so the caller's input stays untouched.
		keywords := make([]string, len(p.Keywords))
		for i, kw := range p.Keywords {
			keywords[i] = strings.ToLower(strings.TrimSpace(kw))
		}
		p.Keywords = keywords

		c.providers[p.ID] = p
		c.byCategory[cat] = append(c.byCategory[cat], p)
		c.order = append(c.order, p.ID)
	}

	sort.Strings(c.order)
	for cat := range c.byCategory {
		members := c.byCategory[cat]
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	}

	return c, nil
}

// Len returns the number of providers in the catalog.
func (c *Catalog) Len() int {
	return len(c.providers)
}

// Get returns the provider with the given ID.
func (c *Catalog) Get(id string) (Provider, bool) {
	p, ok := c.providers[id]
	return p, ok
}

// ByCategory returns the providers of a category in stable ID order.
// The returned slice is a copy.
func (c *Catalog) ByCategory(cat Category) []Provider {
	members := c.byCategory[cat]
	out := make([]Provider, len(members))
	copy(out, members)
	return out
}

// All returns every provider in stable ID order. The returned slice is a copy.
func (c *Catalog) All() []Provider {
	out := make([]Provider, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.providers[id])
	}
	return out
}
