// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProviders() []Provider {
	return []Provider{
		{ID: "gen-lite", Name: "Gen Lite", Category: "generation", Keywords: []string{"Write", "generate"}},
		{ID: "searcher", Name: "Searcher", Category: "search", Keywords: []string{"latest", "search"}},
		{ID: "reasoner", Name: "Reasoner", Category: "reasoning", Keywords: []string{"plan", "analyze"}},
	}
}

func TestNew(t *testing.T) {
	cat, err := New(testProviders())
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())

	p, ok := cat.Get("gen-lite")
	require.True(t, ok)
	assert.Equal(t, CategoryGeneration, p.Category)
	// Keywords are lowercased on load
	assert.Equal(t, []string{"write", "generate"}, p.Keywords)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		providers []Provider
	}{
		{
			name:      "empty id",
			providers: []Provider{{ID: "", Category: "search"}},
		},
		{
			name: "duplicate id",
			providers: []Provider{
				{ID: "a", Category: "search"},
				{ID: "a", Category: "reasoning"},
			},
		},
		{
			name:      "unknown category",
			providers: []Provider{{ID: "a", Category: "telepathy"}},
		},
		{
			name:      "reserved id",
			providers: []Provider{{ID: UnresolvedID, Category: "search"}},
		},
		{
			name:      "malformed id",
			providers: []Provider{{ID: "has spaces!", Category: "search"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.providers)
			assert.Error(t, err)
		})
	}
}

func TestNewDoesNotMutateInput(t *testing.T) {
	keywords := []string{"Write", "Generate"}
	providers := []Provider{{ID: "gen-lite", Category: "generation", Keywords: keywords}}

	cat, err := New(providers)
	require.NoError(t, err)

	p, ok := cat.Get("gen-lite")
	require.True(t, ok)
	assert.Equal(t, []string{"write", "generate"}, p.Keywords)
	// The caller's slice keeps its original casing.
	assert.Equal(t, []string{"Write", "Generate"}, keywords)
}

func TestByCategoryStableOrder(t *testing.T) {
	cat, err := New([]Provider{
		{ID: "zeta", Category: "search"},
		{ID: "alpha", Category: "search"},
		{ID: "mid", Category: "search"},
	})
	require.NoError(t, err)

	members := cat.ByCategory(CategorySearch)
	require.Len(t, members, 3)
	assert.Equal(t, "alpha", members[0].ID)
	assert.Equal(t, "mid", members[1].ID)
	assert.Equal(t, "zeta", members[2].ID)

	// Returned slice is a copy
	members[0].ID = "mutated"
	fresh := cat.ByCategory(CategorySearch)
	assert.Equal(t, "alpha", fresh[0].ID)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
providers:
  - id: gen-lite
    name: Gen Lite
    category: generation
    keywords: [write, generate]
    description: Lightweight single-shot generator
  - id: searcher
    name: Searcher
    category: search
    keywords: [latest, search]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	p, ok := cat.Get("searcher")
	require.True(t, ok)
	assert.Equal(t, CategorySearch, p.Category)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	cat, err := ParseCategory(" Search ")
	require.NoError(t, err)
	assert.Equal(t, CategorySearch, cat)

	_, err = ParseCategory("juggling")
	assert.Error(t, err)
}
