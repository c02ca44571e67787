// Package taxonomy provides the canonical skill and job-title taxonomy used
// for entity normalization and progression scoring. A taxonomy is loaded by
// a Provider into an immutable Snapshot; callers replace the snapshot
// wholesale via an explicit reload, never by mutating it in place.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Category distinguishes the two kinds of canonical entities.
type Category string

// Supported entity categories.
const (
	CategorySkill    Category = "skill"
	CategoryJobTitle Category = "job_title"
)

// CanonicalEntity is a skill or job title with a stable identifier and a set
// of case-insensitive aliases. SeniorityRank is only meaningful for job
// titles: higher rank is more senior, zero means unranked.
type CanonicalEntity struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"name"`
	Aliases       []string `json:"aliases"`
	Category      Category `json:"category"`
	SeniorityRank int      `json:"seniority_rank,omitempty"`
}

// aliasEntry pairs a cleaned alias with its canonical ID. Entries are kept
// sorted so fuzzy matching iterates in a stable order.
type aliasEntry struct {
	Alias       string
	CanonicalID string
}

// Snapshot is an immutable view of the taxonomy at one point in time.
type Snapshot struct {
	entities map[string]CanonicalEntity
	index    map[Category]map[string]string // alias -> canonical ID
	aliases  map[Category][]aliasEntry      // sorted by alias, then canonical ID
}

// NewSnapshot builds a Snapshot from a list of canonical entities.
// The display name counts as an alias of its own entity. An alias that maps
// to more than one canonical ID within a category is an error.
func NewSnapshot(entities []CanonicalEntity) (*Snapshot, error) {
	s := &Snapshot{
		entities: make(map[string]CanonicalEntity, len(entities)),
		index: map[Category]map[string]string{
			CategorySkill:    {},
			CategoryJobTitle: {},
		},
		aliases: map[Category][]aliasEntry{},
	}

	for _, e := range entities {
		if e.ID == "" {
			return nil, fmt.Errorf("taxonomy entity %q has empty canonical ID", e.DisplayName)
		}
		if e.Category != CategorySkill && e.Category != CategoryJobTitle {
			return nil, fmt.Errorf("taxonomy entity %q has unknown category %q", e.ID, e.Category)
		}
		if prev, exists := s.entities[e.ID]; exists {
			return nil, fmt.Errorf("duplicate canonical ID %q (%q and %q)", e.ID, prev.DisplayName, e.DisplayName)
		}
		s.entities[e.ID] = e

		names := append([]string{e.DisplayName}, e.Aliases...)
		for _, name := range names {
			alias := NormalizeAlias(name)
			if alias == "" {
				continue
			}
			if existing, ok := s.index[e.Category][alias]; ok {
				if existing != e.ID {
					return nil, fmt.Errorf("alias %q maps to both %q and %q", alias, existing, e.ID)
				}
				continue
			}
			s.index[e.Category][alias] = e.ID
			s.aliases[e.Category] = append(s.aliases[e.Category], aliasEntry{Alias: alias, CanonicalID: e.ID})
		}
	}

	for cat := range s.aliases {
		entries := s.aliases[cat]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Alias != entries[j].Alias {
				return entries[i].Alias < entries[j].Alias
			}
			return entries[i].CanonicalID < entries[j].CanonicalID
		})
	}

	return s, nil
}

// NormalizeAlias lowercases and whitespace-collapses an alias for indexing.
func NormalizeAlias(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Lookup returns the canonical ID for an exact (case-insensitive) alias match.
func (s *Snapshot) Lookup(cat Category, name string) (string, bool) {
	id, ok := s.index[cat][NormalizeAlias(name)]
	return id, ok
}

// Entity returns the canonical entity for an ID.
func (s *Snapshot) Entity(id string) (CanonicalEntity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// SeniorityRank returns the seniority rank of a canonical job title.
// The boolean is false for unknown IDs and for unranked titles.
func (s *Snapshot) SeniorityRank(id string) (int, bool) {
	e, ok := s.entities[id]
	if !ok || e.Category != CategoryJobTitle || e.SeniorityRank == 0 {
		return 0, false
	}
	return e.SeniorityRank, true
}

// EachAlias calls fn for every alias in the category, in a stable order
// (alias ascending, canonical ID ascending). Used by fuzzy matching.
func (s *Snapshot) EachAlias(cat Category, fn func(alias, canonicalID string)) {
	for _, entry := range s.aliases[cat] {
		fn(entry.Alias, entry.CanonicalID)
	}
}

// Len returns the number of canonical entities in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.entities)
}
