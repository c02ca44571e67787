// Package companytier provides the company prestige signal consumed by the
// metrics calculator. The signal source is a black box behind a small
// interface; a static tier table ships as the default implementation.
package companytier

import "strings"

// NeutralScore is used when no tier signal exists for a company. Absent
// signal is neutral, never zero.
const NeutralScore = 5.0

// Provider supplies a prestige score in [0,10] for a company name.
// ok is false when the provider has no signal for the company.
type Provider interface {
	Tier(companyName string) (score float64, ok bool)
}

// StaticTable is a Provider backed by an in-memory map of lowercase company
// name fragments to scores. A company matches a row when the row's fragment
// appears in the company name.
type StaticTable struct {
	tiers map[string]float64
}

// NewStaticTable creates a static provider. Keys are lowercased.
func NewStaticTable(tiers map[string]float64) *StaticTable {
	normalized := make(map[string]float64, len(tiers))
	for name, score := range tiers {
		normalized[strings.ToLower(strings.TrimSpace(name))] = score
	}
	return &StaticTable{tiers: normalized}
}

// DefaultTable returns the built-in tier table: top-tier companies score 10,
// well-known scale-ups 8. Everything else has no signal and falls back to
// the neutral midpoint.
func DefaultTable() *StaticTable {
	tiers := map[string]float64{}
	for _, name := range []string{"google", "microsoft", "apple", "amazon", "meta", "netflix", "tesla"} {
		tiers[name] = 10.0
	}
	for _, name := range []string{"uber", "airbnb", "stripe", "slack", "zoom", "salesforce", "oracle"} {
		tiers[name] = 8.0
	}
	return NewStaticTable(tiers)
}

// Tier looks up a company by substring match against the table.
func (t *StaticTable) Tier(companyName string) (float64, bool) {
	name := strings.ToLower(strings.TrimSpace(companyName))
	if name == "" {
		return 0, false
	}
	best := 0.0
	found := false
	for fragment, score := range t.tiers {
		if strings.Contains(name, fragment) && score > best {
			best = score
			found = true
		}
	}
	return best, found
}
