// Package normalize maps raw extracted strings (skills, job titles) to
// canonical taxonomy entities, with fuzzy-match fallback. Normalization is a
// pure function over an immutable taxonomy snapshot: the same input against
// the same snapshot always yields the same result.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/jonathan/talent-match/internal/taxonomy"
)

// DefaultFuzzyThreshold is the minimum token-sort similarity for a fuzzy
// match to be accepted.
const DefaultFuzzyThreshold = 0.80

// Match types reported in normalization results.
const (
	MatchExact = "exact"
	MatchFuzzy = "fuzzy"
	MatchNone  = "none"
)

// Result describes one normalization outcome. CanonicalID is empty when the
// input was not recognized; callers then keep the raw string as-is.
type Result struct {
	Original    string  `json:"original"`
	CanonicalID string  `json:"canonical_id,omitempty"`
	Confidence  float64 `json:"confidence"`
	MatchType   string  `json:"match_type"`
}

// Normalizer resolves raw entity strings against a taxonomy snapshot.
type Normalizer struct {
	threshold float64
	metric    *metrics.Levenshtein
}

// New creates a Normalizer with the given fuzzy threshold. A threshold of
// zero selects DefaultFuzzyThreshold.
func New(threshold float64) *Normalizer {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return &Normalizer{threshold: threshold, metric: lev}
}

// Normalize resolves a raw string to a canonical ID within a category.
// Exact alias hits return confidence 1.0. Otherwise the cleaned input is
// fuzzy-matched against every alias in the category; the best similarity at
// or above the threshold wins, with ties broken by lexicographically
// smallest canonical ID. Unrecognized input returns an empty ID with
// confidence 0.
func (n *Normalizer) Normalize(snap *taxonomy.Snapshot, raw string, cat taxonomy.Category) Result {
	cleaned := CleanEntityName(raw)
	if cleaned == "" {
		return Result{Original: raw, MatchType: MatchNone}
	}

	if id, ok := snap.Lookup(cat, cleaned); ok {
		return Result{Original: raw, CanonicalID: id, Confidence: 1.0, MatchType: MatchExact}
	}

	needle := tokenSort(cleaned)
	bestID := ""
	bestSim := 0.0
	snap.EachAlias(cat, func(alias, canonicalID string) {
		sim := strutil.Similarity(needle, tokenSort(alias), n.metric)
		if sim > bestSim || (sim == bestSim && bestID != "" && canonicalID < bestID) {
			bestSim = sim
			bestID = canonicalID
		}
	})

	if bestID != "" && bestSim >= n.threshold {
		return Result{Original: raw, CanonicalID: bestID, Confidence: bestSim, MatchType: MatchFuzzy}
	}
	return Result{Original: raw, MatchType: MatchNone}
}

// NormalizeAll applies Normalize to each input independently, skipping blank
// strings. Batch normalization is repeated application, not joint
// optimization.
func (n *Normalizer) NormalizeAll(snap *taxonomy.Snapshot, raws []string, cat taxonomy.Category) []Result {
	results := make([]Result, 0, len(raws))
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		results = append(results, n.Normalize(snap, raw, cat))
	}
	return results
}

// Stats summarizes a batch of normalization results.
type Stats struct {
	Total             int     `json:"total"`
	ExactMatches      int     `json:"exact_matches"`
	FuzzyMatches      int     `json:"fuzzy_matches"`
	NoMatches         int     `json:"no_matches"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Summarize computes match-type counts and average confidence for a batch.
func Summarize(results []Result) Stats {
	s := Stats{Total: len(results)}
	if s.Total == 0 {
		return s
	}
	sum := 0.0
	for _, r := range results {
		switch r.MatchType {
		case MatchExact:
			s.ExactMatches++
		case MatchFuzzy:
			s.FuzzyMatches++
		default:
			s.NoMatches++
		}
		sum += r.Confidence
	}
	s.AverageConfidence = sum / float64(s.Total)
	return s
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s+#.-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// abbreviations expands common shorthand before matching. Applied to whole
// tokens only.
var abbreviations = map[string]string{
	"dev":   "developer",
	"eng":   "engineer",
	"mgr":   "manager",
	"admin": "administrator",
	"sys":   "system",
	"tech":  "technology",
	"sr":    "senior",
	"jr":    "junior",
}

// CleanEntityName lowercases, strips punctuation, collapses whitespace, and
// expands common abbreviations in an entity name.
func CleanEntityName(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = nonWordRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}

	tokens := strings.Split(cleaned, " ")
	for i, tok := range tokens {
		if full, ok := abbreviations[strings.TrimSuffix(tok, ".")]; ok {
			tokens[i] = full
		}
	}
	return strings.Join(tokens, " ")
}

// tokenSort returns the string with its tokens sorted, so word order does
// not affect fuzzy similarity.
func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
