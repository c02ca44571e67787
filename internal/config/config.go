// Package config provides configuration loading and validation for the
// talent-match services and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-match/internal/types"
)

// Config is the full service configuration. It loads from a JSON file, then
// environment variables override individual fields. Weight sets are
// validated at load time and rejected when they do not sum to 1; they are
// never silently renormalized.
type Config struct {
	// HTTP
	ListenAddr string `json:"listen_addr,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"`

	// Taxonomy graph
	Neo4jURI      string `json:"neo4j_uri,omitempty"`
	Neo4jUser     string `json:"neo4j_user,omitempty"`
	Neo4jPassword string `json:"neo4j_password,omitempty"`
	Neo4jDatabase string `json:"neo4j_database,omitempty"`

	// Taxonomy file fallback, used when no graph is configured
	TaxonomyPath string `json:"taxonomy_path,omitempty"`
	SchemaDir    string `json:"schema_dir,omitempty"`

	// Normalization
	FuzzyThreshold float64 `json:"fuzzy_threshold,omitempty" validate:"gte=0,lte=1"`

	// Metrics
	DomainKeywords     []string `json:"domain_keywords,omitempty"`
	ExperienceCapYears float64  `json:"experience_cap_years,omitempty" validate:"gte=0"`

	// Matching
	NeutralSimilarity     float64                  `json:"neutral_similarity,omitempty" validate:"gte=0,lte=1"`
	LocationPartialCredit float64                  `json:"location_partial_credit,omitempty" validate:"gte=0,lte=1"`
	MatchWeights          types.MatchWeights       `json:"match_weights,omitempty"`
	ProfileWeights        types.ProfileWeightTable `json:"profile_weights,omitempty"`

	// Logging
	LogJSON  bool `json:"log_json,omitempty"`
	LogDebug bool `json:"log_debug,omitempty"`
}

// Defaults returns the built-in configuration. The weight values mirror the
// product's tuned defaults; overriding any weight set replaces it wholesale.
func Defaults() Config {
	return Config{
		ListenAddr:            ":8080",
		Neo4jDatabase:         "neo4j",
		SchemaDir:             "schemas",
		FuzzyThreshold:        0.80,
		ExperienceCapYears:    10,
		NeutralSimilarity:     0.5,
		LocationPartialCredit: 0.5,
		MatchWeights: types.MatchWeights{
			Semantic:   0.3,
			Skills:     0.4,
			Experience: 0.2,
			Location:   0.1,
		},
		ProfileWeights: types.ProfileWeightTable{
			types.SeniorityJunior: {Experience: 0.3, Stability: 0.2, Progression: 0.2, Prestige: 0.1, Skills: 0.2},
			types.SeniorityMid:    {Experience: 0.25, Stability: 0.25, Progression: 0.25, Prestige: 0.15, Skills: 0.1},
			types.SenioritySenior: {Experience: 0.2, Stability: 0.2, Progression: 0.3, Prestige: 0.2, Skills: 0.1},
		},
	}
}

// Load reads configuration from an optional JSON file, applies environment
// overrides, fills defaults, and validates the result. An empty path skips
// the file step.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides individual fields from environment variables. Only set
// variables take effect.
func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "TALENT_MATCH_LISTEN_ADDR")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Neo4jURI, "NEO4J_URI")
	setString(&c.Neo4jUser, "NEO4J_USER")
	setString(&c.Neo4jPassword, "NEO4J_PASSWORD")
	setString(&c.Neo4jDatabase, "NEO4J_DATABASE")
	setString(&c.TaxonomyPath, "TALENT_MATCH_TAXONOMY_PATH")
	setString(&c.SchemaDir, "TALENT_MATCH_SCHEMA_DIR")
	setFloat(&c.FuzzyThreshold, "TALENT_MATCH_FUZZY_THRESHOLD")
	setFloat(&c.ExperienceCapYears, "TALENT_MATCH_EXPERIENCE_CAP_YEARS")
	setFloat(&c.NeutralSimilarity, "TALENT_MATCH_NEUTRAL_SIMILARITY")
	setFloat(&c.LocationPartialCredit, "TALENT_MATCH_LOCATION_PARTIAL_CREDIT")
	setBool(&c.LogJSON, "TALENT_MATCH_LOG_JSON")
	setBool(&c.LogDebug, "TALENT_MATCH_LOG_DEBUG")

	if v := os.Getenv("TALENT_MATCH_DOMAIN_KEYWORDS"); v != "" {
		parts := strings.Split(v, ",")
		keywords := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				keywords = append(keywords, p)
			}
		}
		c.DomainKeywords = keywords
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks numeric ranges and weight sums.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.MatchWeights.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.ProfileWeights.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.TaxonomyPath != "" {
		if _, err := os.Stat(c.TaxonomyPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: taxonomy file not found: %s", c.TaxonomyPath)
		}
	}
	return nil
}

// UseGraph reports whether the taxonomy should load from Neo4j rather than
// the taxonomy file.
func (c *Config) UseGraph() bool {
	return c.Neo4jURI != ""
}
