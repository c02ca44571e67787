package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/talent-match/internal/schemas"
)

// FileProvider loads the taxonomy from a JSON file, validated against a JSON
// Schema before parsing.
type FileProvider struct {
	path       string
	schemaPath string
}

// NewFileProvider creates a provider for a taxonomy JSON file. schemaPath may
// be empty to skip schema validation.
func NewFileProvider(path, schemaPath string) *FileProvider {
	return &FileProvider{path: path, schemaPath: schemaPath}
}

// taxonomyFile is the on-disk document shape.
type taxonomyFile struct {
	Skills []struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Aliases []string `json:"aliases"`
	} `json:"skills"`
	JobTitles []struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Aliases       []string `json:"aliases"`
		SeniorityRank int      `json:"seniority_rank"`
	} `json:"job_titles"`
}

// Load reads, validates, and indexes the taxonomy file.
func (p *FileProvider) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", p.path, err)
	}

	if p.schemaPath != "" {
		if err := schemas.ValidateBytes(p.schemaPath, data); err != nil {
			return nil, fmt.Errorf("taxonomy file %s: %w", p.path, err)
		}
	}

	var doc taxonomyFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", p.path, err)
	}

	entities := make([]CanonicalEntity, 0, len(doc.Skills)+len(doc.JobTitles))
	for _, s := range doc.Skills {
		entities = append(entities, CanonicalEntity{
			ID:          s.ID,
			DisplayName: s.Name,
			Aliases:     s.Aliases,
			Category:    CategorySkill,
		})
	}
	for _, t := range doc.JobTitles {
		entities = append(entities, CanonicalEntity{
			ID:            t.ID,
			DisplayName:   t.Name,
			Aliases:       t.Aliases,
			Category:      CategoryJobTitle,
			SeniorityRank: t.SeniorityRank,
		})
	}

	return NewSnapshot(entities)
}
