package taxonomy

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphProvider loads the taxonomy from a Neo4j knowledge graph holding
// (:Alias)-[:ALIAS_OF]->(:Skill) and (:Alias)-[:ALIAS_OF]->(:JobTitle)
// nodes, with job titles carrying a seniority_rank property.
type GraphProvider struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewGraphProvider creates a provider backed by a Neo4j driver.
func NewGraphProvider(driver neo4j.DriverWithContext, database string) *GraphProvider {
	return &GraphProvider{driver: driver, database: database}
}

// ConnectGraph opens a Neo4j driver and verifies connectivity.
func ConnectGraph(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}
	return driver, nil
}

// EnsureSchema creates the uniqueness constraints the taxonomy graph relies
// on. Idempotent, safe to run on startup.
func (p *GraphProvider) EnsureSchema(ctx context.Context) error {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: p.database})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT skill_id_unique IF NOT EXISTS FOR (s:Skill) REQUIRE s.id IS UNIQUE",
		"CREATE CONSTRAINT job_title_id_unique IF NOT EXISTS FOR (j:JobTitle) REQUIRE j.id IS UNIQUE",
		"CREATE CONSTRAINT alias_name_unique IF NOT EXISTS FOR (a:Alias) REQUIRE a.name IS UNIQUE",
	}
	for _, stmt := range constraints {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to create taxonomy constraint: %w", err)
		}
	}
	return nil
}

// Import writes a snapshot's entities into the graph. Canonical nodes and
// alias edges are merged, so the taxonomy stays append-only.
func (p *GraphProvider) Import(ctx context.Context, snap *Snapshot) error {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: p.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for id := range snap.entities {
			e := snap.entities[id]
			label := "Skill"
			if e.Category == CategoryJobTitle {
				label = "JobTitle"
			}
			query := fmt.Sprintf(
				"MERGE (c:%s {id: $id}) SET c.name = $name, c.seniority_rank = $rank", label)
			if _, err := tx.Run(ctx, query, map[string]any{
				"id": e.ID, "name": e.DisplayName, "rank": e.SeniorityRank,
			}); err != nil {
				return nil, err
			}
			for _, alias := range append([]string{e.DisplayName}, e.Aliases...) {
				aliasQuery := fmt.Sprintf(
					"MATCH (c:%s {id: $id}) MERGE (a:Alias {name: $alias}) MERGE (a)-[:ALIAS_OF]->(c)", label)
				if _, err := tx.Run(ctx, aliasQuery, map[string]any{
					"id": e.ID, "alias": NormalizeAlias(alias),
				}); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to import taxonomy into graph: %w", err)
	}
	return nil
}

// Load reads the full taxonomy out of the graph and builds a snapshot.
func (p *GraphProvider) Load(ctx context.Context) (*Snapshot, error) {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: p.database})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (a:Alias)-[:ALIAS_OF]->(c)
			WHERE c:Skill OR c:JobTitle
			RETURN c.id AS id, c.name AS name, labels(c) AS labels,
			       coalesce(c.seniority_rank, 0) AS rank,
			       collect(a.name) AS aliases`, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy from graph: %w", err)
	}

	var entities []CanonicalEntity
	for _, rec := range records.([]*neo4j.Record) {
		m := rec.AsMap()
		e := CanonicalEntity{
			ID:          asString(m["id"]),
			DisplayName: asString(m["name"]),
			Category:    CategorySkill,
		}
		if rank, ok := m["rank"].(int64); ok {
			e.SeniorityRank = int(rank)
		}
		if labels, ok := m["labels"].([]any); ok {
			for _, l := range labels {
				if asString(l) == "JobTitle" {
					e.Category = CategoryJobTitle
				}
			}
		}
		if aliases, ok := m["aliases"].([]any); ok {
			for _, a := range aliases {
				e.Aliases = append(e.Aliases, asString(a))
			}
		}
		entities = append(entities, e)
	}

	return NewSnapshot(entities)
}

// Close closes the underlying driver.
func (p *GraphProvider) Close(ctx context.Context) error {
	return p.driver.Close(ctx)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
