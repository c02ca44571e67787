package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/talent-match/internal/types"
)

// SaveCandidate inserts or replaces a candidate document. The extracted
// columns are kept in sync with the JSONB document.
func (s *Store) SaveCandidate(ctx context.Context, cand *types.Candidate) error {
	now := time.Now().UTC()
	if cand.CreatedAt.IsZero() {
		cand.CreatedAt = now
	}
	cand.UpdatedAt = now

	doc, err := json.Marshal(cand)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}

	seniority := ""
	if cand.Metrics != nil {
		seniority = string(cand.Metrics.SeniorityLevel)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO candidates (id, name, email, location, seniority_level, universal_score, doc, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
			name = $2, email = $3, location = $4, seniority_level = $5,
			universal_score = $6, doc = $7, updated_at = $9`,
		cand.ID, cand.Name, cand.Email, cand.Location, seniority,
		cand.UniversalScore, doc, cand.CreatedAt, cand.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", cand.ID, err)
	}
	return nil
}

// GetCandidate retrieves a candidate by ID. Returns nil when not found.
func (s *Store) GetCandidate(ctx context.Context, id string) (*types.Candidate, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM candidates WHERE id = $1`, id,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}

	var cand types.Candidate
	if err := json.Unmarshal(doc, &cand); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate %s: %w", id, err)
	}
	return &cand, nil
}

// DeleteCandidate removes a candidate. Returns an error when the candidate
// does not exist.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate not found: %s", id)
	}
	return nil
}

// ListCandidates retrieves candidate documents ordered by ID, paged with
// limit and offset.
func (s *Store) ListCandidates(ctx context.Context, limit, offset int) ([]*types.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM candidates ORDER BY id LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var out []*types.Candidate
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		var cand types.Candidate
		if err := json.Unmarshal(doc, &cand); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
		}
		out = append(out, &cand)
	}
	return out, rows.Err()
}

// AllCandidates retrieves every candidate document, ordered by ID. Used by
// the ranking orchestrator, which scores the full pool.
func (s *Store) AllCandidates(ctx context.Context) ([]*types.Candidate, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	defer rows.Close()

	var out []*types.Candidate
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		var cand types.Candidate
		if err := json.Unmarshal(doc, &cand); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
		}
		out = append(out, &cand)
	}
	return out, rows.Err()
}

// CountCandidates returns the number of stored candidates.
func (s *Store) CountCandidates(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return n, nil
}
