package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candidateSchemaPath = "../../schemas/candidate.schema.json"

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCandidateFile(t *testing.T) {
	path := writeTempFile(t, "candidate.json", `{
		"name": "Ada Lovelace",
		"skills": ["Python", "Go"],
		"work_experience": [
			{"company_name": "Acme", "title": "Software Engineer", "start_date": "2019-03-01", "end_date": "2023-03-01"}
		]
	}`)

	cand, err := loadCandidateFile(path, candidateSchemaPath)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", cand.Name)
	assert.Len(t, cand.Skills, 2)
	assert.Len(t, cand.WorkExperience, 1)
}

func TestLoadCandidateFileSchemaViolation(t *testing.T) {
	// Missing required name.
	path := writeTempFile(t, "candidate.json", `{"skills": ["Go"]}`)

	_, err := loadCandidateFile(path, candidateSchemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLoadCandidateFileMissing(t *testing.T) {
	_, err := loadCandidateFile(filepath.Join(t.TempDir(), "nope.json"), candidateSchemaPath)
	assert.Error(t, err)
}

func TestReadJSONFile(t *testing.T) {
	path := writeTempFile(t, "scores.json", `{"cand-1": 0.8, "cand-2": 0.3}`)

	scores, err := loadSimilarityFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, scores["cand-1"], 1e-9)

	_, err = loadSimilarityFile(writeTempFile(t, "bad.json", `{broken`))
	assert.Error(t, err)
}
