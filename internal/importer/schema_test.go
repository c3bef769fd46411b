package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlFixture = `
plan:
  name: Q1 Roadmap
members:
  - email: bob@example.com
    role: approver
tasks:
  - title: Draft spec
    order: 1
  - title: Review
    description: with the team
    progress: 20
`

const jsonFixture = `{
  "plan": {"name": "Q1 Roadmap"},
  "members": [{"email": "bob@example.com", "role": "approver"}],
  "tasks": [
    {"title": "Draft spec", "order": 1},
    {"title": "Review", "description": "with the team", "progress": 20}
  ]
}`

func TestParseImportSchema_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := ParseImportSchema([]byte(jsonFixture), FormatJSON)
	require.NoError(t, err)
	fromYAML, err := ParseImportSchema([]byte(yamlFixture), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, "Q1 Roadmap", fromYAML.Plan.Name)
	require.Len(t, fromYAML.Tasks, 2)
	assert.Equal(t, 1, *fromYAML.Tasks[0].Order)
	assert.Nil(t, fromYAML.Tasks[0].Progress)
	assert.Equal(t, "with the team", *fromYAML.Tasks[1].Description)
}

func TestParseImportSchema_Malformed(t *testing.T) {
	_, err := ParseImportSchema([]byte(`{"plan":`), FormatJSON)
	assert.ErrorContains(t, err, "parsing import file")

	_, err = ParseImportSchema([]byte("plan: [unclosed"), FormatYAML)
	assert.ErrorContains(t, err, "parsing import file")
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("plan.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("PLAN.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("plan.json"))
	assert.Equal(t, FormatJSON, FormatForPath("plan"))
}

func TestLoadImportSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadmap.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlFixture), 0o644))

	schema, err := LoadImportSchema(path)
	require.NoError(t, err)
	assert.Len(t, schema.Tasks, 2)

	_, err = LoadImportSchema(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
