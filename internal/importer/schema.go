// Package importer reads plan import files: a plan name, the members to
// share it with, and the tasks to propose, in JSON or YAML.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportSchema is the top-level structure of an import file.
type ImportSchema struct {
	Plan    PlanImport     `json:"plan" yaml:"plan"`
	Members []MemberImport `json:"members,omitempty" yaml:"members,omitempty"`
	Tasks   []TaskImport   `json:"tasks" yaml:"tasks"`
}

type PlanImport struct {
	Name string `json:"name" yaml:"name"`
}

// MemberImport grants role to the directory user with Email.
type MemberImport struct {
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
}

// TaskImport becomes one CREATE_TASK request.
type TaskImport struct {
	Title       string  `json:"title" yaml:"title"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      *string `json:"status,omitempty" yaml:"status,omitempty"`
	Progress    *int    `json:"progress,omitempty" yaml:"progress,omitempty"`
	Order       *int    `json:"order,omitempty" yaml:"order,omitempty"`
}

// Format is the encoding of an import file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from the file extension; anything that is
// not .yaml or .yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadImportSchema reads and parses an import file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data, FormatForPath(path))
}

// ParseImportSchema decodes data in the given format.
func ParseImportSchema(data []byte, format Format) (*ImportSchema, error) {
	var schema ImportSchema
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	}
	return &schema, nil
}
