// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package corpus implements the tabular store for the CMU Movie Summary
// Corpus: the declared schema of its five flat files, the loader that turns
// those files into typed in-memory tables, and the codec for the encoded
// mapping fields the corpus uses for genres, languages and countries.
//
// This file, `schema.go`, defines the schema manifest. The corpus ships as
// headerless tab-separated files, so the column layout cannot be read from
// the data itself; it is declared here instead, validated once when the
// corpus is loaded, and never re-checked by individual queries. A copy of
// the manifest is embedded in the binary as the default, and deployments
// can override it with a YAML file when a corpus revision changes layout.
package corpus

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Logical table names used throughout the application. These are the keys
// into the schema manifest and the names reported by load diagnostics.
const (
	TableMovies        = "movies"
	TableCharacters    = "characters"
	TableNameClusters  = "name_clusters"
	TablePlotSummaries = "plot_summaries"
	TableTropeClusters = "trope_clusters"
)

// Column data types understood by the loader. Strings are carried verbatim;
// floats are cleaned (empty or non-numeric cells become nil) at load time.
const (
	ColumnTypeString = "string"
	ColumnTypeFloat  = "float"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// ColumnSchema declares one positional column of a corpus file.
type ColumnSchema struct {
	Name string `yaml:"name"` // Descriptive column name used in diagnostics.
	Type string `yaml:"type"` // One of the ColumnType constants.
}

// TableSchema declares one corpus file: which file on disk it comes from and
// the exact ordered column layout every row must match.
type TableSchema struct {
	Name    string         `yaml:"name"`    // Logical table name, one of the Table constants.
	File    string         `yaml:"file"`    // File name inside the extracted corpus directory.
	Columns []ColumnSchema `yaml:"columns"` // Positional column declarations.
}

// Schema is the full manifest for one corpus revision.
type Schema struct {
	Tables []TableSchema `yaml:"tables"`
}

// DefaultSchema returns the schema manifest embedded in the binary, which
// matches the November 2012 release of the corpus. It panics if the embedded
// manifest is invalid, since that is a build defect rather than a runtime
// condition.
func DefaultSchema() *Schema {
	s := &Schema{}
	if err := yaml.Unmarshal(defaultSchemaYAML, s); err != nil {
		panic(fmt.Sprintf("embedded corpus schema is invalid: %v", err))
	}
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("embedded corpus schema is invalid: %v", err))
	}
	return s
}

// LoadSchema reads a schema manifest from a YAML file, for deployments that
// need to override the embedded default.
//
// Inputs:
//   - path: Filesystem path of the manifest to load.
//
// Outputs:
//   - *Schema: The parsed and validated manifest.
//   - error: Non-nil when the file cannot be read, parsed, or validated.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema manifest: %w", err)
	}
	s := &Schema{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing schema manifest: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural integrity of the manifest: every table the
// application depends on must be declared exactly once, with a file name and
// at least one column, and every column type must be known.
func (s *Schema) Validate() error {
	required := []string{
		TableMovies,
		TableCharacters,
		TableNameClusters,
		TablePlotSummaries,
		TableTropeClusters,
	}
	seen := make(map[string]bool)
	for _, t := range s.Tables {
		if seen[t.Name] {
			return fmt.Errorf("schema manifest declares table %q twice", t.Name)
		}
		seen[t.Name] = true
		if t.File == "" {
			return fmt.Errorf("schema manifest table %q has no file name", t.Name)
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("schema manifest table %q has no columns", t.Name)
		}
		for _, c := range t.Columns {
			if c.Type != ColumnTypeString && c.Type != ColumnTypeFloat {
				return fmt.Errorf("schema manifest table %q column %q has unknown type %q", t.Name, c.Name, c.Type)
			}
		}
	}
	for _, name := range required {
		if !seen[name] {
			return fmt.Errorf("schema manifest is missing table %q", name)
		}
	}
	return nil
}

// Table returns the declaration for the named table, or nil when the
// manifest does not declare it.
func (s *Schema) Table(name string) *TableSchema {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
