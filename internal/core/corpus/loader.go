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

// This file, `loader.go`, reads the extracted corpus files into the typed
// store. All schema enforcement happens here, once: a missing file fails the
// load outright, and any row whose field count disagrees with the declared
// column layout is quarantined (counted, logged, and skipped) instead of
// being patched up downstream. Numeric cells are cleaned at the same
// boundary, so every query after this point works on typed values and never
// re-validates the raw text.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// quarantineLogLimit caps how many quarantined rows are logged per table so
// a systematically drifted file cannot flood the log.
const quarantineLogLimit = 5

// TableLoadReport records the outcome of loading one corpus table.
type TableLoadReport struct {
	Table       string `json:"table"`        // Logical table name.
	File        string `json:"file"`         // File the rows came from.
	RowsLoaded  int    `json:"rows_loaded"`  // Rows that matched the schema and were kept.
	RowsSkipped int    `json:"rows_skipped"` // Rows quarantined for not matching the schema.
}

// LoadReport aggregates the per-table outcomes of one load. It is kept on
// the store afterwards so operators can inspect what the process is actually
// serving.
type LoadReport struct {
	Tables []TableLoadReport `json:"tables"`
}

// Table returns the report entry for the named table, or nil when the table
// was not part of the load.
func (r *LoadReport) Table(name string) *TableLoadReport {
	for i := range r.Tables {
		if r.Tables[i].Table == name {
			return &r.Tables[i]
		}
	}
	return nil
}

// TotalRows returns the number of rows kept across all tables.
func (r *LoadReport) TotalRows() int {
	total := 0
	for i := range r.Tables {
		total += r.Tables[i].RowsLoaded
	}
	return total
}

// Loader reads the five corpus files from an extracted corpus directory and
// produces the immutable store.
type Loader struct {
	schema *Schema
	dir    string
}

// NewLoader creates a loader over the given directory, which must contain
// the corpus files named by the schema. A nil schema selects the embedded
// default manifest.
func NewLoader(dir string, schema *Schema) *Loader {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Loader{schema: schema, dir: dir}
}

// Load reads all five tables and builds the store. The error is non-nil
// when any corpus file is missing or unreadable; individual malformed rows
// are quarantined rather than failing the load.
func (l *Loader) Load() (*Store, error) {
	report := &LoadReport{}

	movies, err := loadTable(l, TableMovies, report, parseMovieRow)
	if err != nil {
		return nil, err
	}
	characters, err := loadTable(l, TableCharacters, report, parseCharacterRow)
	if err != nil {
		return nil, err
	}
	nameClusters, err := loadTable(l, TableNameClusters, report, parseNameClusterRow)
	if err != nil {
		return nil, err
	}
	plotSummaries, err := loadTable(l, TablePlotSummaries, report, parsePlotSummaryRow)
	if err != nil {
		return nil, err
	}
	tropeClusters, err := loadTable(l, TableTropeClusters, report, parseTropeClusterRow)
	if err != nil {
		return nil, err
	}

	return NewStore(movies, characters, nameClusters, plotSummaries, tropeClusters, report), nil
}

// loadTable reads one headerless tab-separated file row by row, enforcing
// the declared column count and converting each surviving row with the
// supplied parse function.
func loadTable[T any](l *Loader, name string, report *LoadReport, parse func([]string) T) ([]T, error) {
	ts := l.schema.Table(name)
	if ts == nil {
		return nil, fmt.Errorf("schema manifest does not declare table %q", name)
	}

	path := filepath.Join(l.dir, ts.File)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus table %q: %w", name, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close corpus file %s: %v\n", path, err)
		}
	}()

	r := csv.NewReader(f)
	r.Comma = '\t'
	// The corpus embeds stray double quotes in plot and title text; lazy
	// quoting keeps those rows readable, mirroring how the files were
	// written in the first place.
	r.LazyQuotes = true
	// Column-count enforcement is ours, against the schema manifest, so the
	// reader itself must not reject short or long rows.
	r.FieldsPerRecord = -1

	rows := make([]T, 0, 1024)
	entry := TableLoadReport{Table: name, File: ts.File}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				entry.RowsSkipped++
				if entry.RowsSkipped <= quarantineLogLimit {
					log.Printf("quarantined unparsable row in %s: %v\n", ts.File, err)
				}
				continue
			}
			return nil, fmt.Errorf("reading corpus table %q: %w", name, err)
		}
		if len(row) != len(ts.Columns) {
			entry.RowsSkipped++
			if entry.RowsSkipped <= quarantineLogLimit {
				log.Printf("quarantined row in %s: got %d columns, schema declares %d\n", ts.File, len(row), len(ts.Columns))
			}
			continue
		}
		rows = append(rows, parse(row))
		entry.RowsLoaded++
	}

	report.Tables = append(report.Tables, entry)
	log.Printf("loaded corpus table %s: %d rows, %d quarantined\n", name, entry.RowsLoaded, entry.RowsSkipped)
	return rows, nil
}

// parseFloatCell cleans one numeric cell: empty and non-numeric text both
// become nil so that "missing" stays distinguishable from zero.
func parseFloatCell(cell string) *float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseMovieRow(row []string) model.Movie {
	return model.Movie{
		WikipediaId: row[0],
		FreebaseId:  row[1],
		Title:       row[2],
		ReleaseDate: row[3],
		Revenue:     parseFloatCell(row[4]),
		Runtime:     parseFloatCell(row[5]),
		Languages:   row[6],
		Countries:   row[7],
		Genres:      row[8],
	}
}

func parseCharacterRow(row []string) model.Character {
	return model.Character{
		WikipediaMovieId: row[0],
		FreebaseMovieId:  row[1],
		ReleaseDate:      row[2],
		CharacterName:    row[3],
		ActorDob:         row[4],
		ActorGender:      row[5],
		ActorHeight:      parseFloatCell(row[6]),
		ActorEthnicity:   row[7],
		ActorName:        row[8],
		ActorAge:         parseFloatCell(row[9]),
		CharActorMapId:   row[10],
		CharacterMapId:   row[11],
		ActorMapId:       row[12],
	}
}

func parseNameClusterRow(row []string) model.NameCluster {
	return model.NameCluster{
		CharacterName: row[0],
		FreebaseMapId: row[1],
	}
}

func parsePlotSummaryRow(row []string) model.PlotSummary {
	return model.PlotSummary{
		WikipediaId: row[0],
		Summary:     row[1],
	}
}

func parseTropeClusterRow(row []string) model.TropeCluster {
	return model.TropeCluster{
		Trope:   row[0],
		Details: row[1],
	}
}
