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

// Package corpus_test contains the test suite for the corpus package. This
// file exercises the loader: schema enforcement, row quarantine, and the
// numeric cleaning performed at the load boundary.
package corpus_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCorpusFile writes one headerless tab-separated corpus file into the
// test directory.
func writeCorpusFile(t *testing.T, dir string, name string, rows [][]string) {
	t.Helper()
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644))
}

// writeTestCorpus lays down a small but complete corpus directory: every
// file the schema declares, with a handful of rows covering the cleaning
// and quarantine paths.
func writeTestCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeCorpusFile(t, dir, "movie.metadata.tsv", [][]string{
		// A fully populated row, using the first movie of the real corpus.
		{"975900", "/m/03vyhn", "Ghosts of Mars", "2001-08-24", "14010832", "98.0",
			`{"/m/02h40lc": "English Language"}`, `{"/m/09c7w0": "United States of America"}`,
			`{"/m/01jfsb": "Thriller", "/m/06n90": "Science Fiction"}`},
		// Empty revenue and non-numeric runtime must clean to nil.
		{"3196793", "/m/08yl5d", "Getting Away with Murder", "1996-04-12", "", "cc",
			`{"/m/02h40lc": "English Language"}`, `{"/m/09c7w0": "United States of America"}`,
			`{"/m/05p553": "Comedy"}`},
		// A row with an empty genre mapping.
		{"28463795", "/m/0crgdbh", "Brun bitter", "1988", "", "83.0",
			`{"/m/05f_3": "Norwegian Language"}`, `{"/m/05b4w": "Norway"}`, `{}`},
		// This row is one column short and must be quarantined.
		{"9363483", "/m/0285_cd", "White Of The Eye", "1987", "", "110.0",
			`{"/m/02h40lc": "English Language"}`, `{"/m/07ssc": "United Kingdom"}`},
	})

	writeCorpusFile(t, dir, "character.metadata.tsv", [][]string{
		{"975900", "/m/03vyhn", "2001-08-24", "Akooshay", "1958-08-26", "F", "1.62",
			"/m/044038p", "Wanda De Jesus", "42.0", "/m/0bgchxw", "/m/0bgcj3x", "/m/03wcfv7"},
		// Non-numeric height must clean to nil, empty gender stays empty.
		{"975900", "/m/03vyhn", "2001-08-24", "Lt. Melanie Ballard", "1974-08-15", "", "tall",
			"", "Natasha Henstridge", "27.0", "/m/0jys3m", "/m/0bgchn4", "/m/0346l4"},
		{"3196793", "/m/08yl5d", "1996-04-12", "", "1958-01-01", "M", "",
			"", "Dan Aykroyd", "38.0", "/m/03jl9kc", "", "/m/0dvmd"},
	})

	writeCorpusFile(t, dir, "name.clusters.txt", [][]string{
		{"Akooshay", "/m/0bgchxw"},
		{"Lt. Melanie Ballard", "/m/0jys3m"},
	})

	writeCorpusFile(t, dir, "plot_summaries.txt", [][]string{
		{"975900", "Set in the second half of the 22nd century, a Martian police unit is sent to pick up a homicidal criminal."},
		{"3196793", "A put-upon college professor discovers his neighbor may be a war criminal."},
	})

	writeCorpusFile(t, dir, "tvtropes.clusters.txt", [][]string{
		{"arrogant_kungfu_guy", `{"char": "Han Cho Bai", "movie": "Red 2", "id": "/m/0gwgbcb", "actor": "Byung-hun Lee"}`},
	})

	return dir
}

// TestLoaderLoad verifies a full load of a well-formed corpus directory:
// row counts, quarantine accounting, numeric cleaning, and the load report
// attached to the resulting store.
func TestLoaderLoad(t *testing.T) {
	dir := writeTestCorpus(t)

	store, err := corpus.NewLoader(dir, nil).Load()
	require.NoError(t, err)

	// Three movie rows survive; the short row is quarantined.
	movies := store.Movies()
	assert.Len(t, movies, 3)
	assert.Equal(t, "Ghosts of Mars", movies[0].Title)

	// Numeric cleaning: populated revenue parses, empty revenue and
	// non-numeric runtime become nil.
	require.NotNil(t, movies[0].Revenue)
	assert.Equal(t, 14010832.0, *movies[0].Revenue)
	assert.Nil(t, movies[1].Revenue)
	assert.Nil(t, movies[1].Runtime)

	// Character cleaning: a parseable height survives, garbage becomes nil.
	characters := store.Characters()
	assert.Len(t, characters, 3)
	require.NotNil(t, characters[0].ActorHeight)
	assert.Equal(t, 1.62, *characters[0].ActorHeight)
	assert.Nil(t, characters[1].ActorHeight)
	assert.Nil(t, characters[2].ActorHeight)

	// The remaining tables load completely.
	assert.Len(t, store.NameClusters(), 2)
	assert.Len(t, store.PlotSummaries(), 2)
	assert.Len(t, store.TropeClusters(), 1)

	// The load report reflects exactly what happened per table.
	report := store.Report()
	require.NotNil(t, report)
	movieReport := report.Table(corpus.TableMovies)
	require.NotNil(t, movieReport)
	assert.Equal(t, 3, movieReport.RowsLoaded)
	assert.Equal(t, 1, movieReport.RowsSkipped)
	assert.Equal(t, "movie.metadata.tsv", movieReport.File)
	assert.Equal(t, 3+3+2+2+1, report.TotalRows())
}

// TestLoaderMissingFile verifies that a corpus directory missing one of the
// declared files fails the whole load: schema problems are configuration
// faults and must never be silently absorbed.
func TestLoaderMissingFile(t *testing.T) {
	dir := writeTestCorpus(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "tvtropes.clusters.txt")))

	_, err := corpus.NewLoader(dir, nil).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), corpus.TableTropeClusters)
}

// TestLoaderGenderDiscovery verifies the store discovers the gender domain
// from the loaded character rows, ignoring empty cells.
func TestLoaderGenderDiscovery(t *testing.T) {
	dir := writeTestCorpus(t)

	store, err := corpus.NewLoader(dir, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "M"}, store.Genders())
}
