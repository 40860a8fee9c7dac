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

// This file, `store.go`, defines the in-memory tabular store. The corpus is
// loaded exactly once, the store is built, and from then on it is treated as
// immutable: accessors hand out the underlying table slices for zero-copy
// reads, and nothing in the application writes to them. That immutability is
// what makes the aggregation routines safe to call from concurrent request
// handlers without any locking.
package corpus

import (
	"sort"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// Store holds the five typed corpus tables plus the derived structures the
// application needs repeatedly: the movie and summary indexes for join
// lookups, and the gender domain discovered from the character table.
type Store struct {
	movies        []model.Movie
	characters    []model.Character
	nameClusters  []model.NameCluster
	plotSummaries []model.PlotSummary
	tropeClusters []model.TropeCluster

	movieIndex   map[string]int // Wikipedia ID to index into movies.
	summaryIndex map[string]int // Wikipedia ID to index into plotSummaries.
	genders      []string       // Sorted distinct non-empty gender codes.

	report *LoadReport
}

// NewStore builds a store from fully parsed tables. The loader is the only
// production caller; tests build small stores directly to exercise the
// aggregations against known data.
func NewStore(
	movies []model.Movie,
	characters []model.Character,
	nameClusters []model.NameCluster,
	plotSummaries []model.PlotSummary,
	tropeClusters []model.TropeCluster,
	report *LoadReport,
) *Store {
	s := &Store{
		movies:        movies,
		characters:    characters,
		nameClusters:  nameClusters,
		plotSummaries: plotSummaries,
		tropeClusters: tropeClusters,
		movieIndex:    make(map[string]int, len(movies)),
		summaryIndex:  make(map[string]int, len(plotSummaries)),
		report:        report,
	}
	// Index movies and summaries by Wikipedia ID. On duplicate IDs the first
	// row wins, matching the first-encounter determinism of the aggregations.
	for i := range movies {
		if _, ok := s.movieIndex[movies[i].WikipediaId]; !ok {
			s.movieIndex[movies[i].WikipediaId] = i
		}
	}
	for i := range plotSummaries {
		if _, ok := s.summaryIndex[plotSummaries[i].WikipediaId]; !ok {
			s.summaryIndex[plotSummaries[i].WikipediaId] = i
		}
	}
	// Discover the gender domain from the data rather than assuming a fixed
	// set of codes. Whatever distinct non-empty values the corpus holds is
	// what the height aggregation will accept.
	seen := make(map[string]bool)
	for i := range characters {
		if g := characters[i].ActorGender; g != "" && !seen[g] {
			seen[g] = true
			s.genders = append(s.genders, g)
		}
	}
	sort.Strings(s.genders)
	return s
}

// Movies returns the movie table. Callers must treat it as read-only.
func (s *Store) Movies() []model.Movie { return s.movies }

// Characters returns the character table. Callers must treat it as read-only.
func (s *Store) Characters() []model.Character { return s.characters }

// NameClusters returns the character name cluster table.
func (s *Store) NameClusters() []model.NameCluster { return s.nameClusters }

// PlotSummaries returns the plot summary table.
func (s *Store) PlotSummaries() []model.PlotSummary { return s.plotSummaries }

// TropeClusters returns the TV Tropes cluster table.
func (s *Store) TropeClusters() []model.TropeCluster { return s.tropeClusters }

// Genders returns the distinct non-empty gender codes observed in the
// character table, sorted. The slice is a copy and safe to modify.
func (s *Store) Genders() []string {
	out := make([]string, len(s.genders))
	copy(out, s.genders)
	return out
}

// Report returns the diagnostics recorded while the store was loaded, or
// nil for stores assembled directly from slices.
func (s *Store) Report() *LoadReport { return s.report }

// Movie looks up a movie by its Wikipedia ID.
func (s *Store) Movie(wikipediaId string) (model.Movie, bool) {
	i, ok := s.movieIndex[wikipediaId]
	if !ok {
		return model.Movie{}, false
	}
	return s.movies[i], true
}

// MovieSummary looks up the merged movie + plot summary view for one movie.
// It returns false when the movie is unknown or has no plot summary, since
// the merged view is an inner join.
func (s *Store) MovieSummary(wikipediaId string) (model.MovieSummaryView, bool) {
	mi, ok := s.movieIndex[wikipediaId]
	if !ok {
		return model.MovieSummaryView{}, false
	}
	si, ok := s.summaryIndex[wikipediaId]
	if !ok {
		return model.MovieSummaryView{}, false
	}
	return model.MovieSummaryView{
		Movie:   s.movies[mi],
		Summary: s.plotSummaries[si].Summary,
	}, true
}

// MergedSummaries materializes the full inner join of the movie and plot
// summary tables, in movie-table order. Movies without a summary drop out,
// as do summaries whose ID never appears in the movie table.
func (s *Store) MergedSummaries() []model.MovieSummaryView {
	out := make([]model.MovieSummaryView, 0, len(s.plotSummaries))
	for i := range s.movies {
		if si, ok := s.summaryIndex[s.movies[i].WikipediaId]; ok {
			out = append(out, model.MovieSummaryView{
				Movie:   s.movies[i],
				Summary: s.plotSummaries[si].Summary,
			})
		}
	}
	return out
}
