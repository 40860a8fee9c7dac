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

// This file, `releases.go`, implements the releases-per-year aggregation.
package stats

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// yearPattern matches the first run of four digits in loosely formatted
// date text. The corpus mixes full ISO dates, bare years, and noise, so the
// year is whatever four-digit run appears first.
var yearPattern = regexp.MustCompile(`\d{4}`)

// ReleasesPerYear counts movies per release year, optionally restricted to
// movies whose decoded genre list contains the given genre label. Records
// with no extractable four-digit year are dropped, as are records whose
// genre field fails to decode when a filter is active. A genre absent from
// the data simply matches nothing: the result is empty, not an error.
//
// Inputs:
//   - movies: The movie table. Nil yields a missing-data error.
//   - genre: Exact genre label to filter on, or "" for all movies.
//
// Outputs:
//   - []YearCount: One row per release year with surviving movies, sorted
//     ascending by year.
//   - error: Only the missing-data guard.
func ReleasesPerYear(movies []model.Movie, genre string) ([]YearCount, error) {
	if movies == nil {
		return nil, NewMissingDataError(corpus.TableMovies)
	}

	counts := make(map[int]int)
	for i := range movies {
		m := &movies[i]
		if genre != "" && !movieHasGenre(m, genre) {
			continue
		}
		match := yearPattern.FindString(m.ReleaseDate)
		if match == "" {
			continue
		}
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		counts[year]++
	}

	out := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		out = append(out, YearCount{Year: year, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// movieHasGenre reports whether the movie's decoded genre list contains the
// label. Undecodable genre fields match nothing.
func movieHasGenre(m *model.Movie, genre string) bool {
	for _, label := range corpus.LenientGenreLabels(m.Genres) {
		if label == genre {
			return true
		}
	}
	return false
}
