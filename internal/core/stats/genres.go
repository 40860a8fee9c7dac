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

// This file, `genres.go`, implements the top-N genre counter.
package stats

import (
	"fmt"
	"sort"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// TopGenres decodes the genre field of every movie, counts how often each
// genre label occurs across the whole table, and returns the n most
// frequent labels with their counts. Ties are broken by first-encountered
// order (scanning the table top to bottom, labels in encoded order within a
// row), so identical inputs always produce identical output.
//
// Rows whose genre field is empty or malformed contribute nothing; one bad
// row never fails the aggregation.
//
// Inputs:
//   - movies: The movie table. A nil table means the corpus was never
//     loaded and yields a missing-data error.
//   - n: How many genres to return. Must be at least 1.
//
// Outputs:
//   - []GenreCount: The n most frequent genres, descending by count.
//   - error: Invalid-argument when n < 1; not-enough-data when n exceeds
//     the number of distinct genre labels observed. The latter is a strict,
//     deliberate policy: the caller asked for more categories than exist,
//     and silently returning fewer rows would hide that.
func TopGenres(movies []model.Movie, n int) ([]GenreCount, error) {
	if movies == nil {
		return nil, NewMissingDataError(corpus.TableMovies)
	}
	if n < 1 {
		return nil, NewInvalidArgumentError(fmt.Sprintf("n must be a positive integer, got %d", n))
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i := range movies {
		for _, label := range corpus.LenientGenreLabels(movies[i].Genres) {
			if _, ok := counts[label]; !ok {
				firstSeen[label] = len(firstSeen)
			}
			counts[label]++
		}
	}

	if n > len(counts) {
		return nil, NewNotEnoughDataError(fmt.Sprintf(
			"%d is larger than the number of distinct genres available (%d)", n, len(counts)))
	}

	out := make([]GenreCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, GenreCount{Genre: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Genre] < firstSeen[out[j].Genre]
	})
	return out[:n], nil
}
