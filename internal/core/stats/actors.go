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

// This file, `actors.go`, implements the two aggregations over the
// character table: the actor-count histogram and the actor height
// distribution.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// ActorCountHistogram groups character rows by movie, counts the rows per
// movie (the movie's actor count), and then computes how many movies share
// each distinct actor count. The result is sorted ascending by actor count,
// and its movie counts sum to the number of distinct movies present in the
// character table.
//
// Inputs:
//   - characters: The character table. Nil yields a missing-data error.
//
// Outputs:
//   - []ActorCountBucket: One row per distinct actor count, ascending.
//   - error: Only the missing-data guard; an empty table produces an empty
//     result.
func ActorCountHistogram(characters []model.Character) ([]ActorCountBucket, error) {
	if characters == nil {
		return nil, NewMissingDataError(corpus.TableCharacters)
	}

	perMovie := make(map[string]int)
	for i := range characters {
		perMovie[characters[i].WikipediaMovieId]++
	}
	histogram := make(map[int]int)
	for _, actorCount := range perMovie {
		histogram[actorCount]++
	}

	out := make([]ActorCountBucket, 0, len(histogram))
	for actorCount, movieCount := range histogram {
		out = append(out, ActorCountBucket{ActorCount: actorCount, MovieCount: movieCount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorCount < out[j].ActorCount })
	return out, nil
}

// ObservedGenders returns the distinct non-empty gender codes present in
// the character table, sorted. The gender domain is discovered from the
// data on every call rather than hard-coded, so whatever codes a corpus
// revision carries are the codes the height distribution accepts.
func ObservedGenders(characters []model.Character) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 4)
	for i := range characters {
		if g := characters[i].ActorGender; g != "" && !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

// HeightDistribution counts actors at each distinct height value within the
// inclusive range [minHeight, maxHeight], optionally restricted to one
// gender. Rows missing a height or a gender are excluded before filtering,
// in every mode. The result is sorted ascending by height; zero surviving
// rows come back as an empty result, never an error, and it is the
// caller's job to check for that before rendering anything.
//
// Inputs:
//   - characters: The character table. Nil yields a missing-data error.
//   - gender: GenderAll, or one of the codes present in the data.
//   - minHeight: Inclusive lower bound in meters. Must be finite.
//   - maxHeight: Inclusive upper bound in meters. Must be finite and
//     strictly greater than minHeight.
//
// Outputs:
//   - []HeightBucket: One row per distinct surviving height, ascending.
//   - error: Invalid-argument when a bound is not finite, the bounds are
//     not strictly ordered, or the gender is neither GenderAll nor an
//     observed code (the message enumerates the valid choices).
func HeightDistribution(characters []model.Character, gender string, minHeight, maxHeight float64) ([]HeightBucket, error) {
	if characters == nil {
		return nil, NewMissingDataError(corpus.TableCharacters)
	}
	if math.IsNaN(minHeight) || math.IsInf(minHeight, 0) ||
		math.IsNaN(maxHeight) || math.IsInf(maxHeight, 0) {
		return nil, NewInvalidArgumentError("height bounds must be finite numbers")
	}
	if minHeight >= maxHeight {
		return nil, NewInvalidArgumentError(fmt.Sprintf(
			"minimum height %v must be strictly less than maximum height %v", minHeight, maxHeight))
	}
	if gender != GenderAll {
		valid := ObservedGenders(characters)
		found := false
		for _, g := range valid {
			if g == gender {
				found = true
				break
			}
		}
		if !found {
			return nil, NewInvalidArgumentError(fmt.Sprintf(
				"gender %q is not present in the data: valid values are %v",
				gender, append([]string{GenderAll}, valid...)))
		}
	}

	counts := make(map[float64]int)
	for i := range characters {
		c := &characters[i]
		if c.ActorGender == "" || c.ActorHeight == nil {
			continue
		}
		if gender != GenderAll && c.ActorGender != gender {
			continue
		}
		h := *c.ActorHeight
		if h < minHeight || h > maxHeight {
			continue
		}
		counts[h]++
	}

	out := make([]HeightBucket, 0, len(counts))
	for h, count := range counts {
		out = append(out, HeightBucket{HeightMeters: h, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HeightMeters < out[j].HeightMeters })
	return out, nil
}
