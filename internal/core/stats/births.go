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

// This file, `births.go`, implements the actor birth bucketing aggregation.
package stats

import (
	"regexp"
	"sort"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// birthMonthPattern extracts the two-digit month that follows a four-digit
// year and a dash in loosely formatted birthdate text ("1974-05-15" yields
// "05").
var birthMonthPattern = regexp.MustCompile(`\d{4}-(\d{2})`)

// BirthBuckets counts actors per birth bucket. In year mode the bucket is
// the first four-digit run of the birthdate text; in month mode it is the
// two-digit month following the year and a dash, so bare-year birthdates
// drop out of month mode. Rows with no parseable component are dropped
// rather than failing the aggregation.
//
// Any grouping value other than GroupByMonth behaves as GroupByYear. That
// is a long-standing quirk of the dashboards this serves, kept as-is so a
// stale selector never turns into a hard failure.
//
// Inputs:
//   - characters: The character table. Nil yields a missing-data error.
//   - grouping: GroupByYear, GroupByMonth, or anything (treated as year).
//
// Outputs:
//   - []BirthBucket: One row per bucket with surviving actors, sorted
//     ascending by bucket text (which is numeric order for fixed-width
//     year and month strings).
//   - error: Only the missing-data guard.
func BirthBuckets(characters []model.Character, grouping string) ([]BirthBucket, error) {
	if characters == nil {
		return nil, NewMissingDataError(corpus.TableCharacters)
	}

	byMonth := grouping == GroupByMonth
	counts := make(map[string]int)
	for i := range characters {
		dob := characters[i].ActorDob
		if byMonth {
			m := birthMonthPattern.FindStringSubmatch(dob)
			if m == nil {
				continue
			}
			counts[m[1]]++
		} else {
			y := yearPattern.FindString(dob)
			if y == "" {
				continue
			}
			counts[y]++
		}
	}

	out := make([]BirthBucket, 0, len(counts))
	for bucket, count := range counts {
		out = append(out, BirthBucket{Bucket: bucket, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}
