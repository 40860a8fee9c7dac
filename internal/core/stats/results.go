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

// This file, `results.go`, defines the transient result tables the
// aggregation routines return, along with the parameter constants shared
// across routines. Every routine produces a fresh slice of one of these row
// types; nothing here refers back into the corpus tables, so results stay
// valid regardless of what the caller does next.
package stats

// GenderAll is the sentinel gender selector meaning "do not filter by
// gender". Any other selector must be one of the gender codes actually
// observed in the character table.
const GenderAll = "All"

// Grouping modes for the birth bucketing routine. Any unrecognized mode
// falls back to grouping by year, which mirrors how the dashboards have
// always treated the selector.
const (
	GroupByYear  = "year"
	GroupByMonth = "month"
)

// GenreCount is one row of the top-genre result: a genre label and the
// number of movies mentioning it.
type GenreCount struct {
	Genre string `json:"genre"` // The decoded genre label.
	Count int    `json:"count"` // Occurrences across all decodable movie rows.
}

// ActorCountBucket is one row of the actor-count histogram: for movies with
// exactly ActorCount credited characters, how many such movies exist.
type ActorCountBucket struct {
	ActorCount int `json:"actor_count"` // Number of character rows a movie has.
	MovieCount int `json:"movie_count"` // Number of movies with exactly that many rows.
}

// HeightBucket is one row of the height distribution: a distinct height
// value and the number of actors measured at it.
type HeightBucket struct {
	HeightMeters float64 `json:"height_meters"` // The exact height value from the corpus, in meters.
	Count        int     `json:"count"`         // Number of surviving character rows at that height.
}

// YearCount is one row of the releases-per-year result.
type YearCount struct {
	Year  int `json:"year"`  // The four-digit release year.
	Count int `json:"count"` // Number of movies released that year.
}

// BirthBucket is one row of the birth bucketing result. The bucket is kept
// as text because it is either a four-digit year or a two-digit month,
// depending on the grouping mode.
type BirthBucket struct {
	Bucket string `json:"bucket"` // "1974" in year mode, "05" in month mode.
	Count  int    `json:"count"`  // Number of actors born in that bucket.
}
