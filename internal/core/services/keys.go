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

// Package services contains the business logic that sits between the HTTP
// and CLI surfaces and the corpus data layer. This file, `keys.go`,
// centralizes the cache key formats used by the services. Storing the key
// formats as constants in a dedicated file keeps the two caches (the TTL
// statistics cache and the LRU augmentation cache) from ever colliding on a
// key, and makes it easy to see every cached shape in one place. The keys
// use `fmt.Sprintf` format verbs (e.g., %s, %d) as placeholders for the
// request parameters that will be injected at runtime.
package services

const (
	// KeyTopGenres caches the top-N genre result. The single placeholder is
	// the requested N: two requests for different depths are different
	// results, so they must not share an entry.
	KeyTopGenres = "stats:genres:top:%d"

	// KeyActorHistogram caches the actor-count histogram. The histogram
	// takes no parameters, so the key is a plain constant.
	KeyActorHistogram = "stats:actors:histogram"

	// KeyHeights caches the height distribution. The placeholders are the
	// gender selector and the inclusive height range. The float bounds are
	// formatted with `%g` so that 1.20 and 1.2 produce the same key.
	KeyHeights = "stats:actors:heights:%s:%g:%g"

	// KeyReleases caches the releases-per-year series. The placeholder is
	// the genre filter; the unfiltered series uses the empty string.
	KeyReleases = "stats:releases:%s"

	// KeyBirths caches the actor birth bucketing. The placeholder is the
	// grouping mode. Unknown modes are normalized to the year grouping
	// before the key is built, so "decade" and "year" share one entry.
	KeyBirths = "stats:births:%s"

	// KeyAugmentation caches completed augmentation envelopes. The
	// placeholders are the movie's Wikipedia ID, the augmentation kind, and
	// the style variant ("" for classifications). This mirrors the seed the
	// envelope IDs are derived from, so one cache entry corresponds to
	// exactly one deterministic envelope ID.
	KeyAugmentation = "augment:%s:%s:%s"
)
