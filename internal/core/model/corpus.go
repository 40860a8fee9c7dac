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

// Package model defines the core data structures for the application.
// This file, `corpus.go`, contains the typed row records for the five flat
// files of the CMU Movie Summary Corpus. The corpus ships as headerless
// tab-separated files, so every column is positional; the loader assigns
// positions to the named fields below and performs the numeric cleaning
// (empty or malformed cells become nil pointers rather than zero values,
// so "missing" stays distinguishable from "zero").
package model

// Movie is one row of movie.metadata.tsv. Identifiers are kept as strings:
// Wikipedia IDs are numeric in the source data but are never used
// arithmetically, and Freebase IDs are opaque "/m/..." tokens.
type Movie struct {
	WikipediaId string   `json:"wikipedia_id"`            // Wikipedia article ID, the corpus-wide movie key.
	FreebaseId  string   `json:"freebase_id"`             // Freebase machine ID for the movie (e.g., "/m/03vyhn").
	Title       string   `json:"title"`                   // The movie name as it appears in the corpus.
	ReleaseDate string   `json:"release_date,omitempty"`  // Raw release date text. May be "YYYY-MM-DD", "YYYY", or empty.
	Revenue     *float64 `json:"revenue,omitempty"`       // Box office revenue in USD. Nil when the cell is empty.
	Runtime     *float64 `json:"runtime,omitempty"`       // Runtime in minutes. Nil when the cell is empty.
	Languages   string   `json:"languages,omitempty"`     // Raw encoded mapping of Freebase ID to language name.
	Countries   string   `json:"countries,omitempty"`     // Raw encoded mapping of Freebase ID to country name.
	Genres      string   `json:"genres,omitempty"`        // Raw encoded mapping of Freebase ID to genre label. Decoded on demand by the corpus package.
}

// Character is one row of character.metadata.tsv: a single character/actor
// pairing within a movie. A movie contributes one row per credited
// character, which is what the actor-count aggregations group over.
type Character struct {
	WikipediaMovieId string   `json:"wikipedia_movie_id"`             // Wikipedia article ID of the movie, joins to Movie.WikipediaId.
	FreebaseMovieId  string   `json:"freebase_movie_id"`              // Freebase machine ID of the movie.
	ReleaseDate      string   `json:"release_date,omitempty"`         // Raw movie release date text, duplicated from the movie table.
	CharacterName    string   `json:"character_name,omitempty"`       // Name of the character. Often empty for uncredited roles.
	ActorDob         string   `json:"actor_dob,omitempty"`            // Raw actor date of birth text. May be "YYYY-MM-DD", "YYYY", or empty.
	ActorGender      string   `json:"actor_gender,omitempty"`         // Gender code as recorded in the corpus ("F", "M", ...). Empty means unknown.
	ActorHeight      *float64 `json:"actor_height_meters,omitempty"`  // Actor height in meters. Nil when missing or non-numeric in the source.
	ActorEthnicity   string   `json:"actor_ethnicity,omitempty"`      // Freebase ID of the actor's ethnicity.
	ActorName        string   `json:"actor_name,omitempty"`           // Name of the actor.
	ActorAge         *float64 `json:"actor_age_at_release,omitempty"` // Actor age at the movie release. Nil when missing; negative values exist in the source and are kept as-is.
	CharActorMapId   string   `json:"char_actor_map_id,omitempty"`    // Freebase character/actor map ID.
	CharacterMapId   string   `json:"character_map_id,omitempty"`     // Freebase character ID.
	ActorMapId       string   `json:"actor_map_id,omitempty"`         // Freebase actor ID.
}

// NameCluster is one row of name.clusters.txt: a character name paired with
// the Freebase map ID of one instance of that character.
type NameCluster struct {
	CharacterName string `json:"character_name"`  // The clustered character name.
	FreebaseMapId string `json:"freebase_map_id"` // Freebase character/actor map ID of the instance.
}

// PlotSummary is one row of plot_summaries.txt: the Wikipedia plot summary
// text for a movie.
type PlotSummary struct {
	WikipediaId string `json:"wikipedia_id"` // Wikipedia article ID of the movie, joins to Movie.WikipediaId.
	Summary     string `json:"summary"`      // The full plot summary text.
}

// TropeCluster is one row of tvtropes.clusters.txt: a TV Tropes character
// type paired with a JSON payload identifying one character/movie/actor
// instance of the trope. The payload is kept as raw JSON text because no
// aggregation reaches into it.
type TropeCluster struct {
	Trope   string `json:"trope"`   // The trope label (e.g., "arrogant_kungfu_guy").
	Details string `json:"details"` // Raw JSON payload with char, movie, id and actor fields.
}

// MovieSummaryView is the merged movie + plot summary record produced by an
// inner join on the Wikipedia ID. Movies without a summary, and summaries
// whose ID never appears in the movie table, do not produce a view row.
type MovieSummaryView struct {
	Movie
	Summary string `json:"summary"` // The plot summary text joined onto the movie record.
}
