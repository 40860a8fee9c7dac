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

// Package stats_test contains the test suite for the aggregation routines.
// This file exercises the releases-per-year aggregation.
package stats_test

import (
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// releaseTestMovies builds a movie table with two 1999 releases, one 2001
// release, and one date no year can be extracted from.
func releaseTestMovies() []model.Movie {
	return []model.Movie{
		{WikipediaId: "1", Title: "A", ReleaseDate: "1999-05-01", Genres: `{'/m/0a': 'Drama'}`},
		{WikipediaId: "2", Title: "B", ReleaseDate: "1999", Genres: `{'/m/0b': 'Comedy'}`},
		{WikipediaId: "3", Title: "C", ReleaseDate: "2001-12-25", Genres: `{'/m/0a': 'Drama'}`},
		{WikipediaId: "4", Title: "D", ReleaseDate: "unknown", Genres: `{'/m/0a': 'Drama'}`},
	}
}

// TestReleasesPerYear verifies the unfiltered aggregation: years extracted
// from full dates and bare years alike, the unparseable date dropped, and
// exactly two result rows sorted ascending.
func TestReleasesPerYear(t *testing.T) {
	out, err := stats.ReleasesPerYear(releaseTestMovies(), "")
	require.NoError(t, err)
	assert.Equal(t, []stats.YearCount{
		{Year: 1999, Count: 2},
		{Year: 2001, Count: 1},
	}, out)
}

// TestReleasesPerYearGenreFilter verifies the genre filter keeps only
// movies whose decoded genre list contains the requested label. The Drama
// movie with an unparseable date still drops out on the year rule.
func TestReleasesPerYearGenreFilter(t *testing.T) {
	out, err := stats.ReleasesPerYear(releaseTestMovies(), "Drama")
	require.NoError(t, err)
	assert.Equal(t, []stats.YearCount{
		{Year: 1999, Count: 1},
		{Year: 2001, Count: 1},
	}, out)
}

// TestReleasesPerYearUnknownGenre verifies a genre absent from the data
// yields an empty result, not an error: there is nothing invalid about
// asking for a rare genre.
func TestReleasesPerYearUnknownGenre(t *testing.T) {
	out, err := stats.ReleasesPerYear(releaseTestMovies(), "Screwball comedy")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Len(t, out, 0)
}

// TestReleasesPerYearMissingTable verifies the schema-drift guard.
func TestReleasesPerYearMissingTable(t *testing.T) {
	_, err := stats.ReleasesPerYear(nil, "")
	require.Error(t, err)
	assert.True(t, stats.IsMissingData(err))
}
