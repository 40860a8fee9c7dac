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
// This file verifies that every routine is a pure function of its inputs:
// calling it twice with identical inputs yields identical results and
// leaves the input tables untouched. The dashboard calls these routines
// from concurrent request handlers, so any hidden state would surface as
// flaky responses.
package stats_test

import (
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAggregationsAreDeterministic runs each routine twice over the same
// fixture and requires identical output both times.
func TestAggregationsAreDeterministic(t *testing.T) {
	movies := genreTestMovies()
	characters := heightTestCharacters()

	first, err := stats.TopGenres(movies, 3)
	require.NoError(t, err)
	second, err := stats.TopGenres(movies, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	h1, err := stats.HeightDistribution(characters, stats.GenderAll, 1.0, 2.0)
	require.NoError(t, err)
	h2, err := stats.HeightDistribution(characters, stats.GenderAll, 1.0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	r1, err := stats.ReleasesPerYear(releaseTestMovies(), "Drama")
	require.NoError(t, err)
	r2, err := stats.ReleasesPerYear(releaseTestMovies(), "Drama")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	b1, err := stats.BirthBuckets(birthTestCharacters(), stats.GroupByMonth)
	require.NoError(t, err)
	b2, err := stats.BirthBuckets(birthTestCharacters(), stats.GroupByMonth)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

// TestAggregationsDoNotMutateInputs verifies the input tables come back
// bit-identical after a full pass of every routine.
func TestAggregationsDoNotMutateInputs(t *testing.T) {
	movies := genreTestMovies()
	moviesBefore := genreTestMovies()
	characters := heightTestCharacters()
	charactersBefore := heightTestCharacters()

	_, err := stats.TopGenres(movies, 1)
	require.NoError(t, err)
	_, err = stats.ReleasesPerYear(movies, "Drama")
	require.NoError(t, err)
	_, err = stats.HeightDistribution(characters, "F", 1.0, 2.0)
	require.NoError(t, err)
	_, err = stats.ActorCountHistogram(characters)
	require.NoError(t, err)

	assert.Equal(t, moviesBefore, movies)
	assert.Equal(t, charactersBefore, characters)
}
