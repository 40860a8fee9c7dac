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

// Package services_test contains the test suite for the services package.
// This file, `stats_service_test.go`, tests the StatsService: the wiring of
// each aggregation routine, the movie lookup, the pass-through of the error
// taxonomy, and the memoization of successful results.
package services_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/services"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
	test "github.com/cinemetrics/movie-corpus-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

// newStatsService builds a stats service over the fixture corpus with the
// TTL from the test configuration.
func newStatsService(t *testing.T) *services.StatsService {
	t.Helper()
	ttl := time.Duration(config.Server.StatsCacheTtlSeconds) * time.Second
	return services.NewStatsService(test.NewTestStore(t), ttl)
}

// TestStatsServiceTopGenres verifies the ranked genre counts over the
// fixture corpus and that a repeated request is served from the cache.
//
// Inputs:
//   - t: The testing framework's test handler.
func TestStatsServiceTopGenres(t *testing.T) {
	_, span := tracer.Start(ctx, "stats-service-top-genres-test")
	defer span.End()

	svc := newStatsService(t)

	out, err := svc.TopGenres(2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Thriller and Drama are tied at two movies each; Thriller appears
	// first in the table, so it ranks first.
	assert.Equal(t, stats.GenreCount{Genre: "Thriller", Count: 2}, out[0])
	assert.Equal(t, stats.GenreCount{Genre: "Drama", Count: 2}, out[1])

	// A second call must serve the memoized slice, not a recomputation.
	again, err := svc.TopGenres(2)
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, reflect.ValueOf(out).Pointer(), reflect.ValueOf(again).Pointer())

	span.SetStatus(codes.Ok, "passed - stats service top genres test")
}

// TestStatsServiceErrorsPassThrough verifies that the service surfaces the
// aggregation error taxonomy unchanged, so callers can keep mapping error
// kinds to HTTP statuses without knowing about the cache in between.
func TestStatsServiceErrorsPassThrough(t *testing.T) {
	_, span := tracer.Start(ctx, "stats-service-errors-test")
	defer span.End()

	svc := newStatsService(t)

	_, err := svc.TopGenres(0)
	assert.True(t, stats.IsInvalidArgument(err))

	// The fixture has seven distinct genres, so eight is one too many.
	_, err = svc.TopGenres(8)
	assert.True(t, stats.IsNotEnoughData(err))

	_, err = svc.HeightDistribution("X", 1.2, 2.2)
	require.True(t, stats.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), stats.GenderAll)

	span.SetStatus(codes.Ok, "passed - stats service errors test")
}

// TestStatsServiceHeights verifies the height distribution wiring for both
// the all-genders sentinel and a single gender code.
func TestStatsServiceHeights(t *testing.T) {
	_, span := tracer.Start(ctx, "stats-service-heights-test")
	defer span.End()

	svc := newStatsService(t)

	all, err := svc.HeightDistribution(stats.GenderAll, 1.2, 2.2)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, 1.62, all[0].HeightMeters)
	assert.Equal(t, 1.85, all[6].HeightMeters)

	women, err := svc.HeightDistribution("F", 1.2, 2.2)
	require.NoError(t, err)
	require.Len(t, women, 4)
	assert.Equal(t, 1.78, women[3].HeightMeters)

	span.SetStatus(codes.Ok, "passed - stats service heights test")
}

// TestStatsServiceSeries verifies the remaining aggregations in one pass:
// the actor-count histogram, the release series with and without a genre
// filter, and both birth groupings (including the fallback for an unknown
// grouping mode).
func TestStatsServiceSeries(t *testing.T) {
	_, span := tracer.Start(ctx, "stats-service-series-test")
	defer span.End()

	svc := newStatsService(t)

	histogram, err := svc.ActorCountHistogram()
	require.NoError(t, err)
	assert.Equal(t, []stats.ActorCountBucket{
		{ActorCount: 1, MovieCount: 1},
		{ActorCount: 2, MovieCount: 2},
		{ActorCount: 3, MovieCount: 1},
	}, histogram)

	releases, err := svc.ReleasesPerYear("")
	require.NoError(t, err)
	assert.Len(t, releases, 5)

	dramas, err := svc.ReleasesPerYear("Drama")
	require.NoError(t, err)
	assert.Equal(t, []stats.YearCount{
		{Year: 1983, Count: 1},
		{Year: 1988, Count: 1},
	}, dramas)

	months, err := svc.BirthBuckets(stats.GroupByMonth)
	require.NoError(t, err)
	require.Len(t, months, 6)
	assert.Equal(t, stats.BirthBucket{Bucket: "05", Count: 1}, months[0])
	assert.Equal(t, stats.BirthBucket{Bucket: "08", Count: 2}, months[3])

	// Unknown grouping modes fall back to the year grouping.
	years, err := svc.BirthBuckets("decade")
	require.NoError(t, err)
	require.Len(t, years, 8)
	assert.Equal(t, stats.BirthBucket{Bucket: "1939", Count: 1}, years[0])

	span.SetStatus(codes.Ok, "passed - stats service series test")
}

// TestStatsServiceGetMovie verifies the merged-view movie lookup: a known
// movie comes back joined with its plot summary, and both a missing ID and
// a movie with no summary report not-found.
func TestStatsServiceGetMovie(t *testing.T) {
	_, span := tracer.Start(ctx, "stats-service-get-movie-test")
	defer span.End()

	svc := newStatsService(t)

	view, err := svc.GetMovie("975900")
	require.NoError(t, err)
	assert.Equal(t, "Ghosts of Mars", view.Title)
	assert.Contains(t, view.Summary, "Martian police")

	_, err = svc.GetMovie("424242")
	assert.True(t, stats.IsNotFound(err))

	// "A Woman in Flames" exists in the movie table but has no plot
	// summary, so it is absent from the merged view.
	_, err = svc.GetMovie("261236")
	assert.True(t, stats.IsNotFound(err))

	span.SetStatus(codes.Ok, "passed - stats service get movie test")
}
