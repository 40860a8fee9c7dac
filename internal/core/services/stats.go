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
// and CLI surfaces and the corpus data layer. This file, `stats.go`, defines
// the StatsService, which is responsible for answering the dashboard's
// aggregation questions. It acts as a data access layer over the immutable
// corpus store: each method delegates to one of the pure aggregation
// routines and memoizes the successful result in a TTL cache, so repeated
// dashboard refreshes do not recompute full-table scans.
package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
)

// StatsService encapsulates the corpus store and the result cache needed to
// serve aggregation queries. The store is immutable after load, so cached
// results never go stale in content; the TTL exists to bound memory across
// many distinct parameter combinations, not to invalidate data.
type StatsService struct {
	store *corpus.Store // The fully loaded, immutable corpus tables.
	cache *cache.Cache  // TTL cache of successful aggregation results, keyed by the Key* formats.
}

// NewStatsService is the constructor for the stats service.
//
// Inputs:
//   - store: The loaded corpus store to aggregate over.
//   - ttl: How long cached results stay fresh. Expired entries are swept at
//     twice the TTL.
//
// Outputs:
//   - *StatsService: A pointer to the newly created service.
func NewStatsService(store *corpus.Store, ttl time.Duration) *StatsService {
	return &StatsService{
		store: store,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Store exposes the underlying corpus store for callers that need direct
// table access, such as the movie lookup routes.
func (s *StatsService) Store() *corpus.Store {
	return s.store
}

// Report returns the load report produced when the store was built.
func (s *StatsService) Report() *corpus.LoadReport {
	return s.store.Report()
}

// GetMovie retrieves a single movie joined with its plot summary by
// Wikipedia ID.
//
// Inputs:
//   - id: The movie's Wikipedia ID.
//
// Outputs:
//   - *model.MovieSummaryView: The merged movie and summary record.
//   - error: A not-found error when the ID is absent from the join.
func (s *StatsService) GetMovie(id string) (*model.MovieSummaryView, error) {
	view, ok := s.store.MovieSummary(id)
	if !ok {
		return nil, stats.NewNotFoundError("movie", id)
	}
	return &view, nil
}

// TopGenres returns the n most frequent genres across the movie table,
// serving from cache when a fresh entry exists.
//
// Inputs:
//   - n: How many genres to return. Must be positive and no larger than the
//     number of distinct genres in the corpus.
//
// Outputs:
//   - []stats.GenreCount: The ranked genre counts.
//   - error: An invalid-argument, missing-data, or not-enough-data error.
func (s *StatsService) TopGenres(n int) ([]stats.GenreCount, error) {
	key := fmt.Sprintf(KeyTopGenres, n)
	if hit, ok := s.cache.Get(key); ok {
		return hit.([]stats.GenreCount), nil
	}
	out, err := stats.TopGenres(s.store.Movies(), n)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, out)
	return out, nil
}

// ActorCountHistogram returns the distribution of credited-actor counts per
// movie, serving from cache when a fresh entry exists.
//
// Outputs:
//   - []stats.ActorCountBucket: The histogram rows, ascending by actor count.
//   - error: A missing-data error when the character table is absent.
func (s *StatsService) ActorCountHistogram() ([]stats.ActorCountBucket, error) {
	if hit, ok := s.cache.Get(KeyActorHistogram); ok {
		return hit.([]stats.ActorCountBucket), nil
	}
	out, err := stats.ActorCountHistogram(s.store.Characters())
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(KeyActorHistogram, out)
	return out, nil
}

// HeightDistribution returns the actor height distribution for a gender
// selector and an inclusive height range, serving from cache when a fresh
// entry exists.
//
// Inputs:
//   - gender: stats.GenderAll or one of the gender codes observed in the
//     character table.
//   - minHeight: The inclusive lower bound, in meters.
//   - maxHeight: The inclusive upper bound, in meters.
//
// Outputs:
//   - []stats.HeightBucket: The distribution rows, ascending by height.
//   - error: An invalid-argument or missing-data error.
func (s *StatsService) HeightDistribution(gender string, minHeight, maxHeight float64) ([]stats.HeightBucket, error) {
	key := fmt.Sprintf(KeyHeights, gender, minHeight, maxHeight)
	if hit, ok := s.cache.Get(key); ok {
		return hit.([]stats.HeightBucket), nil
	}
	out, err := stats.HeightDistribution(s.store.Characters(), gender, minHeight, maxHeight)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, out)
	return out, nil
}

// ReleasesPerYear returns the count of releases per four-digit year,
// optionally filtered to a single genre, serving from cache when a fresh
// entry exists.
//
// Inputs:
//   - genre: The genre label to filter by, or "" for all movies.
//
// Outputs:
//   - []stats.YearCount: The series rows, ascending by year.
//   - error: A missing-data error when the movie table is absent.
func (s *StatsService) ReleasesPerYear(genre string) ([]stats.YearCount, error) {
	key := fmt.Sprintf(KeyReleases, genre)
	if hit, ok := s.cache.Get(key); ok {
		return hit.([]stats.YearCount), nil
	}
	out, err := stats.ReleasesPerYear(s.store.Movies(), genre)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, out)
	return out, nil
}

// BirthBuckets returns the distribution of actor birth dates grouped by
// year or by month, serving from cache when a fresh entry exists. Unknown
// grouping modes are normalized to the year grouping before the cache key
// is built, so every spelling of "not month" shares one entry.
//
// Inputs:
//   - grouping: stats.GroupByYear, stats.GroupByMonth, or anything else
//     (treated as year).
//
// Outputs:
//   - []stats.BirthBucket: The bucket rows, ascending by bucket label.
//   - error: A missing-data error when the character table is absent.
func (s *StatsService) BirthBuckets(grouping string) ([]stats.BirthBucket, error) {
	if grouping != stats.GroupByMonth {
		grouping = stats.GroupByYear
	}
	key := fmt.Sprintf(KeyBirths, grouping)
	if hit, ok := s.cache.Get(key); ok {
		return hit.([]stats.BirthBucket), nil
	}
	out, err := stats.BirthBuckets(s.store.Characters(), grouping)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, out)
	return out, nil
}
