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

// Package main contains the dashboard server. This file, `dashboard_test.go`,
// tests the HTTP surface end to end against the fixture corpus: route
// registration, parameter parsing, the JSON shapes of the result tables, and
// the mapping of the aggregation error taxonomy onto HTTP statuses. The
// augmentation routes run against a fake generative model.
package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/services"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
	test "github.com/cinemetrics/movie-corpus-insights/internal/testutil"
)

// newTestRouter wires the package-level state manager to the fixture corpus
// and fake generative models, then builds a router with the production
// route registration. Tests drive it through httptest.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	config := test.GetConfig()
	store := test.NewTestStore(t)

	state.config = config
	state.statsService = services.NewStatsService(store, time.Second)

	classify := workflow.NewPlotAugmentationPipeline(
		"dashboard-test-classify",
		model.AugmentationKindClassify,
		config.PromptTemplates.ClassifyPrompt,
		config,
		test.NewFakeContentGenerator(test.GetTestClassificationText()),
		"fake-classifier")
	rewrite := workflow.NewPlotAugmentationPipeline(
		"dashboard-test-rewrite",
		model.AugmentationKindRewrite,
		config.PromptTemplates.RewritePrompt,
		config,
		test.NewFakeContentGenerator(test.GetTestRewriteText()),
		"fake-narrator")
	batch := workflow.NewBatchClassifyWorkflow(
		config.PromptTemplates.ClassifyPrompt,
		test.NewFakeContentGenerator(test.GetTestClassificationText()),
		"fake-classifier",
		config.Application.ThreadPoolSize)

	augmentService, err := services.NewAugmentService(config, store, classify, rewrite, batch)
	require.NoError(t, err)
	state.augmentService = augmentService

	gin.SetMode(gin.TestMode)
	r := gin.New()
	apiV1 := r.Group("/api/v1")
	{
		Dashboard(apiV1)
		MovieRouter(apiV1)
	}
	return r
}

// doRequest runs one request through the router and returns the recorded
// response.
func doRequest(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestStatsRoutes exercises the five aggregation endpoints on the happy
// path and spot-checks the JSON shapes against the fixture corpus.
//
// Inputs:
//   - t: The testing framework's test handler.
func TestStatsRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/stats/genres/top?n=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var genres []stats.GenreCount
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &genres))
	assert.Equal(t, []stats.GenreCount{
		{Genre: "Thriller", Count: 2},
		{Genre: "Drama", Count: 2},
	}, genres)

	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/actors/count-histogram", "")
	require.Equal(t, http.StatusOK, w.Code)
	var histogram []stats.ActorCountBucket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &histogram))
	assert.Len(t, histogram, 3)

	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/actors/heights?gender=F&min=1.2&max=2.2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var heights []stats.HeightBucket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &heights))
	assert.Len(t, heights, 4)

	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/releases?genre=Drama", "")
	require.Equal(t, http.StatusOK, w.Code)
	var releases []stats.YearCount
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &releases))
	assert.Equal(t, []stats.YearCount{{Year: 1983, Count: 1}, {Year: 1988, Count: 1}}, releases)

	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/births?group=month", "")
	require.Equal(t, http.StatusOK, w.Code)
	var births []stats.BirthBucket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &births))
	assert.Len(t, births, 6)
}

// TestStatsRoutesEmptyResult verifies that a request surviving zero rows
// yields 200 with a literal empty JSON array, never null and never an
// error.
func TestStatsRoutesEmptyResult(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/stats/actors/heights?gender=All&min=1.9&max=2.2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

// TestStatsRoutesErrorMapping verifies the taxonomy-to-status mapping:
// invalid arguments are 400, a depth exceeding the distinct genre count is
// 422, and the error payload carries the machine-readable code.
func TestStatsRoutesErrorMapping(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/stats/genres/top?n=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/genres/top?n=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/genres/top?n=8", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_ENOUGH_DATA", body["code"])

	// An unknown gender names the valid choices in the error message.
	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/actors/heights?gender=X", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), stats.GenderAll)

	w = doRequest(t, r, http.MethodGet, "/api/v1/stats/actors/heights?min=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestMovieRoutes exercises the movie lookup: a known ID returns the
// merged view, an unknown ID maps to 404.
func TestMovieRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/movies/975900", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view model.MovieSummaryView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Ghosts of Mars", view.Title)
	assert.NotEmpty(t, view.Summary)

	w = doRequest(t, r, http.MethodGet, "/api/v1/movies/424242", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["code"])
}

// TestAugmentRoute exercises the augmentation endpoint: a classification
// request returns a populated envelope, a malformed body and an
// unconfigured style map to 400, and an unknown movie maps to 404.
func TestAugmentRoute(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/v1/movies/975900/augment", `{"kind": "classify"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var envelope model.PlotAugmentation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "975900", envelope.MovieId)
	assert.Equal(t, model.AugmentationKindClassify, envelope.Kind)
	require.NotNil(t, envelope.Classification)
	assert.Contains(t, envelope.Classification.Genres, "Science Fiction")

	w = doRequest(t, r, http.MethodPost, "/api/v1/movies/975900/augment", `{"kind": "rewrite", "style": "noir"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Rewrite)
	assert.Equal(t, "noir", envelope.Rewrite.Style)

	w = doRequest(t, r, http.MethodPost, "/api/v1/movies/975900/augment", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/movies/975900/augment", `{"kind": "rewrite", "style": "haiku"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/movies/424242/augment", `{"kind": "classify"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
