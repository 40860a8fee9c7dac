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

// Package main contains the API route definitions for the server. This file
// defines the dashboard routes: the five aggregation endpoints under
// "/stats" and the movie endpoints (lookup and narrative augmentation)
// under "/movies". All handlers delegate to the services held in the state
// manager and translate the aggregation error taxonomy into HTTP statuses.
//
// Functions:
//   - Dashboard: Sets up the route group for the statistics endpoints.
//   - MovieRouter: Sets up the route group for movie lookup and augmentation.
//   - writeError: Maps service errors onto HTTP statuses and JSON bodies.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
)

// writeError translates a service error into an HTTP response. The mapping
// follows the error taxonomy: invalid arguments are the caller's fault
// (400), unknown records are 404, well-formed requests exceeding the data
// are 422, and a missing table is a server-side configuration fault (500).
// Anything outside the taxonomy is logged and reported as a bare 500.
//
// Inputs:
//   - c: The gin context of the request being answered.
//   - err: The error returned by the service layer.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case stats.IsInvalidArgument(err):
		status = http.StatusBadRequest
	case stats.IsNotFound(err):
		status = http.StatusNotFound
	case stats.IsNotEnoughData(err):
		status = http.StatusUnprocessableEntity
	}

	var statsErr *stats.StatsError
	if errors.As(err, &statsErr) {
		c.JSON(status, gin.H{"code": statsErr.Code, "error": statsErr.UserMessage()})
		return
	}
	slog.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(status, gin.H{"error": "internal error"})
}

// Dashboard configures the API routes for the statistics endpoints backed
// by the aggregation routines. Every endpoint returns its result table as a
// JSON array; an empty result is a valid `[]`, never an error.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the new "/stats" route group will be added.
//
// This function defines the following endpoints:
//   - GET /stats/genres/top?n=10: The N most frequent genres, descending.
//   - GET /stats/actors/count-histogram: Movies bucketed by credited-actor count.
//   - GET /stats/actors/heights?gender=All&min=1.2&max=2.2: Actor counts per
//     distinct height within the inclusive range.
//   - GET /stats/releases?genre=Comedy: Releases per four-digit year, with an
//     optional genre filter.
//   - GET /stats/births?group=month: Actor births bucketed by year or month.
func Dashboard(r *gin.RouterGroup) {
	// Group all statistics endpoints under the "/stats" path.
	statsGroup := r.Group("/stats")
	{
		// Handler for GET /stats/genres/top?n=<count>
		statsGroup.GET("/genres/top", func(c *gin.Context) {
			n, err := strconv.Atoi(c.DefaultQuery("n", "10"))
			if err != nil {
				writeError(c, stats.NewInvalidArgumentError("parameter n must be an integer"))
				return
			}
			out, err := state.statsService.TopGenres(n)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /stats/actors/count-histogram
		statsGroup.GET("/actors/count-histogram", func(c *gin.Context) {
			out, err := state.statsService.ActorCountHistogram()
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /stats/actors/heights?gender=<code>&min=<m>&max=<m>
		statsGroup.GET("/actors/heights", func(c *gin.Context) {
			gender := c.DefaultQuery("gender", stats.GenderAll)
			minHeight, err := strconv.ParseFloat(c.DefaultQuery("min", "1.2"), 64)
			if err != nil {
				writeError(c, stats.NewInvalidArgumentError("parameter min must be a number"))
				return
			}
			maxHeight, err := strconv.ParseFloat(c.DefaultQuery("max", "2.2"), 64)
			if err != nil {
				writeError(c, stats.NewInvalidArgumentError("parameter max must be a number"))
				return
			}
			out, err := state.statsService.HeightDistribution(gender, minHeight, maxHeight)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /stats/releases?genre=<name>
		statsGroup.GET("/releases", func(c *gin.Context) {
			out, err := state.statsService.ReleasesPerYear(c.Query("genre"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /stats/births?group=<year|month>
		statsGroup.GET("/births", func(c *gin.Context) {
			out, err := state.statsService.BirthBuckets(c.DefaultQuery("group", stats.GroupByYear))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}

// augmentRequest is the JSON body of a POST /movies/:id/augment request.
type augmentRequest struct {
	Kind  string `json:"kind"`  // "classify" or "rewrite".
	Style string `json:"style"` // The rewrite style; ignored for classifications.
}

// MovieRouter sets up the API routes for movie-related actions.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the movie routes will be added. This allows
//     nesting routes under a common path prefix (e.g., "/api/v1").
//
// This function defines the following endpoints:
//   - GET /movies/:id: Retrieves a movie joined with its plot summary.
//   - POST /movies/:id/augment: Runs a narrative augmentation (classification
//     or style-directed rewrite) over the movie's plot summary and returns
//     the resulting envelope.
func MovieRouter(r *gin.RouterGroup) {
	// Group all movie-related routes under the "/movies" path.
	movies := r.Group("/movies")
	{
		// Handler for GET /movies/:id
		movies.GET("/:id", func(c *gin.Context) {
			out, err := state.statsService.GetMovie(c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for POST /movies/:id/augment
		movies.POST("/:id/augment", func(c *gin.Context) {
			var req augmentRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				writeError(c, stats.NewInvalidArgumentError("request body must be JSON with kind and style fields"))
				return
			}
			out, err := state.augmentService.Augment(c.Request.Context(), c.Param("id"), req.Kind, req.Style)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
