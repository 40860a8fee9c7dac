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
// This file, `augmentation.go`, contains the envelope that wraps a single
// narrative-augmentation result (a classification or a rewrite of a plot
// summary) together with the identity of the movie it belongs to and the
// model that produced it. Envelopes are what the augmentation service
// caches and what the API returns to callers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// The two kinds of narrative augmentation the system performs. The kind is
// part of the envelope ID, so classifying and rewriting the same movie
// produce two distinct, individually cacheable envelopes.
const (
	AugmentationKindClassify = "classify"
	AugmentationKindRewrite  = "rewrite"
)

// PlotAugmentation wraps one generative AI result for one movie. Exactly one
// of Classification or Rewrite is set, according to Kind.
type PlotAugmentation struct {
	Id             string              `json:"id"`                       // Deterministic UUIDv5 derived from the movie ID, kind, and variant.
	MovieId        string              `json:"movie_id"`                 // Wikipedia ID of the movie the augmentation belongs to.
	Kind           string              `json:"kind"`                     // One of the AugmentationKind constants.
	ModelName      string              `json:"model_name,omitempty"`     // Name of the generative model that produced the result.
	CreateDate     time.Time           `json:"create_date"`              // When the envelope was created.
	Classification *PlotClassification `json:"classification,omitempty"` // Set when Kind is AugmentationKindClassify.
	Rewrite        *PlotRewrite        `json:"rewrite,omitempty"`        // Set when Kind is AugmentationKindRewrite.
}

// NewPlotAugmentation creates an augmentation envelope for the given movie.
// The ID is a UUIDv5 hash of the movie ID, the kind, and the variant (the
// requested rewrite style, empty for classifications), so repeating the same
// request always yields the same envelope ID. The variant keeps rewrites in
// different styles from colliding with each other.
//
// Inputs:
//   - movieId: The Wikipedia ID of the movie being augmented.
//   - kind: One of the AugmentationKind constants.
//   - variant: The request variant folded into the ID, usually the rewrite style.
//
// Outputs:
//   - *PlotAugmentation: A pointer to the initialized envelope.
func NewPlotAugmentation(movieId string, kind string, variant string) *PlotAugmentation {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(movieId+"|"+kind+"|"+variant))
	return &PlotAugmentation{
		Id:         id.String(),
		MovieId:    movieId,
		Kind:       kind,
		CreateDate: time.Now(),
	}
}
