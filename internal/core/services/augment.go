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
// and CLI surfaces and the corpus data layer. This file, `augment.go`,
// defines the AugmentService, which is responsible for the generative side
// of the application. It takes a movie's plot summary, runs it through the
// classification or rewrite workflow against a generative AI model, and
// caches the resulting envelopes so that repeated requests for the same
// movie, kind and style never cost a second model call.
package services

import (
	"context"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
)

// AugmentService encapsulates the corpus store, the augmentation workflows
// and the response cache needed to serve augmentation requests. Envelope
// IDs are deterministic in (movie, kind, style), so an LRU keyed the same
// way is a faithful memo of the model's answer for that triple.
type AugmentService struct {
	store    *corpus.Store                               // The loaded corpus, source of the merged summary views.
	classify *workflow.PlotAugmentationWorkflow          // The classification workflow.
	rewrite  *workflow.PlotAugmentationWorkflow          // The style-directed rewrite workflow.
	batch    *workflow.BatchClassifyWorkflow             // The worker-pool batch classification workflow.
	styles   map[string]cloud.RewriteStyle               // The configured rewrite styles, keyed by style name.
	cache    *lru.Cache[string, *model.PlotAugmentation] // LRU of completed envelopes, keyed by the KeyAugmentation format.
}

// NewAugmentService is the constructor for the augmentation service.
//
// Inputs:
//   - config: The application's overall configuration, for the rewrite
//     style catalog and the cache size.
//   - store: The loaded corpus store.
//   - classify: The single-movie classification workflow.
//   - rewrite: The single-movie rewrite workflow.
//   - batch: The batch classification workflow.
//
// Outputs:
//   - *AugmentService: A pointer to the newly created service.
//   - error: An error if the configured cache size is not positive.
func NewAugmentService(
	config *cloud.Config,
	store *corpus.Store,
	classify *workflow.PlotAugmentationWorkflow,
	rewrite *workflow.PlotAugmentationWorkflow,
	batch *workflow.BatchClassifyWorkflow) (*AugmentService, error) {

	responseCache, err := lru.New[string, *model.PlotAugmentation](config.Server.AugmentationCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create augmentation cache: %w", err)
	}
	return &AugmentService{
		store:    store,
		classify: classify,
		rewrite:  rewrite,
		batch:    batch,
		styles:   config.RewriteStyles,
		cache:    responseCache,
	}, nil
}

// Styles returns the configured rewrite style names, sorted. The list is
// what the CLI prints and what the invalid-style error enumerates.
func (s *AugmentService) Styles() []string {
	out := make([]string, 0, len(s.styles))
	for name := range s.styles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Augment produces one augmentation envelope for one movie, consulting the
// response cache first.
//
// Classifications ignore the style argument; rewrites require a style from
// the configured catalog. The movie must exist in the merged movie and
// summary view, because both prompts embed the plot text.
//
// Inputs:
//   - ctx: The context for the request, used for cancellation and tracing.
//   - movieId: The movie's Wikipedia ID.
//   - kind: model.AugmentationKindClassify or model.AugmentationKindRewrite.
//   - style: The rewrite style name; ignored for classifications.
//
// Outputs:
//   - *model.PlotAugmentation: The completed (possibly cached) envelope.
//   - error: An invalid-argument error for a bad kind or style, a not-found
//     error for an unknown movie, or the workflow's failure.
func (s *AugmentService) Augment(ctx context.Context, movieId string, kind string, style string) (*model.PlotAugmentation, error) {
	var wf *workflow.PlotAugmentationWorkflow
	switch kind {
	case model.AugmentationKindClassify:
		// The classification prompt has no style axis; normalize it away so
		// every classification of a movie shares one cache entry.
		style = ""
		wf = s.classify
	case model.AugmentationKindRewrite:
		if _, ok := s.styles[style]; !ok {
			return nil, stats.NewInvalidArgumentError(fmt.Sprintf(
				"style %q is not configured: valid values are %v", style, s.Styles()))
		}
		wf = s.rewrite
	default:
		return nil, stats.NewInvalidArgumentError(fmt.Sprintf(
			"kind %q is not an augmentation kind: valid values are %v",
			kind, []string{model.AugmentationKindClassify, model.AugmentationKindRewrite}))
	}

	key := fmt.Sprintf(KeyAugmentation, movieId, kind, style)
	if hit, ok := s.cache.Get(key); ok {
		return hit, nil
	}

	view, ok := s.store.MovieSummary(movieId)
	if !ok {
		return nil, stats.NewNotFoundError("movie", movieId)
	}

	envelope, err := wf.Augment(ctx, &view, style)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, envelope)
	return envelope, nil
}

// ClassifyAll classifies every movie in the merged view through the batch
// worker pool and primes the response cache with the results, so that the
// dashboard gets cache hits for anything the batch already touched.
//
// Inputs:
//   - ctx: The context for the run, used for cancellation and tracing.
//
// Outputs:
//   - []*model.PlotAugmentation: One envelope per successfully classified
//     movie, in completion order.
//   - error: The joined failures of the batch run, or nil.
func (s *AugmentService) ClassifyAll(ctx context.Context) ([]*model.PlotAugmentation, error) {
	envelopes, err := s.batch.ClassifyAll(ctx, s.store.MergedSummaries())
	if err != nil {
		return nil, err
	}
	for _, envelope := range envelopes {
		// Batch runs are always classifications, so the variant is empty.
		key := fmt.Sprintf(KeyAugmentation, envelope.MovieId, envelope.Kind, "")
		s.cache.Add(key, envelope)
	}
	return envelopes, nil
}
