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

// Package workflow_test contains integration tests for the core application
// workflows. This file, `batch_classify_test.go`, tests the
// `BatchClassifyWorkflow`, which fans a slice of plot summaries out across
// a worker pool. The interesting properties are concurrency safety, that
// every movie comes back exactly once regardless of worker scheduling, and
// that one bad response fails only its own movie.
package workflow_test

import (
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
	test "github.com/cinemetrics/movie-corpus-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

// TestBatchClassify classifies every merged summary of the fixture corpus
// through a two-worker pool and verifies each movie produced exactly one
// envelope.
//
// Inputs:
//   - t: A pointer to the testing.T object, provided by the Go testing
//     framework, used for logging, error reporting, and assertions.
func TestBatchClassify(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "batch-classify-test")
	defer span.End()

	store := test.NewTestStore(t)
	views := store.MergedSummaries()
	require.NotEmpty(t, views)

	fake := test.NewFakeContentGenerator(test.GetTestClassificationText())
	batch := workflow.NewBatchClassifyWorkflow(
		config.PromptTemplates.ClassifyPrompt,
		fake,
		"fake-classifier",
		2)

	envelopes, err := batch.ClassifyAll(traceCtx, views)
	require.NoError(t, err)
	require.Len(t, envelopes, len(views))
	assert.Equal(t, len(views), fake.Calls())

	// Workers race, so order is not guaranteed; every movie must still
	// appear exactly once.
	seen := make(map[string]bool)
	for _, envelope := range envelopes {
		assert.Equal(t, model.AugmentationKindClassify, envelope.Kind)
		assert.Equal(t, "fake-classifier", envelope.ModelName)
		require.NotNil(t, envelope.Classification)
		assert.False(t, seen[envelope.MovieId], "movie %s classified twice", envelope.MovieId)
		seen[envelope.MovieId] = true
	}
	for _, view := range views {
		assert.True(t, seen[view.WikipediaId], "movie %s missing from batch results", view.WikipediaId)
	}

	span.SetStatus(codes.Ok, "passed - batch classify test")
}

// TestBatchClassifyPartialFailure feeds the pool one unparseable response
// and verifies the rest of the batch still completes: the failure is
// reported through the joined error while every other movie gets its
// envelope.
func TestBatchClassifyPartialFailure(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "batch-classify-partial-failure-test")
	defer span.End()

	store := test.NewTestStore(t)
	views := store.MergedSummaries()
	require.True(t, len(views) > 1)

	// The first call gets garbage; the remaining calls share the canned
	// classification.
	fake := test.NewFakeContentGenerator("this is not json", test.GetTestClassificationText())
	batch := workflow.NewBatchClassifyWorkflow(
		config.PromptTemplates.ClassifyPrompt,
		fake,
		"fake-classifier",
		1)

	envelopes, err := batch.ClassifyAll(traceCtx, views)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal classification")
	assert.Len(t, envelopes, len(views)-1)

	span.SetStatus(codes.Ok, "passed - batch classify partial failure test")
}
