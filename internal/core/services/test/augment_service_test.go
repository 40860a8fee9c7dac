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
// This file, `augment_service_test.go`, tests the AugmentService: argument
// validation, movie lookup, the response cache, and the batch run priming
// that cache. Fake generative models supply the responses, so the tests
// also count exactly how many model calls each path costs.
package services_test

import (
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/services"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
	test "github.com/cinemetrics/movie-corpus-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

// augmentFixture bundles an augment service with the fakes behind each of
// its workflows, so tests can count model calls per path.
type augmentFixture struct {
	svc          *services.AugmentService
	classifyFake *test.FakeContentGenerator
	rewriteFake  *test.FakeContentGenerator
	batchFake    *test.FakeContentGenerator
}

// newAugmentService builds an augment service over the fixture corpus with
// one fake generator per workflow.
func newAugmentService(t *testing.T) *augmentFixture {
	t.Helper()

	f := &augmentFixture{
		classifyFake: test.NewFakeContentGenerator(test.GetTestClassificationText()),
		rewriteFake:  test.NewFakeContentGenerator(test.GetTestRewriteText()),
		batchFake:    test.NewFakeContentGenerator(test.GetTestClassificationText()),
	}

	classify := workflow.NewPlotAugmentationPipeline(
		"augment-service-classify",
		model.AugmentationKindClassify,
		config.PromptTemplates.ClassifyPrompt,
		config,
		f.classifyFake,
		"fake-classifier")
	rewrite := workflow.NewPlotAugmentationPipeline(
		"augment-service-rewrite",
		model.AugmentationKindRewrite,
		config.PromptTemplates.RewritePrompt,
		config,
		f.rewriteFake,
		"fake-narrator")
	batch := workflow.NewBatchClassifyWorkflow(
		config.PromptTemplates.ClassifyPrompt,
		f.batchFake,
		"fake-classifier",
		config.Application.ThreadPoolSize)

	svc, err := services.NewAugmentService(config, test.NewTestStore(t), classify, rewrite, batch)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// TestAugmentServiceClassify verifies a classification round trip and that
// the second request for the same movie is served from the cache without a
// second model call.
//
// Inputs:
//   - t: The testing framework's test handler.
func TestAugmentServiceClassify(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "augment-service-classify-test")
	defer span.End()

	f := newAugmentService(t)

	envelope, err := f.svc.Augment(traceCtx, "975900", model.AugmentationKindClassify, "")
	require.NoError(t, err)
	require.NotNil(t, envelope.Classification)
	assert.Equal(t, "975900", envelope.MovieId)
	assert.Equal(t, 1, f.classifyFake.Calls())

	// Same movie, same kind: the cached envelope comes back untouched.
	again, err := f.svc.Augment(traceCtx, "975900", model.AugmentationKindClassify, "")
	require.NoError(t, err)
	assert.Same(t, envelope, again)
	assert.Equal(t, 1, f.classifyFake.Calls())

	span.SetStatus(codes.Ok, "passed - augment service classify test")
}

// TestAugmentServiceRewrite verifies a rewrite round trip, that the style
// is part of the cache identity, and that an unconfigured style is rejected
// before any model call with a message enumerating the valid styles.
func TestAugmentServiceRewrite(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "augment-service-rewrite-test")
	defer span.End()

	f := newAugmentService(t)

	_, err := f.svc.Augment(traceCtx, "975900", model.AugmentationKindRewrite, "haiku")
	require.True(t, stats.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "noir")
	assert.Equal(t, 0, f.rewriteFake.Calls())

	noir, err := f.svc.Augment(traceCtx, "975900", model.AugmentationKindRewrite, "noir")
	require.NoError(t, err)
	require.NotNil(t, noir.Rewrite)
	assert.Equal(t, model.AugmentationKindRewrite, noir.Kind)
	assert.Equal(t, 1, f.rewriteFake.Calls())

	// A different style is a different envelope, so it costs a model call.
	tabloid, err := f.svc.Augment(traceCtx, "975900", model.AugmentationKindRewrite, "tabloid")
	require.NoError(t, err)
	assert.NotEqual(t, noir.Id, tabloid.Id)
	assert.Equal(t, 2, f.rewriteFake.Calls())

	span.SetStatus(codes.Ok, "passed - augment service rewrite test")
}

// TestAugmentServiceRejectsBadRequests verifies the invalid-kind and
// unknown-movie paths, neither of which may reach a model.
func TestAugmentServiceRejectsBadRequests(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "augment-service-bad-requests-test")
	defer span.End()

	f := newAugmentService(t)

	_, err := f.svc.Augment(traceCtx, "975900", "summarize", "")
	assert.True(t, stats.IsInvalidArgument(err))

	_, err = f.svc.Augment(traceCtx, "424242", model.AugmentationKindClassify, "")
	assert.True(t, stats.IsNotFound(err))

	assert.Equal(t, 0, f.classifyFake.Calls())
	assert.Equal(t, 0, f.rewriteFake.Calls())

	span.SetStatus(codes.Ok, "passed - augment service bad requests test")
}

// TestAugmentServiceClassifyAll verifies the batch run: every movie in the
// merged view is classified through the worker pool, and the results prime
// the response cache so a follow-up single request is free.
func TestAugmentServiceClassifyAll(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "augment-service-classify-all-test")
	defer span.End()

	f := newAugmentService(t)

	envelopes, err := f.svc.ClassifyAll(traceCtx)
	require.NoError(t, err)

	// Four of the five fixture movies have plot summaries.
	assert.Len(t, envelopes, 4)
	assert.Equal(t, 4, f.batchFake.Calls())

	// The batch results landed in the cache: a single classification of a
	// batched movie never reaches the single-movie workflow.
	_, err = f.svc.Augment(traceCtx, "975900", model.AugmentationKindClassify, "")
	require.NoError(t, err)
	assert.Equal(t, 0, f.classifyFake.Calls())

	span.SetStatus(codes.Ok, "passed - augment service classify all test")
}

// TestAugmentServiceStyles verifies the sorted style catalog the CLI
// prints and the error messages enumerate.
func TestAugmentServiceStyles(t *testing.T) {
	_, span := tracer.Start(ctx, "augment-service-styles-test")
	defer span.End()

	f := newAugmentService(t)
	assert.Equal(t, []string{"fairy-tale", "noir", "tabloid"}, f.svc.Styles())

	span.SetStatus(codes.Ok, "passed - augment service styles test")
}
