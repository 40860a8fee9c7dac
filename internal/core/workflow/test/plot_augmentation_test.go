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
// workflows. This file, `plot_augmentation_test.go`, tests the
// `PlotAugmentationPipeline` in both of its configurations: classifying a
// plot summary into structured JSON and retelling it in a configured
// narration style. A fake generative model supplies the responses, so the
// tests also verify exactly which prompts the workflow rendered.
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

// TestPlotClassify runs the classification workflow end to end: prompt
// rendering, the (fake) model call, JSON parsing, and envelope assembly.
//
// Inputs:
//   - t: A pointer to the testing.T object, provided by the Go testing
//     framework, used for logging, error reporting, and assertions.
func TestPlotClassify(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "plot-classify-test")
	defer span.End()

	fake := test.NewFakeContentGenerator(test.GetTestClassificationText())
	classify := workflow.NewPlotAugmentationPipeline(
		"plot-classify-test",
		model.AugmentationKindClassify,
		config.PromptTemplates.ClassifyPrompt,
		config,
		fake,
		"fake-classifier")

	view := test.GetTestMovieSummaryView()
	envelope, err := classify.Augment(traceCtx, &view, "")
	require.NoError(t, err)
	require.NotNil(t, envelope)

	// The envelope identifies the movie, the kind and the producing model,
	// and its ID is deterministic for the same request.
	assert.Equal(t, view.WikipediaId, envelope.MovieId)
	assert.Equal(t, model.AugmentationKindClassify, envelope.Kind)
	assert.Equal(t, "fake-classifier", envelope.ModelName)
	assert.Equal(t, model.NewPlotAugmentation(view.WikipediaId, model.AugmentationKindClassify, "").Id, envelope.Id)

	// The fenced JSON payload parses into the typed classification.
	require.NotNil(t, envelope.Classification)
	assert.Nil(t, envelope.Rewrite)
	assert.Equal(t, []string{"Science Fiction", "Horror", "Action"}, envelope.Classification.Genres)
	assert.Equal(t, "ominous", envelope.Classification.Tone)
	assert.Equal(t, "adult", envelope.Classification.Audience)

	// The rendered prompt carried the movie into the model call.
	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], view.Title)
	assert.Contains(t, prompts[0], view.Summary)

	span.SetStatus(codes.Ok, "passed - plot classify test")
}

// TestPlotClassifyRetries verifies that a transient model failure is
// retried instead of failing the workflow.
func TestPlotClassifyRetries(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "plot-classify-retry-test")
	defer span.End()

	fake := test.NewFakeContentGenerator(test.GetTestClassificationText()).FailFirst(1)
	classify := workflow.NewPlotAugmentationPipeline(
		"plot-classify-retry-test",
		model.AugmentationKindClassify,
		config.PromptTemplates.ClassifyPrompt,
		config,
		fake,
		"fake-classifier")

	view := test.GetTestMovieSummaryView()
	envelope, err := classify.Augment(traceCtx, &view, "")
	require.NoError(t, err)
	require.NotNil(t, envelope.Classification)
	assert.Equal(t, 2, fake.Calls())

	span.SetStatus(codes.Ok, "passed - plot classify retry test")
}

// TestPlotRewrite runs the rewrite workflow end to end with the "noir"
// style from the test configuration.
func TestPlotRewrite(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "plot-rewrite-test")
	defer span.End()

	fake := test.NewFakeContentGenerator(test.GetTestRewriteText())
	rewrite := workflow.NewPlotAugmentationPipeline(
		"plot-rewrite-test",
		model.AugmentationKindRewrite,
		config.PromptTemplates.RewritePrompt,
		config,
		fake,
		"fake-narrator")

	view := test.GetTestMovieSummaryView()
	envelope, err := rewrite.Augment(traceCtx, &view, "noir")
	require.NoError(t, err)
	require.NotNil(t, envelope)

	assert.Equal(t, model.AugmentationKindRewrite, envelope.Kind)
	assert.Nil(t, envelope.Classification)
	require.NotNil(t, envelope.Rewrite)
	assert.Equal(t, "noir", envelope.Rewrite.Style)
	assert.Equal(t, test.GetTestRewriteText(), envelope.Rewrite.Text)

	// Rewrites in different styles must produce different envelope IDs for
	// the same movie.
	assert.NotEqual(t,
		model.NewPlotAugmentation(view.WikipediaId, model.AugmentationKindRewrite, "fairy-tale").Id,
		envelope.Id)
	assert.Equal(t,
		model.NewPlotAugmentation(view.WikipediaId, model.AugmentationKindRewrite, "noir").Id,
		envelope.Id)

	// The default rewrite prompt was rendered with the style definition.
	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Film Noir")
	assert.Contains(t, prompts[0], view.Title)

	span.SetStatus(codes.Ok, "passed - plot rewrite test")
}

// TestPlotRewriteStylePromptOverride verifies that a style configured with
// its own prompt template replaces the default rewrite prompt.
func TestPlotRewriteStylePromptOverride(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "plot-rewrite-override-test")
	defer span.End()

	fake := test.NewFakeContentGenerator(test.GetTestRewriteText())
	rewrite := workflow.NewPlotAugmentationPipeline(
		"plot-rewrite-override-test",
		model.AugmentationKindRewrite,
		config.PromptTemplates.RewritePrompt,
		config,
		fake,
		"fake-narrator")

	view := test.GetTestMovieSummaryView()
	envelope, err := rewrite.Augment(traceCtx, &view, "tabloid")
	require.NoError(t, err)
	assert.Equal(t, "tabloid", envelope.Rewrite.Style)

	// The tabloid style in the test configuration overrides the prompt, so
	// the rendered text must come from the override, not the default.
	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "scandal sheet")
	assert.NotContains(t, prompts[0], "film anthology")

	span.SetStatus(codes.Ok, "passed - plot rewrite override test")
}

// TestPlotRewriteUnknownStyle verifies that asking for a style the
// configuration does not define fails the workflow without calling the
// model.
func TestPlotRewriteUnknownStyle(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "plot-rewrite-unknown-style-test")
	defer span.End()

	fake := test.NewFakeContentGenerator(test.GetTestRewriteText())
	rewrite := workflow.NewPlotAugmentationPipeline(
		"plot-rewrite-unknown-style-test",
		model.AugmentationKindRewrite,
		config.PromptTemplates.RewritePrompt,
		config,
		fake,
		"fake-narrator")

	view := test.GetTestMovieSummaryView()
	_, err := rewrite.Augment(traceCtx, &view, "vaporwave")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	assert.Equal(t, 0, fake.Calls())

	span.SetStatus(codes.Ok, "passed - plot rewrite unknown style test")
}
