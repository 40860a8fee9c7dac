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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that asks a generative model to classify a plot summary.
//
// Logic Flow:
// The corpus records genres as Freebase catalog labels, which say nothing
// about tone or audience. This command reads the movie's plot summary and
// asks a Gemini model for a fresh classification: genre labels in the
// model's own words, an overall tone, and the audience the plot seems
// aimed at.
//
//  1. It receives a `model.MovieSummaryView` (movie record joined with its
//     plot summary) from the context.
//  2. It builds the prompt from a Go template, injecting the title, the
//     summary text and a well-formed example of the expected JSON response
//     (few-shot prompting keeps the output shape reliable).
//  3. It sends the prompt to the model and places the raw JSON string
//     response into the context for `ClassificationToStruct` to parse.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// GetMovieSummaryParameterName returns the canonical context key the movie
// summary view under augmentation is stored at. The envelope command at the
// end of the chain needs the original movie regardless of what flowed
// through the intermediate steps.
func GetMovieSummaryParameterName() string {
	return "__MOVIE_SUMMARY__"
}

// PlotClassifier is a command that uses a generative model to classify a
// movie's plot summary by genre, tone and audience.
type PlotClassifier struct {
	cor.BaseCommand
	generativeAIModel        cloud.ContentGenerator // The rate-limited generative model client.
	template                 *template.Template     // The Go template for building the prompt.
	geminiInputTokenCounter  metric.Int64Counter    // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter    // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter    // OTel counter for retries.
}

// NewPlotClassifier is the constructor for the PlotClassifier command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//   - template: A parsed Go template for the classification prompt.
//
// Outputs:
//   - *PlotClassifier: A pointer to the newly instantiated command, including initialized telemetry counters.
func NewPlotClassifier(
	name string,
	generativeAIModel cloud.ContentGenerator,
	template *template.Template) *PlotClassifier {

	out := &PlotClassifier{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.retry", out.GetName()))

	return out
}

// GenerateParams builds the substitution map for the prompt template.
//
// Inputs:
//   - view: The movie summary view being classified.
//
// Outputs:
//   - map[string]any: A map of keys and values for template substitution.
func (t *PlotClassifier) GenerateParams(view *model.MovieSummaryView) map[string]any {
	params := make(map[string]any)
	params["TITLE"] = view.Title
	params["PLOT"] = view.Summary

	// A complete example of the expected response shape. Few-shot prompting
	// keeps the model's JSON parseable far more reliably than instructions
	// alone.
	exampleClassification, _ := json.Marshal(model.GetExampleClassification())
	params["EXAMPLE_JSON"] = string(exampleClassification)
	return params
}

// Execute builds the prompt and sends it to the generative model.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *PlotClassifier) Execute(context cor.Context) {
	view := context.Get(t.GetInputParam()).(*model.MovieSummaryView)

	var buffer bytes.Buffer
	err := t.template.Execute(&buffer, t.GenerateParams(view))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute classify prompt template: %w", err))
		return
	}

	out, err := cloud.GenerateContentWithRetry(
		context.GetContext(),
		t.geminiInputTokenCounter,
		t.geminiOutputTokenCounter,
		t.geminiRetryCounter,
		0,
		t.generativeAIModel,
		cloud.NewTextPart(buffer.String()))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("gemini classify request failed for movie %s: %w", view.WikipediaId, err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
