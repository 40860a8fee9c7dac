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
// command that rewrites a plot summary in a configured narration style.
//
// Logic Flow:
// Wikipedia plot summaries are dry by design. This command hands the
// summary to a Gemini model along with a style definition from the
// configuration (for example "noir": terse, hard-boiled, first person) and
// asks for the same story retold in that voice.
//
//  1. It receives a `model.MovieSummaryView` from the context and the
//     requested style key from the style context parameter.
//  2. It resolves the style against the configured styles; per-style
//     overrides of the prompt template take precedence over the default
//     rewrite template.
//  3. It builds the prompt with the title, summary, style name and style
//     definition, sends it to the model, and places the rewritten prose
//     into the context.
package commands

import (
	"bytes"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// GetRewriteStyleParameterName returns the canonical context key the
// requested rewrite style is stored at.
func GetRewriteStyleParameterName() string {
	return "__REWRITE_STYLE__"
}

// PlotRewriter is a command that uses a generative model to retell a plot
// summary in a configured narration style.
type PlotRewriter struct {
	cor.BaseCommand
	config                   *cloud.Config          // Application configuration, source of the style definitions.
	generativeAIModel        cloud.ContentGenerator // The rate-limited generative model client.
	template                 *template.Template     // The default Go template for the rewrite prompt.
	geminiInputTokenCounter  metric.Int64Counter    // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter    // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter    // OTel counter for retries.
}

// NewPlotRewriter is the constructor for the PlotRewriter command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - config: The application's configuration object.
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//   - template: A parsed Go template for the default rewrite prompt.
//
// Outputs:
//   - *PlotRewriter: A pointer to the newly instantiated command, including initialized telemetry counters.
func NewPlotRewriter(
	name string,
	config *cloud.Config,
	generativeAIModel cloud.ContentGenerator,
	template *template.Template) *PlotRewriter {

	out := &PlotRewriter{
		BaseCommand:       *cor.NewBaseCommand(name),
		config:            config,
		generativeAIModel: generativeAIModel,
		template:          template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.retry", out.GetName()))

	return out
}

// IsExecutable requires both the summary view and a requested style.
func (t *PlotRewriter) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(t.GetInputParam()) != nil &&
		context.Get(GetRewriteStyleParameterName()) != nil
}

// Execute builds the style-aware prompt and sends it to the generative model.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *PlotRewriter) Execute(context cor.Context) {
	view := context.Get(t.GetInputParam()).(*model.MovieSummaryView)
	styleKey := context.Get(GetRewriteStyleParameterName()).(string)

	style, ok := t.config.RewriteStyles[styleKey]
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("rewrite style %q is not configured", styleKey))
		return
	}

	// A style may carry its own prompt template; otherwise the shared one
	// applies.
	promptTemplate := t.template
	if style.Prompt != "" {
		parsed, err := template.New(styleKey).Parse(style.Prompt)
		if err != nil {
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), fmt.Errorf("failed to parse prompt override for style %q: %w", styleKey, err))
			return
		}
		promptTemplate = parsed
	}

	// One worked retelling anchors the expected length and voice fidelity.
	example := model.GetExampleRewrite()

	params := make(map[string]any)
	params["TITLE"] = view.Title
	params["PLOT"] = view.Summary
	params["STYLE"] = style.Name
	params["STYLE_DEFINITION"] = style.Definition
	params["EXAMPLE_STYLE"] = example.Style
	params["EXAMPLE_TEXT"] = example.Text

	var buffer bytes.Buffer
	if err := promptTemplate.Execute(&buffer, params); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute rewrite prompt template: %w", err))
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
		context.AddError(t.GetName(), fmt.Errorf("gemini rewrite request failed for movie %s: %w", view.WikipediaId, err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
