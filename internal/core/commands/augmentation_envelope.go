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
// final step of the augmentation workflows: wrapping the model's output in
// a durable envelope.
//
// Logic Flow:
// The upstream commands produce bare payloads (a typed classification or
// rewritten prose). Consumers need more than the payload: which movie it
// belongs to, which model produced it, when, and a stable identifier that
// makes the same request produce the same record. This command assembles
// the `model.PlotAugmentation` envelope as the chain's final output.
//
//  1. It reads the payload from the chain's piping slot and the original
//     movie summary view from its well-known context key.
//  2. It derives the deterministic envelope ID from the movie, the
//     augmentation kind and the style variant.
//  3. It attaches the payload to the matching envelope field and emits the
//     envelope as the chain output.
package commands

import (
	"fmt"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// AugmentationEnvelope is a command that wraps an augmentation payload in
// its typed envelope, stamped with the movie ID, kind and producing model.
type AugmentationEnvelope struct {
	cor.BaseCommand
	kind      string // The augmentation kind this instance wraps (classify or rewrite).
	modelName string // The name of the model that produced the payload, recorded in the envelope.
}

// NewAugmentationEnvelope is the constructor for the AugmentationEnvelope command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - kind: The augmentation kind (model.AugmentationKindClassify or model.AugmentationKindRewrite).
//   - modelName: The model name recorded in the envelope.
//
// Outputs:
//   - *AugmentationEnvelope: A pointer to the newly instantiated command.
func NewAugmentationEnvelope(name string, kind string, modelName string) *AugmentationEnvelope {
	return &AugmentationEnvelope{
		BaseCommand: *cor.NewBaseCommand(name),
		kind:        kind,
		modelName:   modelName,
	}
}

// IsExecutable requires a payload in the piping slot and the original movie
// on its well-known key.
func (e *AugmentationEnvelope) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(e.GetInputParam()) != nil &&
		context.Get(GetMovieSummaryParameterName()) != nil
}

// Execute assembles the typed envelope around the payload.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (e *AugmentationEnvelope) Execute(context cor.Context) {
	view := context.Get(GetMovieSummaryParameterName()).(*model.MovieSummaryView)

	// The style variant distinguishes rewrite envelopes for the same movie;
	// classify envelopes have no variant.
	variant := ""
	if style, ok := context.Get(GetRewriteStyleParameterName()).(string); ok {
		variant = style
	}

	envelope := model.NewPlotAugmentation(view.WikipediaId, e.kind, variant)
	envelope.ModelName = e.modelName

	payload := context.Get(e.GetInputParam())
	switch e.kind {
	case model.AugmentationKindClassify:
		classification, ok := payload.(*model.PlotClassification)
		if !ok {
			e.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(e.GetName(), fmt.Errorf("expected a plot classification payload, got %T", payload))
			return
		}
		envelope.Classification = classification
	case model.AugmentationKindRewrite:
		text, ok := payload.(string)
		if !ok {
			e.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(e.GetName(), fmt.Errorf("expected rewritten text payload, got %T", payload))
			return
		}
		envelope.Rewrite = &model.PlotRewrite{Style: variant, Text: text}
	default:
		e.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(e.GetName(), fmt.Errorf("unknown augmentation kind %q", e.kind))
		return
	}

	e.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(e.GetOutputParam(), envelope)
}
