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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into coherent pipelines. This file implements the
// single-movie augmentation workflows: classifying a plot summary and
// rewriting it in a configured narration style. Both end in the envelope
// command, so a successful run always produces one `model.PlotAugmentation`.
package workflow

import (
	goctx "context"
	"errors"
	"fmt"
	"text/template"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/commands"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// PlotAugmentationWorkflow runs one movie's plot summary through a
// generative model and wraps the result in an augmentation envelope. The
// kind fixed at construction decides whether the chain classifies or
// rewrites.
type PlotAugmentationWorkflow struct {
	cor.BaseCommand
	config         *cloud.Config
	genaiModel     cloud.ContentGenerator
	modelName      string             // The model name stamped into envelopes.
	kind           string             // model.AugmentationKindClassify or model.AugmentationKindRewrite.
	promptTemplate *template.Template // The default prompt template for this kind.
	chain          cor.Chain          // The underlying chain of commands to be executed.
}

// Execute runs the augmentation workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *PlotAugmentationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Augment is the convenience entry point: it seeds a fresh workflow context
// with the movie summary view (and the style, for rewrites), runs the chain
// and unwraps the envelope.
//
// Inputs:
//   - ctx: The Go context for cancellation and tracing.
//   - view: The movie record joined with its plot summary.
//   - style: The rewrite style key; ignored for classifications.
//
// Outputs:
//   - *model.PlotAugmentation: The completed envelope.
//   - error: The joined command failures, or nil.
func (w *PlotAugmentationWorkflow) Augment(ctx goctx.Context, view *model.MovieSummaryView, style string) (*model.PlotAugmentation, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, view)
	chCtx.Add(commands.GetMovieSummaryParameterName(), view)
	if style != "" {
		chCtx.Add(commands.GetRewriteStyleParameterName(), style)
	}

	w.Execute(chCtx)

	if chCtx.HasErrors() {
		errs := make([]error, 0, len(chCtx.GetErrors()))
		for name, err := range chCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return nil, errors.Join(errs...)
	}

	envelope, ok := chCtx.Get(cor.CtxIn).(*model.PlotAugmentation)
	if !ok {
		return nil, errors.New("augmentation chain finished without producing an envelope")
	}
	return envelope, nil
}

// initializeChain builds the command sequence for the configured kind.
// Called by the constructors.
func (w *PlotAugmentationWorkflow) initializeChain() {
	const ClassificationOutputParamName = "__classification_output__"

	out := cor.NewBaseChain(w.GetName())

	switch w.kind {
	case model.AugmentationKindClassify:
		// Step 1: Prompt the model for genre, tone and audience as JSON.
		out.AddCommand(commands.NewPlotClassifier("classify-plot-summary", w.genaiModel, w.promptTemplate))

		// Step 2: Parse the model's JSON into the typed classification.
		out.AddCommand(commands.NewClassificationToStruct("convert-classification", ClassificationOutputParamName))

		// Step 3: Wrap the classification in its envelope.
		out.AddCommand(commands.NewAugmentationEnvelope("wrap-classification", model.AugmentationKindClassify, w.modelName))
	case model.AugmentationKindRewrite:
		// Step 1: Prompt the model for the summary retold in the requested
		// style.
		out.AddCommand(commands.NewPlotRewriter("rewrite-plot-summary", w.config, w.genaiModel, w.promptTemplate))

		// Step 2: Wrap the rewritten prose in its envelope.
		out.AddCommand(commands.NewAugmentationEnvelope("wrap-rewrite", model.AugmentationKindRewrite, w.modelName))
	}

	w.chain = out
}

// NewPlotAugmentationPipeline assembles a workflow for one augmentation
// kind around any content generator. The named pipeline constructors below
// are what the server uses; tests call this directly with a fake generator.
//
// Inputs:
//   - name: A string name for this workflow instance.
//   - kind: model.AugmentationKindClassify or model.AugmentationKindRewrite.
//   - templateText: The default prompt template source for this kind.
//   - config: The application's overall configuration.
//   - generator: The content generator the LLM commands call.
//   - modelName: The model name stamped into envelopes.
//
// Returns:
//   - A pointer to a newly created and fully initialized PlotAugmentationWorkflow.
func NewPlotAugmentationPipeline(
	name string,
	kind string,
	templateText string,
	config *cloud.Config,
	generator cloud.ContentGenerator,
	modelName string) *PlotAugmentationWorkflow {

	promptTemplate, err := template.New(name + "-template").Parse(templateText)
	if err != nil {
		// The app cannot run without valid templates.
		panic(err)
	}

	pipeline := &PlotAugmentationWorkflow{
		BaseCommand:    *cor.NewBaseCommand(name),
		config:         config,
		genaiModel:     generator,
		modelName:      modelName,
		kind:           kind,
		promptTemplate: promptTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}

// NewPlotClassifyPipeline is the constructor for the classification
// workflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: The initialized GCP clients.
//   - agentModelName: The agent model config key to use (e.g., "classifier-flash").
//
// Returns:
//   - A pointer to a newly created and fully initialized PlotAugmentationWorkflow.
func NewPlotClassifyPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *PlotAugmentationWorkflow {
	agent := serviceClients.AgentModels[agentModelName]
	return NewPlotAugmentationPipeline(
		"plot-classify-pipeline",
		model.AugmentationKindClassify,
		config.PromptTemplates.ClassifyPrompt,
		config,
		agent,
		agent.ModelName)
}

// NewPlotRewritePipeline is the constructor for the rewrite workflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: The initialized GCP clients.
//   - agentModelName: The agent model config key to use (e.g., "creative-flash").
//
// Returns:
//   - A pointer to a newly created and fully initialized PlotAugmentationWorkflow.
func NewPlotRewritePipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *PlotAugmentationWorkflow {
	agent := serviceClients.AgentModels[agentModelName]
	return NewPlotAugmentationPipeline(
		"plot-rewrite-pipeline",
		model.AugmentationKindRewrite,
		config.PromptTemplates.RewritePrompt,
		config,
		agent,
		agent.ModelName)
}
