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
// batch classification workflow, which classifies many plot summaries
// concurrently through a worker pool instead of one at a time.
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

// BatchClassifyWorkflow runs the plot classifier over a slice of movie
// summaries using a pool of concurrent workers. It exists for offline
// enrichment runs where classifying thousands of plots one request at a
// time would take hours.
type BatchClassifyWorkflow struct {
	cor.BaseCommand
	generator      cloud.ContentGenerator // The model wrapper the workers share.
	modelName      string                 // Stamped into each result envelope.
	workers        int                    // Size of the worker pool.
	promptTemplate *template.Template     // The classification prompt.
	chain          cor.Chain              // The underlying chain of commands to be executed.
}

// Execute runs the batch workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *BatchClassifyWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// ClassifyAll is the convenience entry point: it runs the worker pool over
// the given summaries and unwraps the resulting envelopes.
//
// Partial failure is expected at this scale, so per-movie errors are
// joined into the returned error while the successful envelopes are still
// returned alongside it.
//
// Inputs:
//   - ctx: The Go context for cancellation and tracing.
//   - views: The movie summaries to classify.
//
// Outputs:
//   - []*model.PlotAugmentation: One classification envelope per movie
//     that succeeded.
//   - error: The joined per-movie failures, or nil.
func (w *BatchClassifyWorkflow) ClassifyAll(ctx goctx.Context, views []model.MovieSummaryView) ([]*model.PlotAugmentation, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, views)

	w.Execute(chCtx)

	// After the final command the chain pipes its output into the input
	// slot, so the envelopes are read from there.
	augmentations, _ := chCtx.Get(cor.CtxIn).([]*model.PlotAugmentation)

	if chCtx.HasErrors() {
		errs := make([]error, 0, len(chCtx.GetErrors()))
		for name, err := range chCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return augmentations, errors.Join(errs...)
	}
	return augmentations, nil
}

// initializeChain builds the single-step batch sequence. Called by the
// constructor.
func (w *BatchClassifyWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Fan the summaries out across the worker pool and collect
	// the classification envelopes.
	out.AddCommand(commands.NewBatchClassifier(
		"batch-plot-classifier",
		w.generator,
		w.promptTemplate,
		w.modelName,
		w.workers))

	w.chain = out
}

// NewBatchClassifyWorkflow assembles the batch workflow around any content
// generator. The pipeline constructor below is what the server uses; tests
// call this directly with a fake generator.
//
// Inputs:
//   - templateText: The classification prompt template source.
//   - generator: The content generator the workers call.
//   - modelName: The model name stamped into envelopes.
//   - workers: The number of concurrent workers.
//
// Returns:
//   - A pointer to a newly created and fully initialized BatchClassifyWorkflow.
func NewBatchClassifyWorkflow(
	templateText string,
	generator cloud.ContentGenerator,
	modelName string,
	workers int) *BatchClassifyWorkflow {

	promptTemplate, err := template.New("batch-classify-template").Parse(templateText)
	if err != nil {
		// The app cannot run without valid templates.
		panic(err)
	}

	pipeline := &BatchClassifyWorkflow{
		BaseCommand:    *cor.NewBaseCommand("batch-classify-pipeline"),
		generator:      generator,
		modelName:      modelName,
		workers:        workers,
		promptTemplate: promptTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}

// NewBatchClassifyPipeline is the constructor for the batch classification
// workflow. The worker pool is sized from the application thread pool
// setting.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: The initialized GCP clients.
//   - agentModelName: The agent model config key to use (e.g., "classifier-flash").
//
// Returns:
//   - A pointer to a newly created and fully initialized BatchClassifyWorkflow.
func NewBatchClassifyPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *BatchClassifyWorkflow {
	agent := serviceClients.AgentModels[agentModelName]
	return NewBatchClassifyWorkflow(
		config.PromptTemplates.ClassifyPrompt,
		agent,
		agent.ModelName,
		config.Application.ThreadPoolSize)
}
