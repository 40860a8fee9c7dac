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
// command that classifies a batch of plot summaries concurrently.
//
// Logic Flow:
// Classifying summaries one at a time would serialize thousands of model
// calls behind network latency. This command fans the batch out across a
// worker pool instead:
//
//  1. It receives a slice of `model.MovieSummaryView` records from the
//     context.
//  2. It sets up a `jobs` channel and a `results` channel, both buffered to
//     the batch size, and launches a configurable number of worker
//     goroutines.
//  3. Each job carries a fully rendered prompt and its own trace span. A
//     worker pulls a job, calls the model, parses the JSON response and
//     wraps it in an augmentation envelope.
//  4. `Execute` waits for the pool to drain, collects the envelopes, and
//     records any per-movie failures on the workflow context without
//     abandoning the rest of the batch.
package commands

import (
	"bytes"
	goctx "context"
	"encoding/json"
	"fmt"
	"sync"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BatchClassifier is a command that classifies many plot summaries in
// parallel through a worker pool.
type BatchClassifier struct {
	cor.BaseCommand
	generativeAIModel        cloud.ContentGenerator // The rate-limited generative model client.
	promptTemplate           *template.Template     // The Go template for the classification prompt.
	modelName                string                 // The model name recorded in each envelope.
	numberOfWorkers          int                    // The number of concurrent workers to spawn.
	geminiInputTokenCounter  metric.Int64Counter    // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter    // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter    // OTel counter for retries.
}

// NewBatchClassifier is the constructor for the BatchClassifier command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generativeAIModel: The client for the generative AI model.
//   - prompt: The parsed Go template for the classification prompt.
//   - modelName: The model name recorded in each envelope.
//   - numberOfWorkers: The size of the worker pool for concurrent processing.
//
// Outputs:
//   - *BatchClassifier: A pointer to the newly instantiated command.
func NewBatchClassifier(
	name string,
	generativeAIModel cloud.ContentGenerator,
	prompt *template.Template,
	modelName string,
	numberOfWorkers int) *BatchClassifier {
	out := &BatchClassifier{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		promptTemplate:    prompt,
		modelName:         modelName,
		numberOfWorkers:   numberOfWorkers}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// Execute fans the batch out across the worker pool and collects envelopes.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *BatchClassifier) Execute(context cor.Context) {
	views := context.Get(s.GetInputParam()).([]model.MovieSummaryView)

	exampleClassification, _ := json.Marshal(model.GetExampleClassification())
	exampleText := string(exampleClassification)

	var wg sync.WaitGroup

	// Buffered to the batch size so every job can be queued without
	// blocking before the workers start draining.
	jobs := make(chan *classifyJob, len(views))
	results := make(chan *classifyResponse, len(views))

	for w := 1; w <= s.numberOfWorkers; w++ {
		wg.Add(1)
		go classifyWorker(s.modelName, jobs, results, &wg)
	}

	for i := range views {
		view := views[i]
		job := s.createJob(context.GetContext(), i, &view, exampleText)
		jobs <- job
	}

	// No more work; lets the workers drain the channel and exit.
	close(jobs)

	wg.Wait()
	close(results)

	envelopes := make([]*model.PlotAugmentation, 0, len(views))
	for r := range results {
		if r.err != nil {
			s.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(fmt.Sprintf("%s_%s", s.GetName(), r.movieId), r.err)
		} else {
			envelopes = append(envelopes, r.envelope)
		}
	}

	if !context.HasErrors() {
		s.GetSuccessCounter().Add(context.GetContext(), 1)
	}

	context.Add(s.GetOutputParam(), envelopes)
	context.Add(cor.CtxOut, envelopes)
}

// classifyResponse carries one movie's envelope or failure back from a worker.
type classifyResponse struct {
	movieId  string
	envelope *model.PlotAugmentation
	err      error
}

// classifyJob packages everything a worker needs to classify one summary.
type classifyJob struct {
	sequence                 int
	ctx                      goctx.Context
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
	geminiRetryCounter       metric.Int64Counter
	view                     *model.MovieSummaryView
	span                     trace.Span
	prompt                   string
	model                    cloud.ContentGenerator
	err                      error
}

// Close ends the OpenTelemetry span associated with this job.
func (j *classifyJob) Close(status codes.Code, description string) {
	j.span.SetStatus(status, description)
	j.span.End()
}

// createJob renders the prompt for one summary and opens its trace span.
func (s *BatchClassifier) createJob(ctx goctx.Context, sequence int, view *model.MovieSummaryView, exampleText string) *classifyJob {
	jobCtx, jobSpan := s.Tracer.Start(ctx, fmt.Sprintf("%s_genai_classify_%d", s.GetName(), sequence))
	jobSpan.SetAttributes(
		attribute.Int("sequence", sequence),
		attribute.String("movie_id", view.WikipediaId),
		attribute.String("title", view.Title),
	)

	vocabulary := make(map[string]any)
	vocabulary["TITLE"] = view.Title
	vocabulary["PLOT"] = view.Summary
	vocabulary["EXAMPLE_JSON"] = exampleText

	var doc bytes.Buffer
	if err := s.promptTemplate.Execute(&doc, vocabulary); err != nil {
		return &classifyJob{view: view, span: jobSpan, err: err}
	}

	return &classifyJob{
		sequence:                 sequence,
		ctx:                      jobCtx,
		geminiInputTokenCounter:  s.geminiInputTokenCounter,
		geminiOutputTokenCounter: s.geminiOutputTokenCounter,
		geminiRetryCounter:       s.geminiRetryCounter,
		view:                     view,
		span:                     jobSpan,
		prompt:                   doc.String(),
		model:                    s.generativeAIModel,
	}
}

// classifyWorker is the function each pool goroutine runs: pull a job, call
// the model, parse, wrap, repeat until the jobs channel closes.
//
// Inputs:
//   - modelName: The model name recorded in each envelope.
//   - jobs: A receive-only channel of classify jobs.
//   - results: A send-only channel for the per-movie outcomes.
//   - wg: The WaitGroup signaled when this worker exits.
func classifyWorker(modelName string, jobs <-chan *classifyJob, results chan<- *classifyResponse, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		if j.err != nil {
			j.Close(codes.Error, "prompt template failed")
			results <- &classifyResponse{movieId: j.view.WikipediaId, err: j.err}
			continue
		}

		out, err := cloud.GenerateContentWithRetry(j.ctx, j.geminiInputTokenCounter, j.geminiOutputTokenCounter, j.geminiRetryCounter, 0, j.model, cloud.NewTextPart(j.prompt))
		if err != nil {
			j.Close(codes.Error, "classification failed")
			results <- &classifyResponse{movieId: j.view.WikipediaId, err: err}
			continue
		}

		classification := &model.PlotClassification{}
		if err := json.Unmarshal([]byte(out), classification); err != nil {
			j.Close(codes.Error, "classification unparseable")
			results <- &classifyResponse{movieId: j.view.WikipediaId, err: fmt.Errorf("failed to unmarshal classification for movie %s: %w", j.view.WikipediaId, err)}
			continue
		}

		envelope := model.NewPlotAugmentation(j.view.WikipediaId, model.AugmentationKindClassify, "")
		envelope.ModelName = modelName
		envelope.Classification = classification

		results <- &classifyResponse{movieId: j.view.WikipediaId, envelope: envelope}
		j.Close(codes.Ok, "completed classification")
	}
}
