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
// corpus ingestion workflow that takes the application from an empty
// filesystem to a queryable in-memory corpus.
package workflow

import (
	goctx "context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/commands"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
)

// CorpusIngestionWorkflow orchestrates the download, extraction and parsing
// of the movie corpus. Each step is skip-aware: archives and directories
// already on disk are reused, so after the first run the workflow is a
// parse-only startup step.
type CorpusIngestionWorkflow struct {
	cor.BaseCommand
	source     *corpus.ArchiveSource // Where the archive comes from and where its pieces land.
	httpClient *http.Client          // The client the fetch step downloads through.
	schema     *corpus.Schema        // The column manifest, nil for the embedded default.
	loadTables bool                  // Whether the chain parses the tables after extraction.
	chain      cor.Chain             // The underlying chain of commands to be executed.
}

// Execute runs the ingestion workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *CorpusIngestionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Ingest is the convenience entry point the server and the CLI use: it runs
// the chain against a fresh workflow context and unwraps the results.
//
// Inputs:
//   - ctx: The Go context for cancellation and tracing.
//
// Outputs:
//   - *corpus.Store: The loaded corpus.
//   - *corpus.LoadReport: Per-table row counts from the load step.
//   - error: The joined command failures, or nil.
func (w *CorpusIngestionWorkflow) Ingest(ctx goctx.Context) (*corpus.Store, *corpus.LoadReport, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, w.source)

	w.Execute(chCtx)

	if chCtx.HasErrors() {
		errs := make([]error, 0, len(chCtx.GetErrors()))
		for name, err := range chCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return nil, nil, errors.Join(errs...)
	}

	// After the final command the chain pipes its output into the input
	// slot, so the store is read from there.
	store, ok := chCtx.Get(cor.CtxIn).(*corpus.Store)
	if !ok {
		return nil, nil, errors.New("ingestion chain finished without producing a corpus store")
	}
	report, _ := chCtx.Get(corpus.GetLoadReportName()).(*corpus.LoadReport)
	return store, report, nil
}

// Fetch is the entry point for the fetch-only pipeline: it downloads and
// extracts the archive without parsing the tables, and reports where the
// corpus files landed. Calling it on a full ingestion pipeline also works;
// the parse output is simply ignored.
//
// Inputs:
//   - ctx: The Go context for cancellation and tracing.
//
// Outputs:
//   - string: The directory the corpus files were extracted into.
//   - error: The joined command failures, or nil.
func (w *CorpusIngestionWorkflow) Fetch(ctx goctx.Context) (string, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, w.source)

	w.Execute(chCtx)

	if chCtx.HasErrors() {
		errs := make([]error, 0, len(chCtx.GetErrors()))
		for name, err := range chCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return "", errors.Join(errs...)
	}
	return w.source.CorpusPath(), nil
}

// initializeChain builds the three-step ingestion sequence. Called by the
// constructor.
func (w *CorpusIngestionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Download the corpus tarball, unless a previous run already
	// left it in the download directory.
	out.AddCommand(commands.NewCorpusArchiveFetch("fetch-corpus-archive", w.httpClient))

	// Step 2: Unpack the tarball into the corpus directory, again skipping
	// work that is already done.
	out.AddCommand(commands.NewCorpusArchiveExtract("extract-corpus-archive"))

	// Step 3: Parse the five flat files into the immutable in-memory store
	// and publish the load report. The fetch-only pipeline stops short of
	// this step.
	if w.loadTables {
		out.AddCommand(commands.NewCorpusTableLoad("load-corpus-tables", w.schema))
	}

	w.chain = out
}

// NewCorpusIngestionPipeline is the constructor for the ingestion workflow.
// It resolves the archive locations and the schema manifest from the
// configuration and builds the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - httpClient: The HTTP client downloads go through. Tests pass a client
//     pointed at a local fixture server.
//
// Returns:
//   - A pointer to a newly created and fully initialized CorpusIngestionWorkflow.
func NewCorpusIngestionPipeline(config *cloud.Config, httpClient *http.Client) *CorpusIngestionWorkflow {
	source := &corpus.ArchiveSource{
		Url:         config.Corpus.ArchiveUrl,
		DownloadDir: config.Corpus.DownloadDir,
		ArchiveName: config.Corpus.ArchiveName,
		CorpusDir:   config.Corpus.CorpusDir,
	}

	// An explicit schema file overrides the embedded manifest. The app
	// cannot run against an unparseable manifest, so fail immediately.
	var schema *corpus.Schema
	if config.Corpus.SchemaFile != "" {
		loaded, err := corpus.LoadSchema(config.Corpus.SchemaFile)
		if err != nil {
			panic(err)
		}
		schema = loaded
	}

	pipeline := &CorpusIngestionWorkflow{
		BaseCommand: *cor.NewBaseCommand("corpus-ingestion-pipeline"),
		source:      source,
		httpClient:  httpClient,
		schema:      schema,
		loadTables:  true,
	}
	pipeline.initializeChain()
	return pipeline
}

// NewCorpusFetchPipeline is the constructor for the fetch-only variant of
// the ingestion workflow: download and extract, no table parse. The CLI
// uses it to warm the corpus directory ahead of analysis runs.
//
// Inputs:
//   - config: The application's overall configuration.
//   - httpClient: The HTTP client downloads go through.
//
// Returns:
//   - A pointer to a newly created and fully initialized CorpusIngestionWorkflow.
func NewCorpusFetchPipeline(config *cloud.Config, httpClient *http.Client) *CorpusIngestionWorkflow {
	pipeline := &CorpusIngestionWorkflow{
		BaseCommand: *cor.NewBaseCommand("corpus-fetch-pipeline"),
		source: &corpus.ArchiveSource{
			Url:         config.Corpus.ArchiveUrl,
			DownloadDir: config.Corpus.DownloadDir,
			ArchiveName: config.Corpus.ArchiveName,
			CorpusDir:   config.Corpus.CorpusDir,
		},
		httpClient: httpClient,
	}
	pipeline.initializeChain()
	return pipeline
}
