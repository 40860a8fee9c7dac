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
// final step of the ingestion workflow: parsing the extracted corpus files
// into the in-memory store.
//
// Logic Flow:
//  1. It receives the corpus directory path from the extract command.
//  2. The corpus loader reads the five flat files against the schema
//     manifest, quarantining rows that do not parse.
//  3. The resulting immutable store becomes the chain output, and the load
//     report is published under its own well-known context key so callers
//     can inspect row counts without digging into the store.
package commands

import (
	"fmt"
	"log"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
)

// CorpusTableLoad is a command that parses the extracted corpus files into
// an immutable in-memory store.
type CorpusTableLoad struct {
	cor.BaseCommand
	schema *corpus.Schema // The column manifest the files are parsed against. Nil selects the embedded default.
}

// NewCorpusTableLoad is the constructor for the CorpusTableLoad command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - schema: The schema manifest to parse against, or nil for the embedded default.
//
// Outputs:
//   - *CorpusTableLoad: A pointer to the newly instantiated command.
func NewCorpusTableLoad(name string, schema *corpus.Schema) *CorpusTableLoad {
	return &CorpusTableLoad{
		BaseCommand: *cor.NewBaseCommand(name),
		schema:      schema,
	}
}

// Execute parses the corpus directory into a store.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *CorpusTableLoad) Execute(context cor.Context) {
	dir := context.Get(c.GetInputParam()).(string)

	loader := corpus.NewLoader(dir, c.schema)
	store, err := loader.Load()
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to load corpus tables from %s: %w", dir, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("Successfully loaded corpus from %s: %d rows across %d tables",
		dir, store.Report().TotalRows(), len(store.Report().Tables))

	// The report gets its own key; the store is the chain output.
	context.Add(corpus.GetLoadReportName(), store.Report())
	context.Add(c.GetOutputParam(), store)
}
