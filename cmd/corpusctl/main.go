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

// Package main is the entry point for corpusctl, the command line companion
// to the dashboard server. It exposes the same corpus operations without a
// running server: fetching the archive, validating the load, running the
// aggregation queries, and augmenting plot summaries with a generative
// model. Subcommand flags mirror the query parameters of the HTTP API.
//
// Functions:
//   - main: Parses the command line and dispatches to the subcommands.
//   - getConfig: A singleton loader for the layered TOML configuration.
//   - loadStore: Runs the ingestion pipeline and returns the loaded store.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
)

var (
	configDir  string // --config: the directory holding the .env TOML files.
	runtimeEnv string // --runtime: the configuration overlay to apply.

	// config is the lazily loaded singleton configuration shared by all
	// subcommands.
	config *cloud.Config
)

var rootCmd = &cobra.Command{
	Use:   "corpusctl",
	Short: "Movie corpus analysis from the command line",
	Long: `corpusctl works the movie summary corpus without a running server:
it downloads and extracts the corpus archive, validates the tables against
the declared schema, runs the dashboard aggregations, and augments plot
summaries with a generative model.

Flags on the stats and augment subcommands mirror the query parameters of
the dashboard API, so a CLI invocation and an HTTP request describe the
same question.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory holding the .env TOML configuration files")
	rootCmd.PersistentFlags().StringVar(&runtimeEnv, "runtime", "local", "configuration overlay to apply (e.g. local, test, prod)")
}

// getConfig loads the layered TOML configuration once and caches it. A
// `.env` file in the working directory is read first so credentials and
// overrides can live next to the binary; the --config and --runtime flags
// then select which TOML files the loader reads.
//
// Outputs:
//   - *cloud.Config: The loaded and validated configuration.
//   - error: A load or validation failure.
func getConfig() (*cloud.Config, error) {
	if config != nil {
		return config, nil
	}

	// Best effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	if err := os.Setenv(cloud.EnvConfigFilePrefix, configDir); err != nil {
		return nil, err
	}
	if err := os.Setenv(cloud.EnvConfigRuntime, runtimeEnv); err != nil {
		return nil, err
	}

	loaded := cloud.NewConfig()
	cloud.LoadConfig(&loaded)
	if err := cloud.ValidateConfig(loaded); err != nil {
		return nil, err
	}
	config = loaded
	return config, nil
}

// loadStore runs the full ingestion pipeline: download and extract when
// needed, then parse the five tables into the in-memory store. Every
// analysis subcommand starts here.
//
// Inputs:
//   - cmd: The cobra command being run, for its context.
//
// Outputs:
//   - *corpus.Store: The loaded corpus.
//   - *corpus.LoadReport: The per-table load outcomes.
//   - error: A configuration or ingestion failure.
func loadStore(cmd *cobra.Command) (*corpus.Store, *corpus.LoadReport, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, nil, err
	}
	ingestion := workflow.NewCorpusIngestionPipeline(cfg, http.DefaultClient)
	store, report, err := ingestion.Ingest(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("ingesting corpus: %w", err)
	}
	return store, report, nil
}
