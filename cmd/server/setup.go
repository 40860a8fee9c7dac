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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies, such as configuration, Google Cloud service clients,
// the loaded corpus store, and the application-level services for statistics and
// narrative augmentation.
//
// It ensures that the application is configured correctly based on the environment,
// runs the corpus ingestion pipeline (download, extract, load) exactly once at
// startup, and wires the resulting immutable store into the services the API
// routes depend on.
//
// Functions:
//   - SetupOS: Configures necessary environment variables for the application,
//     pointing to the correct configuration files.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files. It ensures the configuration is loaded only once.
//   - InitState: The core initialization function that creates the service
//     clients, ingests the corpus, and configures the application services
//     (StatsService, AugmentService).
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/services"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
)

// StateManager holds all the shared dependencies for the application, acting as a
// centralized container for service clients and configurations. This avoids the
// need for global variables and makes dependency management cleaner.
type StateManager struct {
	config         *cloud.Config
	cloud          *cloud.ServiceClients
	statsService   *services.StatsService
	augmentService *services.AugmentService
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the necessary environment variables that the configuration loader
// uses to find the correct TOML files.
//
// A `.env` file in the working directory is read first, so a deployment can
// carry its settings next to the binary; values already exported by the shell
// win over the file, and both win over the defaults set here. The default
// runtime is "local", which makes the config loader overlay ".env.local.toml"
// on the base configuration.
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	// Best effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	// Set the directory where configuration files are located, unless the
	// environment already names one.
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	// Set the current runtime environment to "local". The config loader will
	// look for a ".env.local.toml" file to override base settings.
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// It ensures that the configuration is loaded from the file system only once.
// On the first call, it sets up the OS environment, loads the configuration
// from the TOML files, and validates it. Subsequent calls return the cached
// configuration.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	// If the config has not been loaded yet...
	if state.config == nil {
		// Set up the environment variables required for config loading.
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the .toml files into the struct.
		cloud.LoadConfig(&config)
		// Refuse to start on an incomplete configuration.
		if err := cloud.ValidateConfig(config); err != nil {
			log.Fatalf("configuration is invalid: %v\n", err)
		}
		// Store the loaded config in the state manager.
		state.config = config
	}
	// Return the cached config.
	return state.config
}

// InitState initializes the entire application state.
// It orchestrates the creation of all necessary services and clients based on the
// application configuration and wires them together.
//
// Inputs:
//   - ctx: The root context.Context for the application, used for managing
//     the lifecycle of client connections and the ingestion run.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes the Google Cloud GenAI clients.
//  3. Runs the corpus ingestion pipeline (download, extract, load) and keeps
//     the resulting immutable store.
//  4. Instantiates the application-specific services (StatsService,
//     AugmentService) with the store and the augmentation workflows.
func InitState(ctx context.Context) {
	// Get the application configuration.
	config := GetConfig()

	// Initialize the Generative AI clients and agent models.
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}

	// Store the initialized clients in the global state.
	state.cloud = cloudClients

	// Download, extract and load the corpus. The pipeline skips the download
	// and extract steps when a previous run already left the files on disk,
	// so restarts only pay for the TSV parse.
	ingestion := workflow.NewCorpusIngestionPipeline(config, http.DefaultClient)
	store, report, err := ingestion.Ingest(ctx)
	if err != nil {
		log.Fatalf("corpus ingestion failed: %v\n", err)
	}
	for _, tbl := range report.Tables {
		log.Printf("loaded table %s from %s: %d rows kept, %d quarantined\n",
			tbl.Table, tbl.File, tbl.RowsLoaded, tbl.RowsSkipped)
	}

	// Initialize the StatsService over the loaded store.
	ttl := time.Duration(config.Server.StatsCacheTtlSeconds) * time.Second
	state.statsService = services.NewStatsService(store, ttl)

	// Initialize the AugmentService with the single-movie workflows and the
	// worker-pool batch workflow.
	classify := workflow.NewPlotClassifyPipeline(config, cloudClients, "classifier-flash")
	rewrite := workflow.NewPlotRewritePipeline(config, cloudClients, "creative-flash")
	batch := workflow.NewBatchClassifyPipeline(config, cloudClients, "classifier-flash")
	state.augmentService, err = services.NewAugmentService(config, store, classify, rewrite, batch)
	if err != nil {
		log.Fatalf("failed to initialize augmentation service: %v\n", err)
	}
}
