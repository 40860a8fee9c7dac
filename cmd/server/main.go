// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the movie corpus dashboard server.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// for the corpus aggregation statistics and for narrative augmentation of plot summaries. The
// server is instrumented with OpenTelemetry for logging, tracing, and metrics, providing
// observability into the application's performance.
//
// The main function initializes the application's configuration, sets up logging and telemetry,
// and initializes the application state: it ingests the movie corpus (downloading and extracting
// the archive if needed), builds the in-memory store, and wires the statistics and augmentation
// services. It then defines the API routes for the dashboard aggregations, movie lookup, and
// plot augmentation.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server, configures routes,
//     initializes services, and handles graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/cinemetrics/movie-corpus-insights/internal/telemetry"
)

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, the corpus
// ingestion, the web server, and the API routes. It also handles graceful
// shutdown of the server upon receiving an interrupt signal.
func main() {
	// Initialize structured logging for the application.
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Create a new context that can be cancelled. This is the root context for the application.
	ctx, cancel := context.WithCancel(context.Background())
	// Defer the cancel function to be called when main exits, ensuring all child contexts are cancelled.
	defer cancel()

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	otelShutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state: the GenAI clients, the ingested
	// corpus store, and the services over it.
	InitState(ctx)
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Add OpenTelemetry middleware to the Gin router to trace incoming requests.
	// This will automatically create spans for each request.
	r.Use(otelgin.Middleware("movie-corpus-server"))

	// Configure Cross-Origin Resource Sharing (CORS) middleware.
	// Using cors.Default() provides a permissive configuration suitable for development,
	// allowing requests from any origin.
	r.Use(cors.Default())

	// Compress responses. The aggregation tables and plot summaries are
	// highly repetitive JSON, which compresses well.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Liveness probe, outside the API group on purpose.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Group routes under the "/api/v1" prefix.
	apiV1 := r.Group("/api/v1")
	{
		// Register the routes for the dashboard statistics and the movie
		// lookup and augmentation functionality within the API group.
		Dashboard(apiV1)
		MovieRouter(apiV1)
	}

	// Configure the HTTP server with the address and handler.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Server.Port),
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready", "port", config.Server.Port)

	// Set up a channel to listen for OS interrupt signals (e.g., Ctrl+C).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	// Block until a signal is received on the quit channel.
	<-quit
	slog.Info("Shutdown Server ...")

	// Create a context with a timeout for the graceful shutdown.
	// This gives active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Attempt to gracefully shut down the server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	// Flush any buffered telemetry before exiting.
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}
