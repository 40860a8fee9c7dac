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

// Package services_test contains the test suite for the services package.
// This file, `base_test.go`, provides the foundational setup for all tests
// within this package using the special `TestMain` function. The suite runs
// fully offline: the stats service aggregates the fixture corpus and the
// augmentation service is fed by a fake generative model, so no cloud
// clients or exporters are initialized here.
package services_test

import (
	"context"
	"os"
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	test "github.com/cinemetrics/movie-corpus-insights/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

// Declare global variables to hold shared resources for the test suite.
// These are initialized once in TestMain and can be accessed by other
// test functions in the `services_test` package.
var (
	ctx    context.Context // The root context for all tests in the suite.
	config *cloud.Config   // The application configuration loaded from test files.
)

// Constants and global tracers/loggers for telemetry. Without an exporter
// configured these are no-ops, but the spans keep the tests structured the
// same way the production services run.
const tName = "github.com/cinemetrics/movie-corpus-insights/tests/services"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

// TestMain is a special function that Go's testing framework executes before any
// other tests in this package. It allows for setting up shared state and
// performing teardown actions after all tests have run.
//
// Inputs:
//   - m: A pointer to testing.M, which provides access to the test suite and
//     allows running the tests via m.Run().
func TestMain(m *testing.M) {
	// ---- Setup Phase ----

	// Create a root context with a cancellation function, used for all
	// initializations and passed down to tests.
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	// Load application configuration from test-specific files (`.env.test.toml`).
	config = test.GetConfig()

	logger.Info("completed test setup")

	// ---- Execution Phase ----

	exitCode := m.Run()

	// ---- Teardown Phase ----

	os.Exit(exitCode)
}
