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

// Package cloud provides components for interacting with Google Cloud services.
// This file contains the utility functions that support the cloud package:
// hierarchical configuration loading and validation, plus resilient calls to
// the Generative AI API.
//
// Functions:
//   - fileExists: A simple helper to check if a file exists.
//   - LoadConfig: Reads a base configuration file, then overlays an
//     environment-specific file (e.g., .env.local.toml, .env.test.toml)
//     selected through an environment variable.
//   - ValidateConfig: Checks the loaded configuration against the struct
//     validation tags.
//   - GenerateContentWithRetry: Calls a GenAI model with retries on
//     transient failures, recording token and retry counts to
//     OpenTelemetry.
//   - NewTextPart: Factory for text prompt content.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"
)

// Configuration constants: the file naming scheme for layered TOML configs,
// the environment variables that select them, and the API retry policy.
const (
	ConfigFileBaseName  = ".env"                 // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"                // The file extension for configuration files.
	ConfigSeparator     = "."                    // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "CORPUS_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "CORPUS_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
	MaxRetries          = 3                      // The maximum number of times to retry a failed API call.
)

// fileExists checks if a file or directory exists at the given path.
//
// Inputs:
//   - in: The path to the file or directory as a string.
//
// Outputs:
//   - bool: Returns true if the file exists, and false if it does not.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates a configuration struct from layered TOML files. The
// base file loads first and the environment-specific file overlays it, so an
// override file only needs the values that differ. The config directory and
// runtime name come from environment variables; the runtime defaults to
// "test" so unit tests need no setup.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct that will be
//     populated from the TOML files.
func LoadConfig(baseConfig any) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	// Base file, e.g. "configs/.env.toml".
	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	fmt.Printf("Base Configuration File: %s\n", baseConfigFileName)

	// Override file, e.g. "configs/.env.test.toml".
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	fmt.Printf("Environment Configuration File: %s\n", envConfigFileName)

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	// Values in the environment file overwrite the base values.
	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}

// ValidateConfig checks a loaded configuration against the `validate` tags
// on its struct fields, catching missing or malformed settings at startup
// instead of at first use.
//
// Inputs:
//   - config: The loaded configuration to check.
//
// Outputs:
//   - error: The validation failure, or nil when the configuration is complete.
func ValidateConfig(config *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GenerateContentWithRetry executes a request against a Generative AI model,
// retrying transient failures and recording telemetry along the way. The
// model's JSON output often arrives wrapped in a Markdown code fence, so the
// fence is stripped before the text is returned.
//
// Inputs:
//   - ctx: The context for the request, which controls cancellation and tracing.
//   - inputTokenCounter: An OpenTelemetry counter for prompt tokens used.
//   - outputTokenCounter: An OpenTelemetry counter for response tokens generated.
//   - retryCounter: An OpenTelemetry counter for tracking the number of retries.
//   - tryCount: The current attempt number for this request (starts at 0).
//   - model: The generative model to use, normally the rate-limited wrapper.
//   - content: The ordered content (prompt text) of the request.
//
// Outputs:
//   - string: The concatenated text content from the model's response.
//   - error: An error if the request fails after all retries.
func GenerateContentWithRetry(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model ContentGenerator,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)

	if err != nil {
		if tryCount < MaxRetries {
			retryCounter.Add(ctx, 1)
			return GenerateContentWithRetry(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		}
		return "", err
	}

	inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
	outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))

	// Concatenate the text across candidates and parts.
	value = ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += fmt.Sprint(part.Text)
			}
		}
	}
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimSuffix(value, "```")
	return value, nil
}

// NewTextPart wraps a prompt string as GenAI request content.
//
// Inputs:
//   - in: The string content for the text part.
//
// Outputs:
//   - []*genai.Content: The request content holding the text.
func NewTextPart(in string) []*genai.Content {
	return genai.Text(in)
}
