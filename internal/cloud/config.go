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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and the clients built from them. Settings cover
// the corpus archive, the dashboard server, the GenAI models used for
// narrative augmentation, and the prompt templates sent to them.
//
// This file centralizes the configuration structs so every configurable
// parameter of the application is visible in one place.
//
// Structs:
//   - Corpus: Location of the corpus archive and the directories it lands in.
//   - Server: Dashboard server and cache settings.
//   - PromptTemplates: Text templates for the augmentation prompts.
//   - VertexAiLLMModel: Configuration for a Vertex AI Large Language Model (LLM).
//   - RewriteStyle: A named narration style with optional prompt overrides.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings holds the content safety thresholds applied to every
// GenAI call. Plot summaries routinely describe violence and crime, so the
// thresholds are non-restrictive; the input corpus is a fixed research
// dataset, not user-submitted content.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Corpus describes where the movie corpus archive comes from and where its
// pieces live on disk. The loader downloads and extracts only what is
// missing, so a populated extract directory short-circuits both steps.
type Corpus struct {
	ArchiveUrl  string `toml:"archive_url" validate:"required,url"` // The URL the corpus archive is downloaded from.
	DownloadDir string `toml:"download_dir" validate:"required"`    // The directory the archive is downloaded into.
	ArchiveName string `toml:"archive_name" validate:"required"`    // The file name of the downloaded archive.
	CorpusDir   string `toml:"corpus_dir" validate:"required"`      // The directory the archive expands to, relative to the download directory.
	SchemaFile  string `toml:"schema_file"`                         // Optional path to a schema manifest overriding the embedded one.
}

// Server holds the dashboard server settings.
type Server struct {
	Port                  int `toml:"port" validate:"required,min=1,max=65535"` // The TCP port the dashboard listens on.
	StatsCacheTtlSeconds  int `toml:"stats_cache_ttl_seconds"`                  // How long cached aggregation responses stay fresh.
	AugmentationCacheSize int `toml:"augmentation_cache_size"`                  // The number of LLM augmentation results kept in the LRU cache.
}

// PromptTemplates holds the templates for the augmentation prompts.
type PromptTemplates struct {
	ClassifyPrompt string `toml:"classify" validate:"required"` // The template for the plot classification prompt.
	RewritePrompt  string `toml:"rewrite" validate:"required"`  // The template for the plot rewrite prompt.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model" validate:"required"` // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"`       // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`               // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`                     // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`                     // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`                // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`             // The desired output format for the LLM.
	EnableGoogle       bool    `toml:"enable_google"`             // Whether to enable Google Search grounding for the LLM.
	RateLimit          int     `toml:"rate_limit"`                // The rate limit for the LLM in requests per second.
}

// RewriteStyle defines a narration style a plot summary can be rewritten in,
// with optional overrides for the LLM system instructions and the rewrite
// prompt template for that style.
type RewriteStyle struct {
	Name               string `toml:"name"`                // The user-friendly name of the style (e.g., "Noir").
	Definition         string `toml:"definition"`          // A short description of the style's voice, handed to the prompt.
	SystemInstructions string `toml:"system_instructions"` // Optional override for LLM system instructions for this style.
	Prompt             string `toml:"prompt"`              // Optional override for the rewrite prompt template.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other
// configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name" validate:"required"` // The name of the application.
		GoogleProjectId string `toml:"google_project_id"`        // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`                 // The Google Cloud location.
		ThreadPoolSize  int    `toml:"thread_pool_size"`         // The size of the worker pool for batch classification.
	} `toml:"application"`
	Corpus          Corpus                      `toml:"corpus"`           // Corpus archive configuration.
	Server          Server                      `toml:"server"`           // Dashboard server configuration.
	PromptTemplates PromptTemplates             `toml:"prompt_templates"` // Prompt templates configuration.
	AgentModels     map[string]VertexAiLLMModel `toml:"agent_models"`     // A map of Vertex AI LLM models, keyed by a logical name (e.g., "classifier-flash").
	RewriteStyles   map[string]RewriteStyle     `toml:"rewrite_styles"`   // A map of narration styles, keyed by a logical name (e.g., "noir").
}

// NewConfig is a constructor function that creates a new, initialized Config
// instance. The maps must be initialized up front so the configuration
// loader can populate them without nil map panics.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels:   make(map[string]VertexAiLLMModel),
		RewriteStyles: make(map[string]RewriteStyle),
	}
}
