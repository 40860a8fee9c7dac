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
// This file initializes and holds the client objects the application needs to
// talk to Vertex AI. It acts as a small dependency injection container: one
// shared `ServiceClients` struct is built at startup and passed to the
// workflows and services that need a model.
//
// Logic Flow:
//  1. `NewCloudServiceClients` runs at application startup with the loaded `Config`.
//  2. It creates the Generative AI client against the configured project and location.
//  3. For every configured agent model it builds a generation config (temperature,
//     safety settings, system instructions, optional search grounding) and wraps
//     it in the rate-limited `QuotaAwareGenerativeAIModel`.
//  4. The resulting container is shared by the augmentation workflows and services.
//
// Structs:
//   - ServiceClients: A container holding the GenAI client and the configured agent models.
//
// Functions:
//   - Close: Releases client resources on shutdown.
//   - NewCloudServiceClients: A factory that builds the container from the configuration.
package cloud

import (
	"context"
	"log"

	"google.golang.org/genai"
)

// ServiceClients is the central container for clients that talk to external
// Google Cloud services. Building it once and passing it around keeps
// connection management in one place.
type ServiceClients struct {
	GenAIClient *genai.Client                           // Client for Google's Generative AI services (Vertex AI).
	AgentModels map[string]*QuotaAwareGenerativeAIModel // Configured GenAI agent (LLM) models, keyed by a logical name from the config.
}

// Close releases the resources held by the container. The current GenAI SDK
// manages its own transport and exposes no close function, so today this is
// a lifecycle hook for callers that defer cleanup.
func (c *ServiceClients) Close() {
}

// NewCloudServiceClients initializes the Google Cloud clients the
// application requires, based on the provided configuration.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	log.Printf("creating genai client for project %q in %q", config.Application.GoogleProjectId, config.Application.GoogleLocation)
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		log.Printf("error creating genai client: %v", err)
		return nil, err
	}

	// Build a generation config per configured agent model, apply its
	// settings, and wrap it in the rate-limiting decorator.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]

		model := &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](values.Temperature),
			TopP:             genai.Ptr[float32](values.TopP),
			TopK:             genai.Ptr[float32](values.TopK),
			MaxOutputTokens:  values.MaxTokens,
			SafetySettings:   DefaultSafetySettings,
			ResponseMIMEType: values.OutputFormat,
			Tools:            []*genai.Tool{},
		}
		if values.SystemInstructions != "" {
			model.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}}
		}
		if values.EnableGoogle {
			model.Tools = append(model.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		}

		agentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	cloud = &ServiceClients{
		GenAIClient: gc,
		AgentModels: agentModels,
	}

	return cloud, err
}
