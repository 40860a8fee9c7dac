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
// This file wraps the Generative AI client with a quota-aware decorator.
// Vertex AI enforces per-minute request quotas, and transient network
// failures happen; the wrapper rate-limits outgoing calls and retries
// failed ones so the rest of the application can treat generation as a
// plain function call.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Wraps a model handle with a rate limiter.
//
// Interfaces:
//   - ContentGenerator: The narrow generation surface commands and services
//     depend on, satisfiable by a fake in tests.
//
// Functions:
//   - NewQuotaAwareModel: A constructor for the wrapped model.
//   - GenerateContent: The rate-limited, retrying generation call.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator is the generation surface the rest of the application
// depends on. Production code uses QuotaAwareGenerativeAIModel; tests
// substitute a canned implementation so no network is involved.
type ContentGenerator interface {
	// GenerateContent sends the prompt content to the model and returns its response.
	GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error)
}

// retryCountKey is the context key the wrapper tracks its retry depth under.
type retryCountKey struct{}

// QuotaAwareGenerativeAIModel decorates a Generative AI model handle with
// rate limiting and retry behavior. It carries everything a generation call
// needs: the model name, the shared model handle, and the per-model request
// configuration.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // The per-model generation settings (temperature, safety, system instructions).
	ModelName               string                       // The Vertex AI model to call, e.g. "gemini-2.0-flash".
	ModelHandle             *genai.Models                // The shared handle requests are issued through.
	RateLimit               rate.Limiter                 // Limits outgoing request frequency to stay inside quota.
}

// NewQuotaAwareModel builds a quota-aware model from its generation config,
// model name, shared handle and a request rate.
//
// Inputs:
//   - wrapped: The generation configuration for this model.
//   - name: The Vertex AI model name.
//   - modelHandle: The shared models handle requests go through.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		// A token bucket replenishing once per second with a burst of
		// requestsPerSecond.
		RateLimit: *rate.NewLimiter(rate.Every(time.Second/1), requestsPerSecond),
	}
}

// GenerateContent issues a generation request through the rate limiter.
//
// Logic flow:
//  1. Ask the limiter for a token (non-blocking).
//  2. With a token, call the model. On failure, back off and recurse with an
//     incremented retry count carried on the context; give up past the
//     retry cap.
//  3. Without a token, pause briefly and recurse so the request re-queues
//     behind the limiter.
//
// Inputs:
//   - ctx: The context for the request; also carries the retry state.
//   - content: The ordered prompt content.
//
// Outputs:
//   - *genai.GenerateContentResponse: The response from the AI model if successful.
//   - error: An error if the request fails after all retries.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	if !q.RateLimit.Allow() {
		// No token available. Wait, then go back through the limiter.
		time.Sleep(time.Second * 5)
		return q.GenerateContent(ctx, content)
	}

	resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
	if err != nil {
		retryCount, ok := ctx.Value(retryCountKey{}).(int)
		if !ok {
			retryCount = 0
		}
		if retryCount >= MaxRetries {
			return nil, errors.New("failed generation on max retries")
		}
		errCtx := context.WithValue(ctx, retryCountKey{}, retryCount+1)
		// Give the service time to recover before the next attempt.
		time.Sleep(time.Second * 30)
		return q.GenerateContent(errCtx, content)
	}
	return resp, err
}
