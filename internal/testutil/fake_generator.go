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

// Package test provides utility functions and mock data to support the
// application's test suite. This file, `fake_generator.go`, implements an
// offline stand-in for the Vertex AI generative model so that the
// augmentation workflows can be tested without network access, credentials,
// or per-request cost.
package test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// FakeContentGenerator implements cloud.ContentGenerator with canned
// responses. Responses are returned in order; once exhausted, the last one
// repeats, so a batch of any size can share a single canned payload. The
// fake is safe for concurrent use because the batch classifier calls it
// from multiple workers at once.
type FakeContentGenerator struct {
	mu        sync.Mutex
	responses []string
	failures  int // Remaining calls to fail before responding normally.
	calls     int
	prompts   []string
}

// NewFakeContentGenerator creates a fake model that replies with the given
// texts in order.
//
// Inputs:
//   - responses: The texts to return, one per call, last one repeating.
//
// Returns:
//   - A pointer to the initialized fake.
func NewFakeContentGenerator(responses ...string) *FakeContentGenerator {
	return &FakeContentGenerator{responses: responses}
}

// FailFirst makes the next n calls return an error before the canned
// responses start flowing. Tests use this to exercise the retry path.
//
// Inputs:
//   - n: The number of leading calls that should fail.
//
// Returns:
//   - The same fake, for chaining at the call site.
func (f *FakeContentGenerator) FailFirst(n int) *FakeContentGenerator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
	return f
}

// Calls reports how many times GenerateContent has been invoked, including
// the calls that were made to fail.
func (f *FakeContentGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Prompts returns the flattened text of every request received so far, in
// call order. Tests use this to verify which prompt template was rendered.
func (f *FakeContentGenerator) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// GenerateContent returns the next canned response wrapped in the same
// response envelope the real SDK produces, including usage metadata so the
// token counters have something to record.
//
// Inputs:
//   - ctx: Ignored, present to satisfy the interface.
//   - content: The request content; its text is recorded for Prompts.
//
// Outputs:
//   - *genai.GenerateContentResponse: The canned response.
//   - error: An injected failure while any remain, otherwise nil.
func (f *FakeContentGenerator) GenerateContent(_ context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	var prompt strings.Builder
	for _, c := range content {
		for _, part := range c.Parts {
			prompt.WriteString(part.Text)
		}
	}
	f.prompts = append(f.prompts, prompt.String())

	if f.failures > 0 {
		f.failures--
		return nil, errors.New("fake generator: injected failure")
	}
	if len(f.responses) == 0 {
		return nil, errors.New("fake generator: no responses configured")
	}

	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.responses[idx]}}}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     128,
			CandidatesTokenCount: 64,
		},
	}, nil
}
