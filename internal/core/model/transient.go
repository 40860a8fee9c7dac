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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains struct definitions for data models that
// are primarily used for in-memory operations during the execution of a
// workflow. These objects are considered "transient" because they only exist
// while a chain of commands is running: they carry the output of one step
// (typically a generative AI call) to the next step that parses or wraps it.
package model

// PlotClassification is the structured result of asking the generative AI to
// classify a plot summary. It is the first structured representation of the
// AI's analysis and is later wrapped into a PlotAugmentation envelope.
type PlotClassification struct {
	Genres   []string `json:"genres"`             // Genre labels the model assigned, most confident first.
	Tone     string   `json:"tone"`               // One-word tone of the plot (e.g., "dark", "whimsical").
	Audience string   `json:"audience,omitempty"` // The audience the plot most likely targets (e.g., "adult", "family").
}

// PlotRewrite is the structured result of asking the generative AI to retell
// a plot summary in a requested style. The style is echoed back so the
// result is self-describing when cached or returned over the API.
type PlotRewrite struct {
	Style string `json:"style"` // The style the rewrite was requested in (e.g., "film noir").
	Text  string `json:"text"`  // The rewritten plot summary.
}
