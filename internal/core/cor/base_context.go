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

// Package cor implements a small chain-of-responsibility workflow framework.
// This file, `base_context.go`, provides `BaseContext`, the default
// implementation of the `Context` interface.
//
// The context is the only thing commands share. It holds:
//   - the property bag intermediate values flow through (`data`),
//   - the errors commands have recorded, keyed by command name (`errors`),
//   - the temporary files to remove when the workflow closes (`tempFiles`),
//   - the standard Go context carrying cancellation and trace spans.
package cor

import (
	"context"
	"log"
	"os"
)

// BaseContext holds the shared state for one workflow execution. It is not
// safe for concurrent use; commands that fan work out across goroutines must
// collect results before writing them back.
type BaseContext struct {
	data      map[string]any   // Intermediate values, keyed by parameter name.
	errors    map[string]error // Recorded failures, keyed by the command that produced them.
	tempFiles []string         // Files to remove when the workflow closes.
	context   context.Context  // Standard Go context for cancellation and trace propagation.
}

// NewBaseContext returns an empty workflow context with its internal maps
// initialized.
//
// Outputs:
//   - Context: A new, empty context object.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]any),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

// SetContext replaces the underlying standard Go context. The chain calls
// this to scope each command to its own trace span.
//
// Inputs:
//   - context: The standard `context.Context` to set.
func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

// GetContext returns the current standard Go context.
//
// Outputs:
//   - context.Context: The currently set Go context.
func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close releases workflow resources, removing every registered temporary
// file. Callers should defer it right after creating the context.
func (c *BaseContext) Close() {
	for _, file := range c.GetTempFiles() {
		err := os.Remove(file)
		if err != nil {
			log.Printf("failed to remove temporary file '%s': %v\n", file, err)
		}
	}
}

// Add stores a value under key and returns the context for fluent chaining.
//
// Inputs:
//   - key: The string key to store the data under.
//   - value: The data to store.
//
// Outputs:
//   - Context: The context instance.
func (c *BaseContext) Add(key string, value any) Context {
	c.data[key] = value
	return c
}

// AddTempFile registers a file for removal when the workflow closes.
//
// Inputs:
//   - file: The string path to the temporary file.
func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

// GetTempFiles returns every registered temporary file path.
//
// Outputs:
//   - []string: A slice of file paths.
func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

// AddError records a command failure. By convention the key is the name of
// the command that failed.
//
// Inputs:
//   - key: The name of the command that generated the error.
//   - err: The error object.
func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

// GetErrors returns every recorded failure, keyed by command name.
//
// Outputs:
//   - map[string]error: A map where keys are command names and values are the errors.
func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

// Get returns the value stored under key, or nil when the key is absent.
//
// Inputs:
//   - key: The string key of the data to retrieve.
//
// Outputs:
//   - any: The stored value, or `nil` if the key does not exist.
func (c *BaseContext) Get(key string) any {
	return c.data[key]
}

// Remove deletes the value stored under key.
//
// Inputs:
//   - key: The key of the item to remove.
func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// HasErrors reports whether any command has recorded a failure.
//
// Outputs:
//   - bool: True if the error map is not empty, false otherwise.
func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
