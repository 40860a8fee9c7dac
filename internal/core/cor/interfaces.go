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
// A workflow is a Chain of Commands sharing one Context; each command reads
// its input from the context, does one unit of work, and writes its output
// back for the next command. The ingestion pipeline (fetch, extract, load)
// and the augmentation pipelines (prompt, parse, wrap) are all assembled
// from these pieces.
//
// This file defines the interfaces. Everything else in the package is the
// default implementation meant to be embedded, not a requirement: any type
// satisfying these interfaces can participate in a chain.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Well-known context keys for the primary data flow through a chain. After
// each command runs, the chain moves the value stored under CtxOut to CtxIn,
// which is how one command's output becomes the next command's input.
const (
	// CtxIn is the default key a command reads its primary input from.
	CtxIn = "__IN__"
	// CtxOut is the default key a command writes its primary output to.
	CtxOut = "__OUT__"
)

// Context is the shared state for one workflow execution: a property bag of
// intermediate values, the errors commands have recorded, and the temporary
// files that need cleaning up when the workflow finishes. It also carries
// the standard Go context so cancellation and trace propagation reach every
// command.
type Context interface {
	// SetContext replaces the standard Go context. The chain uses this to
	// scope each command to its own trace span.
	SetContext(context context.Context)

	// GetContext returns the current standard Go context.
	GetContext() context.Context

	// Add stores a value under a key and returns the Context for chaining.
	Add(key string, value any) Context

	// Get returns the value stored under key, or nil when absent.
	Get(key string) any

	// Remove deletes the value stored under key.
	Remove(key string)

	// AddError records a command failure. By convention the key is the name
	// of the command that failed.
	AddError(key string, err error)

	// GetErrors returns every recorded failure, keyed by command name.
	GetErrors() map[string]error

	// HasErrors reports whether any command has recorded a failure.
	HasErrors() bool

	// AddTempFile registers a file for removal when the workflow closes.
	AddTempFile(file string)

	// GetTempFiles returns every registered temporary file path.
	GetTempFiles() []string

	// Close releases workflow resources, removing any registered temporary
	// files. Callers should defer it right after creating the context.
	Close()
}

// Executable is anything with a single unit of business logic driven by a
// workflow Context.
type Executable interface {
	// Execute runs the unit of work, reading inputs from and writing
	// outputs and errors to the given Context.
	Execute(context Context)
}

// Command is one atomic, individually testable step of a workflow.
type Command interface {
	Executable

	// GetName returns the command's name, used in traces, metrics and
	// error keys.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its
	// primary output to.
	GetOutputParam() string

	// IsExecutable reports whether the command's preconditions hold for
	// the given context. The chain skips commands that are not executable.
	IsExecutable(context Context) bool

	// GetTracer returns the tracer spans for this command are created on.
	GetTracer() trace.Tracer

	// GetMeter returns the meter the command's instruments hang off.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented per successful run.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented per failed run.
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// whole workflows can nest inside larger workflows.
type Chain interface {
	Command

	// ContinueOnFailure configures whether later commands still run after
	// an earlier one records an error. The default is to stop.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
