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
// This file, `base_command.go`, provides `BaseCommand`, the embeddable
// default implementation of the `Command` interface.
//
// Concrete commands embed `BaseCommand`, implement `Execute`, and inherit
// the rest:
//   - a name used in spans, counters and error keys,
//   - per-command OpenTelemetry instruments (`Tracer`, `Meter`, counters),
//   - the input/output key defaults that make chain piping work.
package cor

import (
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OtelScopeName is the instrumentation scope all command meters are
// registered under.
const OtelScopeName = "github.com/cinemetrics/movie-corpus-insights"

// BaseCommand supplies the boilerplate shared by every command. Embed it and
// implement Execute.
type BaseCommand struct {
	Name            string              // Unique command name, used for tracing and metrics.
	InputParamName  string              // Context key the primary input is read from.
	OutputParamName string              // Context key the primary output is written to.
	Tracer          trace.Tracer        // Tracer the command's spans are created on.
	Meter           metric.Meter        // Meter the command's counters are registered on.
	SuccessCounter  metric.Int64Counter // Incremented once per successful execution.
	ErrorCounter    metric.Int64Counter // Incremented once per failed execution.
}

// NewBaseCommand creates a named BaseCommand with its OpenTelemetry
// instruments registered. The input and output parameter names are left
// empty so the CtxIn / CtxOut defaults apply; commands that read or write
// well-known keys set them explicitly after construction.
//
// Inputs:
//   - name: The unique name for this command.
//
// Outputs:
//   - *BaseCommand: A pointer to the newly instantiated command.
func NewBaseCommand(name string) *BaseCommand {
	meter := otel.Meter(OtelScopeName)

	successCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.success", name))
	if err != nil {
		log.Printf("error creating success counter for command '%s': %v\n", name, err)
	}
	errorCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.error", name))
	if err != nil {
		log.Printf("error creating error counter for command '%s': %v\n", name, err)
	}

	return &BaseCommand{
		Name:           name,
		Tracer:         otel.Tracer(name),
		Meter:          meter,
		SuccessCounter: successCounter,
		ErrorCounter:   errorCounter,
	}
}

// GetName returns the name of the command.
func (c *BaseCommand) GetName() string {
	return c.Name
}

// IsExecutable is the default precondition check: the workflow context is
// valid, carries a Go context, and holds a value under this command's input
// key. Commands with stronger or looser requirements override it.
//
// Inputs:
//   - context: The shared `Context` for the workflow.
//
// Outputs:
//   - bool: True when the command is ready to execute.
func (c *BaseCommand) IsExecutable(context Context) bool {
	return context != nil && context.Get(c.GetInputParam()) != nil && context.GetContext() != nil
}

// GetInputParam returns the context key the command reads its primary input
// from, defaulting to `CtxIn` when no custom key is set. The default is what
// lets a chain pipe one command's output into the next command's input.
func (c *BaseCommand) GetInputParam() string {
	if len(c.InputParamName) == 0 {
		return CtxIn
	}
	return c.InputParamName
}

// GetOutputParam returns the context key the command writes its primary
// output to, defaulting to `CtxOut` when no custom key is set.
func (c *BaseCommand) GetOutputParam() string {
	if len(c.OutputParamName) == 0 {
		return CtxOut
	}
	return c.OutputParamName
}

// GetTracer returns the OpenTelemetry Tracer for this command.
func (c *BaseCommand) GetTracer() trace.Tracer {
	return c.Tracer
}

// GetMeter returns the OpenTelemetry Meter for this command.
func (c *BaseCommand) GetMeter() metric.Meter {
	return c.Meter
}

// GetSuccessCounter returns the success metric counter for this command.
func (c *BaseCommand) GetSuccessCounter() metric.Int64Counter {
	return c.SuccessCounter
}

// GetErrorCounter returns the error metric counter for this command.
func (c *BaseCommand) GetErrorCounter() metric.Int64Counter {
	return c.ErrorCounter
}
