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
// This file, `base_chain.go`, provides `BaseChain`, the default `Chain`
// implementation that actually runs workflows.
//
// Execution model:
//
//  1. A chain is itself a `Command`, so chains nest inside larger chains.
//  2. `Execute` opens one OpenTelemetry span for the whole chain and a child
//     span per command, so each step shows up individually in traces.
//  3. Commands run in the order they were added. When the shared context
//     already holds an error and `continueOnFailure` is false (the default),
//     the chain stops before running the next command.
//  4. A command whose `IsExecutable` returns false is skipped and the skip
//     is recorded on its span.
//  5. After every command the chain moves the value under `CtxOut` to
//     `CtxIn`. That flip-flop is the piping mechanism: a command's output
//     becomes the next command's input without the two knowing about each
//     other.
package cor

import (
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain runs an ordered list of commands against one shared context.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool      // When true, later commands still run after an earlier one records an error.
	commands          []Command // The commands, in execution order.
}

// NewBaseChain is the constructor for BaseChain.
//
// Inputs:
//   - name: A string name for this chain instance, used for logging and telemetry.
//
// Outputs:
//   - *BaseChain: A pointer to the newly instantiated chain.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

// ContinueOnFailure sets the chain's error handling behavior and returns the
// chain for fluent construction. When the flag is false (the default) the
// chain stops at the first command that records an error; when true, every
// command gets a chance to run regardless.
func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

// AddCommand appends a command to the chain's execution sequence and returns
// the chain for fluent construction.
func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable reports whether the chain can run. A chain only needs a valid
// Go context; its commands check their own inputs.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context.GetContext() != nil
}

// Execute runs every command in order, piping each command's output into the
// next command's input.
//
// Inputs:
//   - chCtx: The shared `cor.Context` for the entire workflow execution.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()

	// One span covering the whole chain.
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()

	for _, command := range c.commands {
		// Child span per command so each step is visible in the trace.
		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())

		// Stop the chain when an earlier command failed, unless configured
		// to push through.
		if chCtx.HasErrors() && !c.continueOnFailure {
			commandSpan.SetStatus(codes.Error, "previous error on chain; skipping execution")
			commandSpan.End()
			break
		}

		if command.IsExecutable(chCtx) {
			// Scope the command to its own span's Go context so any work it
			// does is traced under this command.
			chCtx.SetContext(commandContext)

			command.Execute(chCtx)

			// Restore the chain-level context. Without this the next
			// command's span would nest under the previous command instead
			// of under the chain.
			chCtx.SetContext(outerCtx)
		} else {
			commandSpan.SetStatus(codes.Error, fmt.Sprintf("command not executable: %s", command.GetName()))
		}

		if chCtx.HasErrors() {
			commandSpan.SetStatus(codes.Error, "error during or after command execution")
		} else {
			commandSpan.SetStatus(codes.Ok, "command completed successfully")
		}
		commandSpan.End()

		// Flip-flop: whatever the command wrote to CtxOut becomes the CtxIn
		// of the next command.
		outputValue := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if outputValue != nil {
			chCtx.Add(CtxIn, outputValue)
		}
		chCtx.Remove(CtxOut)
	}

	if !chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
	} else {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	}
}
