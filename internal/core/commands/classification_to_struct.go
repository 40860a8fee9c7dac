// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// transformation step that follows `PlotClassifier` in the chain.
//
// Logic Flow:
// The classifier hands back a raw JSON string. Working with raw strings
// downstream would push parsing concerns into every consumer, so this
// command turns the string into a strongly typed `model.PlotClassification`
// once, here, and fails the chain if the model's output does not parse.
//
//  1. It receives the raw JSON string from the context.
//  2. It unmarshals the string into a `model.PlotClassification`.
//  3. It places the struct under its configured output key and into the
//     general chain output slot for the next command.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// ClassificationToStruct is a command that parses the classifier's JSON
// response into a PlotClassification struct.
type ClassificationToStruct struct {
	cor.BaseCommand
}

// NewClassificationToStruct is the constructor for the ClassificationToStruct command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - outputParamName: The context key where the resulting struct will be stored.
//
// Outputs:
//   - *ClassificationToStruct: A pointer to the newly instantiated command.
func NewClassificationToStruct(name string, outputParamName string) *ClassificationToStruct {
	out := ClassificationToStruct{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = outputParamName
	return &out
}

// Execute parses the JSON string into the typed classification.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *ClassificationToStruct) Execute(context cor.Context) {
	in := context.Get(s.GetInputParam()).(string)

	doc := &model.PlotClassification{}
	err := json.Unmarshal([]byte(in), &doc)
	if err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("failed to unmarshal plot classification JSON: %w", err))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)

	context.Add(s.GetOutputParam(), doc)

	// Also feed the chain's piping slot so the envelope command sees it.
	context.Add(cor.CtxOut, doc)
}
