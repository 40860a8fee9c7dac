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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are crucial for "few-shot" prompting with the
// generative AI models. By providing a concrete example of the desired
// output within the prompt itself (the JSON structure for classifications,
// a worked retelling for rewrites), we guide the AI to return data that is
// consistent, correctly formatted, and easily parsable.
package model

// GetExampleClassification creates a sample PlotClassification object. This
// is used to provide a "few-shot" learning example to the generative AI model
// when it is asked to classify a plot summary. It shows the AI the expected
// JSON structure, including the ordered genre list and the single-word tone.
//
// Outputs:
//   - *PlotClassification: A pointer to a hardcoded PlotClassification object.
func GetExampleClassification() *PlotClassification {
	// Instantiate a PlotClassification with example data for the movie
	// "Ghosts of Mars", the first entry of the corpus movie table.
	out := &PlotClassification{
		Genres:   []string{"Science Fiction", "Horror", "Action"},
		Tone:     "ominous",
		Audience: "adult",
	}
	return out
}

// GetExampleRewrite creates a sample PlotRewrite object. Its text is quoted
// inside the rewrite prompt as a worked retelling, anchoring the length and
// voice fidelity the model is asked for. Only the prose reaches the prompt;
// the style names which voice the sample demonstrates.
//
// Outputs:
//   - *PlotRewrite: A pointer to a hardcoded PlotRewrite object.
func GetExampleRewrite() *PlotRewrite {
	out := &PlotRewrite{
		Style: "hard-boiled detective",
		Text: "Mars was supposed to be a quiet beat. Then the mining town went " +
			"dark, the prisoner transport rolled in empty, and Lieutenant " +
			"Ballard found out the red planet keeps its ghosts angry. By " +
			"sunrise the only law left standing was a locked train door and " +
			"whatever was riding behind it.",
	}
	return out
}
