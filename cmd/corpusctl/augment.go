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

// This file defines the `augment` subcommand, the command-line entry point
// for the narrative augmentation workflows. It builds the same GenAI-backed
// service stack the server uses, then either augments one movie (--id) or
// classifies every movie that has a plot summary (--all).
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/services"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
)

var (
	augmentID    string // --id: Wikipedia movie ID to augment.
	augmentKind  string // --kind: classify or rewrite.
	augmentStyle string // --style: rewrite style, ignored for classify.
	augmentAll   bool   // --all: classify every movie with a plot summary.
)

var augmentCmd = &cobra.Command{
	Use:   "augment",
	Short: "Classify or rewrite plot summaries with the configured GenAI agents",
	Long: `Run a narrative augmentation against the live GenAI agents. With --id the
command augments a single movie and prints the resulting envelope as JSON;
--kind selects between genre classification and a stylistic rewrite, and
rewrites additionally require --style. With --all the command classifies
every movie that has a plot summary, using the configured worker pool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if augmentAll == (augmentID != "") {
			return fmt.Errorf("exactly one of --id or --all is required")
		}

		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		clients, err := cloud.NewCloudServiceClients(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("creating genai clients: %w", err)
		}
		defer clients.Close()

		svc, err := services.NewAugmentService(cfg, store,
			workflow.NewPlotClassifyPipeline(cfg, clients, "classifier-flash"),
			workflow.NewPlotRewritePipeline(cfg, clients, "creative-flash"),
			workflow.NewBatchClassifyPipeline(cfg, clients, "classifier-flash"))
		if err != nil {
			return err
		}

		if augmentAll {
			envelopes, err := svc.ClassifyAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, envelope := range envelopes {
				genres := ""
				if envelope.Classification != nil {
					genres = strings.Join(envelope.Classification.Genres, ", ")
				}
				fmt.Printf("%-12s %s\n", envelope.MovieId, genres)
			}
			fmt.Printf("Classified %d plot summaries\n", len(envelopes))
			return nil
		}

		envelope, err := svc.Augment(cmd.Context(), augmentID, augmentKind, augmentStyle)
		if err != nil {
			return err
		}
		return printJSON(envelope)
	},
}

func init() {
	augmentCmd.Flags().StringVar(&augmentID, "id", "", "Wikipedia movie ID to augment")
	augmentCmd.Flags().StringVar(&augmentKind, "kind", model.AugmentationKindClassify, "augmentation kind: classify or rewrite")
	augmentCmd.Flags().StringVar(&augmentStyle, "style", "", "rewrite style (see configs for the available styles)")
	augmentCmd.Flags().BoolVar(&augmentAll, "all", false, "classify every movie that has a plot summary")
	rootCmd.AddCommand(augmentCmd)
}
