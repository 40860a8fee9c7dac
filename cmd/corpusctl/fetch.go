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

// This file defines the `fetch` subcommand: download the corpus archive and
// extract it, without parsing the tables. Both steps skip work that a
// previous run already finished, so fetch is cheap to re-run.
package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/workflow"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and extract the corpus archive",
	Long: `Download the corpus archive from the configured URL and extract it into
the download directory. Files already on disk are reused, so fetch only
pays for what is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Fetching %s\n", cfg.Corpus.ArchiveUrl)
		fetch := workflow.NewCorpusFetchPipeline(cfg, http.DefaultClient)
		corpusDir, err := fetch.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching corpus: %w", err)
		}

		fmt.Printf("Corpus ready in %s\n", corpusDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
