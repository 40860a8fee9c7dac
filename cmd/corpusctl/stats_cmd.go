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

// This file defines the `stats` subcommand family: one child command per
// aggregation routine, with flags mirroring the query parameters of the
// dashboard API. Rendering lives here, not in the routines: every routine
// returns a plain result table, and this file decides between the aligned
// text layout and raw JSON (--json).
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/stats"
)

var (
	statsJSON   bool    // --json: print the raw result table instead of text.
	statsTopN   int     // genres --n
	statsGender string  // heights --gender
	statsMin    float64 // heights --min
	statsMax    float64 // heights --max
	statsGenre  string  // releases --genre
	statsGroup  string  // births --group
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run the dashboard aggregations over the corpus",
	Long: `Run one of the aggregation queries the dashboard serves and render the
result table. Each subcommand's flags mirror the query parameters of the
corresponding /api/v1/stats endpoint.`,
}

var statsGenresCmd = &cobra.Command{
	Use:   "genres",
	Short: "Top genres by movie count",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		out, err := stats.TopGenres(store.Movies(), statsTopN)
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(out)
		}
		fmt.Printf("%-28s %8s\n", "GENRE", "MOVIES")
		for _, row := range out {
			fmt.Printf("%-28s %8d\n", row.Genre, row.Count)
		}
		return nil
	},
}

var statsHistogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "Movies bucketed by credited-actor count",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		out, err := stats.ActorCountHistogram(store.Characters())
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(out)
		}
		fmt.Printf("%12s %12s\n", "ACTORS", "MOVIES")
		for _, row := range out {
			fmt.Printf("%12d %12d\n", row.ActorCount, row.MovieCount)
		}
		return nil
	},
}

var statsHeightsCmd = &cobra.Command{
	Use:   "heights",
	Short: "Actor counts per distinct height within a range",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		out, err := stats.HeightDistribution(store.Characters(), statsGender, statsMin, statsMax)
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(out)
		}
		// An empty result is valid; say so instead of printing bare headers.
		if len(out) == 0 {
			fmt.Println("No actors matched the requested gender and height range.")
			return nil
		}
		fmt.Printf("%12s %12s\n", "HEIGHT (M)", "ACTORS")
		for _, row := range out {
			fmt.Printf("%12.3f %12d\n", row.HeightMeters, row.Count)
		}
		return nil
	},
}

var statsReleasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "Releases per year, optionally filtered by genre",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		out, err := stats.ReleasesPerYear(store.Movies(), statsGenre)
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(out)
		}
		if len(out) == 0 {
			fmt.Println("No releases matched the requested genre.")
			return nil
		}
		fmt.Printf("%8s %10s\n", "YEAR", "RELEASES")
		for _, row := range out {
			fmt.Printf("%8d %10d\n", row.Year, row.Count)
		}
		return nil
	},
}

var statsBirthsCmd = &cobra.Command{
	Use:   "births",
	Short: "Actor births bucketed by year or month",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := loadStore(cmd)
		if err != nil {
			return err
		}
		out, err := stats.BirthBuckets(store.Characters(), statsGroup)
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(out)
		}
		fmt.Printf("%8s %8s\n", "BUCKET", "BIRTHS")
		for _, row := range out {
			fmt.Printf("%8s %8d\n", row.Bucket, row.Count)
		}
		return nil
	},
}

// printJSON renders any result table as indented JSON on stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	statsCmd.PersistentFlags().BoolVar(&statsJSON, "json", false, "print the raw result table as JSON")

	statsGenresCmd.Flags().IntVar(&statsTopN, "n", 10, "number of genres to return")
	statsHeightsCmd.Flags().StringVar(&statsGender, "gender", stats.GenderAll, "gender code, or All for no filter")
	statsHeightsCmd.Flags().Float64Var(&statsMin, "min", 1.2, "inclusive minimum height in meters")
	statsHeightsCmd.Flags().Float64Var(&statsMax, "max", 2.2, "inclusive maximum height in meters")
	statsReleasesCmd.Flags().StringVar(&statsGenre, "genre", "", "only count movies carrying this genre label")
	statsBirthsCmd.Flags().StringVar(&statsGroup, "group", stats.GroupByYear, "bucket by year or month")

	statsCmd.AddCommand(statsGenresCmd, statsHistogramCmd, statsHeightsCmd, statsReleasesCmd, statsBirthsCmd)
	rootCmd.AddCommand(statsCmd)
}
