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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, building small fixture
// corpora, and faking the generative AI model so workflows can run offline.
package test

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/cloud"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/model"
)

// StateManager acts as a simple in-memory cache for the application configuration
// during test runs. This prevents the need to reload configuration files for every
// test, speeding up the test suite.
type StateManager struct {
	config *cloud.Config
}

// state is a package-level variable that holds the singleton instance of StateManager,
// ensuring that the configuration is loaded only once per test run.
var state = &StateManager{}

// HandleErr is a simple test helper function that checks if an error is not nil.
// If an error exists, it fails the test immediately by calling t.Errorf.
// This is a convenience function to reduce boilerplate error-checking code in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestCorpusFiles returns the contents of a small but complete corpus:
// every flat file the schema declares, keyed by file name. The rows are
// drawn from the real corpus so that joins, genre decoding, and the numeric
// cleaning paths all see realistic data. The same fixture backs the loader,
// workflow, service, and API tests, so aggregate assertions can be shared.
//
// Returns:
//   - A map of corpus file name to tab-separated file content.
func GetTestCorpusFiles() map[string]string {
	movies := []string{
		"975900\t/m/03vyhn\tGhosts of Mars\t2001-08-24\t14010832\t98.0\t" +
			`{"/m/02h40lc": "English Language"}` + "\t" + `{"/m/09c7w0": "United States of America"}` + "\t" +
			`{"/m/01jfsb": "Thriller", "/m/06n90": "Science Fiction", "/m/03npn": "Horror"}`,
		"3196793\t/m/08yl5d\tGetting Away with Murder\t1996-04-12\t\t95.0\t" +
			`{"/m/02h40lc": "English Language"}` + "\t" + `{"/m/09c7w0": "United States of America"}` + "\t" +
			`{"/m/05p553": "Comedy"}`,
		"28463795\t/m/0crgdbh\tBrun bitter\t1988\t\t83.0\t" +
			`{"/m/05f_3": "Norwegian Language"}` + "\t" + `{"/m/05b4w": "Norway"}` + "\t" +
			`{"/m/0lsxr": "Crime Fiction", "/m/02l7c8": "Drama"}`,
		"9363483\t/m/0285_cd\tWhite Of The Eye\t1987\t\t110.0\t" +
			`{"/m/02h40lc": "English Language"}` + "\t" + `{"/m/07ssc": "United Kingdom"}` + "\t" +
			`{"/m/01jfsb": "Thriller", "/m/0glj9q": "Erotic thriller"}`,
		"261236\t/m/01mrr1\tA Woman in Flames\t1983\t\t106.0\t" +
			`{"/m/04306rv": "German Language"}` + "\t" + `{"/m/0345h": "Germany"}` + "\t" +
			`{"/m/02l7c8": "Drama"}`,
	}

	characters := []string{
		"975900\t/m/03vyhn\t2001-08-24\tAkooshay\t1958-08-26\tF\t1.62\t/m/044038p\tWanda De Jesus\t42.0\t/m/0bgchxw\t/m/0bgcj3x\t/m/03wcfv7",
		"975900\t/m/03vyhn\t2001-08-24\tLt. Melanie Ballard\t1974-08-15\tF\t1.78\t\tNatasha Henstridge\t27.0\t/m/0jys3m\t/m/0bgchn4\t/m/0346l4",
		"975900\t/m/03vyhn\t2001-08-24\tDesolation Williams\t1969-06-15\tM\t1.727\t/m/0x67\tIce Cube\t32.0\t/m/0bgchv4\t/m/0bgchvc\t/m/01vw26l",
		"3196793\t/m/08yl5d\t1996-04-12\tJack Lambert\t1952-07-01\tM\t1.85\t\tDan Aykroyd\t43.0\t/m/03jl9kc\t\t/m/0dvmd",
		"3196793\t/m/08yl5d\t1996-04-12\tInga Mueller\t1939-09-01\tF\t1.7\t\tLily Tomlin\t56.0\t/m/03jl9kd\t\t/m/0dvme",
		"9363483\t/m/0285_cd\t1987\tPaul White\t1954-05-08\tM\t1.8\t\tDavid Keith\t32.0\t/m/0cgzn1\t\t/m/0f0kz",
		"9363483\t/m/0285_cd\t1987\tJoan White\t1960-11-29\tF\t\t\tCathy Moriarty\t26.0\t/m/0cgzn2\t\t/m/0f0l1",
		"261236\t/m/01mrr1\t1983\tEva\t1950-06-20\tF\t1.68\t\tGudrun Landgrebe\t32.0\t/m/0jx3y\t\t/m/0jx40",
	}

	nameClusters := []string{
		"Akooshay\t/m/0bgchxw",
		"Lt. Melanie Ballard\t/m/0jys3m",
	}

	plots := []string{
		"975900\tSet in the second half of the 22nd century, a Martian police unit is sent to pick up a homicidal criminal at a remote mining post.",
		"3196793\tA put-upon ethics professor discovers that his quiet neighbor may be an escaped war criminal and appoints himself executioner.",
		"28463795\tA worn-out Oslo private investigator takes a missing-person case that drags him through the city's underworld.",
		"9363483\tA sound-system installer in a desert town becomes the prime suspect in a string of brutal murders.",
	}

	tropes := []string{
		"arrogant_kungfu_guy\t" + `{"char": "Han Cho Bai", "movie": "Red 2", "id": "/m/0gwgbcb", "actor": "Byung-hun Lee"}`,
	}

	join := func(rows []string) string { return strings.Join(rows, "\n") + "\n" }
	return map[string]string{
		"movie.metadata.tsv":     join(movies),
		"character.metadata.tsv": join(characters),
		"name.clusters.txt":      join(nameClusters),
		"plot_summaries.txt":     join(plots),
		"tvtropes.clusters.txt":  join(tropes),
	}
}

// WriteTestCorpus writes the fixture corpus files into the given directory,
// which then looks exactly like an extracted corpus archive.
//
// Inputs:
//   - t: The *testing.T object from the current test.
//   - dir: The directory to write the corpus files into.
func WriteTestCorpus(t *testing.T, dir string) {
	t.Helper()
	for name, content := range GetTestCorpusFiles() {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write corpus fixture %s: %v", name, err)
		}
	}
}

// NewTestStore loads the fixture corpus into an in-memory store. Service and
// API tests use this instead of running the full ingestion workflow.
//
// Inputs:
//   - t: The *testing.T object from the current test.
//
// Returns:
//   - A pointer to the loaded corpus store.
func NewTestStore(t *testing.T) *corpus.Store {
	t.Helper()
	dir := t.TempDir()
	WriteTestCorpus(t, dir)
	store, err := corpus.NewLoader(dir, nil).Load()
	if err != nil {
		t.Fatalf("failed to load corpus fixture: %v", err)
	}
	return store
}

// GetTestMovieSummaryView returns a merged movie record for the first movie
// of the fixture corpus. This is the canonical input for augmentation tests.
//
// Returns:
//   - A model.MovieSummaryView for "Ghosts of Mars".
func GetTestMovieSummaryView() model.MovieSummaryView {
	return model.MovieSummaryView{
		Movie: model.Movie{
			WikipediaId: "975900",
			FreebaseId:  "/m/03vyhn",
			Title:       "Ghosts of Mars",
			ReleaseDate: "2001-08-24",
			Genres:      `{"/m/01jfsb": "Thriller", "/m/06n90": "Science Fiction", "/m/03npn": "Horror"}`,
		},
		Summary: "Set in the second half of the 22nd century, a Martian police unit is sent to pick up a homicidal criminal at a remote mining post.",
	}
}

// GetTestClassificationText returns the text a generative model would
// produce when asked to classify a plot summary. The payload is wrapped in a
// Markdown code fence on purpose: real model responses usually arrive
// fenced, and tests should exercise the stripping path.
//
// Returns:
//   - A string containing a fenced JSON classification payload.
func GetTestClassificationText() string {
	return "```json\n" + `{
  "genres": ["Science Fiction", "Horror", "Action"],
  "tone": "ominous",
  "audience": "adult"
}` + "\n```"
}

// GetTestRewriteText returns the text a generative model would produce when
// asked to retell a plot summary in a film noir register.
//
// Returns:
//   - A string containing a rewritten plot summary.
func GetTestRewriteText() string {
	return "Mars was supposed to be a quiet beat. Then the mining town went " +
		"dark, the transport rolled in empty, and Lieutenant Ballard learned " +
		"the red planet keeps its ghosts angry. By sunrise the only law left " +
		"standing was a locked train door and whatever was riding behind it."
}

// SetupOS configures the necessary environment variables that the configuration
// loader (`cloud.LoadConfig`) depends on. The configs directory is resolved
// relative to this source file, so tests load the same `.env.test.toml`
// regardless of which package directory the test binary runs in.
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	// Resolve the repository configs directory from this file's location.
	_, thisFile, _, _ := runtime.Caller(0)
	configDir := filepath.Join(filepath.Dir(thisFile), "..", "..", "configs")

	// Set the directory where the configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, configDir)
	if err != nil {
		return err
	}
	// Set the runtime environment identifier to "test". This causes the loader
	// to look for a file named ".env.test.toml" for overrides.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration.
// It ensures that the configuration is loaded from TOML files only once and
// is cached in the package-level `state` variable for subsequent calls.
// This is the primary way tests should retrieve their configuration.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	// Check if the config is already cached.
	if state.config == nil {
		// If not cached, set up the OS environment for the test configuration.
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the TOML files into the struct.
		// `LoadConfig` handles the hierarchical loading (base file + test override).
		cloud.LoadConfig(&config)
		// Cache the loaded config in our state manager.
		state.config = config
	}
	// Return the cached configuration.
	return state.config
}
