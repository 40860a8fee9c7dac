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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that fetches the corpus distribution archive over HTTP.
//
// Logic Flow:
// This is the first step of the ingestion workflow. The corpus is a fixed
// research dataset published as a gzip tarball, so the command downloads it
// once and skips the network entirely on later runs.
//
//  1. It receives a `corpus.ArchiveSource` describing the remote URL and the
//     local paths from the context.
//  2. If the archive already exists on disk, the download is skipped.
//  3. Otherwise the response body streams into a temporary file in the
//     download directory, so a failed transfer never leaves a truncated
//     archive behind under the final name.
//  4. The file's magic bytes are checked to confirm it really is gzip data.
//     A corpus mirror returning an HTML error page with a 200 status would
//     otherwise poison the extract step.
//  5. The verified file is renamed into place and the ArchiveSource is
//     passed to the next command.
package commands

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
)

// archiveHeadSize is how many leading bytes the magic-byte check reads.
// The filetype matchers need at most 262.
const archiveHeadSize = 262

// CorpusArchiveFetch is a command that downloads the corpus archive to the
// local filesystem, skipping the download when the file is already present.
type CorpusArchiveFetch struct {
	cor.BaseCommand
	client *http.Client // The HTTP client used for the download.
}

// NewCorpusArchiveFetch is the constructor for the CorpusArchiveFetch command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - client: The HTTP client to download through. Tests point this at a local fixture server.
//
// Outputs:
//   - *CorpusArchiveFetch: A pointer to the newly instantiated command.
func NewCorpusArchiveFetch(name string, client *http.Client) *CorpusArchiveFetch {
	return &CorpusArchiveFetch{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
	}
}

// Execute downloads the archive if it is not already on disk.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *CorpusArchiveFetch) Execute(context cor.Context) {
	source := context.Get(c.GetInputParam()).(*corpus.ArchiveSource)

	// A previous run already downloaded the archive.
	if fileExists(source.ArchivePath()) {
		log.Printf("corpus archive already present at %s, skipping download", source.ArchivePath())
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), source)
		return
	}

	if err := os.MkdirAll(source.DownloadDir, 0o755); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not create download directory %s: %w", source.DownloadDir, err))
		return
	}

	req, err := http.NewRequestWithContext(context.GetContext(), http.MethodGet, source.Url, nil)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not build archive request for %s: %w", source.Url, err))
		return
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to download corpus archive from %s: %w", source.Url, err))
		return
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Printf("failed to close archive response body: %v\n", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("archive download from %s returned status %s", source.Url, resp.Status))
		return
	}

	// Stream into a temp file in the same directory so the final rename
	// stays on one filesystem.
	tempFile, err := os.CreateTemp(source.DownloadDir, "corpus-download-")
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not create temp file: %w", err))
		return
	}

	written, err := io.Copy(tempFile, resp.Body)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		log.Printf("failed to copy archive to local file, %d bytes written: %v\n", written, err)
		context.AddError(c.GetName(), err)
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())
		return
	}
	_ = tempFile.Close()

	if err := verifyGzipFile(tempFile.Name()); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("downloaded archive from %s is not usable: %w", source.Url, err))
		_ = os.Remove(tempFile.Name())
		return
	}

	if err := os.Rename(tempFile.Name(), source.ArchivePath()); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not move archive into place: %w", err))
		_ = os.Remove(tempFile.Name())
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("Successfully downloaded %s to %s (%d bytes)", source.Url, source.ArchivePath(), written)
	context.Add(c.GetOutputParam(), source)
}

// verifyGzipFile checks the file's magic bytes and fails when they do not
// identify gzip data.
func verifyGzipFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, archiveHeadSize)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return err
	}

	kind, err := filetype.Match(head[:n])
	if err != nil {
		return err
	}
	if kind != matchers.TypeGz {
		return fmt.Errorf("expected a gzip archive, detected %q", kind.Extension)
	}
	return nil
}

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return err == nil
}
