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
// command that unpacks the downloaded corpus tarball.
//
// Logic Flow:
// The second step of the ingestion workflow. The archive expands to a
// single corpus directory holding the five flat files the loader reads.
//
//  1. It receives the `corpus.ArchiveSource` from the fetch command.
//  2. If the corpus directory already exists, extraction is skipped; the
//     corpus is versionless and immutable, so presence means done.
//  3. Otherwise the tarball is opened through a gzip reader and each entry
//     is written under the download directory. Entry names are validated so
//     a malformed archive cannot write outside it.
//  4. The extracted corpus directory path is handed to the load command.
package commands

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/cor"
	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
)

// CorpusArchiveExtract is a command that unpacks the downloaded gzip tarball
// into the corpus directory, skipping the work when the directory already
// exists.
type CorpusArchiveExtract struct {
	cor.BaseCommand
}

// NewCorpusArchiveExtract is the constructor for the CorpusArchiveExtract command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//
// Outputs:
//   - *CorpusArchiveExtract: A pointer to the newly instantiated command.
func NewCorpusArchiveExtract(name string) *CorpusArchiveExtract {
	return &CorpusArchiveExtract{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute unpacks the archive if the corpus directory is not already present.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *CorpusArchiveExtract) Execute(context cor.Context) {
	source := context.Get(c.GetInputParam()).(*corpus.ArchiveSource)

	if fileExists(source.CorpusPath()) {
		log.Printf("corpus directory already present at %s, skipping extraction", source.CorpusPath())
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), source.CorpusPath())
		return
	}

	if err := c.extract(source); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("Successfully extracted %s to %s", source.ArchivePath(), source.CorpusPath())
	context.Add(c.GetOutputParam(), source.CorpusPath())
}

// extract walks the tarball entry by entry and writes each one under the
// download directory.
func (c *CorpusArchiveExtract) extract(source *corpus.ArchiveSource) error {
	archive, err := os.Open(source.ArchivePath())
	if err != nil {
		return fmt.Errorf("could not open corpus archive %s: %w", source.ArchivePath(), err)
	}
	defer func() { _ = archive.Close() }()

	gzipReader, err := gzip.NewReader(archive)
	if err != nil {
		return fmt.Errorf("could not read corpus archive %s as gzip: %w", source.ArchivePath(), err)
	}
	defer func() { _ = gzipReader.Close() }()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		target, err := entryPath(source.DownloadDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("could not create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("could not create directory for %s: %w", target, err)
			}
			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("could not create file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tarReader); err != nil {
				_ = out.Close()
				return fmt.Errorf("failed to extract %s: %w", header.Name, err)
			}
			_ = out.Close()
		default:
			// Link and device entries never appear in the corpus tarball.
			log.Printf("skipping archive entry %s with unsupported type %d\n", header.Name, header.Typeflag)
		}
	}
}

// entryPath resolves an archive entry name under the destination directory,
// rejecting names that would escape it.
func entryPath(dir string, name string) (string, error) {
	target := filepath.Join(dir, filepath.Clean(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q resolves outside the extraction directory", name)
	}
	return target, nil
}
