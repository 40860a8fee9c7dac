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
// application's test suite. This file, `archive.go`, packages the fixture
// corpus into a gzip-compressed tarball with the same shape as the real
// distribution, so ingestion tests can serve it from a local HTTP server.
package test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"
	"time"
)

// CorpusArchiveDirName is the top-level directory inside the corpus
// tarball, matching the layout of the real distribution.
const CorpusArchiveDirName = "MovieSummaries"

// BuildCorpusArchive packages the fixture corpus files into a tar.gz byte
// slice laid out like the published archive: a single top-level directory
// containing the five flat files.
//
// Inputs:
//   - t: The *testing.T object from the current test.
//
// Returns:
//   - The bytes of the gzip-compressed tarball.
func BuildCorpusArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	// The directory entry comes first, as tar(1) would write it.
	if err := tarWriter.WriteHeader(&tar.Header{
		Name:     CorpusArchiveDirName + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
		ModTime:  time.Now(),
	}); err != nil {
		t.Fatalf("failed to write archive directory header: %v", err)
	}

	for name, content := range GetTestCorpusFiles() {
		if err := tarWriter.WriteHeader(&tar.Header{
			Name:     CorpusArchiveDirName + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
			ModTime:  time.Now(),
		}); err != nil {
			t.Fatalf("failed to write archive header for %s: %v", name, err)
		}
		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write archive content for %s: %v", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}
