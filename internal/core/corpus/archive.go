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

// This file, `archive.go`, describes the corpus distribution archive: the
// remote location it is downloaded from and the local paths its pieces
// occupy. The ingestion workflow passes an ArchiveSource through its chain
// of commands, each of which reads the paths it needs from here instead of
// re-deriving them.
package corpus

import "path/filepath"

// LOAD_REPORT_NAME is the well-known workflow context key under which the
// ingestion chain publishes its LoadReport, alongside the store it emits as
// the chain output.
const LOAD_REPORT_NAME = "__LOAD__REPORT__"

// GetLoadReportName returns the context key for the ingestion load report.
func GetLoadReportName() string {
	return LOAD_REPORT_NAME
}

// ArchiveSource identifies one corpus distribution: the URL the tarball is
// fetched from, the directory downloads land in, the archive file name, and
// the directory name the archive expands to.
type ArchiveSource struct {
	Url         string `json:"url"`          // Remote location of the gzip tarball.
	DownloadDir string `json:"download_dir"` // Local directory downloads and extractions land in.
	ArchiveName string `json:"archive_name"` // File name the downloaded tarball is saved under.
	CorpusDir   string `json:"corpus_dir"`   // Directory name the tarball expands to, relative to DownloadDir.
}

// ArchivePath returns the local path the downloaded tarball lives at.
func (a *ArchiveSource) ArchivePath() string {
	return filepath.Join(a.DownloadDir, a.ArchiveName)
}

// CorpusPath returns the local directory holding the extracted corpus
// files. This is the directory the loader reads.
func (a *ArchiveSource) CorpusPath() string {
	return filepath.Join(a.DownloadDir, a.CorpusDir)
}
