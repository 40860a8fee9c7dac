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

// Package corpus_test contains the test suite for the corpus package. This
// file exercises the genre codec: the decoder for the brace-delimited
// mapping fields the corpus uses for genres, languages and countries.
package corpus_test

import (
	"errors"
	"testing"

	"github.com/cinemetrics/movie-corpus-insights/internal/core/corpus"
	"github.com/stretchr/testify/assert"
)

// TestDecodeGenreLabelsDoubleQuoted verifies the canonical double-quoted
// form decodes to exactly the mapping's values in encoded order.
func TestDecodeGenreLabelsDoubleQuoted(t *testing.T) {
	labels, err := corpus.DecodeGenreLabels(`{"/m/01jfsb": "Thriller", "/m/06n90": "Science Fiction"}`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Thriller", "Science Fiction"}, labels)
}

// TestDecodeGenreMapSingleQuoted verifies the single-quoted form, which is
// how the corpus files actually serialize the mapping, decodes identically
// and preserves the Freebase IDs.
func TestDecodeGenreMapSingleQuoted(t *testing.T) {
	entries, err := corpus.DecodeGenreMap(`{'/m/01jfsb': 'Thriller', '/m/02kdv5l': 'Action'}`)
	assert.NoError(t, err)
	assert.Equal(t, []corpus.GenreEntry{
		{FreebaseId: "/m/01jfsb", Label: "Thriller"},
		{FreebaseId: "/m/02kdv5l", Label: "Action"},
	}, entries)
}

// TestDecodeGenreMapEmpty verifies the empty mapping decodes to an empty,
// non-nil entry list rather than an error.
func TestDecodeGenreMapEmpty(t *testing.T) {
	entries, err := corpus.DecodeGenreMap(`{}`)
	assert.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Len(t, entries, 0)
}

// TestDecodeGenreMapWhitespace verifies that whitespace between tokens is
// insignificant.
func TestDecodeGenreMapWhitespace(t *testing.T) {
	labels, err := corpus.DecodeGenreLabels(` { "/m/02822" :  "Drama" ,	"/m/03npn": "War" } `)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Drama", "War"}, labels)
}

// TestDecodeGenreMapEscapes verifies backslash escapes inside quoted
// strings, including an escaped quote of the delimiting style.
func TestDecodeGenreMapEscapes(t *testing.T) {
	labels, err := corpus.DecodeGenreLabels(`{'/m/0lsxr': 'Rock \'n\' Roll Comedy'}`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Rock 'n' Roll Comedy"}, labels)
}

// TestDecodeGenreMapNonASCII verifies multi-byte label text passes through
// the byte-oriented scanner untouched.
func TestDecodeGenreMapNonASCII(t *testing.T) {
	labels, err := corpus.DecodeGenreLabels(`{'/m/0hj3n01': 'Cinéma vérité'}`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Cinéma vérité"}, labels)
}

// TestDecodeGenreMapDuplicateKeys verifies the duplicate-key rule: a
// repeated key keeps its first position but takes its last value, matching
// how the upstream serializer would have collapsed the mapping.
func TestDecodeGenreMapDuplicateKeys(t *testing.T) {
	entries, err := corpus.DecodeGenreMap(`{'/m/0a': 'First', '/m/0b': 'Other', '/m/0a': 'Last'}`)
	assert.NoError(t, err)
	assert.Equal(t, []corpus.GenreEntry{
		{FreebaseId: "/m/0a", Label: "Last"},
		{FreebaseId: "/m/0b", Label: "Other"},
	}, entries)
}

// TestDecodeGenreMapMalformed verifies that every way a field can deviate
// from the grammar produces a GenreSyntaxError carrying the offset of the
// offending character, rather than a partial result.
func TestDecodeGenreMapMalformed(t *testing.T) {
	cases := map[string]string{
		"empty input":         ``,
		"not a mapping":       `Thriller`,
		"unclosed brace":      `{'/m/01': 'Thriller'`,
		"bare key":            `{'/m/01'}`,
		"missing value":       `{'/m/01': }`,
		"unquoted key":        `{m01: 'Thriller'}`,
		"trailing comma":      `{'/m/01': 'Thriller',}`,
		"trailing data":       `{'/m/01': 'Thriller'} extra`,
		"unterminated string": `{'/m/01': 'Thriller}`,
		"unterminated escape": `{'/m/01': 'Thriller\`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := corpus.DecodeGenreMap(raw)
			assert.Error(t, err)
			var syntaxErr *corpus.GenreSyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
			assert.GreaterOrEqual(t, syntaxErr.Offset, 0)
		})
	}
}

// TestLenientGenreLabels verifies the accumulation-path form of the codec:
// malformed or empty fields become an empty label list instead of an
// error, while well-formed fields decode normally.
func TestLenientGenreLabels(t *testing.T) {
	// A malformed field must not raise, just contribute nothing.
	labels := corpus.LenientGenreLabels(`not a mapping`)
	assert.NotNil(t, labels)
	assert.Len(t, labels, 0)

	// A null (empty) field behaves the same way.
	labels = corpus.LenientGenreLabels(``)
	assert.NotNil(t, labels)
	assert.Len(t, labels, 0)

	// A well-formed field decodes exactly as the strict codec would.
	labels = corpus.LenientGenreLabels(`{"/m/03bxz7": "Biographical film"}`)
	assert.Equal(t, []string{"Biographical film"}, labels)
}
