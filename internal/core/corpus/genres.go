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

// This file, `genres.go`, implements the codec for the encoded mapping
// fields of the corpus. The genre, language and country columns each hold a
// brace-delimited mapping of Freebase ID to human label, written the way the
// upstream extraction serialized it:
//
//	{"/m/01jfsb": "Thriller", "/m/06n90": "Science Fiction"}
//	{'/m/01jfsb': 'Thriller', '/m/06n90': 'Science Fiction'}
//
// Both quote styles occur in the wild, so the codec accepts either, along
// with backslash escapes inside the quoted strings. The grammar is exactly:
//
//	mapping = "{" [ pair { "," pair } ] "}"
//	pair    = string ":" value
//	value   = string
//
// with optional whitespace between tokens and nothing allowed after the
// closing brace. Anything else is a syntax error carrying the byte offset
// of the first offending character, so a bad row can be logged precisely
// and skipped without guesswork.
package corpus

import (
	"fmt"
	"strings"
)

// GenreEntry is one decoded pair of the mapping: the Freebase machine ID and
// the human-readable label.
type GenreEntry struct {
	FreebaseId string // The mapping key (e.g., "/m/01jfsb").
	Label      string // The mapping value (e.g., "Thriller").
}

// GenreSyntaxError reports where and why a mapping field failed to decode.
type GenreSyntaxError struct {
	Offset int    // Byte offset of the first offending character.
	Reason string // What the decoder expected or found.
}

func (e *GenreSyntaxError) Error() string {
	return fmt.Sprintf("genre map syntax error at offset %d: %s", e.Offset, e.Reason)
}

// DecodeGenreMap decodes an encoded mapping field into its ordered entries.
// Entry order follows first appearance in the text. A key that appears twice
// keeps its first position but takes its last value, which is how the
// upstream serializer would have collapsed it.
//
// Inputs:
//   - raw: The raw field text, including the surrounding braces.
//
// Outputs:
//   - []GenreEntry: The decoded entries, empty (non-nil) for the "{}" field.
//   - error: A *GenreSyntaxError when the text does not match the grammar.
func DecodeGenreMap(raw string) ([]GenreEntry, error) {
	d := &genreDecoder{src: raw}
	return d.decode()
}

// DecodeGenreLabels decodes an encoded mapping field and returns just the
// labels in entry order.
func DecodeGenreLabels(raw string) ([]string, error) {
	entries, err := DecodeGenreMap(raw)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Label)
	}
	return labels, nil
}

// LenientGenreLabels decodes an encoded mapping field, returning an empty
// list when the field is empty or malformed instead of an error. This is
// the accumulation-path form of the codec: one bad row must never fail an
// aggregation over thousands of rows, so rows that do not decode simply
// contribute no labels.
func LenientGenreLabels(raw string) []string {
	labels, err := DecodeGenreLabels(raw)
	if err != nil {
		return []string{}
	}
	return labels
}

// genreDecoder is a single-pass scanner over the raw field text. It works on
// bytes: every structural character of the grammar is ASCII, and multi-byte
// label characters pass through string slicing untouched.
type genreDecoder struct {
	src string
	pos int
}

func (d *genreDecoder) decode() ([]GenreEntry, error) {
	entries := make([]GenreEntry, 0, 4)
	index := make(map[string]int)

	d.skipSpace()
	if err := d.expect('{'); err != nil {
		return nil, err
	}

	d.skipSpace()
	// An immediately closed brace is the empty mapping.
	if d.peek() == '}' {
		d.pos++
		return entries, d.expectEnd()
	}

	for {
		d.skipSpace()
		key, err := d.parseString()
		if err != nil {
			return nil, err
		}
		d.skipSpace()
		if err := d.expect(':'); err != nil {
			return nil, err
		}
		d.skipSpace()
		value, err := d.parseString()
		if err != nil {
			return nil, err
		}

		if i, ok := index[key]; ok {
			entries[i].Label = value
		} else {
			index[key] = len(entries)
			entries = append(entries, GenreEntry{FreebaseId: key, Label: value})
		}

		d.skipSpace()
		switch d.peek() {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return entries, d.expectEnd()
		default:
			return nil, d.errorf("expected ',' or '}' after mapping value")
		}
	}
}

// parseString consumes one quoted string, honoring either quote style and
// backslash escapes. The returned value has the quotes and escapes removed.
func (d *genreDecoder) parseString() (string, error) {
	quote := d.peek()
	if quote != '\'' && quote != '"' {
		return "", d.errorf("expected a quoted string")
	}
	d.pos++

	var b strings.Builder
	for d.pos < len(d.src) {
		c := d.src[d.pos]
		switch c {
		case quote:
			d.pos++
			return b.String(), nil
		case '\\':
			d.pos++
			if d.pos >= len(d.src) {
				return "", d.errorf("unterminated escape sequence")
			}
			e := d.src[d.pos]
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				// Quotes, backslashes and anything else escape to themselves.
				b.WriteByte(e)
			}
			d.pos++
		default:
			b.WriteByte(c)
			d.pos++
		}
	}
	return "", d.errorf("unterminated string")
}

// expectEnd requires that nothing but whitespace follows the closing brace.
func (d *genreDecoder) expectEnd() error {
	d.skipSpace()
	if d.pos != len(d.src) {
		return d.errorf("unexpected trailing data after mapping")
	}
	return nil
}

func (d *genreDecoder) expect(c byte) error {
	if d.peek() != c {
		return d.errorf("expected %q", c)
	}
	d.pos++
	return nil
}

// peek returns the current byte, or 0 at end of input.
func (d *genreDecoder) peek() byte {
	if d.pos >= len(d.src) {
		return 0
	}
	return d.src[d.pos]
}

func (d *genreDecoder) skipSpace() {
	for d.pos < len(d.src) {
		switch d.src[d.pos] {
		case ' ', '\t', '\r', '\n':
			d.pos++
		default:
			return
		}
	}
}

func (d *genreDecoder) errorf(format string, args ...any) error {
	return &GenreSyntaxError{Offset: d.pos, Reason: fmt.Sprintf(format, args...)}
}
