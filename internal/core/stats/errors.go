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

// Package stats implements the aggregation routines of the application:
// pure functions over the immutable corpus tables that produce small
// (category, count) result tables. This file, `errors.go`, defines the
// error taxonomy those routines share.
//
// The taxonomy has three caller-facing conditions plus one lookup error:
//
//   - invalid argument: a caller-supplied parameter violates a documented
//     precondition (range, domain membership) and the caller should fix the
//     request;
//   - missing data: a table the routine needs was never loaded, which is a
//     configuration fault rather than a user mistake;
//   - not enough data: the request is well-formed but asks for more than
//     the data contains (only the top-genre counter raises this);
//   - not found: a specific record lookup missed, used by the service layer
//     rather than the aggregations themselves.
//
// An empty result is deliberately NOT an error anywhere: zero surviving
// rows come back as a valid empty table that callers must check before
// rendering.
package stats

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy. Callers classify failures with
// errors.Is against these, or with the Is* helpers below.
var (
	// ErrInvalidArgument marks a parameter that violates a precondition.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingData marks a table that was expected but never loaded.
	ErrMissingData = errors.New("missing data")
	// ErrNotEnoughData marks a request exceeding the available distinct values.
	ErrNotEnoughData = errors.New("not enough data")
	// ErrNotFound marks a record lookup that missed.
	ErrNotFound = errors.New("not found")
)

// StatsError carries a machine-readable code and a caller-facing message on
// top of the sentinel that classifies it. The sentinel is reachable through
// Unwrap, so errors.Is keeps working across wrapping.
type StatsError struct {
	Code    string // Stable machine-readable code (e.g., "INVALID_ARGUMENT").
	Message string // Caller-facing description of what was wrong.
	Err     error  // The classifying sentinel, possibly wrapped further.
}

// Error implements the error interface, including the internal detail for
// logs.
func (e *StatsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the caller-facing message without internal detail.
func (e *StatsError) UserMessage() string {
	return e.Message
}

// Unwrap returns the classifying sentinel for errors.Is / errors.As.
func (e *StatsError) Unwrap() error {
	return e.Err
}

// NewInvalidArgumentError creates an invalid-argument error with the given
// caller-facing message.
func NewInvalidArgumentError(message string) error {
	return &StatsError{
		Code:    "INVALID_ARGUMENT",
		Message: message,
		Err:     ErrInvalidArgument,
	}
}

// NewMissingDataError creates a missing-data error for the named table.
func NewMissingDataError(table string) error {
	return &StatsError{
		Code:    "MISSING_DATA",
		Message: fmt.Sprintf("required table %q is not loaded", table),
		Err:     ErrMissingData,
	}
}

// NewNotEnoughDataError creates a not-enough-data error with the given
// caller-facing message.
func NewNotEnoughDataError(message string) error {
	return &StatsError{
		Code:    "NOT_ENOUGH_DATA",
		Message: message,
		Err:     ErrNotEnoughData,
	}
}

// NewNotFoundError creates a not-found error for one record of the given
// resource type.
func NewNotFoundError(resourceType, id string) error {
	return &StatsError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %q not found", resourceType, id),
		Err:     ErrNotFound,
	}
}

// IsInvalidArgument reports whether err is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsMissingData reports whether err is a missing-data error.
func IsMissingData(err error) bool {
	return errors.Is(err, ErrMissingData)
}

// IsNotEnoughData reports whether err is a not-enough-data error.
func IsNotEnoughData(err error) bool {
	return errors.Is(err, ErrNotEnoughData)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
