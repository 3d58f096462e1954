// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reporter routes the diagnostics a scan produces. The scanner
// hands every problem it finds to a Handler; the callbacks the Handler
// was built with decide whether that problem merely gets recorded or
// stops the scan.
package reporter

import (
	"errors"
	"fmt"
	"sync"
)

// SourcePos identifies a location in a source file. Line and Col are
// zero-based; Col counts bytes from the start of the line except that a
// tab advances to the next multiple of eight.
type SourcePos struct {
	Filename string
	Line     int
	Col      int
}

// String prints the position one-based, the way editors display it.
func (p SourcePos) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line+1, p.Col+1)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line+1, p.Col+1)
}

// ErrorWithPos is one diagnostic: a bare message in Err plus the input
// position that produced it. Error() prints both; errors.Is and
// errors.As see through to Err.
type ErrorWithPos struct {
	Pos SourcePos
	Err error
}

func (e *ErrorWithPos) Error() string {
	return e.Pos.String() + ": " + e.Err.Error()
}

func (e *ErrorWithPos) Unwrap() error {
	return e.Err
}

// ErrorReporter receives each error-level diagnostic as it happens.
// Returning nil keeps the scan going, so a parser can surface every
// problem in the input at once; returning a non-nil error makes the
// Handler latch it and the scan winds down.
type ErrorReporter func(*ErrorWithPos) error

// WarningReporter receives warning-level diagnostics. Warnings can
// never stop a scan.
type WarningReporter func(*ErrorWithPos)

// ErrInvalidSource is what Handler.Error reports when diagnostics were
// seen but the ErrorReporter swallowed every one of them: the scan
// still must not count as clean.
var ErrInvalidSource = errors.New("scan failed: invalid source")

// A Handler feeds diagnostics to its two callbacks and remembers the
// first error the ErrorReporter refused to swallow. After that point
// every report short-circuits to the remembered error.
type Handler struct {
	errs     ErrorReporter
	warnings WarningReporter

	mu       sync.Mutex
	sawError bool
	fatal    error
}

// NewHandler builds a Handler from the given callbacks. Both may be
// nil: with no ErrorReporter the first diagnostic itself latches, and
// with no WarningReporter warnings are dropped.
func NewHandler(errs ErrorReporter, warnings WarningReporter) *Handler {
	return &Handler{errs: errs, warnings: warnings}
}

// HandleErrorf reports an error-level diagnostic at pos. It returns nil
// while the scan may continue, or the latched error once it may not.
func (h *Handler) HandleErrorf(pos SourcePos, format string, args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fatal != nil {
		return h.fatal
	}
	h.sawError = true

	diag := &ErrorWithPos{Pos: pos, Err: fmt.Errorf(format, args...)}
	if h.errs == nil {
		h.fatal = diag
	} else {
		h.fatal = h.errs(diag)
	}
	return h.fatal
}

// HandleWarningf reports a warning-level diagnostic at pos.
func (h *Handler) HandleWarningf(pos SourcePos, format string, args ...any) {
	// Warnings never touch the latched state, so no lock is needed.
	if h.warnings != nil {
		h.warnings(&ErrorWithPos{Pos: pos, Err: fmt.Errorf(format, args...)})
	}
}

// Error reports how the scan went overall: nil for a clean scan, the
// latched error if the ErrorReporter aborted, and ErrInvalidSource if
// diagnostics were reported but all of them were swallowed.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fatal == nil && h.sawError {
		return ErrInvalidSource
	}
	return h.fatal
}

// ReporterError returns the latched error, if any. The scanner polls
// this between tokens to decide whether to keep going.
func (h *Handler) ReporterError() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.fatal
}
