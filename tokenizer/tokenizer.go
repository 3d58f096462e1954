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

package tokenizer

import (
	"fmt"
	"sync/atomic"

	"github.com/petermattis/goid"

	"github.com/bufbuild/prototoken/bytestream"
	"github.com/bufbuild/prototoken/reporter"
)

// tabWidth is how far a tab advances the column counter: to the next
// multiple of eight, the proto compiler's longstanding convention.
const tabWidth = 8

// CommentStyle selects which comment syntax the scanner recognizes.
type CommentStyle int

const (
	// CommentStyleCPP recognizes "//" line comments and "/* */" block
	// comments.
	CommentStyleCPP CommentStyle = iota

	// CommentStyleShell recognizes "#" line comments only.
	CommentStyleShell
)

// Tokenizer scans a byte stream into tokens. It is not safe for
// concurrent use; overlapping calls to Next from different goroutines
// panic rather than corrupt state.
type Tokenizer struct {
	current  token
	previous token

	input   bytestream.Reader
	handler *reporter.Handler

	currentChar byte   // == buffer[bufferPos], updated by nextChar
	buffer      []byte // current window into the input
	bufferPos   int
	fromStream  bool // buffer was obtained from input, not the initial span
	readError   bool // latched once the input is exhausted

	// Position of currentChar within the whole input. Column counts
	// bytes from the start of the line, except that a tab advances to
	// the next multiple of tabWidth. Both are zero-based.
	line   int
	column int

	// Recording target. While recordTarget is non-nil every consumed
	// byte is eventually appended to it; recordStart is the offset in
	// buffer where the live recording span begins.
	recordTarget *[]byte
	recordStart  int

	allowFAfterFloat        bool
	commentStyle            CommentStyle
	requireSpaceAfterNumber bool
	allowMultilineStrings   bool
	reportWhitespace        bool
	reportNewlines          bool

	// Goroutine id of a Next call in flight, 0 when idle.
	busy atomic.Int64
}

// New creates a Tokenizer that scans data first (if non-empty) and then
// the chunked input (if non-nil). handler receives diagnostics for
// malformed input; nil means the first diagnostic latches and ends the
// token stream.
func New(data []byte, input bytestream.Reader, handler *reporter.Handler) *Tokenizer {
	if handler == nil {
		handler = reporter.NewHandler(nil, nil)
	}
	t := &Tokenizer{
		input:   input,
		handler: handler,
		buffer:  data,

		recordStart:             -1,
		commentStyle:            CommentStyleCPP,
		requireSpaceAfterNumber: true,
	}
	if len(data) > 0 {
		t.currentChar = data[0]
	} else {
		t.refresh()
	}
	return t
}

// Fini returns any unread suffix of the final buffer to the input stream
// so a downstream reader can resume at byte accuracy. The Tokenizer must
// not be used afterwards.
func (t *Tokenizer) Fini() {
	if t.fromStream && t.input != nil && len(t.buffer) > t.bufferPos {
		t.input.BackUp(len(t.buffer) - t.bufferPos)
	}
}

// Current returns a copy of the most recently scanned token. Before the
// first call to Next its type is TypeStart; after the input is exhausted
// it is TypeEnd.
func (t *Tokenizer) Current() Token {
	return t.current.freeze()
}

// Previous returns a copy of the token Current held before the last call
// to Next.
func (t *Tokenizer) Previous() Token {
	return t.previous.freeze()
}

// SetAllowFAfterFloat controls whether an 'f' or 'F' suffix is consumed
// after a number and forces FLOAT classification.
func (t *Tokenizer) SetAllowFAfterFloat(allow bool) { t.allowFAfterFloat = allow }

// AllowFAfterFloat reports the current setting.
func (t *Tokenizer) AllowFAfterFloat() bool { return t.allowFAfterFloat }

// SetCommentStyle selects the comment syntax to recognize.
func (t *Tokenizer) SetCommentStyle(style CommentStyle) { t.commentStyle = style }

// CommentStyle reports the current comment syntax.
func (t *Tokenizer) CommentStyle() CommentStyle { return t.commentStyle }

// SetRequireSpaceAfterNumber controls whether a letter immediately
// following a numeric token is diagnosed.
func (t *Tokenizer) SetRequireSpaceAfterNumber(require bool) { t.requireSpaceAfterNumber = require }

// RequireSpaceAfterNumber reports the current setting.
func (t *Tokenizer) RequireSpaceAfterNumber() bool { return t.requireSpaceAfterNumber }

// SetAllowMultilineStrings controls whether string literals may contain
// literal newlines.
func (t *Tokenizer) SetAllowMultilineStrings(allow bool) { t.allowMultilineStrings = allow }

// AllowMultilineStrings reports the current setting.
func (t *Tokenizer) AllowMultilineStrings() bool { return t.allowMultilineStrings }

// SetReportWhitespace controls whether whitespace runs are returned as
// tokens. Turning it off also turns off newline reporting.
func (t *Tokenizer) SetReportWhitespace(report bool) {
	t.reportWhitespace = report
	t.reportNewlines = t.reportNewlines && report
}

// ReportWhitespace reports the current setting.
func (t *Tokenizer) ReportWhitespace() bool { return t.reportWhitespace }

// SetReportNewlines controls whether newlines are returned as their own
// tokens, separate from other whitespace. Turning it on also turns on
// whitespace reporting.
func (t *Tokenizer) SetReportNewlines(report bool) {
	t.reportNewlines = report
	t.reportWhitespace = t.reportWhitespace || report
}

// ReportNewlines reports the current setting.
func (t *Tokenizer) ReportNewlines() bool { return t.reportNewlines }

// addError reports an error at the position of the current character.
func (t *Tokenizer) addError(format string, args ...any) {
	t.addErrorAt(t.line, t.column, format, args...)
}

func (t *Tokenizer) addErrorAt(line, column int, format string, args ...any) {
	_ = t.handler.HandleErrorf(reporter.SourcePos{Line: line, Col: column}, format, args...)
}

// refresh requests the next window from the input. Any live recording is
// flushed first so that bytes of the outgoing buffer are not lost.
func (t *Tokenizer) refresh() {
	if t.readError {
		t.currentChar = 0
		return
	}

	if t.recordTarget != nil && t.recordStart < len(t.buffer) {
		*t.recordTarget = append(*t.recordTarget, t.buffer[t.recordStart:]...)
		t.recordStart = 0
	}

	t.buffer = nil
	t.bufferPos = 0

	if t.input != nil {
		data, _ := t.input.Next()
		if len(data) > 0 {
			t.buffer = data
			t.fromStream = true
			t.currentChar = data[0]
			return
		}
	}

	// End of stream (or read error).
	t.readError = true
	t.currentChar = 0
}

// nextChar consumes the current character and advances to the next one,
// updating the line and column counters on the way.
func (t *Tokenizer) nextChar() {
	switch t.currentChar {
	case '\n':
		t.line++
		t.column = 0
	case '\t':
		t.column += tabWidth - t.column%tabWidth
	default:
		t.column++
	}

	t.bufferPos++
	if t.bufferPos < len(t.buffer) {
		t.currentChar = t.buffer[t.bufferPos]
	} else {
		t.refresh()
	}
}

func (t *Tokenizer) recordTo(target *[]byte) {
	t.recordTarget = target
	t.recordStart = t.bufferPos
}

func (t *Tokenizer) stopRecording() {
	*t.recordTarget = append(*t.recordTarget, t.buffer[t.recordStart:t.bufferPos]...)
	t.recordTarget = nil
	t.recordStart = -1
}

// startToken marks the current character as the first of a new token and
// begins recording its text.
func (t *Tokenizer) startToken() {
	t.current.typ = TypeStart
	t.current.text = t.current.text[:0]
	t.current.line = t.line
	t.current.column = t.column
	t.recordTo(&t.current.text)
}

// endToken finishes the token begun by startToken; current.text then
// holds everything consumed in between.
func (t *Tokenizer) endToken() {
	t.stopRecording()
	t.current.endColumn = t.column
}

// lookingAt reports whether the current character is in the given class,
// consuming nothing.
func (t *Tokenizer) lookingAt(class func(byte) bool) bool {
	return class(t.currentChar)
}

// tryConsumeOne consumes the current character if it is in the given
// class.
func (t *Tokenizer) tryConsumeOne(class func(byte) bool) bool {
	if class(t.currentChar) {
		t.nextChar()
		return true
	}
	return false
}

// tryConsume consumes the current character if it is exactly c.
func (t *Tokenizer) tryConsume(c byte) bool {
	if t.currentChar == c {
		t.nextChar()
		return true
	}
	return false
}

func (t *Tokenizer) consumeZeroOrMore(class func(byte) bool) {
	for class(t.currentChar) {
		t.nextChar()
	}
}

// consumeOneOrMore consumes a non-empty run of the given class, or
// reports errMsg if the run would be empty.
func (t *Tokenizer) consumeOneOrMore(class func(byte) bool, errMsg string) {
	if !class(t.currentChar) {
		t.addError("%s", errMsg)
		return
	}
	for {
		t.nextChar()
		if !class(t.currentChar) {
			return
		}
	}
}

// acquire flags the start of a Next call and panics if another call is
// already in flight on a different goroutine. Sequential handoff between
// goroutines is fine; interleaving is not.
func (t *Tokenizer) acquire() {
	id := goid.Get()
	if !t.busy.CompareAndSwap(0, id) {
		panic(fmt.Sprintf(
			"tokenizer: concurrent Next calls from goroutines %d and %d",
			id, t.busy.Load(),
		))
	}
}

func (t *Tokenizer) release() {
	t.busy.Store(0)
}
