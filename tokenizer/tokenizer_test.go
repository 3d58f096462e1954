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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/prototoken/bytestream"
	"github.com/bufbuild/prototoken/reporter"
)

type testDiag struct {
	Line, Col int
	Msg       string
}

// collectingHandler returns a handler whose reporter records every
// diagnostic and keeps scanning.
func collectingHandler(diags *[]testDiag) *reporter.Handler {
	return reporter.NewHandler(func(diag *reporter.ErrorWithPos) error {
		*diags = append(*diags, testDiag{Line: diag.Pos.Line, Col: diag.Pos.Col, Msg: diag.Err.Error()})
		return nil
	}, nil)
}

// scanAll tokenizes input to exhaustion and returns the tokens and
// diagnostics it produced.
func scanAll(input string, configure func(*Tokenizer)) ([]Token, []testDiag) {
	var diags []testDiag
	tz := New([]byte(input), nil, collectingHandler(&diags))
	if configure != nil {
		configure(tz)
	}
	var tokens []Token
	for tz.Next() {
		tokens = append(tokens, tz.Current())
	}
	return tokens, diags
}

func TestSimpleTokens(t *testing.T) {
	tokens, diags := scanAll("foo 123 0x1F 07 0.5 1e10 \"a\\nb\" // tail\nBAR", nil)
	expected := []Token{
		{Type: TypeIdentifier, Line: 0, Column: 0, EndColumn: 3, Text: "foo"},
		{Type: TypeInteger, Line: 0, Column: 4, EndColumn: 7, Text: "123"},
		{Type: TypeInteger, Line: 0, Column: 8, EndColumn: 12, Text: "0x1F"},
		{Type: TypeInteger, Line: 0, Column: 13, EndColumn: 15, Text: "07"},
		{Type: TypeFloat, Line: 0, Column: 16, EndColumn: 19, Text: "0.5"},
		{Type: TypeFloat, Line: 0, Column: 20, EndColumn: 24, Text: "1e10"},
		{Type: TypeString, Line: 0, Column: 25, EndColumn: 31, Text: `"a\nb"`},
		{Type: TypeIdentifier, Line: 1, Column: 0, EndColumn: 3, Text: "BAR"},
	}
	assert.Empty(t, diags)
	if diff := cmp.Diff(expected, tokens); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestStartAndEnd(t *testing.T) {
	var diags []testDiag
	tz := New([]byte("hi"), nil, collectingHandler(&diags))

	require.Equal(t, TypeStart, tz.Current().Type)

	require.True(t, tz.Next())
	require.Equal(t, TypeIdentifier, tz.Current().Type)
	require.Equal(t, TypeStart, tz.Previous().Type)

	require.False(t, tz.Next())
	end := tz.Current()
	assert.Equal(t, TypeEnd, end.Type)
	assert.Equal(t, "", end.Text)
	assert.Equal(t, 0, end.Line)
	assert.Equal(t, 2, end.Column)
	assert.Equal(t, 2, end.EndColumn)

	// Next after the end stays at the end.
	require.False(t, tz.Next())
	assert.Equal(t, TypeEnd, tz.Current().Type)
	assert.Equal(t, TypeEnd, tz.Previous().Type)
}

func TestPreviousTracksCurrent(t *testing.T) {
	var diags []testDiag
	tz := New([]byte("one 22 \"three\" . four"), nil, collectingHandler(&diags))
	prev := tz.Current()
	for tz.Next() {
		assert.Equal(t, prev, tz.Previous())
		prev = tz.Current()
	}
	assert.Equal(t, prev, tz.Previous())
	assert.Empty(t, diags)
}

func TestTabColumns(t *testing.T) {
	tests := []struct {
		input string
		ident string
		col   int
	}{
		{"\tA", "A", 8},
		{"\t\tA", "A", 16},
		{"AB\tC", "C", 8},
		{"1234567\tX", "X", 8},
		{"12345678\tX", "X", 16},
	}
	for _, tc := range tests {
		tokens, diags := scanAll(tc.input, nil)
		require.Empty(t, diags, "input %q", tc.input)
		last := tokens[len(tokens)-1]
		assert.Equal(t, tc.ident, last.Text, "input %q", tc.input)
		assert.Equal(t, tc.col, last.Column, "input %q", tc.input)
	}
}

func TestSlashIsJustASymbol(t *testing.T) {
	tokens, diags := scanAll("a / b", nil)
	expected := []Token{
		{Type: TypeIdentifier, Line: 0, Column: 0, EndColumn: 1, Text: "a"},
		{Type: TypeSymbol, Line: 0, Column: 2, EndColumn: 3, Text: "/"},
		{Type: TypeIdentifier, Line: 0, Column: 4, EndColumn: 5, Text: "b"},
	}
	assert.Empty(t, diags)
	if diff := cmp.Diff(expected, tokens); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestSymbolsAreSingleCharacters(t *testing.T) {
	tokens, diags := scanAll("!+$%", nil)
	assert.Empty(t, diags)
	require.Len(t, tokens, 4)
	for i, text := range []string{"!", "+", "$", "%"} {
		assert.Equal(t, TypeSymbol, tokens[i].Type)
		assert.Equal(t, text, tokens[i].Text)
		assert.Equal(t, i, tokens[i].Column)
	}
}

// Every chunking of the input must yield the identical token stream,
// even when a window boundary lands mid-lexeme.
func TestChunkBoundaries(t *testing.T) {
	const input = "message \"quoted \\u0041 text\" 0x1234 3.14159e+2 /* comment */ tail"

	want, wantDiags := scanAll(input, nil)

	for size := 1; size <= 9; size++ {
		var diags []testDiag
		tz := New(nil, bytestream.NewChunkedReader(strings.NewReader(input), size), collectingHandler(&diags))
		var got []Token
		for tz.Next() {
			got = append(got, tz.Current())
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("chunk size %d: token stream mismatch (-want +got):\n%s", size, diff)
		}
		assert.Equal(t, wantDiags, diags, "chunk size %d", size)
	}
}

// The initial in-memory span is scanned before the chunked stream, and
// lexemes may straddle the seam between the two.
func TestInitialSpanThenStream(t *testing.T) {
	head := []byte("alpha bet")
	tail := strings.NewReader("a 42")

	var diags []testDiag
	tz := New(head, bytestream.NewChunkedReader(tail, 2), collectingHandler(&diags))
	var got []Token
	for tz.Next() {
		got = append(got, tz.Current())
	}

	expected := []Token{
		{Type: TypeIdentifier, Line: 0, Column: 0, EndColumn: 5, Text: "alpha"},
		{Type: TypeIdentifier, Line: 0, Column: 6, EndColumn: 10, Text: "beta"},
		{Type: TypeInteger, Line: 0, Column: 11, EndColumn: 13, Text: "42"},
	}
	assert.Empty(t, diags)
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestFiniReturnsUnreadBytes(t *testing.T) {
	src := bytestream.NewBytesReader([]byte("foo bar baz"))
	var diags []testDiag
	tz := New(nil, src, collectingHandler(&diags))

	require.True(t, tz.Next())
	require.Equal(t, "foo", tz.Current().Text)
	tz.Fini()

	rest, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, " bar baz", string(rest))
}

func TestAbortingReporterEndsStream(t *testing.T) {
	// The default handler latches the first diagnostic, which ends the
	// token stream at the next call.
	handler := reporter.NewHandler(nil, nil)
	tz := New([]byte("0x 1 2"), nil, handler)
	require.True(t, tz.Next())
	assert.Equal(t, "0x", tz.Current().Text)
	require.False(t, tz.Next())
	assert.Equal(t, TypeEnd, tz.Current().Type)
	assert.Error(t, handler.Error())
}

func TestWhitespaceReporting(t *testing.T) {
	tokens, diags := scanAll("a b\nc", func(tz *Tokenizer) {
		tz.SetReportWhitespace(true)
	})
	expected := []Token{
		{Type: TypeIdentifier, Line: 0, Column: 0, EndColumn: 1, Text: "a"},
		{Type: TypeWhitespace, Line: 0, Column: 1, EndColumn: 2, Text: " "},
		{Type: TypeIdentifier, Line: 0, Column: 2, EndColumn: 3, Text: "b"},
		{Type: TypeWhitespace, Line: 0, Column: 3, EndColumn: 0, Text: "\n"},
		{Type: TypeIdentifier, Line: 1, Column: 0, EndColumn: 1, Text: "c"},
	}
	assert.Empty(t, diags)
	if diff := cmp.Diff(expected, tokens); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestNewlineReporting(t *testing.T) {
	tokens, diags := scanAll("a \n b", func(tz *Tokenizer) {
		tz.SetReportNewlines(true)
	})
	expected := []Token{
		{Type: TypeIdentifier, Line: 0, Column: 0, EndColumn: 1, Text: "a"},
		{Type: TypeWhitespace, Line: 0, Column: 1, EndColumn: 2, Text: " "},
		{Type: TypeNewline, Line: 0, Column: 2, EndColumn: 0, Text: "\n"},
		{Type: TypeWhitespace, Line: 1, Column: 0, EndColumn: 1, Text: " "},
		{Type: TypeIdentifier, Line: 1, Column: 1, EndColumn: 2, Text: "b"},
	}
	assert.Empty(t, diags)
	if diff := cmp.Diff(expected, tokens); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionCoupling(t *testing.T) {
	tz := New(nil, nil, nil)

	tz.SetReportNewlines(true)
	assert.True(t, tz.ReportWhitespace(), "newline reporting implies whitespace reporting")
	assert.True(t, tz.ReportNewlines())

	tz.SetReportWhitespace(false)
	assert.False(t, tz.ReportWhitespace())
	assert.False(t, tz.ReportNewlines(), "disabling whitespace reporting disables newline reporting")
}

func TestMultilineString(t *testing.T) {
	tokens, diags := scanAll("\"a\nb\"", func(tz *Tokenizer) {
		tz.SetAllowMultilineStrings(true)
	})
	require.Empty(t, diags)
	require.Len(t, tokens, 1)
	tok := tokens[0]
	assert.Equal(t, TypeString, tok.Type)
	assert.Equal(t, "\"a\nb\"", tok.Text)
	assert.Equal(t, 0, tok.Line)
	assert.Equal(t, 0, tok.Column)
	// The column counter restarts at the embedded newline, so the end
	// column is a column on the string's last line.
	assert.Equal(t, 2, tok.EndColumn)
}

func TestControlCharacters(t *testing.T) {
	tokens, diags := scanAll("a\x01\x02b", nil)
	expected := []Token{
		{Type: TypeIdentifier, Line: 0, Column: 0, EndColumn: 1, Text: "a"},
		{Type: TypeIdentifier, Line: 0, Column: 3, EndColumn: 4, Text: "b"},
	}
	if diff := cmp.Diff(expected, tokens); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, diags, 1)
	assert.Equal(t, testDiag{Line: 0, Col: 1, Msg: "Invalid control characters encountered in text."}, diags[0])
}

func TestStrayNul(t *testing.T) {
	tokens, diags := scanAll("a\x00b", nil)
	require.Len(t, tokens, 2)
	assert.Equal(t, "a", tokens[0].Text)
	assert.Equal(t, "b", tokens[1].Text)
	require.Len(t, diags, 1)
	assert.Equal(t, "Invalid control characters encountered in text.", diags[0].Msg)
}

func TestNonASCIISymbol(t *testing.T) {
	tokens, diags := scanAll("\xc3\xa9", nil)
	require.Len(t, tokens, 2)
	assert.Equal(t, TypeSymbol, tokens[0].Type)
	assert.Equal(t, TypeSymbol, tokens[1].Type)
	require.Len(t, diags, 2)
	assert.Equal(t, "Interpreting non ascii codepoint 195.", diags[0].Msg)
	assert.Equal(t, "Interpreting non ascii codepoint 169.", diags[1].Msg)
}

func TestConcurrentNextPanics(t *testing.T) {
	// Sequential use never trips the guard.
	tz := New([]byte("a b c"), nil, nil)
	for tz.Next() {
	}

	// Simulate a Next call in flight on another goroutine.
	tz = New([]byte("x"), nil, nil)
	tz.busy.Store(12345)
	assert.Panics(t, func() { tz.Next() })
}
