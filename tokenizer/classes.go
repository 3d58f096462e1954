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

// Character classes. Each is a pure predicate over a single byte; the
// scanner only ever asks whether the current byte is a member.

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func isWhitespaceNoNewline(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

// isUnprintable reports control characters other than NUL. Whitespace
// bytes are nominally members too, but the scanner only consults this
// class after whitespace has been consumed.
func isUnprintable(c byte) bool {
	return c > 0 && c < ' '
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isOctalDigit(c byte) bool {
	return '0' <= c && c <= '7'
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isAlphanumeric(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || c == '_'
}

// isEscape reports the single-character escape letters recognized in
// string literals.
func isEscape(c byte) bool {
	switch c {
	case 'a', 'b', 'f', 'n', 'r', 't', 'v', '\\', '?', '\'', '"':
		return true
	}
	return false
}

// invalidDigit is the sentinel stored in asciiToInt for bytes that are
// not a digit in any base up to 36.
const invalidDigit = 36

// asciiToInt maps a byte to its value as a digit, supporting number
// bases up to 36. '0'..'9' map to 0-9, 'A'..'Z' and 'a'..'z' to 10-35,
// and everything else to invalidDigit. Callers compare the value against
// their base to detect invalid digits.
var asciiToInt = func() (tbl [256]int8) {
	for i := range tbl {
		tbl[i] = invalidDigit
	}
	for c := byte('0'); c <= '9'; c++ {
		tbl[c] = int8(c - '0')
	}
	for c := byte('A'); c <= 'Z'; c++ {
		tbl[c] = int8(c - 'A' + 10)
	}
	for c := byte('a'); c <= 'z'; c++ {
		tbl[c] = int8(c - 'a' + 10)
	}
	return tbl
}()

func digitValue(c byte) int {
	return int(asciiToInt[c])
}

// translateEscape maps a simple escape letter to the byte it denotes.
// Escape sequences are validated during scanning, so an unknown letter
// here just yields '?'.
func translateEscape(c byte) byte {
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case '\\':
		return '\\'
	case '?':
		return '?'
	case '\'':
		return '\''
	case '"':
		return '"'
	default:
		return '?'
	}
}
