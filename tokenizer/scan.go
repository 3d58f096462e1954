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

// commentStatus is the outcome of tryConsumeCommentStart.
type commentStatus int

const (
	// Started a line comment.
	lineComment commentStatus = iota

	// Started a block comment.
	blockComment

	// Consumed a slash, then realized it wasn't a comment. The current
	// token has been filled in with a slash token for Next to return.
	slashNotComment

	// We do not appear to be starting a comment here.
	noComment
)

// Next advances to the next token, making it available through Current
// and moving the old token to Previous. It returns false once the input
// is exhausted, after which Current holds a TypeEnd token with empty
// text. Diagnostics for malformed input go to the handler; unless the
// handler's reporter elects to abort, scanning continues past them.
func (t *Tokenizer) Next() bool {
	t.acquire()
	defer t.release()

	t.previous.copyFrom(&t.current)

	for !t.readError && t.handler.ReporterError() == nil {
		t.startToken()
		reportToken := t.tryConsumeWhitespace() || t.tryConsumeNewline()
		t.endToken()
		if reportToken {
			return true
		}

		switch t.tryConsumeCommentStart() {
		case lineComment:
			t.consumeLineComment(nil)
			continue
		case blockComment:
			t.consumeBlockComment(nil)
			continue
		case slashNotComment:
			return true
		case noComment:
		}

		// Check for EOF before continuing.
		if t.readError {
			break
		}

		if t.lookingAt(isUnprintable) || t.currentChar == 0 {
			t.addError("Invalid control characters encountered in text.")
			t.nextChar()
			// Skip a maximal run of unprintable characters. '\0' is also
			// what currentChar reads after EOF, so check readError before
			// consuming a NUL or we'd loop forever at end of input.
			for t.tryConsumeOne(isUnprintable) || (!t.readError && t.tryConsume(0)) {
			}
			continue
		}

		// Reading some sort of token.
		t.startToken()

		switch {
		case t.tryConsumeOne(isLetter):
			t.consumeZeroOrMore(isAlphanumeric)
			t.current.typ = TypeIdentifier

		case t.tryConsume('0'):
			t.current.typ = t.consumeNumber(true, false)

		case t.tryConsume('.'):
			// Could be the start of a float, or just a '.' symbol.
			if t.tryConsumeOne(isDigit) {
				// We don't accept syntax like "blah.123".
				if t.previous.typ == TypeIdentifier &&
					t.current.line == t.previous.line &&
					t.current.column == t.previous.endColumn {
					t.addErrorAt(t.line, t.column-2,
						"Need space between identifier and decimal point.")
				}
				t.current.typ = t.consumeNumber(false, true)
			} else {
				t.current.typ = TypeSymbol
			}

		case t.tryConsumeOne(isDigit):
			t.current.typ = t.consumeNumber(false, false)

		case t.tryConsume('"'):
			t.consumeString('"')
			t.current.typ = TypeString

		case t.tryConsume('\''):
			t.consumeString('\'')
			t.current.typ = TypeString

		default:
			if t.currentChar&0x80 != 0 {
				t.addError("Interpreting non ascii codepoint %d.", t.currentChar)
			}
			t.nextChar()
			t.current.typ = TypeSymbol
		}

		t.endToken()
		return true
	}

	// EOF
	t.current.typ = TypeEnd
	t.current.text = t.current.text[:0]
	t.current.line = t.line
	t.current.column = t.column
	t.current.endColumn = t.column
	return false
}

// tryConsumeWhitespace consumes a whitespace run if one starts here,
// marking the current token as TypeWhitespace. It returns true when the
// run should be reported to the caller. With newline reporting on, the
// run excludes '\n' so that tryConsumeNewline can claim it.
func (t *Tokenizer) tryConsumeWhitespace() bool {
	if t.reportNewlines {
		if t.tryConsumeOne(isWhitespaceNoNewline) {
			t.consumeZeroOrMore(isWhitespaceNoNewline)
			t.current.typ = TypeWhitespace
			return true
		}
		return false
	}
	if t.tryConsumeOne(isWhitespace) {
		t.consumeZeroOrMore(isWhitespace)
		t.current.typ = TypeWhitespace
		return t.reportWhitespace
	}
	return false
}

// tryConsumeNewline consumes a single '\n' as a TypeNewline token when
// newline reporting is on.
func (t *Tokenizer) tryConsumeNewline() bool {
	if !t.reportWhitespace || !t.reportNewlines {
		return false
	}
	if t.tryConsume('\n') {
		t.current.typ = TypeNewline
		return true
	}
	return false
}

// tryConsumeCommentStart consumes the opening of a comment if one starts
// here and reports what kind it found.
func (t *Tokenizer) tryConsumeCommentStart() commentStatus {
	if t.commentStyle == CommentStyleCPP && t.tryConsume('/') {
		if t.tryConsume('/') {
			return lineComment
		}
		if t.tryConsume('*') {
			return blockComment
		}
		// Oops, it was just a slash. Return it.
		t.current.typ = TypeSymbol
		t.current.text = append(t.current.text[:0], '/')
		t.current.line = t.line
		t.current.column = t.column - 1
		t.current.endColumn = t.column
		return slashNotComment
	}
	if t.commentStyle == CommentStyleShell && t.tryConsume('#') {
		return lineComment
	}
	return noComment
}

// consumeLineComment consumes through the end of the line. When content
// is non-nil the comment text is recorded into it.
func (t *Tokenizer) consumeLineComment(content *[]byte) {
	if content != nil {
		t.recordTo(content)
	}

	for t.currentChar != 0 && t.currentChar != '\n' {
		t.nextChar()
	}
	t.tryConsume('\n')

	if content != nil {
		t.stopRecording()
	}
}

// consumeBlockComment consumes through the closing "*/". When content is
// non-nil the comment text is recorded into it, minus the trailing "*/"
// and minus each interior line's leading whitespace and '*'.
func (t *Tokenizer) consumeBlockComment(content *[]byte) {
	startLine := t.line
	startColumn := t.column - 2

	if content != nil {
		t.recordTo(content)
	}

	for {
		for t.currentChar != 0 && t.currentChar != '*' &&
			t.currentChar != '/' && t.currentChar != '\n' {
			t.nextChar()
		}

		switch {
		case t.tryConsume('\n'):
			if content != nil {
				t.stopRecording()
			}

			// Consume leading whitespace and asterisk.
			t.consumeZeroOrMore(isWhitespaceNoNewline)
			if t.tryConsume('*') && t.tryConsume('/') {
				// End of comment.
				return
			}

			if content != nil {
				t.recordTo(content)
			}

		case t.tryConsume('*'):
			if t.tryConsume('/') {
				// End of comment.
				if content != nil {
					t.stopRecording()
					// Strip the trailing "*/".
					*content = (*content)[:len(*content)-2]
				}
				return
			}

		case t.tryConsume('/'):
			if t.currentChar == '*' {
				// The '*' is left unconsumed so that a '/' right after it
				// still closes the outer comment.
				t.addError("\"/*\" inside block comment.  Block comments cannot be nested.")
			}

		case t.currentChar == 0:
			t.addError("End-of-file inside block comment.")
			t.addErrorAt(startLine, startColumn, "  Comment started here.")
			if content != nil {
				t.stopRecording()
			}
			return
		}
	}
}

// consumeString consumes a string literal body through its closing
// delimiter, which has already been determined by the caller.
func (t *Tokenizer) consumeString(delimiter byte) {
	for {
		switch t.currentChar {
		case 0:
			t.addError("Unexpected end of string.")
			return

		case '\n':
			if !t.allowMultilineStrings {
				t.addError("String literals cannot cross line boundaries.")
				return
			}
			t.nextChar()

		case '\\':
			// An escape sequence.
			t.nextChar()
			switch {
			case t.tryConsumeOne(isEscape):
				// Valid escape sequence.
			case t.tryConsumeOne(isOctalDigit):
				// Possibly followed by two more octal digits, but those
				// get consumed by the main loop anyway.
			case t.tryConsume('x'):
				if !t.tryConsumeOne(isHexDigit) {
					t.addError("Expected hex digits for escape sequence.")
				}
				// Possibly followed by another hex digit; same story.
			case t.tryConsume('u'):
				if !t.tryConsumeOne(isHexDigit) || !t.tryConsumeOne(isHexDigit) ||
					!t.tryConsumeOne(isHexDigit) || !t.tryConsumeOne(isHexDigit) {
					t.addError("Expected four hex digits for \\u escape sequence.")
				}
			case t.tryConsume('U'):
				// We expect 8 hex digits, but only the range up to 0x10ffff
				// is legal.
				if !t.tryConsume('0') || !t.tryConsume('0') ||
					!(t.tryConsume('0') || t.tryConsume('1')) ||
					!t.tryConsumeOne(isHexDigit) || !t.tryConsumeOne(isHexDigit) ||
					!t.tryConsumeOne(isHexDigit) || !t.tryConsumeOne(isHexDigit) ||
					!t.tryConsumeOne(isHexDigit) {
					t.addError("Expected eight hex digits up to 10ffff for \\U escape sequence")
				}
			default:
				t.addError("Invalid escape sequence in string literal.")
			}

		default:
			if t.currentChar == delimiter {
				t.nextChar()
				return
			}
			t.nextChar()
		}
	}
}

// consumeNumber consumes the rest of a number and classifies it. The
// caller has already consumed the first character and tells us whether
// it was a '0' (which may introduce hex or octal) or a '.' (which forces
// a float).
func (t *Tokenizer) consumeNumber(startedWithZero, startedWithDot bool) TokenType {
	isFloat := false

	switch {
	case startedWithZero && (t.tryConsume('x') || t.tryConsume('X')):
		// A hex number (started with "0x").
		t.consumeOneOrMore(isHexDigit, "\"0x\" must be followed by hex digits.")

	case startedWithZero && t.lookingAt(isDigit):
		// An octal number (had a leading zero).
		t.consumeZeroOrMore(isOctalDigit)
		if t.lookingAt(isDigit) {
			t.addError("Numbers starting with leading zero must be in octal.")
			t.consumeZeroOrMore(isDigit)
		}

	default:
		// A decimal number.
		if startedWithDot {
			isFloat = true
			t.consumeZeroOrMore(isDigit)
		} else {
			t.consumeZeroOrMore(isDigit)
			if t.tryConsume('.') {
				isFloat = true
				t.consumeZeroOrMore(isDigit)
			}
		}

		if t.tryConsume('e') || t.tryConsume('E') {
			isFloat = true
			if !t.tryConsume('-') {
				t.tryConsume('+')
			}
			t.consumeOneOrMore(isDigit, "\"e\" must be followed by exponent.")
		}

		if t.allowFAfterFloat && (t.tryConsume('f') || t.tryConsume('F')) {
			isFloat = true
		}
	}

	if t.lookingAt(isLetter) && t.requireSpaceAfterNumber {
		t.addError("Need space between number and identifier.")
	} else if t.currentChar == '.' {
		if isFloat {
			t.addError("Already saw decimal point or exponent; can't have another one.")
		} else {
			t.addError("Hex and octal numbers must be integers.")
		}
	}

	if isFloat {
		return TypeFloat
	}
	return TypeInteger
}
