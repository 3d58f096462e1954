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

// Package tokenizer breaks a stream of bytes into the tokens of a
// C-family text description language: identifiers, integer and floating
// point literals, quoted strings, and single-character symbols, plus
// optionally whitespace and newlines.
//
// The scanner presents a simple Next loop over a chunked input whose
// buffer boundaries may fall anywhere inside a lexeme. Every token
// records its exact source text along with a zero-based (line, column,
// end column) span, where tabs advance the column to the next multiple
// of eight. Malformed input produces a diagnostic through a
// reporter.Handler and scanning continues, so a parser built on top can
// surface as many problems as the input contains in one pass.
//
// Literal text is left encoded in the token; ParseInteger, ParseFloat
// and ParseString convert a token's text into its semantic value after
// the fact.
package tokenizer
