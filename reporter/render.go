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

package reporter

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/bufbuild/prototoken/internal/lineindex"
)

// tabstop is the tab width the scanner's column counter assumes. Rendering
// must agree with it or carets drift on indented lines.
const tabstop = 8

// Snippet renders the source line that pos refers to, with a caret on a
// second line marking the position. Tabs are expanded to eight-column
// stops to match the scanner's column arithmetic; the caret offset is
// computed from display width so that non-ASCII text lines up in a
// terminal. Returns "" if pos does not fall inside src.
func Snippet(src []byte, pos SourcePos) string {
	if pos.Line < 0 {
		return ""
	}
	idx := lineindex.New(src)
	start, end, ok := idx.Line(pos.Line)
	if !ok {
		return ""
	}
	line := string(src[start:end])

	// Find the byte the scanner's column counter would have stopped on.
	byteAt := len(line)
	col := 0
	for i := 0; i < len(line); i++ {
		if col >= pos.Col {
			byteAt = i
			break
		}
		if line[i] == '\t' {
			col += tabstop - col%tabstop
		} else {
			col++
		}
	}

	var sb strings.Builder
	sb.WriteString(expandTabs(line))
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", uniseg.StringWidth(expandTabs(line[:byteAt]))))
	sb.WriteByte('^')
	return sb.String()
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			pad := tabstop - col%tabstop
			sb.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		sb.WriteByte(s[i])
		col++
	}
	return sb.String()
}
