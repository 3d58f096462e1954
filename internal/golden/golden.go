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

// Package golden checks scanner output against checked-in golden files.
// Every *.txt under a corpus root is one test case; the token dump it
// is expected to produce lives next to it as <name>.txt.tokens, and its
// expected diagnostics as <name>.txt.errors. No golden file means that
// case is expected to produce nothing on that channel.
package golden

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Scan produces the token and diagnostic dumps for one corpus input.
type Scan func(source string) (tokens, errs string)

// Run scans every case under root and compares both dumps against their
// goldens, reporting mismatches as unified diffs. Setting the refreshEnv
// environment variable to a glob rewrites the goldens of matching cases
// instead; a refresh run always fails, so a stale rewrite can't slip
// through as a green build.
func Run(t *testing.T, root, refreshEnv string, scan Scan) {
	inputs, err := doublestar.FilepathGlob(filepath.Join(root, "**", "*.txt"))
	if err != nil {
		t.Fatalf("golden: bad corpus glob: %v", err)
	}
	if len(inputs) == 0 {
		t.Fatalf("golden: no *.txt cases under %q", root)
	}

	refresh := os.Getenv(refreshEnv)
	if refresh != "" {
		t.Logf("golden: %s=%s, rewriting matching goldens", refreshEnv, refresh)
		t.Fail()
	}

	for _, input := range inputs {
		name, _ := filepath.Rel(root, input)
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile(input)
			if err != nil {
				t.Fatalf("golden: reading %s: %v", input, err)
			}
			tokens, errs := scan(string(source))

			if matched, _ := doublestar.Match(refresh, name); refresh != "" && matched {
				rewrite(t, input+".tokens", tokens)
				rewrite(t, input+".errors", errs)
				return
			}
			compare(t, input+".tokens", tokens)
			compare(t, input+".errors", errs)
		})
	}
}

func compare(t *testing.T, goldenPath, got string) {
	want, err := os.ReadFile(goldenPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Errorf("golden: reading %s: %v", goldenPath, err)
		return
	}
	if got == string(want) {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(want)),
		B:        difflib.SplitLines(got),
		FromFile: goldenPath,
		ToFile:   "scanned",
		Context:  3,
	})
	if err != nil {
		diff = err.Error()
	}
	t.Errorf("golden: %s is stale:\n%s", goldenPath, diff)
}

func rewrite(t *testing.T, goldenPath, content string) {
	if content == "" {
		if err := os.Remove(goldenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Errorf("golden: removing %s: %v", goldenPath, err)
		}
		return
	}
	if err := os.WriteFile(goldenPath, []byte(content), 0o644); err != nil {
		t.Errorf("golden: writing %s: %v", goldenPath, err)
	}
}
