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

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/prototoken/bytestream"
	"github.com/bufbuild/prototoken/reporter"
	"github.com/bufbuild/prototoken/tokenizer"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [globs...]",
	Short: "Dump the token stream of each matching file",
	Long: `Tokens scans every file matched by the given doublestar globs and
prints one line per token: type, span, and source text. Diagnostics for
malformed input go to stderr with a source snippet.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTokens,
}

func init() {
	flags := tokensCmd.Flags()
	flags.Bool("shell-comments", false, "recognize '#' line comments instead of C++ style")
	flags.Bool("allow-f-suffix", false, "allow an f/F suffix on floats")
	flags.Bool("allow-multiline-strings", false, "permit literal newlines inside strings")
	flags.Bool("report-whitespace", false, "emit WHITESPACE tokens")
	flags.Bool("report-newlines", false, "emit NEWLINE tokens (implies --report-whitespace)")
	flags.Bool("no-space-check", false, "do not require a space between a number and an identifier")
	flags.Int("buffer-size", bytestream.DefaultChunkSize, "read window size in bytes")
	flags.Int("jobs", runtime.GOMAXPROCS(0), "number of files to scan concurrently")
}

type fileResult struct {
	path   string
	tokens string
	diags  []*reporter.ErrorWithPos
	src    []byte
	err    error
}

func runTokens(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	var paths []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched")
	}

	jobs, _ := flags.GetInt("jobs")
	if jobs < 1 {
		jobs = 1
	}

	// Scan files concurrently but print them in argument order.
	sem := semaphore.NewWeighted(int64(jobs))
	results := make([]fileResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		if err := sem.Acquire(context.Background(), 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = scanFile(flags, path)
		}(i, path)
	}
	wg.Wait()

	errHeading := color.New(color.FgRed, color.Bold)
	if shouldColorize(cmd) {
		errHeading.EnableColor()
	} else {
		errHeading.DisableColor()
	}

	failed := false
	for _, res := range results {
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.path, res.err)
			failed = true
			continue
		}
		fmt.Print(res.tokens)
		for _, diag := range res.diags {
			fmt.Fprintf(os.Stderr, "%s: %v\n", errHeading.Sprintf("%s:%d:%d", res.path, diag.Pos.Line+1, diag.Pos.Col+1), diag.Err)
			if snippet := reporter.Snippet(res.src, diag.Pos); snippet != "" {
				fmt.Fprintln(os.Stderr, indent(snippet, "  "))
			}
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("some files did not scan cleanly")
	}
	return nil
}

func scanFile(flags *pflag.FlagSet, path string) fileResult {
	res := fileResult{path: path}

	f, err := os.Open(path)
	if err != nil {
		res.err = err
		return res
	}
	defer f.Close()

	bufferSize, _ := flags.GetInt("buffer-size")
	handler := reporter.NewHandler(func(diag *reporter.ErrorWithPos) error {
		res.diags = append(res.diags, diag)
		return nil // keep scanning
	}, nil)

	tz := tokenizer.New(nil, bytestream.NewChunkedReader(f, bufferSize), handler)
	applyOptions(flags, tz)
	defer tz.Fini()

	var sb strings.Builder
	for tz.Next() {
		tok := tz.Current()
		fmt.Fprintf(&sb, "%s\t%d:%d-%d\t%q\n", tok.Type, tok.Line, tok.Column, tok.EndColumn, tok.Text)
	}
	res.tokens = sb.String()

	if len(res.diags) > 0 {
		res.src, _ = os.ReadFile(path)
	}
	return res
}

func applyOptions(flags *pflag.FlagSet, tz *tokenizer.Tokenizer) {
	if on, _ := flags.GetBool("shell-comments"); on {
		tz.SetCommentStyle(tokenizer.CommentStyleShell)
	}
	if on, _ := flags.GetBool("allow-f-suffix"); on {
		tz.SetAllowFAfterFloat(true)
	}
	if on, _ := flags.GetBool("allow-multiline-strings"); on {
		tz.SetAllowMultilineStrings(true)
	}
	if on, _ := flags.GetBool("report-whitespace"); on {
		tz.SetReportWhitespace(true)
	}
	if on, _ := flags.GetBool("report-newlines"); on {
		tz.SetReportNewlines(true)
	}
	if on, _ := flags.GetBool("no-space-check"); on {
		tz.SetRequireSpaceAfterNumber(false)
	}
}

func shouldColorize(cmd *cobra.Command) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stderr)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
