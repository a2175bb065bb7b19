// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	indent      = 4  // spaces to indent replacement entries
	indexWidth  = 5  // width for "#12"
	searchWidth = 35 // width for the quoted search text
	modeWidth   = 7  // width for the mode
	statusWidth = 15 // width for status text
)

// 🎯 ReplacementOperation represents one replacement for logging
type ReplacementOperation struct {
	Index    int
	Search   string
	Mode     string
	Count    int
	Optional bool
	Skipped  bool // optional and not found
	Missing  bool // required and not found
}

// 📦 FileOperation represents a patched file for logging
type FileOperation struct {
	Path         string
	Encoding     string
	Replacements int
	IsModified   bool
	IsWritten    bool
	IsDryRun     bool
	IsAtomic     bool
	BackupPath   string
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *FileOperation
	ops     []ReplacementOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// quoteSearch renders search text on one line, shortened to width
func quoteSearch(s string, width int) string {
	q := strconv.Quote(s)
	if r := []rune(q); len(r) > width {
		q = string(r[:width-4]) + "...\""
	}
	return q
}

// 📝 formatReplacement formats a replacement for display
func (l *Logger) formatReplacement(op ReplacementOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	var status string
	switch {
	case op.Missing:
		symbol = '✗'
		symbolColor = color.FgRed
		status = "not found"
	case op.Skipped:
		symbol = '-'
		symbolColor = color.FgYellow
		status = "skipped"
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
		status = fmt.Sprintf("%d replaced", op.Count)
	}

	mode := op.Mode
	if mode == "" {
		mode = "all"
	}

	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", indent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", indexWidth, fmt.Sprintf("#%d", op.Index)),
		fmt.Sprintf("%-*s", searchWidth, quoteSearch(op.Search, searchWidth)),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", modeWidth, mode)),
		fmt.Sprintf("%-*s", statusWidth, status))
}

// 📝 LogReplacement logs a single replacement
func (l *Logger) LogReplacement(ctx context.Context, op ReplacementOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ops = append(l.ops, op)

	fmt.Fprintln(l.console, l.formatReplacement(op))

	l.zlog.Info().
		Int("index", op.Index).
		Str("search", op.Search).
		Str("mode", op.Mode).
		Int("count", op.Count).
		Bool("optional", op.Optional).
		Bool("skipped", op.Skipped).
		Bool("missing", op.Missing).
		Msg("replacement")
}

// 📝 StartFileOperation starts logging a file
func (l *Logger) StartFileOperation(ctx context.Context, path, encoding string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &FileOperation{Path: path, Encoding: encoding}
	l.ops = nil

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(path),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(encoding))

	l.zlog.Debug().
		Str("file", path).
		Str("encoding", encoding).
		Msg("starting file operation")
}

// 📝 EndFileOperation logs the outcome of the current file
func (l *Logger) EndFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Info().
		Str("file", op.Path).
		Str("encoding", op.Encoding).
		Int("replacements", op.Replacements).
		Int("entries", len(l.ops)).
		Bool("is_modified", op.IsModified).
		Bool("is_written", op.IsWritten).
		Bool("is_dry_run", op.IsDryRun).
		Bool("is_atomic", op.IsAtomic).
		Str("backup", op.BackupPath).
		Msg("file operation complete")

	l.current = nil
	l.ops = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
