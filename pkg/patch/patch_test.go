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

package patch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/storage"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func newApplier(t *testing.T, dir string) Applier {
	t.Helper()
	a, err := New(Options{
		Files:    storage.New(dir),
		Replacer: text.NewLiteralReplacer(),
	})
	require.NoError(t, err)
	return a
}

func writeTarget(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "target.tsx")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readTarget(t *testing.T, path string) string {
	t.Helper()
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(got)
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNew(t *testing.T) {
	_, err := New(Options{Replacer: text.NewLiteralReplacer()})
	assert.ErrorContains(t, err, "file manager is required")

	_, err = New(Options{Files: storage.New(".")})
	assert.ErrorContains(t, err, "replacer is required")
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		spec       func(path string) Spec
		opts       WriteOptions
		want       string
		wantCount  int
		wantErr    error
		wantWrite  bool
		wantBackup bool
	}{
		{
			name:    "escaped_newline_to_real_newline",
			content: `const s = "x";a\nb`,
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: `a\nb`, Replace: "a\nb"},
				}}
			},
			want:      "const s = \"x\";a\nb",
			wantCount: 1,
			wantWrite: true,
		},
		{
			name:    "order_sensitive_composition",
			content: "foo",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: "foo", Replace: "bar"},
					{Search: "bar", Replace: "baz"},
				}}
			},
			want:      "baz",
			wantCount: 2,
			wantWrite: true,
		},
		{
			name:    "required_missing_leaves_file_untouched",
			content: "hello world",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: "hello", Replace: "hi"},
					{Search: "foo", Replace: "bar"},
				}}
			},
			want:    "hello world",
			wantErr: ErrPreconditionFailed,
		},
		{
			name:    "optional_missing_is_noop",
			content: "hello world",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: "foo", Replace: "bar", Optional: true},
				}}
			},
			want:      "hello world",
			wantCount: 0,
		},
		{
			name:    "first_mode",
			content: "x x x",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: "x", Replace: "y", Mode: text.ModeFirst},
				}}
			},
			want:      "y x x",
			wantCount: 1,
			wantWrite: true,
		},
		{
			name:    "atomic_write",
			content: "a\\\\nb",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: `\\n`, Replace: "\n"},
				}}
			},
			opts:      WriteOptions{Atomic: true},
			want:      "a\nb",
			wantCount: 1,
			wantWrite: true,
		},
		{
			name:    "dry_run_does_not_write",
			content: "hello",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: "hello", Replace: "bye"},
				}}
			},
			opts:      WriteOptions{DryRun: true, Backup: true},
			want:      "hello",
			wantCount: 1,
		},
		{
			name:    "backup_keeps_original",
			content: "hello",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: "hello", Replace: "bye"},
				}}
			},
			opts:       WriteOptions{Backup: true},
			want:       "bye",
			wantCount:  1,
			wantWrite:  true,
			wantBackup: true,
		},
		{
			name:    "invalid_utf8",
			content: "caf\xe9",
			spec: func(path string) Spec {
				return Spec{Path: path, Replacements: []text.Rule{
					{Search: "caf", Replace: "cof"},
				}}
			},
			want:    "caf\xe9",
			wantErr: ErrEncoding,
		},
		{
			name:    "unknown_encoding",
			content: "hello",
			spec: func(path string) Spec {
				return Spec{Path: path, Encoding: "no-such-charset", Replacements: []text.Rule{
					{Search: "hello", Replace: "bye"},
				}}
			},
			want:    "hello",
			wantErr: ErrEncoding,
		},
		{
			name:    "unencodable_result",
			content: "caf\xe9",
			spec: func(path string) Spec {
				return Spec{Path: path, Encoding: "windows-1252", Replacements: []text.Rule{
					{Search: "café", Replace: "咖啡"},
				}}
			},
			want:    "caf\xe9",
			wantErr: ErrEncoding,
		},
		{
			name:    "utf16_unpaired_surrogate_leaves_file_untouched",
			content: "a\x00b\x00\x00\xd8x\x00\\\x00n\x00",
			spec: func(path string) Spec {
				return Spec{Path: path, Encoding: "utf-16le", Replacements: []text.Rule{
					{Search: `\n`, Replace: "\n"},
				}}
			},
			want:    "a\x00b\x00\x00\xd8x\x00\\\x00n\x00",
			wantErr: ErrEncoding,
		},
		{
			name:    "utf16_odd_trailing_byte_leaves_file_untouched",
			content: "x\x00\\\x00n\x00z",
			spec: func(path string) Spec {
				return Spec{Path: path, Encoding: "utf-16le", Replacements: []text.Rule{
					{Search: `\n`, Replace: "\n"},
				}}
			},
			want:    "x\x00\\\x00n\x00z",
			wantErr: ErrEncoding,
		},
		{
			name:    "utf16_round_trip",
			content: "x\x00\\\x00n\x00",
			spec: func(path string) Spec {
				return Spec{Path: path, Encoding: "utf-16le", Replacements: []text.Rule{
					{Search: `\n`, Replace: "\n"},
				}}
			},
			want:      "x\x00\n\x00",
			wantCount: 1,
			wantWrite: true,
		},
		{
			name:    "windows1252_round_trip",
			content: "caf\xe9 au lait",
			spec: func(path string) Spec {
				return Spec{Path: path, Encoding: "latin1", Replacements: []text.Rule{
					{Search: "café", Replace: "thé"},
				}}
			},
			want:      "th\xe9 au lait",
			wantCount: 1,
			wantWrite: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			dir := t.TempDir()
			path := writeTarget(t, dir, tt.content)

			result, err := newApplier(t, dir).Apply(ctx, tt.spec("target.tsx"), tt.opts)

			assert.Equal(t, tt.want, readTarget(t, path), "file content")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				assert.Equal(t, []string{"target.tsx"}, dirEntries(t, dir), "no other files should be created")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantCount, result.Count)
			assert.Equal(t, tt.wantWrite, result.Written)

			if tt.wantBackup {
				assert.Equal(t, path+storage.BackupSuffix, result.BackupPath)
				assert.Equal(t, tt.content, readTarget(t, result.BackupPath))
			} else {
				assert.Empty(t, result.BackupPath)
				assert.Equal(t, []string{"target.tsx"}, dirEntries(t, dir), "no other files should be created")
			}
		})
	}
}

func TestApply_FileNotFound(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	_, err := newApplier(t, dir).Apply(ctx, Spec{
		Path:         "missing.tsx",
		Replacements: []text.Rule{{Search: "a", Replace: "b"}},
	}, WriteOptions{Atomic: true, Backup: true})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Empty(t, dirEntries(t, dir), "no filesystem changes")
}

func TestApply_InvalidSpec(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	path := writeTarget(t, dir, "hello")
	a := newApplier(t, dir)

	_, err := a.Apply(ctx, Spec{Replacements: []text.Rule{{Search: "a"}}}, WriteOptions{})
	assert.ErrorContains(t, err, "path is required")

	_, err = a.Apply(ctx, Spec{Path: "target.tsx"}, WriteOptions{})
	assert.ErrorContains(t, err, "at least one replacement is required")

	_, err = a.Apply(ctx, Spec{Path: "target.tsx", Replacements: []text.Rule{{Replace: "x"}}}, WriteOptions{})
	assert.ErrorContains(t, err, "rule 0: search is required")

	assert.Equal(t, "hello", readTarget(t, path))
}

func TestApply_Idempotence(t *testing.T) {
	tests := []struct {
		name       string
		optional   bool
		wantSecond error
	}{
		{name: "required_fails_second_time", wantSecond: ErrPreconditionFailed},
		{name: "optional_is_noop_second_time", optional: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			dir := t.TempDir()
			path := writeTarget(t, dir, `return (\n  <div/>\n);`)
			a := newApplier(t, dir)

			spec := Spec{Path: "target.tsx", Replacements: []text.Rule{
				{Search: `\n`, Replace: "\n", Optional: tt.optional},
			}}

			first, err := a.Apply(ctx, spec, WriteOptions{})
			require.NoError(t, err)
			assert.Equal(t, 2, first.Count)
			assert.True(t, first.Written)
			patched := readTarget(t, path)
			assert.Equal(t, "return (\n  <div/>\n);", patched)

			second, err := a.Apply(ctx, spec, WriteOptions{})
			if tt.wantSecond != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantSecond)

				var perr *text.PreconditionError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, 0, perr.Index)
			} else {
				require.NoError(t, err)
				assert.False(t, second.Written)
				assert.False(t, second.Modified)
				assert.Equal(t, 0, second.Count)
			}
			assert.Equal(t, patched, readTarget(t, path), "second run must not change the file")
		})
	}
}

func TestApply_MatchesInMemorySubstitution(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	content := "import a;\\nimport b;\\n\\nexport default X;\\n"
	path := writeTarget(t, dir, content)

	rules := []text.Rule{
		{Search: "import a;\\n", Replace: "import a;\n"},
		{Search: "import b;\\n\\n", Replace: "import b;\n\n"},
		{Search: "X;\\n", Replace: "X;\n"},
	}

	want := content
	for _, r := range rules {
		want = strings.Replace(want, r.Search, r.Replace, 1)
	}

	result, err := newApplier(t, dir).Apply(ctx, Spec{Path: "target.tsx", Replacements: rules}, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, readTarget(t, path))
	assert.Equal(t, want, result.After)
	assert.Equal(t, content, result.Before)
	assert.Equal(t, storage.Checksum([]byte(want)), result.AfterChecksum)
	assert.Equal(t, storage.Checksum([]byte(content)), result.BeforeChecksum)
}

// failingFiles wraps a FileManager and fails every in-place write
type failingFiles struct {
	storage.FileManager
	restored bool
}

func (f *failingFiles) WriteFile(ctx context.Context, path string, content []byte) error {
	return errors.New("disk full")
}

func (f *failingFiles) RestoreFile(ctx context.Context, path string) error {
	f.restored = true
	return f.FileManager.RestoreFile(ctx, path)
}

func TestApply_RestoresBackupOnFailedWrite(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	path := writeTarget(t, dir, "hello")

	files := &failingFiles{FileManager: storage.New(dir)}
	a, err := New(Options{Files: files, Replacer: text.NewLiteralReplacer()})
	require.NoError(t, err)

	_, err = a.Apply(ctx, Spec{
		Path:         "target.tsx",
		Replacements: []text.Rule{{Search: "hello", Replace: "bye"}},
	}, WriteOptions{Backup: true})

	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, files.restored, "backup should be restored")
	assert.Equal(t, "hello", readTarget(t, path))
}

func TestApplyDefault(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	path := writeTarget(t, dir, "a\\nb")

	result, err := Apply(ctx, Spec{
		Path:         path,
		Replacements: []text.Rule{{Search: "a\\nb", Replace: "a\nb"}},
	}, WriteOptions{Atomic: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "utf-8", result.Encoding)
	assert.Equal(t, "a\nb", readTarget(t, path))
}
