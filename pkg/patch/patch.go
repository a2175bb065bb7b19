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

// Package patch applies ordered literal replacements to a single text file.
//
// The pipeline is load, transform, store. Nothing is written unless every
// required replacement was found and the result encodes cleanly, so a file in
// an unexpected state (already patched, or patched differently) is left
// untouched.
package patch

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/storage"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrFileNotFound       = storage.ErrFileNotFound
	ErrPreconditionFailed = text.ErrPreconditionFailed
	ErrEncoding           = text.ErrEncoding
)

// 📄 Spec describes one patch: a target file and the replacements to apply
type Spec struct {
	Path         string
	Encoding     string // empty means utf-8
	Replacements []text.Rule
}

// Validate checks the spec before any file is touched
func (s Spec) Validate() error {
	if s.Path == "" {
		return errors.Errorf("path is required")
	}
	if len(s.Replacements) == 0 {
		return errors.Errorf("at least one replacement is required")
	}
	return nil
}

// 🔧 WriteOptions controls how the patched content is stored
type WriteOptions struct {
	// Atomic writes a sibling temp file and renames it over the target
	Atomic bool
	// Backup copies the original to <path>.bak before writing
	Backup bool
	// DryRun computes the result without writing
	DryRun bool
}

// 📊 Result describes a completed patch
type Result struct {
	Path     string
	Encoding string

	// Count is the number of replacements actually performed
	Count int
	Rules []text.RuleResult

	Modified bool
	Written  bool

	BeforeChecksum string
	AfterChecksum  string
	BackupPath     string

	Before string
	After  string
}

// 🎯 Applier applies patch specs
type Applier interface {
	Apply(ctx context.Context, spec Spec, opts WriteOptions) (*Result, error)
}

// 🔧 Options contains the dependencies of an Applier
type Options struct {
	Files    storage.FileManager
	Replacer text.TextReplacer
}

// 🏭 New creates a new applier with the given options
func New(opts Options) (Applier, error) {
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if opts.Replacer == nil {
		return nil, errors.Errorf("replacer is required")
	}
	return &applier{
		files:    opts.Files,
		replacer: opts.Replacer,
	}, nil
}

// Apply patches spec.Path on the local disk with the default replacer
func Apply(ctx context.Context, spec Spec, opts WriteOptions) (*Result, error) {
	a, err := New(Options{
		Files:    storage.New("."),
		Replacer: text.NewLiteralReplacer(),
	})
	if err != nil {
		return nil, err
	}
	return a.Apply(ctx, spec, opts)
}

type applier struct {
	files    storage.FileManager
	replacer text.TextReplacer
}

func (a *applier) Apply(ctx context.Context, spec Spec, opts WriteOptions) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("path", spec.Path).Logger()

	if err := spec.Validate(); err != nil {
		return nil, errors.Errorf("invalid spec: %w", err)
	}
	if err := a.replacer.ValidateRules(spec.Replacements); err != nil {
		return nil, errors.Errorf("invalid spec: %w", err)
	}

	codec, err := text.LookupEncoding(spec.Encoding)
	if err != nil {
		return nil, err
	}

	raw, err := a.files.ReadFile(ctx, spec.Path)
	if err != nil {
		return nil, err
	}

	content, err := codec.Decode(raw)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", spec.Path, err)
	}

	replaced, err := a.replacer.ReplaceText(ctx, content, spec.Replacements)
	if err != nil {
		return nil, errors.Errorf("patching %s: %w", spec.Path, err)
	}

	result := &Result{
		Path:           spec.Path,
		Encoding:       codec.Name(),
		Count:          replaced.ReplacementCount,
		Rules:          replaced.Rules,
		Modified:       replaced.WasModified,
		BeforeChecksum: storage.Checksum(raw),
		AfterChecksum:  storage.Checksum(raw),
		Before:         replaced.OriginalContent,
		After:          replaced.ModifiedContent,
	}

	if !replaced.WasModified {
		logger.Debug().Int("count", result.Count).Msg("content unchanged, nothing to write")
		return result, nil
	}

	out, err := codec.Encode(replaced.ModifiedContent)
	if err != nil {
		return nil, errors.Errorf("storing %s: %w", spec.Path, err)
	}
	result.AfterChecksum = storage.Checksum(out)

	if opts.DryRun {
		logger.Debug().Int("count", result.Count).Msg("dry run, not writing")
		return result, nil
	}

	if opts.Backup {
		backupPath, err := a.files.BackupFile(ctx, spec.Path)
		if err != nil {
			return nil, err
		}
		result.BackupPath = backupPath
	}

	if err := a.store(ctx, spec.Path, out, opts); err != nil {
		return nil, err
	}
	result.Written = true

	logger.Info().
		Int("count", result.Count).
		Str("encoding", result.Encoding).
		Bool("atomic", opts.Atomic).
		Str("checksum", result.AfterChecksum).
		Msg("patched file")

	return result, nil
}

func (a *applier) store(ctx context.Context, path string, content []byte, opts WriteOptions) error {
	if opts.Atomic {
		if err := a.files.WriteFileAtomic(ctx, path, content); err != nil {
			return errors.Errorf("writing %s: %w", path, err)
		}
		return nil
	}

	err := a.files.WriteFile(ctx, path, content)
	if err == nil {
		return nil
	}

	// a failed in-place write may have truncated the target
	if opts.Backup {
		if rerr := a.files.RestoreFile(ctx, path); rerr != nil {
			zerolog.Ctx(ctx).Error().Err(rerr).Str("path", path).Msg("restoring backup after failed write")
		}
	}
	return errors.Errorf("writing %s: %w", path, err)
}
