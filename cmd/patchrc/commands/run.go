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

package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/diff"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/storage"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// patchFlags are the flags shared by apply and check
type patchFlags struct {
	encoding string
	atomic   bool
	backup   bool
	dryRun   bool
	diff     bool
}

func addPatchFlags(cmd *cobra.Command, f *patchFlags) {
	cmd.Flags().StringVarP(&f.encoding, "encoding", "e", text.DefaultEncoding, "text encoding of the target file")
}

// runPatch loads the config, applies it and reports each replacement
func runPatch(cmd *cobra.Command, o *opts.RootOpts, args []string, f patchFlags) (*patch.Result, error) {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	cfg, err := config.LoadConfig(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	var override string
	if len(args) > 0 {
		override = args[0]
	}

	spec, err := cfg.Spec(override)
	if err != nil {
		return nil, errors.Errorf("building patch spec: %w", err)
	}
	if cmd.Flags().Changed("encoding") {
		spec.Encoding = f.encoding
	}

	wo := cfg.WriteOptions()
	wo.Atomic = wo.Atomic || f.atomic
	wo.Backup = wo.Backup || f.backup
	wo.DryRun = f.dryRun

	zerolog.Ctx(ctx).Debug().
		Str("config", cfg.Location()).
		Str("config_hash", cfg.Hash()).
		Str("path", spec.Path).
		Interface("write_options", wo).
		Msg("running patch")

	applier, err := patch.New(patch.Options{
		Files:    storage.New("."),
		Replacer: text.NewLiteralReplacer(),
	})
	if err != nil {
		return nil, errors.Errorf("creating applier: %w", err)
	}

	encoding := spec.Encoding
	if encoding == "" {
		encoding = text.DefaultEncoding
	}
	logger.StartFileOperation(ctx, spec.Path, encoding)

	result, err := applier.Apply(ctx, spec, wo)
	if err != nil {
		var perr *text.PreconditionError
		if errors.As(err, &perr) {
			logger.LogReplacement(ctx, log.ReplacementOperation{
				Index:   perr.Index,
				Search:  perr.Search,
				Mode:    string(spec.Replacements[perr.Index].Mode),
				Missing: true,
			})
		}
		return nil, err
	}

	skipped := 0
	for _, r := range result.Rules {
		rule := spec.Replacements[r.Index]
		if r.Skipped {
			skipped++
		}
		logger.LogReplacement(ctx, log.ReplacementOperation{
			Index:    r.Index,
			Search:   r.Search,
			Mode:     string(rule.Mode),
			Count:    r.Count,
			Optional: rule.Optional,
			Skipped:  r.Skipped,
		})
	}

	if skipped > 0 {
		logger.Warningf("%s not found, skipped", plural(skipped, "optional replacement"))
	}

	if f.diff && result.Modified {
		logger.LogNewline()
		if err := diff.Unified(cmd.OutOrStdout(), spec.Path, result.Before, result.After, diff.DefaultContext); err != nil {
			return nil, errors.Errorf("writing diff: %w", err)
		}
	}

	logger.EndFileOperation(ctx, log.FileOperation{
		Path:         result.Path,
		Encoding:     result.Encoding,
		Replacements: result.Count,
		IsModified:   result.Modified,
		IsWritten:    result.Written,
		IsDryRun:     wo.DryRun,
		IsAtomic:     wo.Atomic,
		BackupPath:   result.BackupPath,
	})

	return result, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
