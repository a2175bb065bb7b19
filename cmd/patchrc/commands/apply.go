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
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	var f patchFlags

	cmd := &cobra.Command{
		Use:   "apply [FILE]",
		Short: "Apply the configured replacements to a file",
		Long: `Apply reads the target file, applies every replacement in order and
writes the result back.
It will:
1. Load the patch spec from the config file
2. Fail without writing if a required search text is missing
3. Replace each search text (first or all occurrences)
4. Write the file in place, or atomically with --atomic

FILE overrides the file named in the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.FromContext(cmd.Context())
			logger.Header("applying patch")

			result, err := runPatch(cmd, opts, args, f)
			if err != nil {
				return err
			}

			switch {
			case result.Written:
				logger.Successf("applied %s to %s", plural(result.Count, "replacement"), result.Path)
				if result.BackupPath != "" {
					opts.UserLogger.LogStateChange("original saved to " + result.BackupPath)
				}
			case f.dryRun && result.Modified:
				logger.Infof("dry run: would apply %s to %s", plural(result.Count, "replacement"), result.Path)
			default:
				logger.Infof("applied %s to %s (already up to date)", plural(result.Count, "replacement"), result.Path)
			}

			return nil
		},
	}

	addPatchFlags(cmd, &f)
	cmd.Flags().BoolVar(&f.atomic, "atomic", false, "write to a temp file and rename it over the target")
	cmd.Flags().BoolVar(&f.backup, "backup", false, "copy the original to FILE.bak before writing")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "show what would change without writing")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "print a diff of the change")

	return cmd
}
