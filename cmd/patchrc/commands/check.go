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

// NewCheckCmd creates a new check command
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	var f patchFlags

	cmd := &cobra.Command{
		Use:   "check [FILE]",
		Short: "Verify a file is in the state the patch expects",
		Long: `Check runs the patch without writing anything.
It will:
1. Verify every required search text is present
2. Print the diff that apply would produce
3. Exit non-zero if apply would fail`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.dryRun = true
			f.diff = true

			logger := log.FromContext(cmd.Context())
			logger.Header("checking patch")

			result, err := runPatch(cmd, opts, args, f)
			if err != nil {
				return err
			}

			if result.Modified {
				logger.Successf("%s would be applied to %s", plural(result.Count, "replacement"), result.Path)
			} else {
				logger.Infof("%s is already up to date", result.Path)
			}
			return nil
		},
	}

	addPatchFlags(cmd, &f)

	return cmd
}
