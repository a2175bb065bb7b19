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

package main

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree writing to stdout and stderr
func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *opts.RootOpts) {
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Apply verified literal replacements to a text file",
		Long: `patchrc applies an ordered list of literal find-and-replace entries to one
text file. The replacements live in a config file (YAML, JSON or HCL) so the
same fix can be checked, applied and re-run safely.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			noColor, err := resolveColor(o.Color, stdout)
			if err != nil {
				return err
			}
			color.NoColor = noColor
			if noColor {
				pterm.DisableColor()
			} else {
				pterm.EnableColor()
			}

			ctx := setupLogging(cmd.Context(), o.Debug, noColor, stderr)
			logger := log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx))
			o.UserLogger = log.NewUserLogger(ctx, cmd.ErrOrStderr())
			cmd.SetContext(log.NewContext(ctx, logger))
			return nil
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewApplyCmd(o),
		commands.NewCheckCmd(o),
		newVersionCmd(),
	)

	return rootCmd, o
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", ".patchrc.yaml", "patch spec file (.yaml, .yml, .json, .hcl)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&o.Color, "color", "auto", "color output: auto, always or never")
}

// resolveColor reports whether color should be disabled
func resolveColor(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return false, nil
	case "never":
		return true, nil
	case "auto", "":
		f, ok := out.(*os.File)
		if !ok {
			return true, nil
		}
		return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, errors.Errorf("invalid --color %q (want auto, always or never)", mode)
	}
}

// setupLogging configures zerolog based on flags and puts it in ctx
func setupLogging(ctx context.Context, debug, noColor bool, out io.Writer) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: noColor}).
		Level(level).
		With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
