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

	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// exit codes
const (
	exitOK           = 0
	exitError        = 1
	exitFileNotFound = 2
	exitPrecondition = 3
	exitEncoding     = 4
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd, o := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		userLogger := o.UserLogger
		if userLogger == nil {
			userLogger = log.NewUserLogger(ctx, stderr)
		}
		userLogger.LogValidation(false, "patchrc failed", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the exit code for its kind
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, patch.ErrFileNotFound):
		return exitFileNotFound
	case errors.Is(err, patch.ErrPreconditionFailed):
		return exitPrecondition
	case errors.Is(err, patch.ErrEncoding):
		return exitEncoding
	default:
		return exitError
	}
}
