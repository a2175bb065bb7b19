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

package opts

import (
	"github.com/walteh/patchrc/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// flags
	ConfigFile string
	Debug      bool
	Color      string

	// set up before any command runs, the console logger travels in the
	// command context (log.FromContext)
	UserLogger *log.UserLogger
}
