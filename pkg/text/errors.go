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

package text

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrPreconditionFailed means a required search text was not present
	ErrPreconditionFailed = errors.Base("precondition failed")

	// ErrEncoding means content could not be decoded or encoded
	ErrEncoding = errors.Base("encoding error")
)

// 🚫 PreconditionError identifies the rule whose search text was missing
type PreconditionError struct {
	Index  int
	Search string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: replacement %d: search text %q not found", ErrPreconditionFailed, e.Index, e.Search)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}
