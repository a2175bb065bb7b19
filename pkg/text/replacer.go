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
	"context"

	"gitlab.com/tozd/go/errors"
)

// 🎚️ Mode controls how many occurrences of a search text are replaced
type Mode string

const (
	// ModeAll replaces every occurrence (the default)
	ModeAll Mode = "all"
	// ModeFirst replaces only the first occurrence
	ModeFirst Mode = "first"
)

// ParseMode converts a config value into a Mode. The empty string means ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeFirst:
		return ModeFirst, nil
	default:
		return "", errors.Errorf("unknown mode %q (want %q or %q)", s, ModeAll, ModeFirst)
	}
}

// 🔄 Rule defines a single literal replacement
type Rule struct {
	// Search is the exact text to look for
	Search string

	// Replace is the text written in place of Search
	Replace string

	// Optional rules are skipped when Search is absent. Required rules
	// (the default) fail with ErrPreconditionFailed instead.
	Optional bool

	// Mode selects first-only or all-occurrence replacement
	Mode Mode
}

// Required reports whether the rule acts as a precondition
func (r Rule) Required() bool {
	return !r.Optional
}

// 📋 RuleResult records what a single rule did
type RuleResult struct {
	Index   int
	Search  string
	Count   int
	Skipped bool
}

// 📦 ReplacementResult contains the results of a replacement run
type ReplacementResult struct {
	// WasModified indicates if the content changed
	WasModified bool

	// ReplacementCount is the number of occurrences replaced across all rules
	ReplacementCount int

	// Rules holds one entry per input rule, in order
	Rules []RuleResult

	OriginalContent string
	ModifiedContent string
}

// TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText applies rules to content in order, each against the
	// output of the previous one
	ReplaceText(ctx context.Context, content string, rules []Rule) (*ReplacementResult, error)

	// ValidateRules checks that all rules are valid
	ValidateRules(rules []Rule) error
}
