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
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var _ TextReplacer = (*LiteralReplacer)(nil)

// LiteralReplacer implements TextReplacer using exact substring replacement
type LiteralReplacer struct{}

// NewLiteralReplacer creates a new LiteralReplacer
func NewLiteralReplacer() *LiteralReplacer {
	return &LiteralReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *LiteralReplacer) ReplaceText(ctx context.Context, content string, rules []Rule) (*ReplacementResult, error) {
	if err := r.ValidateRules(rules); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)

	result := &ReplacementResult{
		OriginalContent: content,
		Rules:           make([]RuleResult, 0, len(rules)),
	}

	current := content
	for i, rule := range rules {
		found := strings.Count(current, rule.Search)

		if found == 0 {
			if rule.Required() {
				return nil, errors.WithStack(&PreconditionError{Index: i, Search: rule.Search})
			}
			logger.Debug().Int("index", i).Str("search", rule.Search).Msg("optional replacement not found, skipping")
			result.Rules = append(result.Rules, RuleResult{Index: i, Search: rule.Search, Skipped: true})
			continue
		}

		n := found
		if rule.Mode == ModeFirst {
			n = 1
		}
		current = strings.Replace(current, rule.Search, rule.Replace, n)

		logger.Debug().Int("index", i).Int("count", n).Msg("applied replacement")
		result.Rules = append(result.Rules, RuleResult{Index: i, Search: rule.Search, Count: n})
		result.ReplacementCount += n
	}

	result.ModifiedContent = current
	result.WasModified = current != content
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *LiteralReplacer) ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.Search == "" {
			return errors.Errorf("rule %d: search is required", i)
		}
		if _, err := ParseMode(string(rule.Mode)); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}
