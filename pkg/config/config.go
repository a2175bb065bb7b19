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

package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📚 PatchrcConfig is one patch spec as written in a config file
type PatchrcConfig struct {
	// 📄 Target file, relative to the config file's directory
	File     string `json:"file,omitempty" yaml:"file,omitempty" hcl:"file,optional"`
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty" hcl:"encoding,optional"`

	// 🔧 Write options
	Atomic bool `json:"atomic,omitempty" yaml:"atomic,omitempty" hcl:"atomic,optional"`
	Backup bool `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`

	// 🔄 Ordered replacements
	Replacements []Replacement `json:"replacements" yaml:"replacements" hcl:"replacement,block"`

	location string
}

// 🔄 Replacement is a single literal replacement entry
type Replacement struct {
	Search   string `json:"search" yaml:"search" hcl:"search"`
	Replace  string `json:"replace" yaml:"replace" hcl:"replace"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty" hcl:"optional,optional"`
	Mode     string `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`
}

// Location returns the path the config was loaded from
func (cfg *PatchrcConfig) Location() string {
	return cfg.location
}

// Validate checks the config for problems that would make every run fail
func Validate(ctx context.Context, cfg *PatchrcConfig) error {
	zerolog.Ctx(ctx).Debug().Str("location", cfg.location).Int("replacements", len(cfg.Replacements)).Msg("validating config")

	if len(cfg.Replacements) == 0 {
		return errors.Errorf("at least one replacement is required")
	}
	for i, r := range cfg.Replacements {
		if r.Search == "" {
			return errors.Errorf("replacement %d: search is required", i)
		}
		if _, err := text.ParseMode(r.Mode); err != nil {
			return errors.Errorf("replacement %d: %w", i, err)
		}
	}
	return nil
}

// Hash returns a stable hash of the config contents
func (cfg *PatchrcConfig) Hash() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// TargetPath resolves the target file. A non-empty override (from the
// command line) is used as given; the config's own file is resolved
// against the config's directory.
func (cfg *PatchrcConfig) TargetPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if cfg.File == "" {
		return "", errors.Errorf("no target file: set file in %s or pass one on the command line", cfg.location)
	}
	if filepath.IsAbs(cfg.File) || cfg.location == "" {
		return cfg.File, nil
	}
	return filepath.Join(filepath.Dir(cfg.location), cfg.File), nil
}

// Spec converts the config into a patch.Spec for the given target override
func (cfg *PatchrcConfig) Spec(override string) (patch.Spec, error) {
	path, err := cfg.TargetPath(override)
	if err != nil {
		return patch.Spec{}, err
	}

	rules := make([]text.Rule, 0, len(cfg.Replacements))
	for i, r := range cfg.Replacements {
		mode, err := text.ParseMode(r.Mode)
		if err != nil {
			return patch.Spec{}, errors.Errorf("replacement %d: %w", i, err)
		}
		rules = append(rules, text.Rule{
			Search:   r.Search,
			Replace:  r.Replace,
			Optional: r.Optional,
			Mode:     mode,
		})
	}

	return patch.Spec{
		Path:         path,
		Encoding:     cfg.Encoding,
		Replacements: rules,
	}, nil
}

// WriteOptions returns the write options the config asks for
func (cfg *PatchrcConfig) WriteOptions() patch.WriteOptions {
	return patch.WriteOptions{
		Atomic: cfg.Atomic,
		Backup: cfg.Backup,
	}
}
