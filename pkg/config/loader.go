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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// decodeFunc turns raw config bytes into a PatchrcConfig. filename is only
// used for HCL diagnostics.
type decodeFunc func(data []byte, filename string) (*PatchrcConfig, error)

// decoders by lower-cased file extension
var decoders = map[string]decodeFunc{
	".json":    decodeJSON,
	".yaml":    decodeYAML,
	".yml":     decodeYAML,
	".hcl":     decodeHCL,
	".patchrc": decodeYAMLOrHCL,
}

// 📦 LoadConfig reads the patch spec at path, decodes it with the parser
// registered for its extension and validates it. A bare ".patchrc" file is
// accepted as either YAML or HCL.
func LoadConfig(ctx context.Context, path string) (*PatchrcConfig, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading config")

	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := decode(data, path)
	if err != nil {
		return nil, err
	}
	cfg.location = path

	if err := Validate(ctx, cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func decoderFor(path string) (decodeFunc, error) {
	if filepath.Base(path) == ".patchrc" {
		return decodeYAMLOrHCL, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, errors.Errorf("unsupported file extension %q", ext)
	}
	return decode, nil
}

func decodeYAMLOrHCL(data []byte, filename string) (*PatchrcConfig, error) {
	cfg, yerr := decodeYAML(data, filename)
	if yerr == nil {
		return cfg, nil
	}
	cfg, herr := decodeHCL(data, filename)
	if herr != nil {
		return nil, errors.Errorf("failed to parse %s as YAML (%v) or HCL: %w", filename, yerr, herr)
	}
	return cfg, nil
}

// unknown keys are rejected so a misspelled "optinal" is not silently ignored
func decodeJSON(data []byte, _ string) (*PatchrcConfig, error) {
	var cfg PatchrcConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

func decodeYAML(data []byte, _ string) (*PatchrcConfig, error) {
	var cfg PatchrcConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// HCL specs are plain literals, the eval context carries no variables
func decodeHCL(data []byte, filename string) (*PatchrcConfig, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var cfg PatchrcConfig
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &cfg); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &cfg, nil
}
