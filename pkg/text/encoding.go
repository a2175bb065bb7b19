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
	"bytes"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is used when no encoding name is given
const DefaultEncoding = "utf-8"

// 🔤 Codec converts file bytes to text and back for one encoding
type Codec struct {
	name string
	enc  encoding.Encoding // nil means native UTF-8
}

// LookupEncoding resolves an encoding by WHATWG label or IANA name.
// Unknown names fail with ErrEncoding.
func LookupEncoding(name string) (*Codec, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" || label == "utf-8" || label == "utf8" {
		return &Codec{name: DefaultEncoding}, nil
	}

	if enc, err := htmlindex.Get(label); err == nil {
		canonical, err := htmlindex.Name(enc)
		if err != nil {
			canonical = label
		}
		if canonical == DefaultEncoding {
			return &Codec{name: DefaultEncoding}, nil
		}
		return &Codec{name: canonical, enc: enc}, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, errors.Errorf("%w: unsupported encoding %q", ErrEncoding, name)
	}
	return &Codec{name: label, enc: enc}, nil
}

// Name returns the canonical encoding name
func (c *Codec) Name() string {
	return c.name
}

// Decode converts raw file bytes into text. x/text decoders substitute
// U+FFFD for malformed input, so the result must encode back to exactly
// data or the content is rejected with ErrEncoding.
func (c *Codec) Decode(data []byte) (string, error) {
	if c.enc == nil {
		if !utf8.Valid(data) {
			return "", errors.Errorf("%w: content is not valid %s", ErrEncoding, c.name)
		}
		return string(data), nil
	}

	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.Errorf("%w: decoding %s: %v", ErrEncoding, c.name, err)
	}

	back, err := c.enc.NewEncoder().Bytes(out)
	if err != nil || !bytes.Equal(back, data) {
		return "", errors.Errorf("%w: content is not valid %s", ErrEncoding, c.name)
	}
	return string(out), nil
}

// Encode converts text back into bytes. Characters the encoding cannot
// represent fail with ErrEncoding.
func (c *Codec) Encode(s string) ([]byte, error) {
	if c.enc == nil {
		if !utf8.ValidString(s) {
			return nil, errors.Errorf("%w: text is not valid %s", ErrEncoding, c.name)
		}
		return []byte(s), nil
	}

	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Errorf("%w: encoding %s: %v", ErrEncoding, c.name, err)
	}
	return out, nil
}
