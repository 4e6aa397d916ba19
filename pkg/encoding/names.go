// Package encoding converts object names read from model files to UTF-8.
//
// OBJ and ASCII STL files carry no charset information, and exporters on
// non-English systems often write names in a legacy code page such as
// EUC-KR or Shift_JIS. Geometry files are JSON, so names must be valid
// UTF-8 before export.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by Lookup for unsupported charset names.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// NameDecoder turns raw names into UTF-8. The zero value and a nil
// decoder only repair invalid UTF-8.
type NameDecoder struct {
	charset string
	enc     encoding.Encoding
}

// Lookup returns a decoder for a WHATWG charset label such as "euc-kr",
// "shift_jis" or "windows-1252". An empty label returns nil.
func Lookup(label string) (*NameDecoder, error) {
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	name, _ := htmlindex.Name(enc)
	return &NameDecoder{charset: name, enc: enc}, nil
}

// Charset returns the canonical charset name, or "" for a nil decoder.
func (d *NameDecoder) Charset() string {
	if d == nil {
		return ""
	}
	return d.charset
}

// Decode returns s as UTF-8. Strings that are already valid UTF-8 are
// returned unchanged; anything else is decoded from the configured
// charset, and bytes that still cannot be decoded become U+FFFD.
func (d *NameDecoder) Decode(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	if d != nil && d.enc != nil {
		if out, _, err := transform.String(d.enc.NewDecoder(), s); err == nil && utf8.ValidString(out) {
			return out
		}
	}
	return strings.ToValidUTF8(s, "�")
}

// Encode converts a UTF-8 string into the decoder's charset. It is the
// inverse of Decode and is mostly useful for producing test fixtures.
func (d *NameDecoder) Encode(s string) ([]byte, error) {
	if d == nil || d.enc == nil {
		return []byte(s), nil
	}
	out, _, err := transform.String(d.enc.NewEncoder(), s)
	if err != nil {
		return nil, fmt.Errorf("encoding %q as %s: %w", s, d.charset, err)
	}
	return []byte(out), nil
}
