// Package digest provides the hashing support for the blockchain. Values are
// hashed over a canonical JSON encoding so independently built nodes produce
// the same digest for the same block.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns a unique string for the value. The value is encoded into its
// canonical form before hashing.
func Hash(value any) string {
	data, err := Canonical(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return common.Bytes2Hex(hash[:])
}

// Sum returns the hex encoded SHA-256 of the raw string.
func Sum(s string) string {
	hash := sha256.Sum256([]byte(s))
	return common.Bytes2Hex(hash[:])
}

// =============================================================================

// Canonical encodes the value as JSON with object keys sorted, items
// separated by ", ", keys separated by ": " and all non-ASCII characters
// escaped. This matches the output of Python's json.dumps with sort_keys
// set, which is what reference nodes hash.
func Canonical(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()

	var v any
	if err := d.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// encode writes the generic JSON value into the buffer in canonical form.
func encode(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case nil:
		buf.WriteString("null")

	case bool:
		if v {
			buf.WriteString("true")
			return nil
		}
		buf.WriteString("false")

	case json.Number:
		buf.WriteString(v.String())

	case string:
		encodeString(buf, v)

	case []any:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := encode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteString(", ")
			}
			encodeString(buf, key)
			buf.WriteString(": ")
			if err := encode(buf, v[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	default:
		return fmt.Errorf("unsupported json type %T", v)
	}

	return nil
}

// encodeString writes a quoted string using ASCII only output.
func encodeString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"

	buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r < 0x20 || (r > 0x7e && r < 0x10000):
			buf.WriteString(`\u`)
			buf.WriteByte(hex[r>>12&0xf])
			buf.WriteByte(hex[r>>8&0xf])
			buf.WriteByte(hex[r>>4&0xf])
			buf.WriteByte(hex[r&0xf])
		case r >= 0x10000:
			r1, r2 := utf16.EncodeRune(r)
			for _, p := range []rune{r1, r2} {
				buf.WriteString(`\u`)
				buf.WriteByte(hex[p>>12&0xf])
				buf.WriteByte(hex[p>>8&0xf])
				buf.WriteByte(hex[p>>4&0xf])
				buf.WriteByte(hex[p&0xf])
			}
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
