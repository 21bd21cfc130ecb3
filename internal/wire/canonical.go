// Package wire produces the deterministic JSON encoding used for every
// record handed to the native transport.
//
// The engine deduplicates assertion definitions by comparing records across
// runs, so two runs of the same program must produce byte-identical
// definition records. Standard json.Marshal is close but not sufficient:
// it HTML-escapes strings and leaves Unicode composition alone. This encoder
// sorts object keys, NFC-normalizes strings, and never escapes HTML.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Marshal encodes v deterministically.
//
// Supported values: nil, bool, string, signed/unsigned integers, float64,
// []any, map[string]any. Unrecognized types fall back to encoding/json and
// then re-enter this encoder, so struct payloads are supported indirectly.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NormalizeNFC returns s in Unicode NFC form.
//
// Site identities are derived from assertion messages; normalizing here
// keeps visually identical messages on one site even when callers produce
// different compositions of the same text.
func NormalizeNFC(s string) string {
	return norm.NFC.String(s)
}

func encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		return encodeString(buf, val)
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(val, 10))
	case float64:
		// Shortest round-trip representation, same as encoding/json.
		buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case []any:
		return encodeArray(buf, val)
	case map[string]any:
		return encodeObject(buf, val)
	default:
		return encodeFallback(buf, v)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)
	enc, err := jsonStringNoEscape(normalized)
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}

func encodeArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func encodeObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, k); err != nil {
			return fmt.Errorf("object key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := encode(buf, obj[k]); err != nil {
			return fmt.Errorf("object[%q]: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// encodeFallback round-trips unknown types through encoding/json so that
// structs and numeric aliases in caller-supplied details still encode,
// then re-enters the deterministic encoder on the generic form.
func encodeFallback(buf *bytes.Buffer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("unsupported detail value %T: %w", v, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("re-decoding %T: %w", v, err)
	}
	// A fallback that decodes back into a recognized primitive or container
	// terminates; json.Unmarshal only yields those forms.
	return encode(buf, generic)
}

// jsonStringNoEscape encodes one string without HTML escaping.
func jsonStringNoEscape(s string) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encoder appends a newline.
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}
