// Package jsonutil encodes documents with lexicographically sorted object
// keys so that reports and history files diff cleanly between runs.
package jsonutil

import (
	"bytes"
	"encoding/json"
)

// Sorted re-encodes v with every object's keys in sorted order. Struct field
// order is lost on purpose: v is marshaled, decoded into generic maps (numbers
// kept verbatim) and encoded again. When indent is non-empty the output is
// pretty-printed. HTML characters are not escaped.
func Sorted(v any, indent string) ([]byte, error) {
	return encode(v, indent, false)
}

// SortedCompact is Sorted without indentation.
func SortedCompact(v any) ([]byte, error) {
	return encode(v, "", false)
}

// ForScript returns the compact sorted encoding with <, > and & escaped, safe
// to inline inside an HTML <script> element.
func ForScript(v any) ([]byte, error) {
	return encode(v, "", true)
}

func encode(v any, indent string, escapeHTML bool) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(escapeHTML)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	// Encode appends a newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
