package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one named entry of a document schema with its type/format hint,
// e.g. {"date_of_birth", "Date, format: DD-MM-YYYY"}.
type Field struct {
	Name string `json:"name"`
	Hint string `json:"hint"`
}

// FieldSchema is an ordered set of fields. Order is significant: it fixes the
// positional contract of the extraction array (document-type label at index 0,
// one value per field after that).
type FieldSchema []Field

// Names returns the field names in declaration order.
func (s FieldSchema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Get returns the field at the given position.
func (s FieldSchema) Get(i int) Field {
	return s[i]
}

// MarshalJSON encodes the schema as a JSON object whose keys appear in
// declaration order. The extraction service receives this object and mirrors
// its key order in the returned array.
func (s FieldSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Hint)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Validate rejects schemas with empty or duplicate field names.
func (s FieldSchema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no fields")
	}
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.Name == "" {
			return fmt.Errorf("schema field with empty name")
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("duplicate schema field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// DocumentTypeLabels is the closed set of labels the extraction service may
// place at index 0 of the result array.
var DocumentTypeLabels = []string{
	"marksheet",
	"community",
	"birth_cert",
	"bonafide",
	"gate_score_card",
	"degree_cert",
	"person_with_disability",
	"aadhaar",
	"community_cert",
	"other",
}

// KnownDocumentLabel reports whether the label belongs to the closed set.
func KnownDocumentLabel(label string) bool {
	for _, l := range DocumentTypeLabels {
		if l == label {
			return true
		}
	}
	return false
}
