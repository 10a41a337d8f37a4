package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one stored worker: its identifier and field map.
type Record struct {
	ID     string
	Fields FieldMap
}

// Snapshot is the complete persisted state: records per category, each slice
// in insertion order. It is what every Storage reads and writes.
type Snapshot map[string][]Record

// NewSnapshot returns a snapshot with every category present and empty.
func NewSnapshot() Snapshot {
	s := make(Snapshot, len(Categories))
	for _, c := range Categories {
		s[c] = []Record{}
	}
	return s
}

// Len returns the number of records across all categories.
func (s Snapshot) Len() int {
	n := 0
	for _, recs := range s {
		n += len(recs)
	}
	return n
}

// MarshalJSON writes an object with exactly one member per category, in
// Categories order; each member maps identifier to field map in record order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(c)
		buf.Write(key)
		buf.WriteString(":{")
		for j, rec := range s[c] {
			if j > 0 {
				buf.WriteByte(',')
			}
			id, err := json.Marshal(rec.ID)
			if err != nil {
				return nil, err
			}
			buf.Write(id)
			buf.WriteByte(':')
			fields, err := rec.Fields.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", c, rec.ID, err)
			}
			buf.Write(fields)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the document written by MarshalJSON. Unknown category
// members and duplicate identifiers are errors; a missing category decodes as
// empty.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out := NewSnapshot()
	seen := make(map[string]bool, len(Categories))
	err := decodeObject(dec, func(category string) error {
		if _, err := KindOf(category); err != nil {
			return fmt.Errorf("category %q: %w", category, err)
		}
		if seen[category] {
			return fmt.Errorf("category %q: duplicate member", category)
		}
		seen[category] = true
		ids := make(map[string]bool)
		return decodeObject(dec, func(id string) error {
			if ids[id] {
				return fmt.Errorf("%s/%s: duplicate identifier", category, id)
			}
			ids[id] = true
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("%s/%s: %w", category, id, err)
			}
			var fields FieldMap
			if err := fields.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("%s/%s: %w", category, id, err)
			}
			out[category] = append(out[category], Record{ID: id, Fields: fields})
			return nil
		})
	})
	if err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after snapshot")
	}
	*s = out
	return nil
}
