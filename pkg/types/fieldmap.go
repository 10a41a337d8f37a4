package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Field labels, in the order FieldMap emits them.
const (
	LabelType         = "Type"
	LabelName         = "Name"
	LabelAge          = "Age"
	LabelGender       = "Gender"
	LabelPosition     = "Position"
	LabelSalary       = "Salary"
	LabelHourlyRate   = "Hourly Rate"
	LabelHoursWorked  = "Hours Worked"
	LabelMonthlyBonus = "Monthly Bonus"
)

// Field is one labelled value of a FieldMap.
type Field struct {
	Label string
	Value any
}

// FieldMap is an ordered mapping from field label to value. It is the single
// representation used for both display and serialization. Values produced by
// Worker.FieldMap are string, int or decimal.Decimal; values decoded from JSON
// are string or json.Number.
type FieldMap []Field

// Get returns the value stored under label.
func (m FieldMap) Get(label string) (any, bool) {
	for _, f := range m {
		if f.Label == label {
			return f.Value, true
		}
	}
	return nil, false
}

// Labels returns the labels in order.
func (m FieldMap) Labels() []string {
	labels := make([]string, len(m))
	for i, f := range m {
		labels[i] = f.Label
	}
	return labels
}

// Text returns the value under label formatted for display, or "" if absent.
func (m FieldMap) Text(label string) string {
	v, ok := m.Get(label)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// MarshalJSON writes the map as a JSON object whose members keep the slice
// order. Decimal values are written as JSON numbers.
func (m FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Label, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return []byte(x.String()), nil
	case json.Number:
		return []byte(x.String()), nil
	default:
		return json.Marshal(v)
	}
}

// UnmarshalJSON reads a flat JSON object, preserving member order. Nested
// objects and arrays are rejected.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out FieldMap
	err := decodeObject(dec, func(key string) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case string, json.Number, bool, nil:
			out = append(out, Field{Label: key, Value: v})
			return nil
		default:
			return fmt.Errorf("field %q: unexpected %v", key, v)
		}
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// errNotObject is returned when a JSON value is expected to be an object.
var errNotObject = errors.New("expected JSON object")

// decodeObject consumes one JSON object from dec, calling member for every key.
// member must consume exactly the value that follows the key.
func decodeObject(dec *json.Decoder, member func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		if err := member(key); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing '}'
	return err
}
