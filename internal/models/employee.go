// Package models defines the employee record shared by the normalizer and the batch driver.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field names recognised in an employee record.
const (
	FieldFirstName    = "First Name"
	FieldLastName     = "Last Name"
	FieldAddressLine1 = "Address Line 1"
	FieldAddressLine2 = "Address Line 2"
	FieldCity         = "City"
	FieldJobTitle     = "Job Title"
	FieldPhoneNumber  = "Phone Number"
	FieldZipCode      = "Zip Code"
	FieldJobID        = "Job ID"
	FieldState        = "State"
	FieldCompanyEmail = "Company Email"
	FieldSalary       = "Salary"
)

// ErrNotAnObject is returned when decoding a record from anything but a JSON object.
var ErrNotAnObject = errors.New("employee record is not a JSON object")

// Field is a single key/value pair of a record. Value holds the raw JSON encoding.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Employee is an employee record that keeps its fields in source order.
type Employee struct {
	fields []Field
}

// NewEmployee builds a record from fields, in the given order.
func NewEmployee(fields ...Field) *Employee {
	e := &Employee{}
	for _, f := range fields {
		e.setRaw(f.Key, f.Value)
	}

	return e
}

// StringField is a convenience constructor for a field holding a JSON string.
func StringField(key, value string) Field {
	raw, err := encodeValue(value)
	if err != nil {
		// strings always encode
		panic(err)
	}

	return Field{Key: key, Value: raw}
}

// IsEmpty reports whether the record has no fields.
func (e *Employee) IsEmpty() bool {
	return len(e.fields) == 0
}

// Keys returns the field names in order.
func (e *Employee) Keys() []string {
	keys := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		keys = append(keys, f.Key)
	}

	return keys
}

// Get returns the raw JSON value stored under key.
func (e *Employee) Get(key string) (json.RawMessage, bool) {
	if i := e.index(key); i >= 0 {
		return e.fields[i].Value, true
	}

	return nil, false
}

// String returns the value under key when it is a JSON string.
func (e *Employee) String(key string) (string, bool) {
	raw, ok := e.Get(key)
	if !ok || len(raw) == 0 || raw[0] != '"' {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}

	return s, true
}

// Text returns the value under key as text: strings as-is, numbers as their
// literal, anything else (or a missing key) as "".
func (e *Employee) Text(key string) string {
	if s, ok := e.String(key); ok {
		return s
	}

	raw, ok := e.Get(key)
	if !ok {
		return ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}

	return n.String()
}

// Set stores value under key. An existing key keeps its position; a new key is appended.
func (e *Employee) Set(key string, value any) error {
	raw, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", key, err)
	}

	e.setRaw(key, raw)

	return nil
}

// DropLast removes and returns the last field in source order.
func (e *Employee) DropLast() (Field, bool) {
	if len(e.fields) == 0 {
		return Field{}, false
	}

	last := e.fields[len(e.fields)-1]
	e.fields = e.fields[:len(e.fields)-1]

	return last, true
}

// Clear removes every field.
func (e *Employee) Clear() {
	e.fields = nil
}

// UnmarshalJSON decodes a JSON object keeping key order. A repeated key
// overwrites the earlier value at the earlier position.
func (e *Employee) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotAnObject
	}

	e.fields = nil

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read record key: %w", err)
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("read value of %q: %w", key, err)
		}

		e.setRaw(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read record end: %w", err)
	}

	return nil
}

// MarshalJSON encodes the record as a JSON object in field order.
func (e *Employee) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range e.fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := encodeValue(f.Key)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		if len(f.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(f.Value)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (e *Employee) index(key string) int {
	for i, f := range e.fields {
		if f.Key == key {
			return i
		}
	}

	return -1
}

func (e *Employee) setRaw(key string, raw json.RawMessage) {
	if i := e.index(key); i >= 0 {
		e.fields[i].Value = raw

		return
	}

	e.fields = append(e.fields, Field{Key: key, Value: raw})
}

// encodeValue marshals v without HTML escaping so names like "A&B" survive untouched.
func encodeValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
