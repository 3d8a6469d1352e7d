package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field is a single proposed field assignment.
type Field struct {
	Name  string
	Value any
}

// Updates is an ordered set of proposed field assignments. Order is the order
// the caller supplied, which is the order changes are reported in.
type Updates []Field

var errUpdatesNotObject = errors.New("updates must be a JSON object")

// UnmarshalJSON decodes a JSON object keeping its key order. A repeated key
// keeps its first position and its last value.
func (u *Updates) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errUpdatesNotObject
	}

	out := Updates{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out = out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*u = out
	return nil
}

// MarshalJSON writes the updates as an object in order.
func (u Updates) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range u {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
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

// Get returns the value proposed for name.
func (u Updates) Get(name string) (any, bool) {
	for _, f := range u {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set returns updates with name assigned, replacing in place when present.
func (u Updates) Set(name string, value any) Updates {
	for i := range u {
		if u[i].Name == name {
			out := append(Updates(nil), u...)
			out[i].Value = value
			return out
		}
	}
	return append(u, Field{Name: name, Value: value})
}

// Without returns a copy of the updates minus the named fields.
func (u Updates) Without(names ...string) Updates {
	out := make(Updates, 0, len(u))
	for _, f := range u {
		skip := false
		for _, n := range names {
			if f.Name == n {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, f)
		}
	}
	return out
}

// Names lists field names in order.
func (u Updates) Names() []string {
	names := make([]string, len(u))
	for i, f := range u {
		names[i] = f.Name
	}
	return names
}
