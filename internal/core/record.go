package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one keyed business row. Keys keep their insertion order, which is
// the column order of the sheet a record was imported from.
type Record struct {
	keys []string
	vals map[string]any
}

// NewRecord builds a record from alternating key, value arguments.
//
//	core.NewRecord("order_group", 1, "name", "kim")
func NewRecord(kv ...any) Record {
	var r Record
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		r.Set(k, kv[i+1])
	}
	return r
}

// RecordFromMap builds a record from m with keys sorted, since maps carry no
// order of their own.
func RecordFromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := Record{keys: keys, vals: make(map[string]any, len(m))}
	for k, v := range m {
		r.vals[k] = v
	}
	return r
}

// Set stores v under k. A new key is appended; an existing key keeps its
// position and takes the new value.
func (r *Record) Set(k string, v any) {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[k]; !ok {
		r.keys = append(r.keys, k)
	}
	r.vals[k] = v
}

// Get returns the value stored under k.
func (r Record) Get(k string) (any, bool) {
	v, ok := r.vals[k]
	return v, ok
}

// Value returns the value stored under k, or nil.
func (r Record) Value(k string) any {
	return r.vals[k]
}

// Keys returns the keys in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Map returns a copy of the fields as a plain map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.vals))
	for k, v := range r.vals {
		m[k] = v
	}
	return m
}

// Clone returns a deep copy of the key order and a shallow copy of values.
func (r Record) Clone() Record {
	c := Record{keys: r.Keys(), vals: make(map[string]any, len(r.vals))}
	for k, v := range r.vals {
		c.vals[k] = v
	}
	return c
}

// MarshalJSON writes the record as an object with keys in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.vals[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping its key order. Numbers decode as
// json.Number so large ids survive unchanged.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
