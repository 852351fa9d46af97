// Package schema holds the table-change model compiled by the dialect grammars:
// attribute records, column and command definitions, and the Blueprint.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Attributes is an ordered key/value record. Keys are case-sensitive and
// unique; lookups ignore order but serialization follows insertion order.
type Attributes struct {
	keys   []string
	values map[string]any
}

// NewAttributes creates a record from an initial map. Keys are inserted in
// sorted order so the result is deterministic.
func NewAttributes(initial map[string]any) *Attributes {
	a := &Attributes{values: make(map[string]any, len(initial))}
	keys := make([]string, 0, len(initial))
	for k := range initial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.Set(k, initial[k])
	}
	return a
}

func (a *Attributes) init() {
	if a.values == nil {
		a.values = make(map[string]any)
	}
}

// Set stores value under key. Overwriting keeps the key's original position.
func (a *Attributes) Set(key string, value any) {
	a.init()
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key, or def when the key is absent.
func (a *Attributes) Get(key string, def any) any {
	if v, ok := a.values[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present, even when its value is nil.
func (a *Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Unset removes key from the record.
func (a *Attributes) Unset(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (a *Attributes) Keys() []string {
	return append([]string(nil), a.keys...)
}

// All returns a copy of the record.
func (a *Attributes) All() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// String returns the value under key as a string. Non-string values are
// formatted with fmt; absent or nil values yield "".
func (a *Attributes) String(key string) string {
	switch v := a.Get(key, nil).(type) {
	case nil:
		return ""
	case string:
		return v
	case Expression:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the value under key as a bool. Only true is truthy.
func (a *Attributes) Bool(key string) bool {
	v, _ := a.Get(key, false).(bool)
	return v
}

// Int returns the value under key as an int and whether it was numeric.
func (a *Attributes) Int(key string) (int, bool) {
	switch v := a.Get(key, nil).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

// Strings returns the value under key as a string slice.
func (a *Attributes) Strings(key string) []string {
	switch v := a.Get(key, nil).(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON serializes the record as a JSON object in insertion order.
func (a *Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attribute %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Expression is a raw SQL fragment emitted without quoting.
type Expression string

// Raw wraps a SQL fragment so grammars emit it verbatim.
func Raw(sql string) Expression {
	return Expression(sql)
}
