// Package models defines the domain types for relyaml.
package models

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
)

// Document is one note in the vault as seen by the correlation engine.
type Document struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	Checksum   string    `json:"checksum,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DisplayName returns the base name of a vault path without its .md extension.
func DisplayName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, ".md")
}

// FileInfo is a lightweight representation returned by storage list operations.
type FileInfo struct {
	Path       string    `json:"path"`
	Checksum   string    `json:"checksum"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ValueKind tags the shape of a front-matter value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindScalar
	KindSequence
)

// Value is a front-matter value: null, a single scalar, or an ordered
// sequence of scalars. Numbers and booleans are already stringified.
type Value struct {
	Kind  ValueKind
	Items []string
}

// Null returns the empty value.
func Null() Value { return Value{Kind: KindNull} }

// Scalar returns a single-scalar value.
func Scalar(s string) Value { return Value{Kind: KindScalar, Items: []string{s}} }

// Sequence returns a sequence value.
func Sequence(items ...string) Value {
	return Value{Kind: KindSequence, Items: append([]string{}, items...)}
}

// Strings collapses the value into an ordered list of strings.
// Null yields nil.
func (v Value) Strings() []string {
	if v.IsNull() {
		return nil
	}
	out := make([]string, len(v.Items))
	copy(out, v.Items)
	return out
}

// IsNull reports whether the value carries nothing to compare: an explicit
// null or an empty sequence.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || len(v.Items) == 0
}

// MarshalJSON encodes scalars as strings, sequences as arrays, null as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindScalar:
		if len(v.Items) == 0 {
			return []byte(`""`), nil
		}
		return json.Marshal(v.Items[0])
	case KindSequence:
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = Scalar(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("models: sequence item is %T, want string", item)
			}
			items = append(items, s)
		}
		*v = Value{Kind: KindSequence, Items: items}
	default:
		return fmt.Errorf("models: unsupported value %T", raw)
	}
	return nil
}

// Field is one key/value pair of front-matter.
type Field struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Metadata is front-matter with its keys kept in encounter order.
// A nil Metadata means the document has no front-matter block.
type Metadata []Field

// Keys returns the field names in encounter order.
func (m Metadata) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key (exact match).
func (m Metadata) Get(key string) (Value, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}
