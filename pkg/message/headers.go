package message

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

var (
	ErrEmptyHeaderName = errors.New("message: header name is empty")
	ErrMissingValues   = errors.New("message: header has no values")
	ErrInvalidValue    = errors.New("message: header value is not a string")
)

// Headers is an immutable, case-insensitive, multi-valued header map.
// The zero value is an empty map. Every mutating method returns a new map and
// leaves the receiver untouched, so Headers values can be shared freely.
type Headers struct {
	entries []entry
	index   map[string]int
}

type entry struct {
	name   string
	values []string
}

// HeaderValue is the serialized form of one header entry.
type HeaderValue struct {
	Values []string `json:"values"`
}

// Object maps display names to their values.
type Object map[string]HeaderValue

func canonical(name string) string {
	return strings.ToLower(name)
}

// Add returns a copy of h with values appended to the entry matching name
// case-insensitively. A new entry keeps the casing of name; an existing one
// keeps the casing it was created with. Values that are not strings are
// converted with fmt.Sprint. Calling Add without values, or with an empty
// name, returns h unchanged.
func (h Headers) Add(name string, values ...any) Headers {
	if name == "" || len(values) == 0 {
		return h
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = stringify(v)
	}
	return h.add(name, strs)
}

func (h Headers) add(name string, values []string) Headers {
	key := canonical(name)
	entries := make([]entry, len(h.entries), len(h.entries)+1)
	copy(entries, h.entries)

	index := make(map[string]int, len(h.entries)+1)
	for k, i := range h.index {
		index[k] = i
	}

	if i, ok := index[key]; ok {
		merged := make([]string, 0, len(entries[i].values)+len(values))
		merged = append(merged, entries[i].values...)
		entries[i].values = append(merged, values...)
	} else {
		index[key] = len(entries)
		entries = append(entries, entry{name: name, values: slices.Clone(values)})
	}
	return Headers{entries: entries, index: index}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}

// Value returns the first value of the named header.
func (h Headers) Value(name string) (string, bool) {
	i, ok := h.index[canonical(name)]
	if !ok {
		return "", false
	}
	return h.entries[i].values[0], true
}

// Values returns all values of the named header in insertion order.
func (h Headers) Values(name string) []string {
	i, ok := h.index[canonical(name)]
	if !ok {
		return nil
	}
	return slices.Clone(h.entries[i].values)
}

func (h Headers) Len() int {
	return len(h.entries)
}

// Names returns the display names in first-insertion order.
func (h Headers) Names() []string {
	names := make([]string, len(h.entries))
	for i, e := range h.entries {
		names[i] = e.name
	}
	return names
}

// Equal reports whether both maps hold the same entries with the same
// display names and the same value order. The order of the entries
// themselves is not compared; Names exposes it.
func (h Headers) Equal(o Headers) bool {
	if len(h.entries) != len(o.entries) {
		return false
	}
	for _, e := range h.entries {
		j, ok := o.index[canonical(e.name)]
		if !ok {
			return false
		}
		if other := o.entries[j]; other.name != e.name || !slices.Equal(e.values, other.values) {
			return false
		}
	}
	return true
}

func (h Headers) String() string {
	var sb strings.Builder
	for i, e := range h.entries {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.name)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.values, ", "))
	}
	return sb.String()
}

// ToObject converts h into a plain map keyed by display name.
func (h Headers) ToObject() Object {
	obj := make(Object, len(h.entries))
	for _, e := range h.entries {
		obj[e.name] = HeaderValue{Values: slices.Clone(e.values)}
	}
	return obj
}

// FromObject builds Headers from obj. Since maps carry no order, entries are
// added in sorted name order. Entries without values are rejected.
func FromObject(obj Object) (Headers, error) {
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	var h Headers
	for _, name := range names {
		next, err := h.with(name, obj[name].Values)
		if err != nil {
			return Headers{}, err
		}
		h = next
	}
	return h, nil
}

// with is the validating counterpart of add used by every decoder.
func (h Headers) with(name string, values []string) (Headers, error) {
	if name == "" {
		return Headers{}, ErrEmptyHeaderName
	}
	if len(values) == 0 {
		return Headers{}, fmt.Errorf("%w: %q", ErrMissingValues, name)
	}
	return h.add(name, values), nil
}
