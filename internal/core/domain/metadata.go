package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the type held by a metadata Value.
type Kind int

// Metadata value kinds. The union is closed: anything ingested through the
// API is coerced to one of these three so that filter equality stays
// well-defined and serialisation stays straightforward.
const (
	KindString Kind = iota + 1
	KindNumber
	KindTime
)

// Value is a metadata value: exactly one of string, number or timestamp.
// The zero Value is invalid and never stored.
type Value struct {
	kind Kind
	str  string
	num  float64
	ts   time.Time
}

// String creates a string metadata value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a numeric metadata value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Time creates a timestamp metadata value. The timestamp is truncated to
// second precision so that JSON round-trips compare equal.
func Time(t time.Time) Value {
	return Value{kind: KindTime, ts: t.UTC().Truncate(time.Second)}
}

// ValueOf coerces an arbitrary decoded JSON value into the closed union.
// Strings that parse as RFC 3339 become timestamps; numbers (including all
// integer types) become KindNumber; everything else is rendered as a string.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return Time(t)
		}
		return String(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case bool:
		return String(strconv.FormatBool(x))
	case time.Time:
		return Time(x)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// Kind returns which member of the union the value holds.
func (v Value) Kind() Kind { return v.kind }

// Text returns the string member. Valid only for KindString.
func (v Value) Text() string { return v.str }

// Float returns the numeric member. Valid only for KindNumber.
func (v Value) Float() float64 { return v.num }

// Timestamp returns the time member. Valid only for KindTime.
func (v Value) Timestamp() time.Time { return v.ts }

// Equal reports exact equality: same kind, same value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.ts.Equal(o.ts)
	default:
		return false
	}
}

// String renders the value for display and logging.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.ts.Format(time.RFC3339)
	default:
		return ""
	}
}

// MarshalJSON emits the native scalar representation: strings as strings,
// numbers as numbers, timestamps as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindTime:
		return json.Marshal(v.ts.Format(time.RFC3339))
	default:
		return nil, fmt.Errorf("marshal metadata value: invalid kind %d", v.kind)
	}
}

// UnmarshalJSON applies the same coercion as ValueOf, so a Metadata map
// survives a JSON round-trip with kinds intact (RFC 3339 strings decode
// back to timestamps).
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// Metadata is a set of named values attached to a document or chunk.
type Metadata map[string]Value

// MetadataOf coerces a loosely-typed map (e.g. decoded JSON) into Metadata.
func MetadataOf(m map[string]any) Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = ValueOf(v)
	}
	return out
}

// Clone returns an independent copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Matches reports whether every key in filter is present with an exactly
// equal value. An empty filter matches everything.
func (m Metadata) Matches(filter Metadata) bool {
	for k, want := range filter {
		got, ok := m[k]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}
