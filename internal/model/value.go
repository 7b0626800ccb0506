package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the closed set of field value shapes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is a rule-computed field value: a string, a number, a boolean or a
// list of those scalars. The zero Value is invalid and encodes as null.
type Value struct {
	kind  Kind
	str   string
	num   float64
	flag  bool
	items []Value
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns a numeric value.
func Int(n int) Value { return Value{kind: KindNumber, num: float64(n)} }

// Float returns a numeric value.
func Float(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// List returns a list value. Lists only hold scalars: nested lists are
// flattened and invalid items dropped.
func List(items ...Value) Value {
	flat := make([]Value, 0, len(items))
	for _, it := range items {
		switch it.kind {
		case KindInvalid:
		case KindList:
			flat = append(flat, it.items...)
		default:
			flat = append(flat, it)
		}
	}
	return Value{kind: KindList, items: flat}
}

// Strings returns a list of string values.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return Value{kind: KindList, items: items}
}

// Kind reports the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// AsList returns a copy of the items held by v.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out, true
}

// Canonical returns the textual form history aggregation compares against
// declared value tokens:
//
//	string  the string itself
//	bool    "true" or "false"
//	number  shortest decimal without exponent ("3", "2.5")
//	list    the items' canonical forms joined by ","
//
// The invalid value has the empty canonical form.
func (v Value) Canonical() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindNumber:
		return formatNumber(v.num)
	case KindList:
		parts := make([]string, len(v.items))
		for i, it := range v.items {
			parts[i] = it.Canonical()
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	if f == 0 {
		return "0" // folds -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Interface returns v as a plain Go value (string, float64, bool, []any or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindList:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same shape and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// GoString renders v for test failure messages.
func (v Value) GoString() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	if v.kind == KindList {
		return "[" + v.Canonical() + "]"
	}
	return v.Canonical()
}

// MarshalJSON encodes v as its natural JSON scalar or array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("field value %v is not representable in JSON", v.num)
		}
		return []byte(formatNumber(v.num)), nil
	case KindBool:
		return json.Marshal(v.flag)
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := it.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a scalar or an array of scalars. Objects, nested
// arrays and nulls inside arrays are rejected; a top-level null yields the
// invalid value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = Value{}
		return nil
	}
	decoded, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ValueOf converts a plain Go value into a Value. It accepts strings,
// booleans, Go numeric types, Values and slices of those scalars.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int8:
		return Float(float64(t)), nil
	case int16:
		return Float(float64(t)), nil
	case int32:
		return Float(float64(t)), nil
	case int64:
		return Float(float64(t)), nil
	case uint:
		return Float(float64(t)), nil
	case uint8:
		return Float(float64(t)), nil
	case uint16:
		return Float(float64(t)), nil
	case uint32:
		return Float(float64(t)), nil
	case uint64:
		return Float(float64(t)), nil
	case uintptr:
		return Float(float64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case []string:
		return Strings(t...), nil
	case []any:
		items := make([]Value, len(t))
		for i, el := range t {
			if _, nested := el.([]any); nested {
				return Value{}, fmt.Errorf("nested arrays are not valid field values")
			}
			if el == nil {
				return Value{}, fmt.Errorf("null is not a valid list item")
			}
			item, err := ValueOf(el)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Value{kind: KindList, items: items}, nil
	default:
		return Value{}, fmt.Errorf("unsupported field value type %T", x)
	}
}

// Fields maps field ids to values; it is what rules return.
type Fields map[string]Value

// Merge copies other into f; keys present in both take other's value.
func (f Fields) Merge(other Fields) {
	for k, v := range other {
		f[k] = v
	}
}

// Clone returns a shallow copy of f. A nil map clones to an empty one.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
