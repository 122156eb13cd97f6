package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
)

// ValueKind discriminates the variants of a Value.
type ValueKind string

const (
	KindNone   ValueKind = ""
	KindNumber ValueKind = "number"
	KindString ValueKind = "string"
	KindStruct ValueKind = "struct"
)

// Value is a tagged variant holding a single fact value. The zero Value
// (Kind == KindNone) means "no value", distinct from a zero number.
type Value struct {
	Kind ValueKind      `json:"kind"`
	Num  float64        `json:"num,omitempty"`
	Str  string         `json:"str,omitempty"`
	Obj  map[string]any `json:"obj,omitempty"`
}

// Number wraps a float64 in a Value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Text wraps a string in a Value.
func Text(s string) Value { return Value{Kind: KindString, Str: s} }

// Struct wraps a structured record in a Value.
func Struct(obj map[string]any) Value { return Value{Kind: KindStruct, Obj: obj} }

// None returns the empty Value.
func None() Value { return Value{} }

// IsZero reports whether the Value carries no data.
func (v Value) IsZero() bool { return v.Kind == KindNone }

// Equal compares two Values exhaustively by kind.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNone:
		return true
	case KindNumber:
		return v.Num == other.Num
	case KindString:
		return v.Str == other.Str
	case KindStruct:
		if len(v.Obj) != len(other.Obj) {
			return false
		}
		for k, a := range v.Obj {
			b, ok := other.Obj[k]
			if !ok || fmt.Sprint(a) != fmt.Sprint(b) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value for logs and citation output.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	case KindStruct:
		b, err := json.Marshal(v.Obj)
		if err != nil {
			return fmt.Sprint(v.Obj)
		}
		return string(b)
	}
	return ""
}

// AsNumber returns the numeric payload and whether the Value is numeric.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// UnmarshalJSON validates the discriminant so malformed payloads are
// rejected instead of silently becoming KindNone.
func (v *Value) UnmarshalJSON(data []byte) error {
	type raw Value
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return eris.Wrap(err, "model: unmarshal value")
	}
	switch r.Kind {
	case KindNone, KindNumber, KindString, KindStruct:
	default:
		return eris.Errorf("model: unknown value kind %q", r.Kind)
	}
	*v = Value(r)
	return nil
}
