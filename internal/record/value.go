package record

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Kind discriminates the shapes a survey field value can take once it
// has passed through normalization.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	// KindStructured covers mappings and sequences, stored as one
	// canonical JSON text per cell.
	KindStructured
)

// Value is the tagged representation of a single cell. Exactly one of
// the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	// JSON holds the canonical encoding for KindStructured.
	JSON string
}

// ErrUnsupportedShape is wrapped into errors from FromAny when a value
// is neither scalar, sequence, nor mapping. Failing loudly here catches
// schema drift at the write boundary instead of persisting garbage.
var ErrUnsupportedShape = fmt.Errorf("unsupported value shape")

// FromAny classifies an arbitrary decoded field value. Scalars pass
// through; slices, arrays, and maps are serialized to canonical JSON.
// Anything else is an error, never a silent stringification.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{Kind: KindString, Str: ""}, nil
	case string:
		return Value{Kind: KindString, Str: x}, nil
	case bool:
		return Value{Kind: KindBool, Bool: x}, nil
	case float64:
		return Value{Kind: KindNumber, Num: x}, nil
	case float32:
		return Value{Kind: KindNumber, Num: float64(x)}, nil
	case int:
		return Value{Kind: KindNumber, Num: float64(x)}, nil
	case int64:
		return Value{Kind: KindNumber, Num: float64(x)}, nil
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("numeric field %q: %w", x.String(), err)
		}
		return Value{Kind: KindNumber, Num: n}, nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		b, err := json.Marshal(v)
		if err != nil {
			return Value{}, fmt.Errorf("serialize structured value: %w", err)
		}
		return Value{Kind: KindStructured, JSON: string(b)}, nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedShape, v)
}

// Cell renders the value as the single text cell written to the store.
func (v Value) Cell() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindStructured:
		return v.JSON
	default:
		return v.Str
	}
}

// Native returns the value in the shape the JSON encoder should emit.
func (v Value) Native() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindStructured:
		var out any
		if err := json.Unmarshal([]byte(v.JSON), &out); err != nil {
			return v.JSON
		}
		return out
	default:
		return v.Str
	}
}
