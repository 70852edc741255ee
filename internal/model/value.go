package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind discriminates the closed set of scalar value types a Record field
// can hold. KindError is the in-band sentinel for a failed computed cell.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindError
)

// Value is a tagged scalar: string, number, bool, null, or an error marker.
// The zero Value is null.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

func Null() Value                { return Value{Kind: KindNull} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Number(n float64) Value     { return Value{Kind: KindNumber, Num: n} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func ErrorValue(msg string) Value { return Value{Kind: KindError, Str: msg} }

// Errorf builds an error-marker value from a format string.
func Errorf(format string, args ...any) Value {
	return ErrorValue(fmt.Sprintf(format, args...))
}

func (v Value) IsNull() bool  { return v.Kind == KindNull }
func (v Value) IsError() bool { return v.Kind == KindError }

// Text is the canonical scalar-to-string conversion used when no display
// format applies. Integral numbers render without a decimal point.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return FormatNumber(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindError:
		return "ERROR: " + v.Str
	default:
		return "null"
	}
}

// FormatNumber renders a float the way the scanned JSON wrote it: whole
// numbers without a trailing ".0", everything else in shortest form.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// FromScalar converts a decoded JSON value into a Value. The second return
// is false for arrays and nested objects, which the scanner coerces to null.
func FromScalar(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Null(), true
	case bool:
		return BoolValue(t), true
	case float64:
		return Number(t), true
	case string:
		return String(t), true
	default:
		return Null(), false
	}
}

// MarshalJSON emits the natural JSON scalar; error markers marshal as their
// display text so API clients see the same thing the table shows.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindError:
		return json.Marshal(v.Text())
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar; arrays and objects fail.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, ok := FromScalar(raw)
	if !ok {
		return fmt.Errorf("value is not a scalar: %s", string(data))
	}
	*v = parsed
	return nil
}
