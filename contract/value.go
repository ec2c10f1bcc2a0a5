package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type absentValue struct{}

// Absent marks a value that is not present at all. It is distinct from a
// JSON null, which is represented by nil.
var Absent any = absentValue{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absentValue)
	return ok
}

// RawJSON is an unparsed JSON document. Values of this type, []byte and
// io.Reader are parsed before validation.
type RawJSON []byte

// parseRaw reports whether v is a raw body and, if so, returns the parsed value.
func parseRaw(v any) (parsed any, raw bool, err error) {
	switch b := v.(type) {
	case RawJSON:
		parsed, err = ParseJSON(b)
		return parsed, true, err
	case []byte:
		parsed, err = ParseJSON(b)
		return parsed, true, err
	case json.RawMessage:
		parsed, err = ParseJSON(b)
		return parsed, true, err
	case io.Reader:
		data, rerr := io.ReadAll(b)
		if rerr != nil {
			return nil, true, rerr
		}
		parsed, err = ParseJSON(data)
		return parsed, true, err
	}
	return v, false, nil
}

var errTrailingData = errors.New("unexpected data after top-level value")

// ParseJSON decodes a single JSON document. Numbers are kept as json.Number
// so that no precision is lost before decimal comparison.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

// toDecimal converts a numeric instance to an exact decimal.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		return parseDecimal(n.String())
	case decimal.Decimal:
		return dropZeroExponent(n), true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Decimal{}, false
		}
		return dropZeroExponent(*n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(n)), 0), true
	case uint8:
		return decimal.NewFromInt(int64(n)), true
	case uint16:
		return decimal.NewFromInt(int64(n)), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), true
	}
	return decimal.Decimal{}, false
}

// numericString matches the textual numbers accepted in parameters.
var numericString = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// coerceNumber converts v to a decimal. Strings are accepted only when
// allowString is set, which is the case for raw parameter values.
func coerceNumber(v any, allowString bool) (decimal.Decimal, bool) {
	if s, ok := v.(string); ok {
		if !allowString || !numericString.MatchString(s) {
			return decimal.Decimal{}, false
		}
		return parseDecimal(s)
	}
	return toDecimal(v)
}

// parseDecimal parses a textual number. Zero is returned without its
// exponent so that 0e-400000000 is never rescaled.
func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return dropZeroExponent(d), true
}

func dropZeroExponent(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}

// isInteger reports whether d has no fractional part. A non-zero
// coefficient with fewer digits than the negative exponent always has one,
// which keeps 1e-400000000 from being rescaled.
func isInteger(d decimal.Decimal) bool {
	if d.Exponent() >= 0 || d.IsZero() {
		return true
	}
	if -int64(d.Exponent()) > int64(d.NumDigits()) {
		return false
	}
	return d.Equal(d.Truncate(0))
}

// withinExponent reports whether both the exponent of d and the exponent of
// its leading digit lie within [-limit, limit].
func withinExponent(d decimal.Decimal, limit int) bool {
	if d.IsZero() {
		return true
	}
	exp := int64(d.Exponent())
	lead := exp + int64(d.NumDigits()) - 1
	bound := int64(limit)
	return exp >= -bound && exp <= bound && lead >= -bound && lead <= bound
}

// maxPlainExponent bounds the exponents rendered in plain notation.
const maxPlainExponent = 1000

// formatDecimal renders d in plain notation, or as coefficient and exponent
// when plain notation would need more than maxPlainExponent zeros. Equal
// values render equally in both forms.
func formatDecimal(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	if withinExponent(d, maxPlainExponent) {
		return d.String()
	}
	coef := new(big.Int).Set(d.Coefficient())
	exp := int64(d.Exponent())
	ten := big.NewInt(10)
	var rem big.Int
	for {
		q, r := new(big.Int).QuoRem(coef, ten, &rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}
	return coef.String() + "e" + strconv.FormatInt(exp, 10)
}

// asArray returns v as a slice of values.
func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, true
	case []string:
		out := make([]any, len(a))
		for i, s := range a {
			out[i] = s
		}
		return out, true
	case nil, string, []byte, RawJSON, json.RawMessage:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asObject returns v as a map of values.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// kindOf returns the JSON type name of an instance value.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	}
	if d, ok := toDecimal(v); ok {
		if isInteger(d) {
			return "integer"
		}
		return "number"
	}
	if _, ok := asArray(v); ok {
		return "array"
	}
	if _, ok := asObject(v); ok {
		return "object"
	}
	return "unknown"
}

// canonical returns a string that is equal for structurally equal values.
// Numbers are compared by value, so 1 and 1.0 are equal, and object keys
// are sorted by encoding/json.
func canonical(v any) string {
	b, err := json.Marshal(normalize(v))
	if err != nil {
		return kindOf(v)
	}
	return string(b)
}

func normalize(v any) any {
	if d, ok := toDecimal(v); ok {
		return json.Number(formatDecimal(d))
	}
	if a, ok := asArray(v); ok {
		out := make([]any, len(a))
		for i, e := range a {
			out[i] = normalize(e)
		}
		return out
	}
	if m, ok := asObject(v); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = normalize(e)
		}
		return out
	}
	return v
}

// equalValues reports whether two instance values are structurally equal.
func equalValues(a, b any) bool {
	return canonical(a) == canonical(b)
}

const maxPreview = 80

// preview renders an instance value for use in a message. Long values are
// cut at a rune boundary within maxPreview bytes.
func preview(v any) string {
	s := canonical(v)
	if len(s) > maxPreview {
		cut := maxPreview
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
