package openapi

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// isExtensionKey reports whether key is a specification extension ("x-...").
func isExtensionKey(key string) bool {
	return strings.HasPrefix(key, "x-")
}

// extractExtensionsFromMap collects x-* keys from a map into an extension map.
// Returns nil if no extensions found (not an empty map).
func extractExtensionsFromMap(m map[string]any) map[string]any {
	var extra map[string]any
	for k, v := range m {
		if isExtensionKey(k) {
			if extra == nil {
				extra = make(map[string]any)
			}
			extra[k] = v
		}
	}
	return extra
}

// mapGetString extracts a string from m[key], returning "" for other types.
func mapGetString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// mapGetBool extracts a bool from m[key], returning false for other types.
func mapGetBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// mapGetBoolPtr extracts a *bool from m[key].
func mapGetBoolPtr(m map[string]any, key string) *bool {
	v, ok := m[key]
	if !ok {
		return nil
	}
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

// mapGetMap extracts a nested mapping from m[key].
func mapGetMap(m map[string]any, key string) map[string]any {
	sub, _ := m[key].(map[string]any)
	return sub
}

// mapGetStringSlice extracts a []string from m[key], handling the []any that
// the node conversion produces.
func mapGetStringSlice(m map[string]any, key string) []string {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// mapGetStringMap extracts a map[string]string from m[key].
func mapGetStringMap(m map[string]any, key string) map[string]string {
	sub, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	result := make(map[string]string, len(sub))
	for k, val := range sub {
		if s, ok := val.(string); ok {
			result[k] = s
		}
	}
	return result
}

// mapGetDecimalPtr extracts an exact decimal from m[key]. Literal numbers
// arrive as json.Number; the float and int cases cover values produced by
// other decoders.
func mapGetDecimalPtr(m map[string]any, key string) *decimal.Decimal {
	v, ok := m[key]
	if !ok {
		return nil
	}
	d, ok := toDecimal(v)
	if !ok {
		return nil
	}
	return &d
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), true
	default:
		return decimal.Decimal{}, false
	}
}

// mapGetIntPtr extracts a *int from m[key]. Non-integral and out-of-range
// values are ignored.
func mapGetIntPtr(m map[string]any, key string) *int {
	v, ok := m[key]
	if !ok {
		return nil
	}
	d, ok := toDecimal(v)
	if !ok || !d.IsInteger() {
		return nil
	}
	i64 := d.IntPart()
	if i64 > math.MaxInt || i64 < math.MinInt {
		return nil
	}
	i := int(i64)
	return &i
}
