package dynamodb

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// AttributeValue is the decoded wire form of one typed value, e.g.
// {"S": "x"} or {"N": "42"}. Values are kept as decoded JSON so unknown
// shapes round-trip untouched.
type AttributeValue = map[string]any

// Item is one stored row.
type Item = map[string]AttributeValue

func avEqual(a, b AttributeValue) bool {
	return reflect.DeepEqual(a, b)
}

// avType returns the type tag of a value ("S", "N", "B", "SS", ...).
func avType(av AttributeValue) string {
	for k := range av {
		return k
	}
	return ""
}

func avString(av AttributeValue) (string, bool) {
	v, ok := av["S"].(string)
	return v, ok
}

func avNumber(av AttributeValue) (float64, bool) {
	raw, ok := av["N"].(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func numberValue(f float64) AttributeValue {
	return AttributeValue{"N": renderNumber(f)}
}

// renderNumber formats arithmetic results: integral values inside the safe
// integer range print without a fraction.
func renderNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// scalarString returns the comparable string form of a scalar value.
func scalarString(av AttributeValue) (string, bool) {
	for _, tag := range []string{"S", "N", "B"} {
		if v, ok := av[tag].(string); ok {
			return v, true
		}
	}
	return "", false
}

// compareAV orders two scalar values: numerically when both are numbers,
// otherwise by their string form.
func compareAV(a, b AttributeValue) int {
	if an, aok := avNumber(a); aok {
		if bn, bok := avNumber(b); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	as, _ := scalarString(a)
	bs, _ := scalarString(b)
	return strings.Compare(as, bs)
}

// stringSet returns the member list of a set value (SS, NS or BS).
func stringSet(av AttributeValue) (tag string, members []string, ok bool) {
	for _, tag := range []string{"SS", "NS", "BS"} {
		raw, present := av[tag].([]any)
		if !present {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, m := range raw {
			s, isStr := m.(string)
			if !isStr {
				return "", nil, false
			}
			out = append(out, s)
		}
		return tag, out, true
	}
	return "", nil, false
}

func setValue(tag string, members []string) AttributeValue {
	raw := make([]any, len(members))
	for i, m := range members {
		raw[i] = m
	}
	return AttributeValue{tag: raw}
}

func listValue(av AttributeValue) ([]any, bool) {
	l, ok := av["L"].([]any)
	return l, ok
}

func copyItem(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
