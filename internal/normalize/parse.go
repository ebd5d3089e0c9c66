package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// parseStringList decodes a field that may be a native JSON array of strings,
// a JSON-encoded array inside a string, or a plain comma-separated string.
func parseStringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return trimAll(list)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// The string itself may hold a JSON array.
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return trimAll(list)
		}
	}
	return trimAll(strings.Split(s, ","))
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parsePrices decodes an outcomePrices field into a positional list and, when
// the upstream sent a name-keyed object, a by-name lookup. Accepted shapes:
// array of numbers, array of numeric strings, either of those JSON-encoded
// inside a string, or an object mapping outcome name to price.
func parsePrices(raw json.RawMessage) (list []float64, byName map[string]float64) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if l, ok := decodePriceList(raw); ok {
		return l, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err == nil {
		byName = make(map[string]float64, len(m))
		for k, v := range m {
			if f, ok := decodePriceScalar(v); ok {
				byName[priceKey(k)] = f
			}
		}
		return nil, byName
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return parsePrices(json.RawMessage(s))
}

func decodePriceList(raw json.RawMessage) ([]float64, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, it := range items {
		f, ok := decodePriceScalar(it)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func decodePriceScalar(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// priceKey canonicalizes an outcome name for by-name price lookups.
func priceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
