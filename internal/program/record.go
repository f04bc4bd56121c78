package program

import (
	"fmt"
	"sort"
	"strings"
)

// Record is a structured multi-value answer: several numeric fields and a
// text format with {field} placeholders.
type Record struct {
	Fields     []string // sorted
	Values     map[string]float64
	TextFormat string
}

// AsRecord interprets an answer value as a Record. ok is false when v is
// not a map with "values" and "textFormat"; err reports a malformed one.
func AsRecord(v any) (rec Record, ok bool, err error) {
	m, isMap := v.(map[string]any)
	if !isMap {
		return Record{}, false, nil
	}
	rawValues, hasValues := lookup(m, "values", "valores")
	rawFormat, hasFormat := lookup(m, "textFormat", "text_format", "formato_texto")
	if !hasValues || !hasFormat {
		return Record{}, false, nil
	}
	values, isMap := rawValues.(map[string]any)
	if !isMap || len(values) == 0 {
		return Record{}, true, fmt.Errorf("record values must be a non-empty map")
	}
	format, isString := rawFormat.(string)
	if !isString {
		return Record{}, true, fmt.Errorf("record textFormat must be a string")
	}
	rec = Record{Values: make(map[string]float64, len(values)), TextFormat: format}
	for k, raw := range values {
		f, isNum := ToFloat(raw)
		if !isNum {
			return Record{}, true, fmt.Errorf("record field %q is not a number: %v", k, raw)
		}
		rec.Fields = append(rec.Fields, k)
		rec.Values[k] = f
	}
	sort.Strings(rec.Fields)
	return rec, true, nil
}

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Key returns a canonical identity for deduplication: the name=value
// pairs in field order.
func (r Record) Key() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s=%g", f, r.Values[f])
	}
	return strings.Join(parts, "|")
}
