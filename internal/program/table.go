package program

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Table variable kinds.
const (
	KindIntRange     = "int-range"
	KindDecimalRange = "decimal-range"
	KindList         = "list"
)

var kindAliases = map[string]string{
	KindIntRange:        KindIntRange,
	"intervalo inteiro": KindIntRange,
	KindDecimalRange:    KindDecimalRange,
	"intervalo decimal": KindDecimalRange,
	KindList:            KindList,
	"lista de valores":  KindList,
}

// Table is the tabular form of a parameter program: a list of variables,
// each drawn from a range or list, and an answer formula. Banks exported
// in Portuguese use variaveis, nome, tipo, valores and formula_resposta
// for the same fields.
type Table struct {
	Variables []TableVar `json:"variables"`
	Formula   string     `json:"formula"`
}

// TableVar is one row of a Table. Values is "lo-hi" for ranges and a
// comma-separated list otherwise.
type TableVar struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Values string `json:"values"`
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := decodeField(raw, &t.Variables, "variables", "variaveis"); err != nil {
		return err
	}
	return decodeField(raw, &t.Formula, "formula", "formula_resposta")
}

func (v *TableVar) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := decodeField(raw, &v.Name, "name", "nome"); err != nil {
		return err
	}
	if err := decodeField(raw, &v.Kind, "kind", "tipo"); err != nil {
		return err
	}
	return decodeField(raw, &v.Values, "values", "valores")
}

// decodeField decodes the first of keys present in raw into dst.
func decodeField(raw map[string]json.RawMessage, dst any, keys ...string) error {
	for _, k := range keys {
		if msg, ok := raw[k]; ok {
			if err := json.Unmarshal(msg, dst); err != nil {
				return fmt.Errorf("field %q: %w", k, err)
			}
			return nil
		}
	}
	return nil
}

var rangeRe = regexp.MustCompile(`^\s*(-?[0-9]+(?:\.[0-9]+)?)\s*-\s*(-?[0-9]+(?:\.[0-9]+)?)\s*$`)

// ParseTable compiles a JSON table program.
func ParseTable(src string) (*Program, error) {
	var t Table
	if err := json.Unmarshal([]byte(src), &t); err != nil {
		return nil, fmt.Errorf("parse table program: %w", err)
	}
	code, err := t.Source()
	if err != nil {
		return nil, err
	}
	return Parse(code)
}

// Source renders the table as statement source.
func (t Table) Source() (string, error) {
	var b strings.Builder
	for _, v := range t.Variables {
		name := strings.TrimSpace(v.Name)
		if name == "" || strings.TrimSpace(v.Kind) == "" || strings.TrimSpace(v.Values) == "" {
			continue
		}
		kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(v.Kind))]
		if !ok {
			return "", fmt.Errorf("variable %q: unknown kind %q", name, v.Kind)
		}
		var rhs string
		switch kind {
		case KindIntRange, KindDecimalRange:
			m := rangeRe.FindStringSubmatch(v.Values)
			if m == nil {
				return "", fmt.Errorf("variable %q: invalid range %q", name, v.Values)
			}
			fn := fnUniform
			if kind == KindIntRange {
				fn = fnRandint
			}
			rhs = fmt.Sprintf("%s(%s, %s)", fn, m[1], m[2])
		case KindList:
			rhs = fmt.Sprintf("%s([%s])", fnChoice, listLiteral(v.Values))
		}
		fmt.Fprintf(&b, "%s = %s\n", name, rhs)
	}
	if f := strings.TrimSpace(t.Formula); f != "" {
		fmt.Fprintf(&b, "%s = %s\n", AnswerVar, f)
	}
	return b.String(), nil
}

// listLiteral quotes non-numeric entries of a comma-separated list.
func listLiteral(values string) string {
	parts := strings.Split(values, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := strconv.ParseFloat(p, 64); err == nil {
			out = append(out, p)
			continue
		}
		out = append(out, strconv.Quote(p))
	}
	return strings.Join(out, ", ")
}
