package variant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/examgen/internal/program"
	"github.com/abhisek/examgen/internal/units"
)

var (
	placeholderRe = regexp.MustCompile(`^\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	unitTokenRe   = regexp.MustCompile(`^\s*([^\s{}.,;:!?()\[\]]+)`)
)

// missingError is returned by render for an unbound placeholder.
type missingError struct{ name string }

func (e *missingError) Error() string { return fmt.Sprintf("no variable %q", e.name) }

// render substitutes {name} placeholders from vars. "{{" and "}}" are
// literal braces; braces around anything that is not an identifier are
// kept as written. A numeric placeholder followed by a prefixed unit such
// as "mA" is divided by the prefix multiplier first. Decimal points
// between digits become commas.
func render(text string, vars map[string]any) (string, error) {
	var b strings.Builder
	for i := 0; i < len(text); {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, "{{"):
			b.WriteByte('{')
			i += 2
			continue
		case strings.HasPrefix(rest, "}}"):
			b.WriteByte('}')
			i += 2
			continue
		}
		m := placeholderRe.FindStringSubmatch(rest)
		if m == nil {
			b.WriteByte(text[i])
			i++
			continue
		}
		name := m[1]
		v, ok := vars[name]
		if !ok {
			return "", &missingError{name: name}
		}
		i += len(m[0])
		b.WriteString(display(v, unitScale(text[i:])))
	}
	return units.DecimalComma(b.String()), nil
}

// unitScale returns the prefix multiplier of the unit token that follows
// a placeholder, or 1 when there is none.
func unitScale(after string) float64 {
	m := unitTokenRe.FindStringSubmatch(after)
	if m == nil {
		return 1
	}
	if div, _, ok := units.SplitPrefixed(m[1]); ok {
		return div
	}
	return 1
}

func display(v any, scale float64) string {
	if f, ok := program.ToFloat(v); ok {
		return units.Display(f / scale)
	}
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
