// Package program parses and runs parameter programs: short sequences of
// "name = expression" statements that draw random inputs and compute an
// answer. Random draws are statement forms (choice, randint, uniform), so
// every draw site and its candidate domain can be found without running
// the program blindly.
package program

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// AnswerVar is the binding that holds the designated answer.
const AnswerVar = "answer"

// answerAliases are accepted for banks written with the older names.
var answerAliases = []string{AnswerVar, "resposta_valor", "resposta"}

// Statement is one compiled assignment.
type Statement struct {
	Name   string
	Source string // right-hand side as written
	Line   int
	Draw   bool

	prog *vm.Program
}

// Program is a parsed parameter program. It is immutable and safe for
// concurrent use.
type Program struct {
	stmts []Statement
	draws []int // indexes into stmts
}

// Draw records one executed draw site.
type Draw struct {
	Name   string
	Domain Domain
	Value  any
}

// Binding is the namespace left behind by one execution.
type Binding struct {
	Vars  map[string]any
	Draws []Draw
}

// Answer returns the designated answer value.
func (b *Binding) Answer() (any, bool) {
	for _, name := range answerAliases {
		if v, ok := b.Vars[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Assignment returns the drawn values in draw-site order.
func (b *Binding) Assignment() []any {
	out := make([]any, len(b.Draws))
	for i, d := range b.Draws {
		out[i] = d.Value
	}
	return out
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse compiles a statement program.
func Parse(src string) (*Program, error) {
	p := &Program{}
	opts := compileOptions()
	for _, raw := range splitStatements(src) {
		name, rhs, err := splitAssignment(raw.text)
		if err != nil {
			return nil, &ErrSyntax{Line: raw.line, Source: raw.text, Err: err}
		}
		draw, err := classify(rhs)
		if err != nil {
			return nil, &ErrSyntax{Line: raw.line, Source: raw.text, Err: err}
		}
		prog, err := expr.Compile(rhs, opts...)
		if err != nil {
			return nil, &ErrSyntax{Line: raw.line, Source: raw.text, Err: err}
		}
		if draw {
			p.draws = append(p.draws, len(p.stmts))
		}
		p.stmts = append(p.stmts, Statement{
			Name:   name,
			Source: rhs,
			Line:   raw.line,
			Draw:   draw,
			prog:   prog,
		})
	}
	if len(p.stmts) == 0 {
		return nil, errors.New("empty program")
	}
	return p, nil
}

// Statements returns the compiled statements in order.
func (p *Program) Statements() []Statement {
	return p.stmts
}

// DrawCount returns the number of random-draw sites.
func (p *Program) DrawCount() int {
	return len(p.draws)
}

// DrawNames returns the variable bound by each draw site, in order.
func (p *Program) DrawNames() []string {
	out := make([]string, len(p.draws))
	for i, idx := range p.draws {
		out[i] = p.stmts[idx].Name
	}
	return out
}

func newEnv() map[string]any {
	return maps.Clone(constants)
}

// Run executes the program once, drawing every random site with rng.
func (p *Program) Run(rng *rand.Rand) (*Binding, error) {
	env := newEnv()
	b := &Binding{Vars: env}
	for _, st := range p.stmts {
		out, err := expr.Run(st.prog, env)
		if err != nil {
			return nil, &ErrRuntime{Line: st.Line, Source: st.Source, Err: err}
		}
		if st.Draw {
			d, ok := out.(Domain)
			if !ok {
				return nil, &ErrRuntime{Line: st.Line, Source: st.Source, Err: fmt.Errorf("draw produced %T", out)}
			}
			out = d.Draw(rng)
			b.Draws = append(b.Draws, Draw{Name: st.Name, Domain: d, Value: out})
		}
		env[st.Name] = out
	}
	return b, nil
}

// Evaluate executes the deterministic remainder of the program with every
// draw site fixed to the matching entry of values. Each call works on a
// fresh namespace.
func (p *Program) Evaluate(values []any) (*Binding, error) {
	if len(values) != len(p.draws) {
		return nil, fmt.Errorf("evaluate: got %d values for %d draw sites", len(values), len(p.draws))
	}
	env := newEnv()
	b := &Binding{Vars: env}
	next := 0
	for _, st := range p.stmts {
		if st.Draw {
			v := values[next]
			next++
			b.Draws = append(b.Draws, Draw{Name: st.Name, Value: v})
			env[st.Name] = v
			continue
		}
		out, err := expr.Run(st.prog, env)
		if err != nil {
			return nil, &ErrRuntime{Line: st.Line, Source: st.Source, Err: err}
		}
		env[st.Name] = out
	}
	return b, nil
}

// classify reports whether rhs is a draw site. Draw calls anywhere except
// the root of the expression are rejected.
func classify(rhs string) (bool, error) {
	tree, err := parser.Parse(rhs)
	if err != nil {
		return false, err
	}
	root := false
	if call, ok := tree.Node.(*ast.CallNode); ok {
		if id, ok := call.Callee.(*ast.IdentifierNode); ok && drawFuncs[id.Value] {
			root = true
		}
	}
	v := &drawCounter{}
	ast.Walk(&tree.Node, v)
	switch {
	case v.count > 1, v.count == 1 && !root:
		return false, fmt.Errorf("%s must be the whole right-hand side", v.first)
	}
	return root, nil
}

type drawCounter struct {
	count int
	first string
}

func (v *drawCounter) Visit(node *ast.Node) {
	call, ok := (*node).(*ast.CallNode)
	if !ok {
		return
	}
	id, ok := call.Callee.(*ast.IdentifierNode)
	if !ok || !drawFuncs[id.Value] {
		return
	}
	if v.count == 0 {
		v.first = id.Value
	}
	v.count++
}

// splitAssignment splits "name = expr" at the first top-level '=' that is
// not part of a comparison operator.
func splitAssignment(s string) (string, string, error) {
	depth := 0
	var quote rune
	runes := []rune(s)
	for i, r := range runes {
		if quote != 0 {
			if r == quote && (i == 0 || runes[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '=' {
				return "", "", errors.New("expected assignment, found comparison")
			}
			if i > 0 && strings.ContainsRune("=!<>", runes[i-1]) {
				continue
			}
			name := strings.TrimSpace(string(runes[:i]))
			rhs := strings.TrimSpace(string(runes[i+1:]))
			if !identRe.MatchString(name) {
				return "", "", fmt.Errorf("invalid variable name %q", name)
			}
			if rhs == "" {
				return "", "", errors.New("missing expression")
			}
			return name, rhs, nil
		}
	}
	return "", "", errors.New("expected assignment")
}

type rawStatement struct {
	text string
	line int
}

// splitStatements splits source on newlines and ';' outside brackets and
// string literals. Lines whose first non-blank characters are '#' or '//'
// are comments.
func splitStatements(src string) []rawStatement {
	var (
		out   []rawStatement
		cur   strings.Builder
		depth int
		quote rune
		prev  rune
		line  = 1
		start = 1
	)
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			out = append(out, rawStatement{text: t, line: start})
		}
		cur.Reset()
	}
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for li, l := range lines {
		line = li + 1
		trimmed := strings.TrimSpace(l)
		if quote == 0 && depth == 0 && (strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")) {
			continue
		}
		if strings.TrimSpace(cur.String()) == "" {
			start = line
		}
		for _, r := range l {
			if quote != 0 {
				if r == quote && prev != '\\' {
					quote = 0
				}
				cur.WriteRune(r)
				prev = r
				continue
			}
			switch r {
			case '"', '\'', '`':
				quote = r
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			case ';':
				if depth <= 0 {
					flush()
					start = line
					prev = r
					continue
				}
			}
			cur.WriteRune(r)
			prev = r
		}
		if depth > 0 || quote != 0 {
			cur.WriteRune('\n')
			continue
		}
		flush()
	}
	flush()
	return out
}
