package program

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestParseStatements(t *testing.T) {
	src := `
# resistor network
r = choice([10, 20, 30]); v = choice([5, 10])
// current
i = v / r
values = [
  1,
  2
]
answer = i
`
	p, err := Parse(src)
	require.NoError(t, err)

	stmts := p.Statements()
	require.Len(t, stmts, 5)
	assert.Equal(t, "r", stmts[0].Name)
	assert.Equal(t, 3, stmts[0].Line)
	assert.Equal(t, "v", stmts[1].Name)
	assert.Equal(t, 3, stmts[1].Line)
	assert.Equal(t, "values", stmts[3].Name)
	assert.Equal(t, 6, stmts[3].Line)
	assert.Equal(t, 2, p.DrawCount())
	assert.Equal(t, []string{"r", "v"}, p.DrawNames())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "# nothing\n"},
		{"no assignment", "x + 1"},
		{"comparison only", "x == 1"},
		{"bad name", "1x = 2"},
		{"missing rhs", "x = "},
		{"nested draw", "x = 2 * choice([1, 2])"},
		{"two draws", "x = choice([randint(1, 2)])"},
		{"bad expression", "x = (1 +"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			assert.Error(t, err)
		})
	}

	_, err := Parse("x = 2 * choice([1, 2])")
	var syn *ErrSyntax
	require.True(t, errors.As(err, &syn))
	assert.Equal(t, 1, syn.Line)
}

func TestComparisonInsideAssignment(t *testing.T) {
	p, err := Parse("a = 3\nanswer = a >= 2 ? a : 0")
	require.NoError(t, err)

	b, err := p.Run(seeded(1))
	require.NoError(t, err)
	ans, ok := b.Answer()
	require.True(t, ok)
	assert.Equal(t, 3, ans)
}

func TestRunIsDeterministic(t *testing.T) {
	p, err := Parse("r = choice([10, 20, 30]); v = randint(1, 100); w = uniform(0, 1); answer = v / r + w")
	require.NoError(t, err)

	a, err := p.Run(seeded(42))
	require.NoError(t, err)
	b, err := p.Run(seeded(42))
	require.NoError(t, err)

	assert.Equal(t, a.Assignment(), b.Assignment())
	ansA, _ := a.Answer()
	ansB, _ := b.Answer()
	assert.Equal(t, ansA, ansB)
	require.Len(t, a.Draws, 3)
	assert.Equal(t, 3, a.Draws[0].Domain.Size())
	assert.Equal(t, 100, a.Draws[1].Domain.Size())
	assert.True(t, a.Draws[2].Domain.Continuous())
}

func TestEvaluate(t *testing.T) {
	p, err := Parse("r = choice([10, 20, 30])\nv = choice([5, 10])\nanswer = v / r")
	require.NoError(t, err)

	b, err := p.Evaluate([]any{20, 10})
	require.NoError(t, err)
	ans, ok := b.Answer()
	require.True(t, ok)
	assert.InDelta(t, 0.5, ans, 1e-12)

	_, err = p.Evaluate([]any{20})
	assert.Error(t, err)
}

func TestMathFunctions(t *testing.T) {
	p, err := Parse(`
a = sqrt(16)
b = pow(2, 10)
c = roundTo(pi, 2)
d = log(8, 2)
e = hypot(3, 4)
f = degrees(radians(90))
answer = a + b
`)
	require.NoError(t, err)

	b, err := p.Run(seeded(1))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, b.Vars["a"], 1e-12)
	assert.InDelta(t, 1024.0, b.Vars["b"], 1e-12)
	assert.InDelta(t, 3.14, b.Vars["c"], 1e-12)
	assert.InDelta(t, 3.0, b.Vars["d"], 1e-12)
	assert.InDelta(t, 5.0, b.Vars["e"], 1e-12)
	assert.InDelta(t, 90.0, b.Vars["f"], 1e-9)
}

func TestRuntimeError(t *testing.T) {
	p, err := Parse("x = sqrt(\"a\")\nanswer = x")
	require.NoError(t, err)

	_, err = p.Run(seeded(1))
	var rt *ErrRuntime
	require.True(t, errors.As(err, &rt))
	assert.Equal(t, 1, rt.Line)
	assert.Contains(t, rt.Source, "sqrt")
}

func TestIntRangeLimits(t *testing.T) {
	_, err := IntRange(5, 1)
	assert.ErrorContains(t, err, "empty range")

	_, err = IntRange(-(1 << 62), 1<<62)
	assert.ErrorContains(t, err, "too large")

	_, err = IntRange(math.MinInt, math.MaxInt)
	assert.ErrorContains(t, err, "too large")

	_, err = IntRange(0, math.MaxInt)
	assert.ErrorContains(t, err, "too large")

	d, err := IntRange(1, math.MaxInt)
	require.NoError(t, err)
	v := d.Draw(seeded(3)).(int)
	assert.GreaterOrEqual(t, v, 1)
}

func TestDrawDomainErrors(t *testing.T) {
	for _, src := range []string{
		"x = choice([])",
		"x = randint(5, 1)",
		"x = randint(1.5, 3)",
		"x = choice(3)",
		"x = randint(-4611686018427387904, 4611686018427387904)",
	} {
		p, err := Parse(src)
		require.NoError(t, err, src)
		_, err = p.Run(seeded(1))
		assert.Error(t, err, src)
	}
}

func TestDomainBounds(t *testing.T) {
	lo, hi, med, ok := ListDomain(30, 10, 20).Bounds()
	require.True(t, ok)
	assert.Equal(t, 10, lo)
	assert.Equal(t, 30, hi)
	assert.Equal(t, 20, med)

	d, err := IntRange(1, 9)
	require.NoError(t, err)
	lo, hi, med, ok = d.Bounds()
	require.True(t, ok)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 9, hi)
	assert.Equal(t, 5, med)

	_, _, _, ok = ListDomain("a", "b").Bounds()
	assert.False(t, ok)
}

func TestDomainGrid(t *testing.T) {
	g := Uniform(0, 1).Grid(5)
	require.Equal(t, 5, g.Size())
	assert.InDelta(t, 0.0, g.At(0), 1e-12)
	assert.InDelta(t, 0.25, g.At(1), 1e-12)
	assert.InDelta(t, 1.0, g.At(4), 1e-12)

	d, err := IntRange(1, 3)
	require.NoError(t, err)
	assert.Equal(t, d, d.Grid(10))
}

func TestDomainDrawStaysInside(t *testing.T) {
	rng := seeded(7)
	d, err := IntRange(-3, 3)
	require.NoError(t, err)
	for range 200 {
		v := d.Draw(rng).(int)
		assert.GreaterOrEqual(t, v, -3)
		assert.LessOrEqual(t, v, 3)
	}
	u := Uniform(2, 4)
	for range 200 {
		v := u.Draw(rng).(float64)
		assert.False(t, v < 2 || v > 4 || math.IsNaN(v))
	}
}

func TestRecord(t *testing.T) {
	p, err := Parse(`
r = choice([10, 20])
i = 2
answer = {values: {V: r * i, I: i}, textFormat: "V = {V} and I = {I}"}
`)
	require.NoError(t, err)
	b, err := p.Evaluate([]any{10})
	require.NoError(t, err)

	ans, _ := b.Answer()
	rec, ok, err := AsRecord(ans)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"I", "V"}, rec.Fields)
	assert.InDelta(t, 20.0, rec.Values["V"], 1e-12)
	assert.Equal(t, "I=2|V=20", rec.Key())

	_, ok, err = AsRecord(3.5)
	assert.False(t, ok)
	assert.NoError(t, err)

	_, ok, err = AsRecord(map[string]any{"values": map[string]any{"a": "x"}, "textFormat": "{a}"})
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestAnswerAliases(t *testing.T) {
	p, err := Parse("resposta_valor = 12")
	require.NoError(t, err)
	b, err := p.Run(seeded(1))
	require.NoError(t, err)
	ans, ok := b.Answer()
	require.True(t, ok)
	assert.Equal(t, 12, ans)
}
