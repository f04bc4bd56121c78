package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSource(t *testing.T) {
	tbl := Table{
		Variables: []TableVar{
			{Name: "n", Kind: "int-range", Values: "1 - 10"},
			{Name: "x", Kind: "Intervalo Decimal", Values: "0.5-2.5"},
			{Name: "c", Kind: "list", Values: "1, 2.5, red"},
			{Name: "skipped", Kind: "list", Values: ""},
			{Name: "untyped", Values: "1, 2"},
		},
		Formula: "n * x",
	}
	src, err := tbl.Source()
	require.NoError(t, err)
	assert.Equal(t,
		"n = randint(1, 10)\nx = uniform(0.5, 2.5)\nc = choice([1, 2.5, \"red\"])\nanswer = n * x\n",
		src)
}

func TestTableSourceErrors(t *testing.T) {
	_, err := Table{Variables: []TableVar{{Name: "n", Kind: "matrix", Values: "1"}}}.Source()
	assert.Error(t, err)

	_, err = Table{Variables: []TableVar{{Name: "n", Kind: "int-range", Values: "ten"}}}.Source()
	assert.Error(t, err)
}

func TestParseTable(t *testing.T) {
	p, err := ParseTable(`{"variables":[{"name":"v","kind":"list","values":"5, 10"},{"name":"r","kind":"int-range","values":"1-4"}],"formula":"v / r"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "r"}, p.DrawNames())

	b, err := p.Evaluate([]any{10, 4})
	require.NoError(t, err)
	ans, ok := b.Answer()
	require.True(t, ok)
	assert.InDelta(t, 2.5, ans, 1e-12)

	_, err = ParseTable("{not json")
	assert.Error(t, err)
}

func TestParseTablePortugueseKeys(t *testing.T) {
	p, err := ParseTable(`{
		"variaveis": [
			{"nome": "v", "tipo": "Lista de Valores", "valores": "5, 10"},
			{"nome": "r", "tipo": "Intervalo Inteiro", "valores": "1-4"},
			{"nome": "sem_tipo", "valores": "7"}
		],
		"formula_resposta": "v / r"
	}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "r"}, p.DrawNames())

	b, err := p.Evaluate([]any{5, 2})
	require.NoError(t, err)
	ans, ok := b.Answer()
	require.True(t, ok)
	assert.InDelta(t, 2.5, ans, 1e-12)

	_, err = ParseTable(`{"variaveis": [{"nome": 3}]}`)
	assert.ErrorContains(t, err, `field "nome"`)
}
