package program

import (
	"errors"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

// Names of the random-draw primitives. A statement whose right-hand side
// is a call to one of these is a draw site.
const (
	fnChoice  = "choice"
	fnRandint = "randint"
	fnUniform = "uniform"
)

var drawFuncs = map[string]bool{fnChoice: true, fnRandint: true, fnUniform: true}

// Constants available to every program.
var constants = map[string]any{
	"pi": math.Pi,
}

func unary(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(params))
		}
		x, ok := ToFloat(params[0])
		if !ok {
			return nil, fmt.Errorf("%s: argument is not a number: %v", name, params[0])
		}
		return fn(x), nil
	})
}

func binary(name string, fn func(a, b float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(params))
		}
		a, ok := ToFloat(params[0])
		if !ok {
			return nil, fmt.Errorf("%s: first argument is not a number: %v", name, params[0])
		}
		b, ok := ToFloat(params[1])
		if !ok {
			return nil, fmt.Errorf("%s: second argument is not a number: %v", name, params[1])
		}
		return fn(a, b), nil
	})
}

func roundTo(x, digits float64) float64 {
	p := math.Pow(10, digits)
	return math.Round(x*p) / p
}

// compileOptions returns the expr options shared by every statement.
func compileOptions() []expr.Option {
	return []expr.Option{
		unary("sqrt", math.Sqrt),
		unary("exp", math.Exp),
		unary("ln", math.Log),
		unary("log10", math.Log10),
		unary("sin", math.Sin),
		unary("cos", math.Cos),
		unary("tan", math.Tan),
		unary("asin", math.Asin),
		unary("acos", math.Acos),
		unary("atan", math.Atan),
		unary("radians", func(x float64) float64 { return x * math.Pi / 180 }),
		unary("degrees", func(x float64) float64 { return x * 180 / math.Pi }),
		binary("pow", math.Pow),
		binary("atan2", math.Atan2),
		binary("hypot", math.Hypot),
		binary("roundTo", roundTo),
		expr.Function("log", logFunc),
		expr.Function(fnChoice, choiceFunc),
		expr.Function(fnRandint, randintFunc),
		expr.Function(fnUniform, uniformFunc),
	}
}

// logFunc is the natural logarithm, or log base b with a second argument.
func logFunc(params ...any) (any, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, fmt.Errorf("log: expected 1 or 2 arguments, got %d", len(params))
	}
	x, ok := ToFloat(params[0])
	if !ok {
		return nil, fmt.Errorf("log: argument is not a number: %v", params[0])
	}
	if len(params) == 1 {
		return math.Log(x), nil
	}
	b, ok := ToFloat(params[1])
	if !ok {
		return nil, fmt.Errorf("log: base is not a number: %v", params[1])
	}
	return math.Log(x) / math.Log(b), nil
}

func choiceFunc(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("choice: expected 1 argument, got %d", len(params))
	}
	values, ok := toSlice(params[0])
	if !ok {
		return nil, fmt.Errorf("choice: argument is not a list: %v", params[0])
	}
	if len(values) == 0 {
		return nil, errors.New("choice: empty list")
	}
	return ListDomain(values...), nil
}

func randintFunc(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("randint: expected 2 arguments, got %d", len(params))
	}
	lo, ok1 := toInt(params[0])
	hi, ok2 := toInt(params[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("randint: bounds must be integers: %v, %v", params[0], params[1])
	}
	d, err := IntRange(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("randint: %w", err)
	}
	return d, nil
}

func uniformFunc(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("uniform: expected 2 arguments, got %d", len(params))
	}
	lo, ok1 := ToFloat(params[0])
	hi, ok2 := ToFloat(params[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("uniform: bounds must be numbers: %v, %v", params[0], params[1])
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return Uniform(lo, hi), nil
}
