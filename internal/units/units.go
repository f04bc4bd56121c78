// Package units formats numeric answers for display: engineering prefixes
// for prefixable base units, two-decimal rounding and a decimal comma.
package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ZeroTolerance is the magnitude below which a value is treated as zero.
// It sits below pico so that pF/pA answers survive.
const ZeroTolerance = 1e-15

// PrefixDivisors maps a unit prefix to its multiplier.
var PrefixDivisors = map[string]float64{
	"T": 1e12, "G": 1e9, "M": 1e6, "k": 1e3, "K": 1e3,
	"c": 1e-2, "m": 1e-3, "u": 1e-6, "µ": 1e-6, "n": 1e-9, "p": 1e-12,
}

// BaseUnits is the closed set of units that accept a prefix.
var BaseUnits = map[string]bool{
	"V": true, "A": true, "W": true, "F": true, "H": true, "Hz": true,
	"Ω": true, "C": true, "S": true,
	"s": true, "m": true, "g": true, "N": true, "J": true, "Pa": true,
}

type prefix struct {
	mult   float64
	symbol string
}

// displayPrefixes is ordered from the largest multiplier down.
var displayPrefixes = []prefix{
	{1e12, "T"}, {1e9, "G"}, {1e6, "M"}, {1e3, "k"}, {1, ""},
	{1e-3, "m"}, {1e-6, "µ"}, {1e-9, "n"}, {1e-12, "p"},
}

// IsZero reports whether v is zero within ZeroTolerance.
func IsZero(v float64) bool {
	return math.Abs(v) < ZeroTolerance
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Prefixable reports whether unit accepts an engineering prefix.
func Prefixable(unit string) bool {
	return BaseUnits[unit]
}

// SplitPrefixed splits a token like "mA" into its prefix divisor and base
// unit. ok is false unless the first rune is a known prefix and the rest is
// a prefixable base unit.
func SplitPrefixed(token string) (divisor float64, base string, ok bool) {
	if utf8.RuneCountInString(token) < 2 {
		return 0, "", false
	}
	r, size := utf8.DecodeRuneInString(token)
	d, found := PrefixDivisors[string(r)]
	if !found {
		return 0, "", false
	}
	base = token[size:]
	if !BaseUnits[base] {
		return 0, "", false
	}
	return d, base, true
}

// Format renders v with unit. Prefixable units get an engineering prefix
// ("1,50 mA"); other units only get two-decimal rounding ("3,25 kWh").
// With includeUnit false the base unit is omitted but the prefix is kept
// ("1,50 m").
func Format(v float64, unit string, includeUnit bool) string {
	var num string
	if Prefixable(unit) {
		if IsZero(v) {
			if includeUnit && unit != "" {
				return "0 " + unit
			}
			return "0"
		}
		for _, p := range displayPrefixes {
			if math.Abs(v) >= p.mult {
				num = Number(v / p.mult)
				if includeUnit {
					return strings.TrimSpace(num + " " + p.symbol + unit)
				}
				return strings.TrimSpace(num + " " + p.symbol)
			}
		}
		// Below pico: scientific notation.
		num = strings.Replace(fmt.Sprintf("%.2e", v), ".", ",", 1)
	} else {
		num = Number(v)
	}

	if includeUnit && unit != "" {
		return num + " " + unit
	}
	return num
}

// Number renders v with two decimals and a decimal comma, or as an integer
// when it rounds to one.
func Number(v float64) string {
	r := Round2(v)
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strings.Replace(strconv.FormatFloat(r, 'f', 2, 64), ".", ",", 1)
}

// Display renders a bound variable for a question body: rounded to two
// decimals, integral values without a separator, shortest representation
// otherwise ("2,5" rather than "2,50").
func Display(v float64) string {
	r := Round2(v)
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strings.Replace(strconv.FormatFloat(r, 'f', -1, 64), ".", ",", 1)
}

var zeroText = regexp.MustCompile(`^-?0(,0+)?(\s|$)`)

// IsZeroText reports whether a formatted value reads as zero ("0", "0 A",
// "0,00 kWh").
func IsZeroText(s string) bool {
	return zeroText.MatchString(strings.TrimSpace(s))
}

var decimalPoint = regexp.MustCompile(`(\d)\.(\d)`)

// DecimalComma replaces decimal points between digits with commas.
func DecimalComma(s string) string {
	return decimalPoint.ReplaceAllString(s, "${1},${2}")
}
