// Package seed derives the explicit random seeds threaded through variant
// generation.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Derive maps parts to a stable 64-bit seed. The same parts always give
// the same seed on every platform.
func Derive(parts ...any) uint64 {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('|')
		}
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case uint64:
			b.WriteString(strconv.FormatUint(v, 10))
		default:
			b.WriteString("?")
		}
	}
	h := sha256.Sum256([]byte(b.String()))
	return binary.LittleEndian.Uint64(h[:8])
}

// Rand returns a PCG-backed generator for s.
func Rand(s uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}
