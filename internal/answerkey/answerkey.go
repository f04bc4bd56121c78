// Package answerkey distributes correct-answer letters over the multiple
// choice questions of an exam and rotates them between versions.
package answerkey

import (
	"math/rand/v2"
	"slices"

	"github.com/abhisek/examgen/internal/question"
)

// Key is a base answer key: Key[i] is the 0-based letter index of
// position i. Positions that are not multiple choice hold -1.
type Key []int

// Assign builds the base key for the first version. sizes[i] is the number
// of alternatives of position i, or 0 for positions that take no letter.
//
// With balance set, letters are handed out least-used first so that, when
// all positions share the same alphabet, the most and least used letters
// differ by at most one. A single position, or balance unset, gets a
// uniformly random letter.
func Assign(sizes []int, balance bool, rng *rand.Rand) Key {
	key := make(Key, len(sizes))
	var positions []int
	for i, n := range sizes {
		key[i] = -1
		if n > 0 {
			positions = append(positions, i)
		}
	}
	if len(positions) == 1 || !balance {
		for _, i := range positions {
			key[i] = rng.IntN(sizes[i])
		}
		return key
	}

	// Most constrained positions first; equal sizes in random order.
	rng.Shuffle(len(positions), func(a, b int) { positions[a], positions[b] = positions[b], positions[a] })
	slices.SortStableFunc(positions, func(a, b int) int { return sizes[a] - sizes[b] })

	counts := make([]int, question.MaxAlternatives)
	for _, i := range positions {
		n := min(sizes[i], question.MaxAlternatives)
		best := []int{0}
		for l := 1; l < n; l++ {
			switch {
			case counts[l] < counts[best[0]]:
				best = []int{l}
			case counts[l] == counts[best[0]]:
				best = append(best, l)
			}
		}
		l := best[rng.IntN(len(best))]
		key[i] = l
		counts[l]++
	}
	return key
}

// Rotate shifts letter by offset positions through an alphabet of size
// letters.
func Rotate(letter, offset, size int) int {
	if letter < 0 || size <= 0 {
		return letter
	}
	r := (letter + offset) % size
	if r < 0 {
		r += size
	}
	return r
}

// ForVersion returns the key of version v: every letter of base rotated by
// v*step within its own alphabet.
func (k Key) ForVersion(v, step int, sizes []int) Key {
	out := make(Key, len(k))
	for i, l := range k {
		out[i] = Rotate(l, v*step, sizes[i])
	}
	return out
}

// Counts returns how many positions hold each letter.
func (k Key) Counts() []int {
	counts := make([]int, question.MaxAlternatives)
	for _, l := range k {
		if l >= 0 && l < len(counts) {
			counts[l]++
		}
	}
	return counts
}

// Letter returns the display letter of index i.
func Letter(i int) string {
	if i < 0 || i >= len(question.Letters) {
		return ""
	}
	return question.Letters[i]
}
