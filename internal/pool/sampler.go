package pool

import (
	"math/rand/v2"
	"slices"

	"github.com/abhisek/examgen/internal/program"
)

// sampler accumulates distinct draw assignments in insertion order.
type sampler struct {
	limits  Limits
	rng     *rand.Rand
	domains []program.Domain
	combos  [][]any
	seen    map[string]bool
}

func (s *sampler) add(combo []any) bool {
	key := comboKey(combo)
	if s.seen[key] {
		return false
	}
	s.seen[key] = true
	s.combos = append(s.combos, combo)
	return true
}

func (s *sampler) random() []any {
	combo := make([]any, len(s.domains))
	for i, d := range s.domains {
		combo[i] = d.Draw(s.rng)
	}
	return combo
}

// exhaustive walks the full Cartesian product with an odometer over the
// gridded domains.
func (s *sampler) exhaustive() {
	grids := make([]program.Domain, len(s.domains))
	for i, d := range s.domains {
		grids[i] = d.Grid(s.limits.UniformSteps)
		if grids[i].Size() == 0 {
			return
		}
	}
	idx := make([]int, len(grids))
	for {
		combo := make([]any, len(grids))
		for i, g := range grids {
			combo[i] = g.At(idx[i])
		}
		s.add(combo)

		i := len(idx) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < grids[i].Size() {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			return
		}
	}
}

// boundary keeps the seed, then moves each numeric draw to its minimum,
// maximum and median with the others held at the seed, then fills with
// random assignments.
func (s *sampler) boundary(total int) {
	limit := min(s.limits.ContinuousSample, total)
	seed := s.combos[0]
	for i, d := range s.domains {
		lo, hi, med, ok := d.Bounds()
		if !ok {
			continue
		}
		for _, v := range []any{lo, hi, med} {
			if len(s.combos) >= limit {
				return
			}
			combo := slices.Clone(seed)
			combo[i] = v
			s.add(combo)
		}
	}
	for attempts := 0; len(s.combos) < limit && attempts < s.limits.ContinuousAttempts; attempts++ {
		s.add(s.random())
	}
}

// proportional gives every large domain a share of the sample in
// proportion to its size and walks that share evenly across the domain,
// drawing the other sites at random. The rest is filled uniformly.
func (s *sampler) proportional(total int) {
	limit := min(s.limits.DiscreteSample, total)

	sum := 0
	for _, d := range s.domains {
		if d.Size() > s.limits.LargeDomain {
			sum += d.Size()
		}
	}
	for i, d := range s.domains {
		n := d.Size()
		if n <= s.limits.LargeDomain || sum == 0 {
			continue
		}
		share := int(float64(limit-1) * float64(n) / float64(sum))
		share = min(share, n)
		for k := 0; k < share && len(s.combos) < limit; k++ {
			combo := s.random()
			combo[i] = d.At(k * n / share)
			s.add(combo)
		}
	}
	s.fill(limit)
}

// uniform fills with random assignments.
func (s *sampler) uniform(total int) {
	s.fill(min(s.limits.DiscreteSample, total))
}

func (s *sampler) fill(limit int) {
	maxAttempts := limit * 2
	for attempts := 0; len(s.combos) < limit && attempts < maxAttempts; attempts++ {
		s.add(s.random())
	}
}
