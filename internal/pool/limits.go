package pool

// Limits bounds the combinatorial sampling. The values are tunable
// defaults, not coverage guarantees.
type Limits struct {
	// MaxCombinations is the Cartesian-product size at or below which every
	// combination is enumerated.
	MaxCombinations int `yaml:"max_combinations"`

	// ContinuousSample caps boundary-biased sampling.
	ContinuousSample int `yaml:"continuous_sample"`

	// ContinuousAttempts bounds the random fill of boundary-biased sampling.
	ContinuousAttempts int `yaml:"continuous_attempts"`

	// DiscreteSample caps proportional and uniform sampling.
	DiscreteSample int `yaml:"discrete_sample"`

	// LargeDomain is the domain size above which a domain counts as large.
	LargeDomain int `yaml:"large_domain"`

	// UniformSteps is the number of grid points used to enumerate a
	// continuous draw.
	UniformSteps int `yaml:"uniform_steps"`

	// MaxPoolTexts caps the candidate texts kept for scalar distractors.
	MaxPoolTexts int `yaml:"max_pool_texts"`

	// StructuredAttempts bounds distractor construction for multi-value
	// answers.
	StructuredAttempts int `yaml:"structured_attempts"`
}

// DefaultLimits returns the standard sampling limits.
func DefaultLimits() Limits {
	return Limits{
		MaxCombinations:    20000,
		ContinuousSample:   200,
		ContinuousAttempts: 500,
		DiscreteSample:     1000,
		LargeDomain:        10,
		UniformSteps:       101,
		MaxPoolTexts:       30,
		StructuredAttempts: 500,
	}
}

// WithDefaults returns l with zero fields replaced by defaults.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxCombinations <= 0 {
		l.MaxCombinations = d.MaxCombinations
	}
	if l.ContinuousSample <= 0 {
		l.ContinuousSample = d.ContinuousSample
	}
	if l.ContinuousAttempts <= 0 {
		l.ContinuousAttempts = d.ContinuousAttempts
	}
	if l.DiscreteSample <= 0 {
		l.DiscreteSample = d.DiscreteSample
	}
	if l.LargeDomain <= 0 {
		l.LargeDomain = d.LargeDomain
	}
	if l.UniformSteps < 2 {
		l.UniformSteps = d.UniformSteps
	}
	if l.MaxPoolTexts <= 0 {
		l.MaxPoolTexts = d.MaxPoolTexts
	}
	if l.StructuredAttempts <= 0 {
		l.StructuredAttempts = d.StructuredAttempts
	}
	return l
}
