package pricing

import (
	"math"

	"clinic-tariff/core/tariff"
)

// Normalizer snaps and clamps raw input into the calculator's domain
type Normalizer struct {
	periods []int
}

// NewNormalizer creates a normalizer for a revision's period schedule
func NewNormalizer(rev tariff.Revision) Normalizer {
	return Normalizer{periods: rev.Periods()}
}

// Normalize returns parameters that Calculate accepts for any raw input.
// Normalizing already-normalized parameters returns them unchanged.
func (n Normalizer) Normalize(raw RawParameters) Parameters {
	p := Parameters{
		PeriodMonths:     n.snapPeriod(raw.PeriodMonths),
		PatientBase:      snapPatientBase(raw.PatientBase),
		Branches:         raw.Branches,
		MessagingNumbers: raw.MessagingNumbers,
		Marketing:        tariff.MarketingBase,
		Support:          tariff.SupportWeekdays,
	}

	if p.Branches < 1 {
		p.Branches = 1
	}
	if p.MessagingNumbers < 0 {
		p.MessagingNumbers = 0
	}
	if t, ok := tariff.ParseMarketingTier(raw.Marketing); ok {
		p.Marketing = t
	}
	if s, ok := tariff.ParseSupportTier(raw.Support); ok {
		p.Support = s
	}
	return p
}

// snapPeriod picks the nearest admissible period; ties go to the shorter one
func (n Normalizer) snapPeriod(v float64) int {
	if len(n.periods) == 0 {
		return 0
	}
	switch {
	case math.IsNaN(v), math.IsInf(v, -1):
		return n.periods[0]
	case math.IsInf(v, 1):
		return n.periods[len(n.periods)-1]
	}

	best := n.periods[0]
	for _, p := range n.periods[1:] {
		if math.Abs(float64(p)-v) < math.Abs(float64(best)-v) {
			best = p
		}
	}
	return best
}

// snapPatientBase clamps to the allowed range and rounds half-up to the step
func snapPatientBase(v float64) int {
	if math.IsNaN(v) || v <= MinPatientBase {
		return MinPatientBase
	}
	if v >= MaxPatientBase {
		return MaxPatientBase
	}
	snapped := math.Floor(v/PatientBaseStep+0.5) * PatientBaseStep
	return int(math.Max(MinPatientBase, math.Min(MaxPatientBase, snapped)))
}

var defaultNormalizer = NewNormalizer(tariff.Current())

// Normalize snaps raw input to the current revision's domain
func Normalize(raw RawParameters) Parameters {
	return defaultNormalizer.Normalize(raw)
}
