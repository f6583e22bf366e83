// Package quote - Quote snapshots
// A quote pairs the calculator parameters with their breakdown and the
// derived figures shown to a visitor: monthly total, discount and savings.
package quote

import (
	"github.com/shopspring/decimal"

	"clinic-tariff/core/determinism"
	"clinic-tariff/core/pricing"
	"clinic-tariff/core/tariff"
)

var fingerprints = determinism.NewIDGenerator("quote")

// Quote is an immutable snapshot of one calculation
type Quote struct {
	// Revision names the tariff revision used
	Revision string `json:"revision"`

	// Parameters is the normalized input
	Parameters pricing.Parameters `json:"parameters"`

	// Breakdown is the engine output
	Breakdown pricing.Breakdown `json:"breakdown"`

	// MonthlyTotal is the discounted monthly bill for the whole network, messaging included
	MonthlyTotal decimal.Decimal `json:"monthly_total"`

	// DiscountPercent is the applied (capped) discount
	DiscountPercent decimal.Decimal `json:"discount_percent"`

	// DiscountCapPercent is the revision's discount cap
	DiscountCapPercent decimal.Decimal `json:"discount_cap_percent"`

	// Savings is what the discount saves over the period
	Savings decimal.Decimal `json:"savings"`

	// Flags are UI hints for large clinics
	Flags pricing.Flags `json:"flags"`
}

// New builds a quote from an already computed breakdown
func New(rev tariff.Revision, p pricing.Parameters, b pricing.Breakdown) Quote {
	branches := decimal.NewFromInt(int64(b.Branches))
	months := decimal.NewFromInt(int64(b.PeriodMonths))

	monthly := b.MonthlyPerBranch.Mul(branches).Add(b.MessagingPrice)
	branchPart := b.MonthlyPerBranch.Mul(branches).Mul(months)
	savings := b.BeforeDiscountTotal.Sub(branchPart)
	if savings.IsNegative() {
		savings = decimal.Zero
	}

	return Quote{
		Revision:           rev.Name,
		Parameters:         p,
		Breakdown:          b,
		MonthlyTotal:       monthly,
		DiscountPercent:    b.DiscountPercent,
		DiscountCapPercent: rev.DiscountCapPercent,
		Savings:            savings,
		Flags:              pricing.FlagsFor(p),
	}
}

// Build prices p with calc and wraps the result. p must already be normalized.
func Build(calc *pricing.Calculator, p pricing.Parameters) (Quote, error) {
	b, err := calc.Calculate(p)
	if err != nil {
		return Quote{}, err
	}
	return New(calc.Revision(), p, b), nil
}

// IsCapped reports whether the combined discount hit the cap
func (q Quote) IsCapped() bool {
	return q.Breakdown.RawDiscountPercent().GreaterThan(q.DiscountCapPercent)
}

// Fingerprint identifies the revision and normalized parameters.
// Equal inputs give equal fingerprints across runs.
func (q Quote) Fingerprint() determinism.StableID {
	p := q.Parameters
	return fingerprints.Generatef(q.Revision, p.PeriodMonths, p.PatientBase, p.Branches,
		p.MessagingNumbers, p.Marketing, p.Support)
}
