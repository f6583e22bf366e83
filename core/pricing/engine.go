package pricing

import (
	"github.com/shopspring/decimal"

	"clinic-tariff/core/tariff"
	"clinic-tariff/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the result of one calculation. Money is in rubles,
// percentages are whole percents (12.5 means 12.5%).
type Breakdown struct {
	// PatientBasePrice is the banded monthly price per branch
	PatientBasePrice decimal.Decimal `json:"patient_base_price"`

	// MarketingPrice is the monthly marketing-tier price per branch
	MarketingPrice decimal.Decimal `json:"marketing_price"`

	// SupportPrice is the monthly support surcharge per branch
	SupportPrice decimal.Decimal `json:"support_price"`

	// MessagingPrice is the flat monthly cost of extra numbers, not per branch
	MessagingPrice decimal.Decimal `json:"messaging_price"`

	// ImplementationCost is the one-time onboarding fee
	ImplementationCost decimal.Decimal `json:"implementation_cost"`

	// PeriodDiscountPercent is the raw subscription-length discount
	PeriodDiscountPercent decimal.Decimal `json:"period_discount_percent"`

	// NetworkDiscountPercent is the raw branch-count discount
	NetworkDiscountPercent decimal.Decimal `json:"network_discount_percent"`

	// DiscountPercent is the combined discount after the cap
	DiscountPercent decimal.Decimal `json:"discount_percent"`

	// MonthlyPerBranch is the discounted monthly cost of one branch, messaging excluded
	MonthlyPerBranch decimal.Decimal `json:"monthly_per_branch"`

	// TotalForPeriod is the amount billed over the whole period
	TotalForPeriod decimal.Decimal `json:"total_for_period"`

	// BeforeDiscountTotal is the undiscounted branch cost over the period, messaging excluded
	BeforeDiscountTotal decimal.Decimal `json:"before_discount_total"`

	Branches     int `json:"branches"`
	PeriodMonths int `json:"period_months"`
}

// RawDiscountPercent is period + network discount before the cap
func (b Breakdown) RawDiscountPercent() decimal.Decimal {
	return b.PeriodDiscountPercent.Add(b.NetworkDiscountPercent)
}

// PerBranchList is the undiscounted monthly price of one branch
func (b Breakdown) PerBranchList() decimal.Decimal {
	return b.PatientBasePrice.Add(b.MarketingPrice).Add(b.SupportPrice)
}

// Calculator prices parameters against one tariff revision
type Calculator struct {
	revision tariff.Revision
}

// NewCalculator creates a calculator for a validated revision
func NewCalculator(rev tariff.Revision) (*Calculator, error) {
	if err := rev.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{revision: rev}, nil
}

// Revision returns the tariff revision the calculator prices with
func (c *Calculator) Revision() tariff.Revision {
	return c.revision
}

// Calculate prices the parameters. Out-of-domain input yields a
// TypeDomain error naming the field; values are never clamped here.
func (c *Calculator) Calculate(p Parameters) (Breakdown, error) {
	rev := c.revision

	periodPct, ok := rev.PeriodDiscount(p.PeriodMonths)
	if !ok {
		return Breakdown{}, errors.Domain(FieldPeriod, p.PeriodMonths)
	}
	if p.PatientBase < MinPatientBase || p.PatientBase > MaxPatientBase {
		return Breakdown{}, errors.Domain(FieldPatients, p.PatientBase)
	}
	if p.Branches < 1 {
		return Breakdown{}, errors.Domain(FieldBranches, p.Branches)
	}
	if p.MessagingNumbers < 0 {
		return Breakdown{}, errors.Domain(FieldMessaging, p.MessagingNumbers)
	}
	marketing, ok := rev.MarketingPrice(p.Marketing)
	if !ok {
		return Breakdown{}, errors.Domain(FieldMarketing, string(p.Marketing))
	}
	support, ok := rev.SupportPrice(p.Support)
	if !ok {
		return Breakdown{}, errors.Domain(FieldSupport, string(p.Support))
	}

	networkPct := rev.NetworkDiscount(p.Branches)
	discountPct := decimal.Min(rev.DiscountCapPercent, periodPct.Add(networkPct))

	b := Breakdown{
		PatientBasePrice:       rev.PatientBasePrice(p.PatientBase),
		MarketingPrice:         marketing,
		SupportPrice:           support,
		MessagingPrice:         rev.MessagingPrice(p.MessagingNumbers),
		ImplementationCost:     rev.ImplementationCost(p.Marketing),
		PeriodDiscountPercent:  periodPct,
		NetworkDiscountPercent: networkPct,
		DiscountPercent:        discountPct,
		Branches:               p.Branches,
		PeriodMonths:           p.PeriodMonths,
	}

	branches := decimal.NewFromInt(int64(p.Branches))
	months := decimal.NewFromInt(int64(p.PeriodMonths))
	list := b.PerBranchList()

	b.MonthlyPerBranch = list.Mul(hundred.Sub(discountPct)).Div(hundred)
	b.TotalForPeriod = b.MonthlyPerBranch.Mul(branches).Add(b.MessagingPrice).Mul(months)
	b.BeforeDiscountTotal = list.Mul(branches).Mul(months)

	return b, nil
}

var defaultCalculator = mustCalculator(tariff.Current())

func mustCalculator(rev tariff.Revision) *Calculator {
	c, err := NewCalculator(rev)
	if err != nil {
		panic(err)
	}
	return c
}

// Calculate prices parameters with the current tariff revision
func Calculate(p Parameters) (Breakdown, error) {
	return defaultCalculator.Calculate(p)
}
