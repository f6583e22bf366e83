// Package tariff - Tariff revisions
// A revision holds every price list, discount schedule and cap the
// calculator needs. Pricing code looks values up here and never hardcodes them.
package tariff

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MarketingTier is the medical-marketing support level
type MarketingTier string

const (
	MarketingBase     MarketingTier = "base"
	MarketingAdvanced MarketingTier = "advanced"
	MarketingPremium  MarketingTier = "premium"
	MarketingExpert   MarketingTier = "expert"
)

// MarketingTiers lists the tiers from cheapest to most expensive
var MarketingTiers = []MarketingTier{MarketingBase, MarketingAdvanced, MarketingPremium, MarketingExpert}

// ParseMarketingTier matches a tier name, ignoring case and surrounding space
func ParseMarketingTier(s string) (MarketingTier, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range MarketingTiers {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// SupportTier is the technical support schedule
type SupportTier string

const (
	SupportWeekdays SupportTier = "weekdays"
	SupportDaily    SupportTier = "daily"
)

// SupportTiers lists the support schedules, default first
var SupportTiers = []SupportTier{SupportWeekdays, SupportDaily}

// ParseSupportTier matches a support schedule, ignoring case and surrounding space
func ParseSupportTier(s string) (SupportTier, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range SupportTiers {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// PatientTier is one band of the patient-base price list
type PatientTier struct {
	// UpTo is the inclusive upper bound (0 = unlimited)
	UpTo int `json:"up_to"`

	// Price is the monthly price per branch
	Price decimal.Decimal `json:"price"`
}

// PeriodDiscount is the discount for a subscription length
type PeriodDiscount struct {
	Months  int             `json:"months"`
	Percent decimal.Decimal `json:"percent"`
}

// NetworkDiscount applies from MinBranches branches upwards
type NetworkDiscount struct {
	MinBranches int             `json:"min_branches"`
	Percent     decimal.Decimal `json:"percent"`
}

// Revision is a complete, self-consistent set of pricing rules
type Revision struct {
	// Name identifies the revision
	Name string `json:"name"`

	// PatientBaseTiers is the banded patient-base price list, ascending
	PatientBaseTiers []PatientTier `json:"patient_base_tiers"`

	// MarketingPrices is the monthly per-branch price of each marketing tier
	MarketingPrices map[MarketingTier]decimal.Decimal `json:"marketing_prices"`

	// ImplementationCosts is the one-time onboarding fee per marketing tier
	ImplementationCosts map[MarketingTier]decimal.Decimal `json:"implementation_costs,omitempty"`

	// DailySupportPrice is the per-branch surcharge for daily support
	DailySupportPrice decimal.Decimal `json:"daily_support_price"`

	// MessagingPricePerNumber is the monthly price of one extra messaging number
	MessagingPricePerNumber decimal.Decimal `json:"messaging_price_per_number"`

	// IncludedMessagingNumbers are billed free
	IncludedMessagingNumbers int `json:"included_messaging_numbers"`

	// PeriodDiscounts is the discount schedule by subscription length
	PeriodDiscounts []PeriodDiscount `json:"period_discounts"`

	// NetworkDiscounts is the discount schedule by branch count, ascending
	NetworkDiscounts []NetworkDiscount `json:"network_discounts"`

	// DiscountCapPercent caps period + network discount
	DiscountCapPercent decimal.Decimal `json:"discount_cap_percent"`
}

// PatientBasePrice returns the per-branch price for a patient base.
// A value equal to a band's upper bound belongs to that band.
func (r Revision) PatientBasePrice(patients int) decimal.Decimal {
	for _, tier := range r.PatientBaseTiers {
		if tier.UpTo == 0 || patients <= tier.UpTo {
			return tier.Price
		}
	}
	// Validate guarantees an unlimited top tier
	return decimal.Zero
}

// MarketingPrice returns the per-branch price of a marketing tier
func (r Revision) MarketingPrice(t MarketingTier) (decimal.Decimal, bool) {
	p, ok := r.MarketingPrices[t]
	return p, ok
}

// ImplementationCost returns the one-time fee for a marketing tier, zero if the revision has none
func (r Revision) ImplementationCost(t MarketingTier) decimal.Decimal {
	return r.ImplementationCosts[t]
}

// SupportPrice returns the per-branch support surcharge
func (r Revision) SupportPrice(s SupportTier) (decimal.Decimal, bool) {
	switch s {
	case SupportWeekdays:
		return decimal.Zero, true
	case SupportDaily:
		return r.DailySupportPrice, true
	}
	return decimal.Zero, false
}

// MessagingPrice returns the flat monthly cost of extra messaging numbers
func (r Revision) MessagingPrice(numbers int) decimal.Decimal {
	billable := numbers - r.IncludedMessagingNumbers
	if billable <= 0 {
		return decimal.Zero
	}
	return r.MessagingPricePerNumber.Mul(decimal.NewFromInt(int64(billable)))
}

// PeriodDiscount returns the discount percent for a subscription length
func (r Revision) PeriodDiscount(months int) (decimal.Decimal, bool) {
	for _, d := range r.PeriodDiscounts {
		if d.Months == months {
			return d.Percent, true
		}
	}
	return decimal.Zero, false
}

// NetworkDiscount returns the discount percent of the highest band reached
func (r Revision) NetworkDiscount(branches int) decimal.Decimal {
	pct := decimal.Zero
	for _, band := range r.NetworkDiscounts {
		if branches < band.MinBranches {
			break
		}
		pct = band.Percent
	}
	return pct
}

// Periods returns the admissible subscription lengths, ascending
func (r Revision) Periods() []int {
	periods := make([]int, 0, len(r.PeriodDiscounts))
	for _, d := range r.PeriodDiscounts {
		periods = append(periods, d.Months)
	}
	sort.Ints(periods)
	return periods
}
