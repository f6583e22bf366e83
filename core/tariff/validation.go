package tariff

import (
	"github.com/shopspring/decimal"

	"clinic-tariff/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Validate checks that the revision is self-consistent.
// The pricing engine only accepts validated revisions.
func (r Revision) Validate() error {
	if r.Name == "" {
		return invalid("revision name is empty", "name")
	}
	if err := r.validatePatientTiers(); err != nil {
		return err
	}
	if err := r.validateMarketing(); err != nil {
		return err
	}
	if r.DailySupportPrice.IsNegative() {
		return invalid("daily support price is negative", "daily_support_price")
	}
	if r.MessagingPricePerNumber.IsNegative() {
		return invalid("messaging price is negative", "messaging_price_per_number")
	}
	if r.IncludedMessagingNumbers < 0 {
		return invalid("included messaging numbers is negative", "included_messaging_numbers")
	}
	if err := r.validatePeriods(); err != nil {
		return err
	}
	if err := r.validateNetwork(); err != nil {
		return err
	}
	if !isPercent(r.DiscountCapPercent) {
		return invalid("discount cap must be within 0..100", "discount_cap_percent")
	}
	return nil
}

func (r Revision) validatePatientTiers() error {
	tiers := r.PatientBaseTiers
	if len(tiers) == 0 {
		return invalid("patient base price list is empty", "patient_tier")
	}

	prevUpTo := 0
	prevPrice := decimal.Zero
	for i, tier := range tiers {
		last := i == len(tiers)-1
		switch {
		case last && tier.UpTo != 0:
			return invalid("top patient tier must be unlimited", "patient_tier")
		case !last && tier.UpTo <= prevUpTo:
			return invalid("patient tier bounds must be positive and ascending", "patient_tier")
		}
		if tier.Price.IsNegative() {
			return invalid("patient tier price is negative", "patient_tier")
		}
		if tier.Price.LessThan(prevPrice) {
			return invalid("patient tier prices must not decrease", "patient_tier")
		}
		prevUpTo = tier.UpTo
		prevPrice = tier.Price
	}
	return nil
}

func (r Revision) validateMarketing() error {
	var prev *decimal.Decimal
	for _, t := range MarketingTiers {
		price, ok := r.MarketingPrices[t]
		if !ok {
			return invalid("marketing tier has no price: "+string(t), "marketing")
		}
		if price.IsNegative() {
			return invalid("marketing price is negative: "+string(t), "marketing")
		}
		if prev != nil && !price.GreaterThan(*prev) {
			return invalid("marketing prices must strictly increase from base to expert", "marketing")
		}
		p := price
		prev = &p

		if cost, ok := r.ImplementationCosts[t]; ok && cost.IsNegative() {
			return invalid("implementation cost is negative: "+string(t), "marketing")
		}
	}
	if len(r.MarketingPrices) != len(MarketingTiers) {
		return invalid("unknown marketing tier in price list", "marketing")
	}
	for t := range r.ImplementationCosts {
		if _, ok := r.MarketingPrices[t]; !ok {
			return invalid("implementation cost for unknown tier: "+string(t), "marketing")
		}
	}
	return nil
}

func (r Revision) validatePeriods() error {
	if len(r.PeriodDiscounts) == 0 {
		return invalid("period discount schedule is empty", "period_discount")
	}
	seen := make(map[int]bool, len(r.PeriodDiscounts))
	for _, d := range r.PeriodDiscounts {
		if d.Months < 1 {
			return invalid("period must be at least one month", "period_discount")
		}
		if seen[d.Months] {
			return invalid("duplicate period in discount schedule", "period_discount")
		}
		seen[d.Months] = true
		if !isPercent(d.Percent) {
			return invalid("period discount must be within 0..100", "period_discount")
		}
	}
	return nil
}

func (r Revision) validateNetwork() error {
	bands := r.NetworkDiscounts
	if len(bands) == 0 || bands[0].MinBranches != 1 {
		return invalid("network discount schedule must start at one branch", "network_discount")
	}
	for i, band := range bands {
		if i > 0 && band.MinBranches <= bands[i-1].MinBranches {
			return invalid("network discount bands must ascend", "network_discount")
		}
		if !isPercent(band.Percent) {
			return invalid("network discount must be within 0..100", "network_discount")
		}
	}
	return nil
}

func isPercent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

func invalid(message, field string) error {
	return errors.New(errors.TypeTariff, message).WithContext("field", field)
}
