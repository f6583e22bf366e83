package tariff

import (
	"sort"

	"github.com/shopspring/decimal"

	"clinic-tariff/internal/errors"
)

const (
	// CurrentName is the authoritative revision
	CurrentName = "implementation-2025"

	// LegacyName is the earlier coarse-network revision
	LegacyName = "coarse-2024"
)

func rub(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func basePriceList() []PatientTier {
	return []PatientTier{
		{UpTo: 4000, Price: rub(6900)},
		{UpTo: 12000, Price: rub(10900)},
		{UpTo: 24000, Price: rub(14900)},
		{UpTo: 40000, Price: rub(16900)},
		{UpTo: 60000, Price: rub(18900)},
		{UpTo: 0, Price: rub(20900)},
	}
}

func marketingPriceList() map[MarketingTier]decimal.Decimal {
	return map[MarketingTier]decimal.Decimal{
		MarketingBase:     rub(9900),
		MarketingAdvanced: rub(29900),
		MarketingPremium:  rub(59900),
		MarketingExpert:   rub(119900),
	}
}

func periodSchedule() []PeriodDiscount {
	return []PeriodDiscount{
		{Months: 1, Percent: pct("0")},
		{Months: 3, Percent: pct("5")},
		{Months: 6, Percent: pct("10")},
		{Months: 9, Percent: pct("15")},
		{Months: 12, Percent: pct("20")},
	}
}

// Current returns the authoritative revision: a 12.5% band at four
// branches, every extra messaging number billed, and implementation fees.
func Current() Revision {
	return Revision{
		Name:             CurrentName,
		PatientBaseTiers: basePriceList(),
		MarketingPrices:  marketingPriceList(),
		ImplementationCosts: map[MarketingTier]decimal.Decimal{
			MarketingBase:     rub(39900),
			MarketingAdvanced: rub(129900),
			MarketingPremium:  rub(199900),
			MarketingExpert:   rub(269900),
		},
		DailySupportPrice:        rub(5000),
		MessagingPricePerNumber:  rub(1500),
		IncludedMessagingNumbers: 0,
		PeriodDiscounts:          periodSchedule(),
		NetworkDiscounts: []NetworkDiscount{
			{MinBranches: 1, Percent: pct("0")},
			{MinBranches: 2, Percent: pct("5")},
			{MinBranches: 3, Percent: pct("10")},
			{MinBranches: 4, Percent: pct("12.5")},
			{MinBranches: 5, Percent: pct("15")},
		},
		DiscountCapPercent: pct("25"),
	}
}

// Legacy returns the earlier revision: no four-branch midpoint, the
// first messaging number included, no implementation fees.
func Legacy() Revision {
	return Revision{
		Name:                     LegacyName,
		PatientBaseTiers:         basePriceList(),
		MarketingPrices:          marketingPriceList(),
		DailySupportPrice:        rub(5000),
		MessagingPricePerNumber:  rub(1500),
		IncludedMessagingNumbers: 1,
		PeriodDiscounts:          periodSchedule(),
		NetworkDiscounts: []NetworkDiscount{
			{MinBranches: 1, Percent: pct("0")},
			{MinBranches: 2, Percent: pct("5")},
			{MinBranches: 3, Percent: pct("10")},
			{MinBranches: 5, Percent: pct("15")},
		},
		DiscountCapPercent: pct("25"),
	}
}

var builtins = map[string]func() Revision{
	CurrentName: Current,
	LegacyName:  Legacy,
	"current":   Current,
	"legacy":    Legacy,
}

// Lookup returns a built-in revision by name or alias
func Lookup(name string) (Revision, error) {
	if name == "" {
		return Current(), nil
	}
	build, ok := builtins[name]
	if !ok {
		return Revision{}, errors.NotFound("tariff revision", name)
	}
	return build(), nil
}

// Names lists the built-in revision names (without aliases)
func Names() []string {
	names := []string{CurrentName, LegacyName}
	sort.Strings(names)
	return names
}
