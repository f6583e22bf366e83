package quote

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-tariff/core/pricing"
	"clinic-tariff/core/tariff"
)

// plain replaces locale grouping spaces with ASCII spaces
func plain(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCalc(t *testing.T, rev tariff.Revision) *pricing.Calculator {
	t.Helper()
	calc, err := pricing.NewCalculator(rev)
	require.NoError(t, err)
	return calc
}

func TestBuildNetworkQuote(t *testing.T) {
	q, err := Build(mustCalc(t, tariff.Current()), pricing.Parameters{
		PeriodMonths:     12,
		PatientBase:      25000,
		Branches:         2,
		MessagingNumbers: 5,
		Marketing:        tariff.MarketingAdvanced,
		Support:          tariff.SupportWeekdays,
	})
	require.NoError(t, err)

	assert.Equal(t, tariff.CurrentName, q.Revision)
	assert.True(t, dec("77700").Equal(q.MonthlyTotal), q.MonthlyTotal.String())
	assert.True(t, dec("25").Equal(q.DiscountPercent))
	assert.True(t, dec("25").Equal(q.DiscountCapPercent))
	assert.True(t, dec("280800").Equal(q.Savings), q.Savings.String())
	assert.False(t, q.IsCapped())
	assert.Equal(t, pricing.Flags{}, q.Flags)
}

func TestBuildEnterpriseQuoteIsCapped(t *testing.T) {
	q, err := Build(mustCalc(t, tariff.Current()), pricing.Parameters{
		PeriodMonths: 12,
		PatientBase:  100000,
		Branches:     10,
		Marketing:    tariff.MarketingExpert,
		Support:      tariff.SupportDaily,
	})
	require.NoError(t, err)

	assert.True(t, q.IsCapped())
	assert.True(t, dec("1093500").Equal(q.MonthlyTotal), q.MonthlyTotal.String())
	assert.True(t, dec("4374000").Equal(q.Savings), q.Savings.String())
	assert.Equal(t, pricing.Flags{BigBase: true, BigNetwork: true}, q.Flags)
}

func TestBuildWithoutDiscountHasNoSavings(t *testing.T) {
	q, err := Build(mustCalc(t, tariff.Current()), pricing.Parameters{
		PeriodMonths:     1,
		PatientBase:      1000,
		Branches:         1,
		MessagingNumbers: 2,
		Marketing:        tariff.MarketingBase,
		Support:          tariff.SupportWeekdays,
	})
	require.NoError(t, err)

	assert.True(t, q.Savings.IsZero())
	assert.True(t, dec("19800").Equal(q.MonthlyTotal), q.MonthlyTotal.String())
}

func TestBuildPropagatesDomainErrors(t *testing.T) {
	_, err := Build(mustCalc(t, tariff.Current()), pricing.Parameters{PeriodMonths: 2})
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	p := pricing.Parameters{
		PeriodMonths: 6,
		PatientBase:  30000,
		Branches:     1,
		Marketing:    tariff.MarketingPremium,
		Support:      tariff.SupportWeekdays,
	}
	a, err := Build(mustCalc(t, tariff.Current()), p)
	require.NoError(t, err)
	b, err := Build(mustCalc(t, tariff.Current()), p)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	legacy, err := Build(mustCalc(t, tariff.Legacy()), p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), legacy.Fingerprint())

	p.Branches = 2
	c, err := Build(mustCalc(t, tariff.Current()), p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestFormatRub(t *testing.T) {
	assert.Equal(t, "932 400 ₽", plain(FormatRub(dec("932400"))))
	assert.Equal(t, "13 122 000 ₽", plain(FormatRub(dec("13122000"))))
	assert.Equal(t, "500 ₽", FormatRub(dec("499.5")))
	assert.Equal(t, "0 ₽", FormatRub(dec("-10")))
	assert.Equal(t, "0 ₽", FormatRub(decimal.Zero))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "25%", FormatPercent(dec("25")))
	assert.Equal(t, "0%", FormatPercent(decimal.Zero))
	assert.Equal(t, "12,5%", FormatPercent(dec("12.5")))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "100 000", plain(FormatNumber(100000)))
	assert.Equal(t, "7", FormatNumber(7))
}

func TestPlurals(t *testing.T) {
	months := map[int]string{1: "месяц", 3: "месяца", 6: "месяцев", 9: "месяцев", 12: "месяцев", 21: "месяц", 22: "месяца"}
	for n, want := range months {
		assert.Equalf(t, want, PluralMonths(n), "months %d", n)
	}

	branches := map[int]string{1: "филиал", 2: "филиала", 4: "филиала", 5: "филиалов", 11: "филиалов", 14: "филиалов", 101: "филиал", 112: "филиалов"}
	for n, want := range branches {
		assert.Equalf(t, want, PluralBranches(n), "branches %d", n)
	}
}
