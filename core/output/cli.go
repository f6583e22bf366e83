package output

import (
	"fmt"
	"io"

	"clinic-tariff/core/quote"
	"clinic-tariff/core/tariff"
	"clinic-tariff/core/ui"
)

var marketingLabels = map[tariff.MarketingTier]string{
	tariff.MarketingBase:     "Base",
	tariff.MarketingAdvanced: "Advanced",
	tariff.MarketingPremium:  "Premium",
	tariff.MarketingExpert:   "Expert",
}

var supportLabels = map[tariff.SupportTier]string{
	tariff.SupportWeekdays: "В рабочие дни",
	tariff.SupportDaily:    "Каждый день",
}

// MarketingLabel is the display name of a marketing tier
func MarketingLabel(t tariff.MarketingTier) string {
	if l, ok := marketingLabels[t]; ok {
		return l
	}
	return string(t)
}

// SupportLabel is the display name of a support tier
func SupportLabel(s tariff.SupportTier) string {
	if l, ok := supportLabels[s]; ok {
		return l
	}
	return string(s)
}

// CLIFormatter renders a quote as a terminal report
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a terminal report formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, q *quote.Quote) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	p, b := q.Parameters, q.Breakdown

	out.Header("Расчёт тарифа")

	out.SubHeader("Параметры")
	params := out.NewTable("Параметр", "Значение")
	params.AddRow("Период", fmt.Sprintf("%d %s", p.PeriodMonths, quote.PluralMonths(p.PeriodMonths)))
	params.AddRow("База пациентов", quote.FormatNumber(p.PatientBase))
	params.AddRow("Филиалы", fmt.Sprintf("%d %s", p.Branches, quote.PluralBranches(p.Branches)))
	params.AddRow("Доп. номера WhatsApp", quote.FormatNumber(p.MessagingNumbers))
	params.AddRow("Мед. маркетинг", MarketingLabel(p.Marketing))
	params.AddRow("Техподдержка", SupportLabel(p.Support))
	params.AddRow("Тариф", q.Revision)
	params.Render()
	out.Line("")

	if f.opts.ShowDetails {
		out.SubHeader("Разложение цены")
		details := out.NewTable("Статья", "В месяц").AlignRight(1)
		details.AddRow("Поддержка ММ (на филиал)", quote.FormatRub(b.MarketingPrice))
		details.AddRow("База пациентов (на филиал)", quote.FormatRub(b.PatientBasePrice))
		details.AddRow("Техподдержка (на филиал)", quote.FormatRub(b.SupportPrice))
		details.AddRow("WhatsApp номера", quote.FormatRub(b.MessagingPrice))
		details.AddRow("Скидка за период", quote.FormatPercent(b.PeriodDiscountPercent))
		details.AddRow("Скидка за сеть", quote.FormatPercent(b.NetworkDiscountPercent))
		details.AddRow("Филиал со скидкой", quote.FormatRub(b.MonthlyPerBranch))
		details.Render()
		out.Line("")
	}

	out.SubHeader("Итоги")
	out.Box(
		"В месяц:          "+quote.FormatRub(q.MonthlyTotal),
		"Итого за период:  "+quote.FormatRub(b.TotalForPeriod),
		"Без скидки:       "+quote.FormatRub(b.TotalForPeriod.Add(q.Savings)),
		"Внедрение:        "+quote.FormatRub(b.ImplementationCost),
	)

	if q.DiscountPercent.IsPositive() {
		out.Success("С учётом скидки −%s, экономия %s", quote.FormatPercent(q.DiscountPercent), quote.FormatRub(q.Savings))
	}
	if q.IsCapped() {
		out.Warning("Скидка ограничена максимумом %s", quote.FormatPercent(q.DiscountCapPercent))
	}
	if q.Flags.BigBase || q.Flags.BigNetwork {
		out.Info("Для крупных клиник доступны индивидуальные условия")
	}
	return nil
}
