// Package cmd - tariff command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clinic-tariff/core/output"
	"clinic-tariff/core/quote"
	"clinic-tariff/core/tariff"
	"clinic-tariff/core/ui"
)

func newTariffCmd(a *app) *cobra.Command {
	var (
		params  paramFlags
		asHCL   bool
		list    bool
		noColor bool
	)

	tariffCmd := &cobra.Command{
		Use:   "tariff",
		Short: "Print the tariff price lists",
		Long: `Print the price lists of a tariff revision.

With --hcl the revision is written as an HCL tariff file that can be
edited and passed back with --tariff-file.

Examples:
  clinic-tariff tariff
  clinic-tariff tariff --revision legacy
  clinic-tariff tariff --hcl > tariff.hcl
  clinic-tariff tariff --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				fmt.Fprintln(out, strings.Join(tariff.Names(), "\n"))
				return nil
			}

			rev, err := a.revision(&params)
			if err != nil {
				return err
			}
			if asHCL {
				_, err := out.Write(tariff.Render(rev))
				return err
			}

			printTariff(ui.NewWriter(out, noColor || !a.cfg.Output.Color), rev)
			return nil
		},
	}

	params.registerRevision(tariffCmd)
	tariffCmd.Flags().BoolVar(&asHCL, "hcl", false, "print the revision as an HCL tariff file")
	tariffCmd.Flags().BoolVar(&list, "list", false, "list built-in revisions")
	tariffCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return tariffCmd
}

func printTariff(w *ui.Writer, rev tariff.Revision) {
	w.Header("Тариф " + rev.Name)

	w.SubHeader("База пациентов (в месяц на филиал)")
	patients := w.NewTable("Пациентов", "Цена").AlignRight(1)
	from := 0
	for _, tier := range rev.PatientBaseTiers {
		var label string
		switch {
		case tier.UpTo == 0:
			label = "от " + quote.FormatNumber(from+1)
		case from == 0:
			label = "до " + quote.FormatNumber(tier.UpTo)
		default:
			label = quote.FormatNumber(from+1) + " – " + quote.FormatNumber(tier.UpTo)
		}
		from = tier.UpTo
		patients.AddRow(label, quote.FormatRub(tier.Price))
	}
	patients.Render()
	w.Line("")

	w.SubHeader("Мед. маркетинг (в месяц на филиал)")
	marketing := w.NewTable("Уровень", "Цена", "Внедрение").AlignRight(1, 2)
	for _, t := range tariff.MarketingTiers {
		price, _ := rev.MarketingPrice(t)
		marketing.AddRow(output.MarketingLabel(t), quote.FormatRub(price), quote.FormatRub(rev.ImplementationCost(t)))
	}
	marketing.Render()
	w.Line("")

	w.SubHeader("Скидки")
	discounts := w.NewTable("Период", "Скидка").AlignRight(1)
	for _, d := range rev.PeriodDiscounts {
		discounts.AddRow(fmt.Sprintf("%d %s", d.Months, quote.PluralMonths(d.Months)), quote.FormatPercent(d.Percent))
	}
	discounts.Render()
	w.Line("")

	network := w.NewTable("Филиалов", "Скидка").AlignRight(1)
	for _, n := range rev.NetworkDiscounts {
		network.AddRow(fmt.Sprintf("от %d", n.MinBranches), quote.FormatPercent(n.Percent))
	}
	network.Render()
	w.Line("")

	daily, _ := rev.SupportPrice(tariff.SupportDaily)
	w.Info("Техподдержка каждый день: %s на филиал", quote.FormatRub(daily))
	w.Info("Доп. номер WhatsApp: %s в месяц, включено: %d", quote.FormatRub(rev.MessagingPricePerNumber), rev.IncludedMessagingNumbers)
	w.Info("Максимальная скидка: %s", quote.FormatPercent(rev.DiscountCapPercent))
}
