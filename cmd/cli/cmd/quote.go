// Package cmd - quote command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinic-tariff/core/analytics"
	"clinic-tariff/core/output"
	"clinic-tariff/core/quote"
	"clinic-tariff/internal/logging"
)

func newQuoteCmd(a *app) *cobra.Command {
	var (
		params       paramFlags
		track        trackingFlags
		outputFormat string
		showDetails  bool
		noColor      bool
	)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a subscription",
		Long: `Normalize the calculator parameters and print a quote.

Out-of-range input is snapped to the nearest admissible value: the period
to the closest of 1, 3, 6, 9 or 12 months, the patient base to a multiple
of 1000 within 1000..100000.

Examples:
  clinic-tariff quote
  clinic-tariff quote --period 12 --patients 25000 --branches 2 --messaging 5 --marketing advanced
  clinic-tariff quote --format json --details=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				outputFormat = a.cfg.Output.DefaultFormat
			}
			if !cmd.Flags().Changed("details") {
				showDetails = a.cfg.Output.ShowDetails
			}

			calc, p, err := a.price(&params)
			if err != nil {
				return err
			}
			q, err := quote.Build(calc, p)
			if err != nil {
				return err
			}
			logging.Debug("quote built",
				zap.String("revision", q.Revision),
				zap.String("fingerprint", string(q.Fingerprint())),
				zap.String("total", q.Breakdown.TotalForPeriod.String()))

			formatter, err := output.Get(outputFormat, output.Options{
				NoColor:     noColor || !a.cfg.Output.Color,
				ShowDetails: showDetails,
			})
			if err != nil {
				return err
			}

			if err := trackQuote(cmd, a, &track, q, showDetails); err != nil {
				return err
			}
			return formatter.Render(cmd.OutOrStdout(), &q)
		},
	}

	params.register(quoteCmd)
	track.register(quoteCmd)
	quoteCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
	quoteCmd.Flags().BoolVarP(&showDetails, "details", "d", true, "show the per-branch price breakdown")
	quoteCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return quoteCmd
}

// trackQuote replays the calculator funnel for one quote
func trackQuote(cmd *cobra.Command, a *app, track *trackingFlags, q quote.Quote, details bool) error {
	tracker, funnel, done, err := a.tracking(cmd, track)
	defer done()
	if err != nil || tracker == nil {
		return err
	}
	ctx := cmd.Context()

	d := analytics.NewDebouncer(a.debounceDelay())
	defer d.Stop()
	tracker.TrackDebounced(ctx, d, analytics.ParamChanged{Parameters: q.Parameters, Platform: "cli"})
	d.Flush()

	if err := funnel.Edit(ctx); err != nil {
		return err
	}
	if details {
		if err := funnel.Breakdown(ctx); err != nil {
			return err
		}
	}
	return tracker.Track(ctx, analytics.QuoteSubmittedFrom(q))
}
