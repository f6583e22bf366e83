// Package cmd - apply command
package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinic-tariff/core/analytics"
	"clinic-tariff/core/output"
	"clinic-tariff/core/quote"
	"clinic-tariff/internal/logging"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		params  paramFlags
		track   trackingFlags
		contact quote.Contact
	)

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Build an application payload for a quote",
		Long: `Validate the contact details, price the parameters and print the
application payload as JSON.

MIS is the clinic management system in use, one of:
  ` + strings.Join(quote.MISOptions, ", ") + `

Examples:
  clinic-tariff apply --name "Анна Петрова" --clinic "Улыбка" --phone 89123456789 --mis IDENT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, p, err := a.price(&params)
			if err != nil {
				return err
			}
			q, err := quote.Build(calc, p)
			if err != nil {
				return err
			}
			s, err := quote.NewSubmission(contact, q, time.Now())
			if err != nil {
				return err
			}
			logging.Info("application built", zap.String("id", s.ID.String()), zap.String("mis", s.Contact.MIS))

			tracker, funnel, done, err := a.tracking(cmd, &track)
			defer done()
			if err != nil {
				return err
			}
			if tracker != nil {
				ctx := cmd.Context()
				if err := tracker.Track(ctx, analytics.ApplySubmittedFrom(s)); err != nil {
					return err
				}
				if err := funnel.Submit(ctx); err != nil {
					return err
				}
			}

			return output.WriteJSON(cmd.OutOrStdout(), s)
		},
	}

	params.register(applyCmd)
	track.register(applyCmd)
	applyCmd.Flags().StringVar(&contact.FullName, "name", "", "full name")
	applyCmd.Flags().StringVar(&contact.Clinic, "clinic", "", "clinic name")
	applyCmd.Flags().StringVar(&contact.Phone, "phone", "", "phone number, +7 or 8 followed by 10 digits")
	applyCmd.Flags().StringVar(&contact.Email, "email", "", "e-mail (optional)")
	applyCmd.Flags().StringVar(&contact.MIS, "mis", "", "clinic management system")

	return applyCmd
}
