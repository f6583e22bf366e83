// Package cmd - normalize command
package cmd

import (
	"github.com/spf13/cobra"

	"clinic-tariff/core/output"
	"clinic-tariff/core/pricing"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var params paramFlags

	normalizeCmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print the parameters the calculator would price",
		Long: `Snap and clamp raw calculator input and print the result as JSON.

Examples:
  clinic-tariff normalize --period 7.5 --patients 25400 --branches 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := a.price(&params)
			if err != nil {
				return err
			}
			return output.WriteJSON(cmd.OutOrStdout(), struct {
				pricing.Parameters
				Flags pricing.Flags `json:"flags"`
			}{p, pricing.FlagsFor(p)})
		},
	}

	params.register(normalizeCmd)
	return normalizeCmd
}
