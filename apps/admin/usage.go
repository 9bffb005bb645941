package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newUsageCmd(cli *commandLine) *cobra.Command {
	var (
		days   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show the party usage report",
		Long:  "Display the per-member and total AI usage of the party over the last days, as a table on a terminal and as JSON otherwise.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return errors.Errorf("--days must be positive (got %d)", days)
			}
			return cli.usage(cmd.Context(), time.Duration(days)*24*time.Hour, asJSON || !isTerminalFunc())
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Number of days covered by the report")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func (cli *commandLine) usage(ctx context.Context, window time.Duration, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rep, err := cli.usageSvc.Report(ctx, window)
	if err != nil {
		return errors.Wrap(err, "building usage report")
	}

	if asJSON {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Fprintf(cli.out, "Usage since %s (%s: $%.2f/M in, $%.2f/M out)\n\n",
		rep.Since, rep.Pricing.Model, rep.Pricing.InputPerMillion, rep.Pricing.OutputPerMillion)
	writer := tabwriter.NewWriter(cli.out, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "MEMBER\tMESSAGES\tINPUT\tOUTPUT\tCOST (USD)")
	for _, u := range rep.Users {
		fmt.Fprintf(writer, "%s\t%d\t%d\t%d\t%.4f\n", u.Name, u.Messages, u.InputTokens, u.OutputTokens, u.CostUSD)
	}
	t := rep.Totals
	fmt.Fprintf(writer, "TOTAL\t%d\t%d\t%d\t%.4f\n", t.Messages, t.InputTokens, t.OutputTokens, t.CostUSD)
	return writer.Flush()
}
