package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "report <YYYY-MM>",
		Short: "Summarize transactions per trust for one month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := args[0]
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := st.MonthlyReport(cmd.Context(), month)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report for month=%s:\n", month)
			if len(report) == 0 {
				fmt.Fprintln(out, "  no transactions")
			}
			for _, r := range report {
				fmt.Fprintf(out, "  %s: records=%d total=%s\n", r.TrustName, r.Count, r.Total.StringFixed(2))
				if !list {
					continue
				}
				for _, tx := range r.Transactions {
					fmt.Fprintf(out, "    %d|%s|%s|%s|%s\n", tx.ID, tx.TransactionDate, tx.TransactionType, tx.Amount.StringFixed(2), tx.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list the matching transactions")
	return cmd
}
