package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warp/taxman/bas"
	"github.com/warp/taxman/generic"
)

func newReportCmd(a *app) *cobra.Command {
	report := &cobra.Command{
		Use:   "report",
		Short: "Run reports against the ledger",
	}

	basCmd := &cobra.Command{
		Use:   "bas",
		Short: "Print the BAS summary for every period of a fiscal year",
		Long: `Computes GST on sales (1A), GST on purchases (1B) and the net amount
for every period of a fiscal year. Omitted flags fall back to the stored
company settings, then to TAXMAN_REPORT_* defaults.`,
		Example: `  # Current fiscal year, company defaults
  taxman report bas

  # FY2024-25 monthly on cash basis, as JSON
  taxman report bas --fiscal-year 2024 --frequency monthly --basis cash --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBasReport(cmd)
		},
	}
	basCmd.Flags().String("frequency", "", "monthly, quarterly or annual")
	basCmd.Flags().String("basis", "", "cash or accrual")
	basCmd.Flags().Int("fiscal-year", 0, "Calendar year the fiscal year starts in (default: the year containing today)")
	basCmd.Flags().Int("fy-start-month", 0, "Fiscal year start month, 1-12")
	basCmd.Flags().Bool("json", false, "Print the report as JSON")

	report.AddCommand(basCmd)
	return report
}

func (a *app) runBasReport(cmd *cobra.Command) error {
	var o bas.Overrides
	flags := cmd.Flags()
	if flags.Changed("frequency") {
		s, _ := flags.GetString("frequency")
		o.Frequency = &s
	}
	if flags.Changed("basis") {
		s, _ := flags.GetString("basis")
		o.Basis = &s
	}
	if flags.Changed("fiscal-year") {
		n, _ := flags.GetInt("fiscal-year")
		o.FiscalYearStart = &n
	}
	if flags.Changed("fy-start-month") {
		n, _ := flags.GetInt("fy-start-month")
		o.FYStartMonth = &n
	}
	asJSON, _ := flags.GetBool("json")

	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return err
	}
	basis, frequency, fyStartMonth := a.cfg.ReportDefaults()
	defaults := bas.DefaultsFromSettings(settings, bas.Defaults{Basis: basis, Frequency: frequency, FYStartMonth: fyStartMonth})

	req, err := bas.ResolveRequest(defaults, o, generic.DateOf(time.Now()))
	if err != nil {
		return err
	}

	report, err := bas.NewReporter(store, a.cfg.Report.Parallelism, a.log).Run(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(out, report)
}

func printReport(out io.Writer, r *bas.Report) error {
	p := message.NewPrinter(language.English)
	money := func(c generic.Cents) string {
		return p.Sprintf("%.2f", float64(c)/100)
	}

	fmt.Fprintf(out, "BAS %s (%s, %s)\n\n", r.FiscalYearLabel, r.Request.Basis, r.Request.Frequency)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Period\tStart\tEnd\tSales ex\t1A GST\tPurchases ex\t1B GST\tNet GST\t")
	for _, ps := range r.Periods {
		s := ps.Summary
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			ps.Period.Label, ps.Period.Start, ps.Period.End,
			money(s.SalesExCents), money(s.SalesGstCents),
			money(s.PurchasesExCents), money(s.PurchasesGstCents),
			money(s.NetGstCents))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Exceptions) > 0 {
		fmt.Fprintf(out, "\n%d exception(s):\n", len(r.Exceptions))
		for _, e := range r.Exceptions {
			fmt.Fprintf(out, "  [P%d] %s %s: %s\n", e.PeriodIndex, e.SourceType, e.SourceID, e.Message)
		}
	}
	return nil
}
