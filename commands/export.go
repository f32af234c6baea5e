package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiftworks/timeclock/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		startDate string
		endDate   string
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export time records for a date range",
		Long: `Export time records whose date falls in the inclusive range as CSV,
XLSX, or an iCalendar of closed sessions. An empty range produces a
header-only document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, date := range []string{startDate, endDate} {
				if _, err := time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
				}
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer store.Close()

			entries := store.Entries()

			var (
				data     []byte
				filename string
			)
			switch format {
			case "csv":
				data, err = export.CSV(entries, startDate, endDate)
				filename = export.CSVFilename(startDate, endDate)
			case "xlsx":
				data, err = export.XLSX(entries, startDate, endDate)
				filename = export.XLSXFilename(startDate, endDate)
			case "ics":
				data, err = export.ICS(entries, startDate, endDate)
				filename = export.ICSFilename(startDate, endDate)
			default:
				return fmt.Errorf("unknown format %q (csv, xlsx, ics)", format)
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if output != "" {
				filename = output
			}
			if err := os.WriteFile(filename, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", filename, err)
			}

			fmt.Printf("Exported %s\n", filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Range end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format (csv, xlsx, ics)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default time-records-<start>-to-<end>.<ext>)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		print  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render all time records as a printable HTML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := export.Report(store.Entries(), time.Now(), print)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "time-records-report.html", "Output file")
	cmd.Flags().BoolVar(&print, "print", false, "Open the print dialog when the document loads")
	return cmd
}
