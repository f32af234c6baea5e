package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiftworks/timeclock/clock"
	"github.com/shiftworks/timeclock/timelog"
)

func newClockInCmd(opts *rootOptions) *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "clock-in <employee-id> <employee-name>",
		Short: "Open a work session for an employee",
		Args:  cobra.MinimumNArgs(2),
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

			engine := clock.New(store)
			name := strings.Join(args[1:], " ")

			entry, err := engine.ClockIn(args[0], name, deviceID)
			if err != nil {
				if errors.Is(err, clock.ErrAlreadyClockedIn) {
					return fmt.Errorf("%s is already clocked in", args[0])
				}
				return err
			}

			fmt.Printf("Clocked in %s (%s) at %s from %s\n",
				entry.EmployeeName, entry.EmployeeID,
				entry.ClockIn.UTC().Format(time.RFC3339), entry.Location)
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device", "", "Originating device ID (empty = manual entry)")
	return cmd
}

func newClockOutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clock-out <employee-id>",
		Short: "Close an employee's open work session",
		Args:  cobra.ExactArgs(1),
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

			engine := clock.New(store)
			entry, err := engine.ClockOut(args[0])
			if err != nil {
				if errors.Is(err, clock.ErrNoOpenSession) {
					fmt.Printf("No open session for %s, nothing to do\n", args[0])
					return nil
				}
				return err
			}

			fmt.Printf("Clocked out %s after %.2f hours\n", entry.EmployeeName, *entry.TotalHours)
			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is clocked in and today's totals",
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

			active := store.ActiveEmployees()
			today := store.TodayEntries()

			var totalHours float64
			for _, e := range today {
				if e.TotalHours != nil {
					totalHours += *e.TotalHours
				}
			}

			fmt.Printf("Date: %s\n", timelog.DateOf(time.Now()))
			fmt.Printf("Currently working: %d\n", len(active))
			for _, e := range active {
				fmt.Printf("  %s (%s) since %s via %s\n",
					e.EmployeeName, e.EmployeeID,
					e.ClockIn.UTC().Format("15:04"), e.Location)
			}
			fmt.Printf("Entries today: %d\n", len(today))
			fmt.Printf("Hours recorded today: %.2f\n", totalHours)
			fmt.Printf("Total records: %d\n", store.Len())
			return nil
		},
	}
}
