package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var measurementsDate string

var measurementsCmd = &cobra.Command{
	Use:   "measurements",
	Short: "Inspect glucose measurements",
}

var measurementsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count every measurement stored in the pod",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		ctx, s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.cleanup()

		n, err := s.svcs.Measurements.CountAll(ctx, s.profile.StorageLocation)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var measurementsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the measurements of a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		ctx, s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.cleanup()

		date := measurementsDate
		if date == "" {
			date = s.svcs.Measurements.Today()
		}
		items, err := s.svcs.Measurements.ListForDate(ctx, s.profile.StorageLocation, date)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, e := range items {
			fmt.Fprintf(w, "%s  %-12s %7.1f mg/dL  %s\n", e.InsertedAt, e.TimeSlot, e.Value, e.ID)
		}
		return nil
	},
}

func init() {
	measurementsListCmd.Flags().StringVar(&measurementsDate, "date", "", "Day as YYYY-MM-DD (default today)")
	measurementsCmd.AddCommand(measurementsCountCmd)
	measurementsCmd.AddCommand(measurementsListCmd)
}
