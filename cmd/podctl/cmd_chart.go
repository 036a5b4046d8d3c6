package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"idhealth/internal/domain/predictions"
	"idhealth/internal/platform/poller"

	"github.com/spf13/cobra"
)

var (
	chartDate     string
	chartInterval time.Duration
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Insulin chart of predicted doses",
}

var chartWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the insulin chart and refresh it periodically",
	Long: `Print one point per distinct predicted insulin value of the day and
refresh until interrupted. A refresh is skipped while the previous one is
still running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ctx, s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.cleanup()

		interval := chartInterval
		if interval <= 0 {
			interval = s.cfg.ChartRefresh
		}
		w := cmd.OutOrStdout()

		poller.Run(ctx, interval, func(ctx context.Context) error {
			date := chartDate
			if date == "" {
				date = s.svcs.Predictions.Today()
			}
			pts, err := s.svcs.Predictions.Chart(ctx, s.profile.StorageLocation, date)
			if err != nil {
				return err
			}
			renderChart(w, date, pts)
			return nil
		}, func(err error) {
			s.log.Error("chart refresh failed", map[string]any{"error": err})
		})
		return nil
	},
}

func renderChart(w io.Writer, date string, pts []predictions.ChartPoint) {
	fmt.Fprintf(w, "== %s (%d points)\n", date, len(pts))
	if len(pts) == 0 {
		fmt.Fprintln(w, "no insulin value found")
		return
	}
	for _, p := range pts {
		fmt.Fprintf(w, "%-14s %-12s glucose %.0f\n", p.Label, p.TimeSlot, p.GlucoseValue)
	}
}

func init() {
	chartWatchCmd.Flags().StringVar(&chartDate, "date", "", "Day as YYYY-MM-DD (default today, re-evaluated on each refresh)")
	chartWatchCmd.Flags().DurationVar(&chartInterval, "interval", 0, "Refresh period (default IDHEALTH_CHART_REFRESH)")
	chartCmd.AddCommand(chartWatchCmd)
}
