package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trainingCmd = &cobra.Command{
	Use:   "training",
	Short: "Model training history and trigger",
}

var trainingEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List successful training events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		ctx, s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.cleanup()

		events, err := s.svcs.Training.ListEvents(ctx, s.profile.StorageLocation)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "no training date found")
			return nil
		}
		for _, e := range events {
			fmt.Fprintln(w, e)
		}
		return nil
	},
}

var trainingRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Train the model with today's distinct predicted insulin values",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		ctx, s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.cleanup()

		res, err := s.svcs.Training.TriggerFromPredictions(ctx, s.profile.StorageLocation)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "trained with %d values: %s\n", len(res.Values), res.Message)
		if res.Event != nil {
			fmt.Fprintf(w, "recorded %s\n", res.Event)
		} else {
			fmt.Fprintln(w, "warning: training date was not recorded")
		}
		return nil
	},
}

func init() {
	trainingCmd.AddCommand(trainingEventsCmd)
	trainingCmd.AddCommand(trainingRunCmd)
}
