package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpggio/lapledger/internal/laptime"
	"github.com/rpggio/lapledger/internal/tracker"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(_ context.Context, tr *tracker.Tracker) error {
				fmt.Fprintf(cmd.OutOrStdout(), "relative-dates: %s\n", yesNo(tr.RelativeDates()))
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "relative-dates <on|off>",
		Short: "Show dates relative to now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, ok := onOff(args[0])
			if !ok {
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				if err := tr.SetRelativeDates(c, on); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "relative-dates: %s\n", yesNo(on))
				return nil
			})
		},
	})
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every profile, time and preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				if err := tr.Reset(c); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All data deleted")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newMaskCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "mask <digits>",
		Short:       "Show how keypad digits are read as a lap time",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			masked := laptime.ParseMask(args[0])
			valid := "incomplete"
			if laptime.IsValidStrict(masked) {
				valid = "valid"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", masked, valid)
			return nil
		},
	}
}
