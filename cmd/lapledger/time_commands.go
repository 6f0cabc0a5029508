package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/lapledger/internal/assets"
	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/laptime"
	"github.com/rpggio/lapledger/internal/tracker"
)

func newTimeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "time",
		Aliases: []string{"times"},
		Short:   "Record and manage lap times",
	}
	cmd.AddCommand(newTimeAddCommand(ctx))
	cmd.AddCommand(newTimeListCommand(ctx))
	cmd.AddCommand(newTimeEditCommand(ctx))
	cmd.AddCommand(newTimeRemoveCommand(ctx))
	return cmd
}

func newTimeAddCommand(ctx *commandContext) *cobra.Command {
	var circuit, digits, profileRef string

	cmd := &cobra.Command{
		Use:   "add [M:SS.mmm]",
		Short: "Record a lap time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lap string
			switch {
			case len(args) == 1:
				lap = args[0]
			case digits != "":
				lap = laptime.ParseMask(digits)
			default:
				return fmt.Errorf("lap time required as an argument or --digits")
			}

			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				req := ledger.AddRequest{Time: lap, Circuit: circuit}
				if profileRef != "" {
					p, err := resolveProfile(tr, profileRef)
					if err != nil {
						return err
					}
					req.ProfileID = p.ID
				}
				if req.ProfileID == "" {
					if _, ok := tr.ActiveProfile(); !ok {
						return fmt.Errorf("no profile selected; pass --profile or run `lapledger profile select`")
					}
				}

				res, err := tr.AddTime(c, req)
				if err != nil {
					return fmt.Errorf("%w: %q", err, lap)
				}
				out := cmd.OutOrStdout()
				place := tr.Rankings()[res.Entry.ID]
				fmt.Fprintf(out, "Recorded %s on %s %s\n", res.Entry.Time, res.Entry.Circuit, medalLabel(place))
				if res.PersonalBest {
					fmt.Fprintln(out, "New personal best!")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&circuit, "circuit", "", "Circuit name")
	cmd.Flags().StringVar(&digits, "digits", "", "Keypad digits, e.g. 123456 for 1:23.456")
	cmd.Flags().StringVar(&profileRef, "profile", "", "Profile id (defaults to the selected profile)")
	return cmd
}

func newTimeListCommand(ctx *commandContext) *cobra.Command {
	var circuit string
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List times, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(_ context.Context, tr *tracker.Tracker) error {
				ranks := tr.Rankings()
				relative := tr.RelativeDates()
				now := time.Now()

				var rows [][]string
				for _, e := range tr.SortedTimes() {
					if circuit != "" && e.Circuit != circuit {
						continue
					}
					if limit > 0 && len(rows) >= limit {
						break
					}
					rows = append(rows, []string{
						shortID(e.ID),
						formatDate(e.Date, relative, now),
						e.Circuit,
						e.Time,
						medalLabel(ranks[e.ID]),
						e.Character,
						e.Vehicle,
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No times recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Date", "Circuit", "Time", "Place", "Character", "Vehicle"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&circuit, "circuit", "", "Only this circuit")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows")
	return cmd
}

func newTimeEditCommand(ctx *commandContext) *cobra.Command {
	var lap, circuit, character, vehicle string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a recorded time; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				entry, err := resolveEntry(tr, args[0])
				if err != nil {
					return err
				}
				req := ledger.EditRequest{
					Time:      firstNonEmpty(lap, entry.Time),
					Circuit:   firstNonEmpty(circuit, entry.Circuit),
					Character: firstNonEmpty(character, entry.Character),
					Vehicle:   firstNonEmpty(vehicle, entry.Vehicle),
				}
				updated, err := tr.EditTimeByID(c, entry.ID, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s on %s\n", shortID(updated.ID), updated.Time, updated.Circuit)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lap, "time", "", "Lap time")
	cmd.Flags().StringVar(&circuit, "circuit", "", "Circuit name")
	cmd.Flags().StringVar(&character, "character", "", "Character name")
	cmd.Flags().StringVar(&vehicle, "vehicle", "", "Vehicle name")
	return cmd
}

func newTimeRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a recorded time",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				entry, err := resolveEntry(tr, args[0])
				if err != nil {
					return err
				}
				if err := tr.RemoveTimeByID(c, entry.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s on %s\n", entry.Time, entry.Circuit)
				return nil
			})
		},
	}
}

func newBestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "best",
		Short: "Show the personal best on each circuit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(_ context.Context, tr *tracker.Tracker) error {
				bests := tr.PersonalBests()
				if len(bests) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No times recorded")
					return nil
				}
				relative := tr.RelativeDates()
				now := time.Now()
				rows := make([][]string, 0, len(bests))
				for _, e := range bests {
					rows = append(rows, []string{e.Circuit, e.Time, e.Character, e.Vehicle, formatDate(e.Date, relative, now)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Circuit", "Time", "Character", "Vehicle", "Date"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newCircuitsCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "circuits",
		Short: "List recently raced circuits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			resolver := assets.Resolver{BaseDir: cfg.Assets.Dir}

			return ctx.withTracker(cmd, func(_ context.Context, tr *tracker.Tracker) error {
				counts := make(map[string]int)
				for _, e := range tr.Times() {
					counts[e.Circuit]++
				}
				circuits := tr.RecentCircuits()
				if all {
					for name := range counts {
						if !slices.Contains(circuits, name) {
							circuits = append(circuits, name)
						}
					}
					slices.Sort(circuits[len(tr.RecentCircuits()):])
				}
				if len(circuits) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No circuits yet")
					return nil
				}

				rows := make([][]string, 0, len(circuits))
				for _, name := range circuits {
					image, _ := resolver.Path(assets.KindCircuit, name)
					rows = append(rows, []string{name, strconv.Itoa(counts[name]), image})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Circuit", "Times", "Image"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include every circuit in the ledger")
	return cmd
}

// resolveEntry accepts a full entry id or a unique short form of one.
func resolveEntry(tr *tracker.Tracker, ref string) (*ledger.Entry, error) {
	var match *ledger.Entry
	for _, e := range tr.Times() {
		if e.ID == ref {
			return &e, nil
		}
		if !matchesID(e.ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("time id %q is ambiguous", ref)
		}
		match = &e
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, ref)
	}
	return match, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
