package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/rpggio/lapledger/internal/tracker"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage racer profiles",
	}
	cmd.AddCommand(newProfileCreateCommand(ctx))
	cmd.AddCommand(newProfileListCommand(ctx))
	cmd.AddCommand(newProfileDeleteCommand(ctx))
	cmd.AddCommand(newProfileSelectCommand(ctx))
	return cmd
}

func newProfileCreateCommand(ctx *commandContext) *cobra.Command {
	var req profile.CreateRequest
	var selectIt bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile from a character, skin and vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				p, err := tr.CreateProfile(c, req)
				if err != nil {
					return err
				}
				if selectIt {
					if err := tr.SelectProfile(c, p.ID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s (%s)\n", p.Name, shortID(p.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Character, "character", "", "Character name")
	cmd.Flags().StringVar(&req.Skin, "skin", "", "Character skin")
	cmd.Flags().StringVar(&req.Vehicle, "vehicle", "", "Vehicle name")
	cmd.Flags().BoolVar(&selectIt, "select", false, "Select the new profile")
	return cmd
}

func newProfileListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(_ context.Context, tr *tracker.Tracker) error {
				profiles := tr.Profiles()
				if len(profiles) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No profiles")
					return nil
				}
				activeID := ""
				if p, ok := tr.ActiveProfile(); ok {
					activeID = p.ID
				}
				rows := make([][]string, 0, len(profiles))
				for _, p := range profiles {
					active := ""
					if p.ID == activeID {
						active = "*"
					}
					rows = append(rows, []string{active, shortID(p.ID), p.Name, p.Character, p.CharacterSkin, p.Vehicle})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"", "ID", "Name", "Character", "Skin", "Vehicle"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
}

func newProfileDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile; its times are kept",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				p, err := resolveProfile(tr, args[0])
				if err != nil {
					return err
				}
				if err := tr.DeleteProfile(c, p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", p.Name)
				return nil
			})
		},
	}
}

func newProfileSelectCommand(ctx *commandContext) *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "select [id]",
		Short: "Select the profile used for new times",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clear && len(args) == 0 {
				return fmt.Errorf("profile id required (or --clear)")
			}
			return ctx.withTracker(cmd, func(c context.Context, tr *tracker.Tracker) error {
				if clear {
					if err := tr.SelectProfile(c, ""); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared")
					return nil
				}
				p, err := resolveProfile(tr, args[0])
				if err != nil {
					return err
				}
				if err := tr.SelectProfile(c, p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", p.Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the selection")
	return cmd
}

// resolveProfile accepts a full id or a unique short form of one.
func resolveProfile(tr *tracker.Tracker, ref string) (*profile.Profile, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := tr.FindProfile(ref); ok {
		return p, nil
	}
	var match *profile.Profile
	for _, p := range tr.Profiles() {
		if !matchesID(p.ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("profile id %q is ambiguous", ref)
		}
		match = &p
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, ref)
	}
	return match, nil
}
