package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dexcompanion/internal/export"
	"github.com/cory-johannsen/dexcompanion/internal/game/compare"
	"github.com/cory-johannsen/dexcompanion/internal/profile"
)

func (u *ui) Profile(p profile.State) {
	u.Box(
		u.title.Render(p.Name),
		fmt.Sprintf("ID No. %s", p.ID),
		fmt.Sprintf("Height %.0f cm  Weight %.1f kg", p.HeightCM, p.WeightKG),
		u.muted.Render(p.Avatar),
	)
}

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the trainer profile",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c.app.ui.Profile(c.app.profile.State())
			return nil
		},
	}

	var height, weight float64
	physical := &cobra.Command{
		Use:   "physical",
		Short: "Set height and weight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			cur := a.profile.State()
			if !cmd.Flags().Changed("height") {
				height = cur.HeightCM
			}
			if !cmd.Flags().Changed("weight") {
				weight = cur.WeightKG
			}
			p, err := a.profile.SetPhysical(cmd.Context(), height, weight)
			if err != nil {
				return err
			}
			a.ui.Profile(p)
			return nil
		},
	}
	physical.Flags().Float64Var(&height, "height", 0, "height in centimetres")
	physical.Flags().Float64Var(&weight, "weight", 0, "weight in kilograms")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "name <name>",
			Short: "Set the trainer name; a blank name is ignored",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				p, err := a.profile.SetTrainerName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.ui.Profile(p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "avatar <preset|url>",
			Short: "Set the avatar to a preset artwork number or an image URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				ref, err := avatarRef(args[0])
				if err != nil {
					return err
				}
				p, err := a.profile.SetAvatar(cmd.Context(), ref)
				if err != nil {
					return err
				}
				a.ui.Profile(p)
				return nil
			},
		},
		physical,
		&cobra.Command{
			Use:   "new-id",
			Short: "Generate a new random trainer id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a := c.app
				p, err := a.profile.GenerateTrainerID(cmd.Context())
				if err != nil {
					return err
				}
				a.ui.Profile(p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a := c.app
				p, err := a.profile.Reset(cmd.Context())
				if err != nil {
					return err
				}
				a.ui.Profile(p)
				return nil
			},
		},
	)
	return cmd
}

// avatarRef resolves a preset artwork number or an absolute image URL.
func avatarRef(arg string) (string, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if !slices.Contains(profile.AvatarPresets, n) {
			return "", fmt.Errorf("avatar %d is not a preset; choose one of %v", n, profile.AvatarPresets)
		}
		return profile.AvatarURL(n), nil
	}
	u, err := url.Parse(arg)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("avatar must be a preset number or an absolute URL, got %q", arg)
	}
	return arg, nil
}

func (c *cli) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id|name>",
		Short: "Compare the trainer's height and weight with a creature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			rec, err := a.resolveRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := a.profile.State()
			h := compare.Height(p.HeightCM, rec)
			w := compare.Weight(p.WeightKG, rec)

			a.ui.Title(p.Name + " vs " + rec.Name)
			a.ui.Table([]string{"", p.Name, rec.Name}, [][]string{
				{"Height", fmt.Sprintf("%.0f cm", h.TrainerCM), fmt.Sprintf("%.0f cm", h.CreatureCM)},
				{"Figure", bar(h.TrainerVisual), bar(h.CreatureVisual)},
				{"Weight", fmt.Sprintf("%.1f kg", w.TrainerKG), fmt.Sprintf("%.1f kg", w.CreatureKG)},
			})
			switch {
			case w.Tilt > 0:
				a.ui.Line("The scale tips %.1f degrees toward %s.", w.Tilt, rec.Name)
			case w.Tilt < 0:
				a.ui.Line("The scale tips %.1f degrees toward %s.", -w.Tilt, p.Name)
			default:
				a.ui.Line("The scale is level.")
			}
			return nil
		},
	}
}

// bar draws a visual height as one block per 20 pixels.
func bar(visual float64) string {
	return strings.Repeat("#", max(int(visual/20), 1))
}

func (c *cli) exportCmd() *cobra.Command {
	var dir string
	var stdout bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dated backup of the collection and profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			now := c.now()
			data, err := export.Bundle(cmd.Context(), a.docs, export.Documents{
				Collection: a.cfg.Storage.CollectionDocument,
				Profile:    a.cfg.Storage.ProfileDocument,
			}, now)
			if err != nil {
				return err
			}
			if stdout {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			path := filepath.Join(dir, export.Filename(now))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			a.ui.OK("exported to %s", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write the backup into")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write the backup to standard output instead")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved data and restore defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("clear deletes every saved document; pass --yes to confirm")
			}
			a := c.app
			if err := export.ClearAll(cmd.Context(), a.collection, a.profile); err != nil {
				return err
			}
			a.ui.OK("all data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
