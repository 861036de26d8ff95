package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dexcompanion/internal/game/record"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

func (c *cli) favCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorites",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "toggle <id|name>",
			Short: "Add a record to favorites, or remove it if already there",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, ctx := c.app, cmd.Context()
				r, err := a.resolveRecord(ctx, args[0])
				if err != nil {
					return err
				}
				st, err := a.collection.ToggleFavorite(ctx, r.ID)
				if err != nil {
					return err
				}
				if st.IsFavorite(r.ID) {
					a.ui.OK("%s added to favorites", r.Name)
				} else {
					a.ui.OK("%s removed from favorites", r.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List favorite records",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				a := c.app
				st := a.collection.State()
				a.ui.Table(recordHeaders, recordRows(st, st.FavoriteRecords()))
				return nil
			},
		},
	)
	return cmd
}

func (c *cli) customCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Manage user-authored records",
	}
	cmd.AddCommand(
		c.customAddCmd(),
		c.customDeriveCmd(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a user-authored record",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				id, err := record.ParseID(args[0])
				if err != nil {
					return err
				}
				if _, ok := a.collection.State().UserRecord(id); !ok {
					return fmt.Errorf("no custom record %q", args[0])
				}
				if _, err := a.collection.DeleteUserRecord(cmd.Context(), id); err != nil {
					return err
				}
				a.ui.OK("deleted %s", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List user-authored records",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				a := c.app
				st := a.collection.State()
				a.ui.Table(recordHeaders, recordRows(st, st.UserRecords))
				return nil
			},
		},
	)
	return cmd
}

// authoredFlags are the fields a user may set on a custom record.
type authoredFlags struct {
	name        string
	types       []string
	abilities   []string
	moves       []string
	stats       map[string]int
	category    string
	description string
	image       string
	height      int
	weight      int
}

func (f *authoredFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "record name")
	fs.StringSliceVar(&f.types, "types", nil, "one or two types, comma separated")
	fs.StringSliceVar(&f.abilities, "abilities", nil, "abilities, comma separated")
	fs.StringSliceVar(&f.moves, "moves", nil, "signature moves, comma separated")
	fs.StringToIntVar(&f.stats, "stats", nil, "base stats, e.g. hp=45,atk=49")
	fs.StringVar(&f.category, "category", "", "category, e.g. \"Seed Pokemon\"")
	fs.StringVar(&f.description, "description", "", "entry text")
	fs.StringVar(&f.image, "image", "", "image URL")
	fs.IntVar(&f.height, "height", 0, "height in decimetres")
	fs.IntVar(&f.weight, "weight", 0, "weight in hectograms")
}

// apply overwrites the fields of r whose flags were given.
func (f *authoredFlags) apply(cmd *cobra.Command, r record.Record) (record.Record, error) {
	fs := cmd.Flags()
	if fs.Changed("name") {
		r.Name = strings.TrimSpace(f.name)
	}
	if fs.Changed("types") {
		r.Types = f.types
	}
	if fs.Changed("abilities") {
		r.Abilities = f.abilities
	}
	if fs.Changed("stats") {
		b, err := statFlags(r.Stats, f.stats)
		if err != nil {
			return record.Record{}, err
		}
		r.Stats = b
	}
	if fs.Changed("image") {
		r.Image = f.image
	}
	if fs.Changed("height") {
		h := f.height
		r.Height = &h
	}
	if fs.Changed("weight") {
		w := f.weight
		r.Weight = &w
	}
	if fs.Changed("category") {
		r.Authored.Category = f.category
	}
	if fs.Changed("description") {
		r.Authored.Description = f.description
	}
	if fs.Changed("moves") {
		r.Authored.Moves = f.moves
	}
	return r, r.Validate()
}

func (c *cli) customAddCmd() *cobra.Command {
	var f authoredFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a custom record from scratch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			r := record.Record{
				ID:        record.NewAuthoredID(),
				Stats:     stat.Block{},
				Abilities: []string{},
				Authored:  &record.Authorship{Moves: []string{}},
			}
			r, err := f.apply(cmd, r)
			if err != nil {
				return err
			}
			if _, err := a.collection.AddUserRecord(cmd.Context(), r); err != nil {
				return err
			}
			a.ui.OK("created %s (%s)", r.Name, r.ID)
			return nil
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("types")
	return cmd
}

func (c *cli) customDeriveCmd() *cobra.Command {
	var f authoredFlags
	cmd := &cobra.Command{
		Use:   "derive <catalog id|name>",
		Short: "Create a custom record seeded from a catalog record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx := c.app, cmd.Context()
			base, err := a.resolveRecord(ctx, args[0])
			if err != nil {
				return err
			}
			if base.IsAuthored() {
				return errors.New("derive needs a catalog record, not a custom one")
			}
			r, err := f.apply(cmd, record.Derive(base, "", ""))
			if err != nil {
				return err
			}
			if _, err := a.collection.AddUserRecord(ctx, r); err != nil {
				return err
			}
			a.ui.OK("created %s (%s) from #%s", r.Name, r.ID, base.ID)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}
