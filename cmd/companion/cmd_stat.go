package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dexcompanion/internal/game/formula"
	"github.com/cory-johannsen/dexcompanion/internal/game/nature"
	"github.com/cory-johannsen/dexcompanion/internal/game/roster"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

func (c *cli) statCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Compute effective stats",
	}
	cmd.AddCommand(c.statCalcCmd(), c.statBlockCmd(), c.statNaturesCmd())
	return cmd
}

// checkNature warns that an unknown nature applies no modifier.
func (u *ui) checkNature(name string) {
	if _, ok := nature.Default().Lookup(name); !ok {
		u.Warn("%v; no modifier applied", unknownNature(name))
	}
}

func (c *cli) statCalcCmd() *cobra.Command {
	var base, iv, ev, level int
	var nat string
	cmd := &cobra.Command{
		Use:   "calc <stat>",
		Short: "Compute one effective stat",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := c.app
			n, err := stat.Parse(args[0])
			if err != nil {
				return err
			}
			a.ui.checkNature(nat)
			v := formula.Compute(n, base, iv, ev, level, nat)
			a.ui.Field(n.Label(), v)
			return nil
		},
	}
	cmd.Flags().IntVar(&base, "base", 0, "base stat")
	cmd.Flags().IntVar(&iv, "iv", stat.MaxIV, "individual value")
	cmd.Flags().IntVar(&ev, "ev", 0, "effort value")
	cmd.Flags().IntVar(&level, "level", roster.DefaultLevel, "level")
	cmd.Flags().StringVar(&nat, "nature", nature.Neutral, "nature")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

func (c *cli) statBlockCmd() *cobra.Command {
	var f memberFlags
	cmd := &cobra.Command{
		Use:   "block <id|name>",
		Short: "Compute all six stats for a creature without saving anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			rec, err := a.resolveRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m, err := f.apply(cmd, roster.New(0, rec))
			if err != nil {
				return err
			}
			eff := m.Effective()
			rows := make([][]string, 0, len(stat.Names))
			for _, n := range stat.Names {
				rows = append(rows, []string{
					n.Label(),
					strconv.Itoa(rec.Stats.Get(n)),
					strconv.Itoa(m.IVs.Get(n)),
					strconv.Itoa(m.EVs.Get(n)),
					strconv.Itoa(eff.Get(n)),
				})
			}
			a.ui.Title(rec.Name + " Lv. " + strconv.Itoa(m.Level) + " " + m.Nature)
			a.ui.Table([]string{"Stat", "Base", "IV", "EV", "Value"}, rows)
			a.ui.Muted("%d effort points remaining", m.EVRemaining())
			a.ui.budget(m)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) statNaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "natures",
		Short: "List natures and the stats they modify",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a := c.app
			tbl := nature.Default()
			rows := make([][]string, 0, tbl.Len())
			for _, name := range tbl.Names() {
				p, _ := tbl.Lookup(name)
				up, down := "-", "-"
				if !p.IsNeutral() {
					up, down = p.Boosts.Label(), p.Penalizes.Label()
				}
				rows = append(rows, []string{p.Name, up, down})
			}
			a.ui.Table([]string{"Nature", "Raises", "Lowers"}, rows)
			return nil
		},
	}
}
