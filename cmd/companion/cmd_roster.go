package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dexcompanion/internal/collection"
	"github.com/cory-johannsen/dexcompanion/internal/game/nature"
	"github.com/cory-johannsen/dexcompanion/internal/game/roster"
	"github.com/cory-johannsen/dexcompanion/internal/game/stat"
)

// memberFlags are the editable fields of a roster or storage member.
type memberFlags struct {
	nickname string
	item     string
	ability  string
	nature   string
	level    int
	moves    []string
	ivs      map[string]int
	evs      map[string]int
	strict   bool
}

func (f *memberFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.nickname, "nickname", "", "nickname")
	fs.StringVar(&f.item, "item", "", "held item")
	fs.StringVar(&f.ability, "ability", "", "ability")
	fs.StringVar(&f.nature, "nature", "", "nature, e.g. Adamant")
	fs.IntVar(&f.level, "level", roster.DefaultLevel, "level 1-100")
	fs.StringSliceVar(&f.moves, "moves", nil, "up to four moves, comma separated")
	fs.StringToIntVar(&f.ivs, "ivs", nil, "individual values, e.g. hp=31,spe=0")
	fs.StringToIntVar(&f.evs, "evs", nil, "effort values, e.g. atk=252,spe=252")
	fs.BoolVar(&f.strict, "strict", false, "reject out-of-range values instead of clamping them")
}

// apply overwrites the fields of m whose flags were given, then clamps m to
// the editable ranges, or validates it when strict is set.
func (f *memberFlags) apply(cmd *cobra.Command, m roster.Member) (roster.Member, error) {
	fs := cmd.Flags()
	if fs.Changed("nickname") {
		m.Nickname = f.nickname
	}
	if fs.Changed("item") {
		m.Item = f.item
	}
	if fs.Changed("ability") {
		m.Ability = f.ability
	}
	if fs.Changed("level") {
		m.Level = f.level
	}
	if fs.Changed("nature") {
		p, ok := nature.Default().Lookup(f.nature)
		if !ok {
			return roster.Member{}, unknownNature(f.nature)
		}
		m.Nature = p.Name
	}
	if fs.Changed("moves") {
		if len(f.moves) > roster.MoveSlots {
			return roster.Member{}, fmt.Errorf("at most %d moves, got %d", roster.MoveSlots, len(f.moves))
		}
		m.Moves = [roster.MoveSlots]string{}
		copy(m.Moves[:], f.moves)
	}
	var err error
	if fs.Changed("ivs") {
		if m.IVs, err = statFlags(m.IVs, f.ivs); err != nil {
			return roster.Member{}, err
		}
	}
	if fs.Changed("evs") {
		if m.EVs, err = statFlags(m.EVs, f.evs); err != nil {
			return roster.Member{}, err
		}
	}
	if f.strict {
		return m, m.Validate()
	}
	return m.Clamp(), nil
}

func unknownNature(name string) error {
	if s := nature.Default().Suggest(name, 3); len(s) > 0 {
		return fmt.Errorf("unknown nature %q (did you mean %s?)", name, strings.Join(s, ", "))
	}
	return fmt.Errorf("unknown nature %q", name)
}

func parseSlot(s string, size int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= size {
		return 0, fmt.Errorf("slot must be 0-%d, got %q", size-1, s)
	}
	return i, nil
}

// findRoster matches ref against roster ids, then names ignoring case.
func findRoster(st collection.State, ref string) (roster.Roster, error) {
	if r, ok := st.Roster(ref); ok {
		return r, nil
	}
	for _, r := range st.Rosters {
		if strings.EqualFold(r.Name, ref) {
			return r.Clone(), nil
		}
	}
	return roster.Roster{}, fmt.Errorf("no roster %q", ref)
}

func (u *ui) budget(m roster.Member) {
	if rem := m.EVRemaining(); rem < 0 {
		u.Warn("%s is %d effort points over the %d budget", m.Nickname, -rem, stat.EVBudget)
	}
}

func memberRow(m roster.Member) []string {
	if m.IsEmpty() {
		return []string{strconv.Itoa(m.Slot), "-", "", "", "", "", "", "", "", "", ""}
	}
	eff := m.Effective()
	row := []string{strconv.Itoa(m.Slot), m.Nickname, m.Creature.Name, strconv.Itoa(m.Level), m.Nature}
	for _, n := range stat.Names {
		row = append(row, strconv.Itoa(eff.Get(n)))
	}
	return row
}

var memberHeaders = []string{"Slot", "Nickname", "Species", "Lv", "Nature", "HP", "Atk", "Def", "SpA", "SpD", "Spe"}

func (c *cli) rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage six-member rosters",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create an empty roster",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				r := roster.NewRoster(args[0])
				if _, err := a.collection.CreateRoster(cmd.Context(), r); err != nil {
					return err
				}
				a.ui.OK("created roster %s (%s)", r.Name, r.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <roster> <name>",
			Short: "Rename a roster",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				r, err := findRoster(a.collection.State(), args[0])
				if err != nil {
					return err
				}
				r.Name = args[1]
				if _, err := a.collection.UpdateRoster(cmd.Context(), r); err != nil {
					return err
				}
				a.ui.OK("renamed roster %s", r.ID)
				return nil
			},
		},
		c.rosterSetCmd(),
		&cobra.Command{
			Use:   "clear <roster> <slot>",
			Short: "Empty one roster slot",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				r, err := findRoster(a.collection.State(), args[0])
				if err != nil {
					return err
				}
				slot, err := parseSlot(args[1], roster.Size)
				if err != nil {
					return err
				}
				if r, err = r.WithoutMember(slot); err != nil {
					return err
				}
				if _, err := a.collection.UpdateRoster(cmd.Context(), r); err != nil {
					return err
				}
				a.ui.OK("cleared slot %d of %s", slot, r.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <roster>",
			Short: "Delete a roster",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				r, err := findRoster(a.collection.State(), args[0])
				if err != nil {
					return err
				}
				if _, err := a.collection.DeleteRoster(cmd.Context(), r.ID); err != nil {
					return err
				}
				a.ui.OK("deleted roster %s", r.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List rosters",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				a := c.app
				st := a.collection.State()
				rows := make([][]string, len(st.Rosters))
				for i, r := range st.Rosters {
					rows[i] = []string{r.ID, r.Name, fmt.Sprintf("%d/%d", r.Filled(), roster.Size)}
				}
				a.ui.Table([]string{"ID", "Name", "Members"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <roster>",
			Short: "Show a roster's members and their effective stats",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				a := c.app
				r, err := findRoster(a.collection.State(), args[0])
				if err != nil {
					return err
				}
				a.ui.Title(r.Name)
				rows := make([][]string, len(r.Members))
				for i, m := range r.Members {
					rows[i] = memberRow(m)
				}
				a.ui.Table(memberHeaders, rows)
				for _, m := range r.Members {
					if !m.IsEmpty() {
						a.ui.budget(m)
					}
				}
				return nil
			},
		},
	)
	return cmd
}

func (c *cli) rosterSetCmd() *cobra.Command {
	var f memberFlags
	cmd := &cobra.Command{
		Use:   "set <roster> <slot> [id|name]",
		Short: "Place a creature in a roster slot or edit the one there",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx := c.app, cmd.Context()
			r, err := findRoster(a.collection.State(), args[0])
			if err != nil {
				return err
			}
			slot, err := parseSlot(args[1], roster.Size)
			if err != nil {
				return err
			}
			m := r.Members[slot]
			if len(args) == 3 {
				rec, err := a.resolveRecord(ctx, args[2])
				if err != nil {
					return err
				}
				if m.IsEmpty() || m.Creature.ID != rec.ID {
					m = roster.New(slot, rec)
				}
			}
			if m.IsEmpty() {
				return fmt.Errorf("slot %d is empty; name a creature to place", slot)
			}
			if m, err = f.apply(cmd, m); err != nil {
				return err
			}
			if r, err = r.WithMember(slot, m); err != nil {
				return err
			}
			if _, err := a.collection.UpdateRoster(ctx, r); err != nil {
				return err
			}
			a.ui.Table(memberHeaders, [][]string{memberRow(m)})
			a.ui.budget(m)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) boxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "box",
		Short: fmt.Sprintf("Manage the %d-slot storage grid", roster.GridSize),
	}
	cmd.AddCommand(
		c.boxSetCmd(),
		&cobra.Command{
			Use:   "clear <slot>",
			Short: "Empty a storage slot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := c.app
				slot, err := parseSlot(args[0], roster.GridSize)
				if err != nil {
					return err
				}
				if _, err := a.collection.SetStorageSlot(cmd.Context(), slot, nil); err != nil {
					return err
				}
				a.ui.OK("cleared storage slot %d", slot)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List occupied storage slots",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				a := c.app
				st := a.collection.State()
				var rows [][]string
				for _, m := range st.Storage {
					if m != nil && !m.IsEmpty() {
						rows = append(rows, memberRow(*m))
					}
				}
				a.ui.Table(memberHeaders, rows)
				a.ui.Muted("%d of %d slots used", st.Storage.Occupied(), roster.GridSize)
				return nil
			},
		},
	)
	return cmd
}

func (c *cli) boxSetCmd() *cobra.Command {
	var f memberFlags
	cmd := &cobra.Command{
		Use:   "set <slot> [id|name]",
		Short: "Place a creature in a storage slot or edit the one there",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx := c.app, cmd.Context()
			slot, err := parseSlot(args[0], roster.GridSize)
			if err != nil {
				return err
			}
			m := roster.Empty(slot)
			if cur := a.collection.State().Storage[slot]; cur != nil {
				m = *cur
			}
			if len(args) == 2 {
				rec, err := a.resolveRecord(ctx, args[1])
				if err != nil {
					return err
				}
				if m.IsEmpty() || m.Creature.ID != rec.ID {
					m = roster.New(slot, rec)
				}
			}
			if m.IsEmpty() {
				return fmt.Errorf("storage slot %d is empty; name a creature to place", slot)
			}
			if m, err = f.apply(cmd, m); err != nil {
				return err
			}
			if _, err := a.collection.SetStorageSlot(ctx, slot, &m); err != nil {
				return err
			}
			a.ui.Table(memberHeaders, [][]string{memberRow(m)})
			a.ui.budget(m)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}
