package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dexcompanion/internal/catalog"
	"github.com/cory-johannsen/dexcompanion/internal/fuzzy"
	"github.com/cory-johannsen/dexcompanion/internal/game/record"
)

// abilityIndexLimit covers the whole ability index in one request.
const abilityIndexLimit = 1000

func (c *cli) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the remote creature catalog",
	}
	cmd.AddCommand(
		c.catalogListCmd(),
		c.catalogIndexCmd(),
		c.catalogShowCmd(),
		c.catalogSpeciesCmd(),
		c.catalogEvolutionCmd(),
		c.catalogLearnsetCmd(),
		c.catalogEncountersCmd(),
		c.catalogMovesCmd(),
		c.catalogMoveCmd(),
		c.catalogAbilitiesCmd(),
		c.catalogAbilityCmd(),
	)
	return cmd
}

// tolerate reports a partial batch as a warning and passes any other error on.
func (a *app) tolerate(err error) error {
	if err == nil {
		return nil
	}
	if catalog.IsPartial(err) {
		a.ui.Warn("%v", err)
		return nil
	}
	return err
}

func (c *cli) catalogListCmd() *cobra.Command {
	var (
		limit, offset int
		search        string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch a page of catalog records, cache it, and list it with your custom records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx := c.app, cmd.Context()
			recs, err := a.catalog.ListRecords(ctx, limit, offset)
			if err := a.tolerate(err); err != nil {
				return err
			}
			if len(recs) > 0 {
				if _, err := a.collection.CacheRecords(ctx, recs); err != nil {
					return err
				}
			}
			st := a.collection.State()
			shown := record.Filter(record.Merge(st.UserRecords, recs), search)
			a.ui.Table(recordHeaders, recordRows(st, shown))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", pageSize, "records per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "catalog offset")
	cmd.Flags().StringVar(&search, "search", "", "filter by name substring or exact id")
	return cmd
}

func (c *cli) catalogIndexCmd() *cobra.Command {
	var (
		limit, offset int
		search        string
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "List cached and custom records without contacting the catalog",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a := c.app
			st := a.collection.State()
			shown := record.Page(record.Filter(st.Listing(), search), limit, offset)
			a.ui.Table(recordHeaders, recordRows(st, shown))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", pageSize, "records per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "listing offset")
	cmd.Flags().StringVar(&search, "search", "", "filter by name substring or exact id")
	return cmd
}

func (c *cli) catalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			r, err := a.resolveRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.ui.Record(r, a.collection.State().IsFavorite(r.ID))
			return nil
		},
	}
}

func (c *cli) catalogSpeciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "species <id|name>",
		Short: "Show a species' category and entry text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			meta, err := a.catalog.GetSpeciesMeta(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.ui.Title(catalog.NormalizeKey(args[0]))
			a.ui.Field("Category", meta.Category)
			a.ui.Field("Entry", meta.Description)
			return nil
		},
	}
}

func (c *cli) catalogEvolutionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evolution <id|name>",
		Short: "Show a species' evolution line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx := c.app, cmd.Context()
			meta, err := a.catalog.GetSpeciesMeta(ctx, args[0])
			if err != nil {
				return err
			}
			if meta.EvolutionChainURL == "" {
				a.ui.Muted("no evolution line")
				return nil
			}
			chain, err := a.catalog.GetEvolutionChain(ctx, meta.EvolutionChainURL)
			if err != nil {
				return err
			}
			a.ui.Line("%s", strings.TrimRight(chain.Render(), "\n"))
			return nil
		},
	}
}

func (c *cli) catalogLearnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learnset <id|name>",
		Short: "List the moves a creature can learn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			moves, err := a.catalog.GetLearnableMoves(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, len(moves))
			for i, m := range moves {
				rows[i] = []string{strconv.Itoa(m.Level), m.Name, m.Method}
			}
			a.ui.Table([]string{"Lv", "Move", "Method"}, rows)
			return nil
		},
	}
}

func (c *cli) catalogEncountersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encounters <id|name>",
		Short: "List where a creature can be found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			encs, err := a.catalog.GetEncounters(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, len(encs))
			for i, e := range encs {
				rows[i] = []string{e.Location, strings.Join(e.Versions, ", ")}
			}
			a.ui.Table([]string{"Location", "Versions"}, rows)
			return nil
		},
	}
}

// refNames returns the names of refs sorted and filtered by a substring.
func refNames(refs []catalog.NamedRef, search string) []string {
	q := strings.ToLower(strings.TrimSpace(search))
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if strings.Contains(r.Name, q) {
			names = append(names, r.Name)
		}
	}
	slices.Sort(names)
	return names
}

func (c *cli) catalogMovesCmd() *cobra.Command {
	var (
		class, search string
		pageNum       int
	)
	cmd := &cobra.Command{
		Use:   "moves",
		Short: "List moves of one damage class, twenty per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx := c.app, cmd.Context()
			dc, err := catalog.ParseDamageClass(class)
			if err != nil {
				return err
			}
			refs, err := a.catalog.ListMoves(ctx, dc)
			if err != nil {
				return err
			}
			names, pages := page(refNames(refs, search), pageNum)
			details, err := a.catalog.GetMoveDetails(ctx, names)
			if err := a.tolerate(err); err != nil {
				return err
			}
			rows := make([][]string, len(details))
			for i, m := range details {
				rows[i] = []string{m.Name, m.Type, optional(m.Power), optional(m.Accuracy), strconv.Itoa(m.PP)}
			}
			a.ui.Table([]string{"Move", "Type", "Power", "Acc", "PP"}, rows)
			a.ui.Muted("page %d of %d", min(max(pageNum, 1), pages), pages)
			return nil
		},
	}
	cmd.Flags().StringVar(&class, "class", "physical", "damage class: physical, special, or status")
	cmd.Flags().StringVar(&search, "search", "", "filter by name substring")
	cmd.Flags().IntVar(&pageNum, "page", 1, "page number")
	return cmd
}

func (c *cli) catalogMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <name>",
		Short: "Show one move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx := c.app, cmd.Context()
			m, err := a.catalog.GetMoveDetail(ctx, args[0])
			if errors.Is(err, catalog.ErrNotFound) {
				return withSuggestions(err, args[0], a.allMoveNames(ctx))
			}
			if err != nil {
				return err
			}
			a.ui.Title(m.Name)
			a.ui.Field("Type", m.Type)
			a.ui.Field("Class", m.DamageClass)
			a.ui.Field("Power", optional(m.Power))
			a.ui.Field("Accuracy", optional(m.Accuracy))
			a.ui.Field("PP", m.PP)
			a.ui.Field("Effect", m.Description)
			return nil
		},
	}
}

// allMoveNames lists every move across the damage classes. Failures yield
// fewer names; suggestions are best effort.
func (a *app) allMoveNames(ctx context.Context) []string {
	var names []string
	for _, dc := range []catalog.DamageClass{catalog.Physical, catalog.Special, catalog.Status} {
		refs, err := a.catalog.ListMoves(ctx, dc)
		if err != nil {
			continue
		}
		names = append(names, refNames(refs, "")...)
	}
	return names
}

// withSuggestions annotates a not-found error with the closest known names.
func withSuggestions(err error, query string, known []string) error {
	if s := fuzzy.Closest(query, known, 3); len(s) > 0 {
		return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
	}
	return err
}

func (c *cli) catalogAbilitiesCmd() *cobra.Command {
	var (
		search  string
		pageNum int
	)
	cmd := &cobra.Command{
		Use:   "abilities",
		Short: "List abilities, twenty per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx := c.app, cmd.Context()
			refs, err := a.catalog.ListAbilities(ctx, abilityIndexLimit, 0)
			if err != nil {
				return err
			}
			names, pages := page(refNames(refs, search), pageNum)
			details, err := a.catalog.GetAbilityDetails(ctx, names)
			if err := a.tolerate(err); err != nil {
				return err
			}
			rows := make([][]string, len(details))
			for i, d := range details {
				rows[i] = []string{d.Name, strconv.Itoa(d.UsageCount), truncate(d.Description, 60)}
			}
			a.ui.Table([]string{"Ability", "Holders", "Effect"}, rows)
			a.ui.Muted("page %d of %d", min(max(pageNum, 1), pages), pages)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name substring")
	cmd.Flags().IntVar(&pageNum, "page", 1, "page number")
	return cmd
}

func (c *cli) catalogAbilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ability <name>",
		Short: "Show one ability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx := c.app, cmd.Context()
			d, err := a.catalog.GetAbilityDetail(ctx, args[0])
			if errors.Is(err, catalog.ErrNotFound) {
				var known []string
				if refs, lerr := a.catalog.ListAbilities(ctx, abilityIndexLimit, 0); lerr == nil {
					known = refNames(refs, "")
				}
				return withSuggestions(err, args[0], known)
			}
			if err != nil {
				return err
			}
			a.ui.Title(d.Name)
			a.ui.Field("Holders", d.UsageCount)
			a.ui.Field("Effect", d.Description)
			return nil
		},
	}
}
