package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// cli holds the state shared by one command tree execution.
type cli struct {
	out    io.Writer
	errOut io.Writer
	opts   rootOptions
	now    func() time.Time

	app *app
}

func newCLI(out, errOut io.Writer) *cli {
	return &cli{out: out, errOut: errOut, now: time.Now}
}

// execute runs args against a fresh command tree and releases the app
// afterwards, whether or not the command succeeded.
func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	err := root.ExecuteContext(ctx)
	if c.app != nil {
		err = errors.Join(err, c.app.Close())
		c.app = nil
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "companion",
		Short:         "Creature companion: catalog, collections, rosters, and profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			a, err := openApp(cmd.Context(), c.opts, c.out, c.errOut)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.opts.configPath, "config", "", "path to a YAML config file (defaults and DEX_ env when empty)")
	root.PersistentFlags().StringVar(&c.opts.backend, "backend", "", "override storage.backend (file, badger, sqlite, postgres, memory)")
	root.PersistentFlags().StringVar(&c.opts.dataPath, "data", "", "override storage.path")

	root.AddCommand(
		c.catalogCmd(),
		c.favCmd(),
		c.customCmd(),
		c.rosterCmd(),
		c.boxCmd(),
		c.statCmd(),
		c.profileCmd(),
		c.compareCmd(),
		c.exportCmd(),
		c.clearCmd(),
	)
	return root
}
