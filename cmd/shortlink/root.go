package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikhailRaia/shortlink/internal/client"
	"github.com/MikhailRaia/shortlink/internal/config"
	"github.com/MikhailRaia/shortlink/internal/form"
	"github.com/MikhailRaia/shortlink/internal/logger"
	"github.com/MikhailRaia/shortlink/internal/tui"
)

// environment holds what the commands take from the outside world.
type environment struct {
	getenv    func(string) string
	clipboard form.Clipboard
	runTUI    func(ctx context.Context, ctrl *form.Controller) error
}

func runTUI(ctx context.Context, ctrl *form.Controller) error {
	return tui.Run(ctx, ctrl)
}

// cli is the state shared by the root command and its subcommands.
type cli struct {
	env     environment
	cfg     config.ClientConfig
	logFile io.Closer
}

// execute runs the command line in args and releases the log file
// whatever the outcome.
func execute(ctx context.Context, env environment, args []string, stdout, stderr io.Writer) error {
	cmd, c := newRootCmd(env)
	defer c.close()

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd.ExecuteContext(ctx)
}

func newRootCmd(env environment) (*cobra.Command, *cli) {
	c := &cli{env: env}

	rootCmd := &cobra.Command{
		Use:   "shortlink",
		Short: "Shorten links from the terminal",
		Long: `shortlink talks to a shortener API.

Without a subcommand it opens an interactive form with a URL, an optional
custom code and an optional expiry in days.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.env.runTUI(cmd.Context(), c.newController())
		},
	}

	c.cfg.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(newCreateCmd(c))

	return rootCmd, c
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.cfg.ApplyEnv(cmd.Flags(), c.env.getenv); err != nil {
		return err
	}

	if c.cfg.LogFile == "" {
		logger.Discard()
		return nil
	}

	f, err := os.OpenFile(c.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	c.logFile = f

	return logger.Setup(f, c.cfg.LogLevel)
}

func (c *cli) close() {
	if c.logFile == nil {
		return
	}
	logger.Discard()
	_ = c.logFile.Close()
	c.logFile = nil
}

func (c *cli) newController(opts ...form.Option) *form.Controller {
	api := client.New(c.cfg.Origin, &http.Client{Timeout: c.cfg.Timeout})
	return form.NewController(api, c.env.clipboard, opts...)
}
