package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/nazolog/internal/config"
	"github.com/example/nazolog/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout, os.Stderr, config.Load)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the process level dependencies every subcommand shares.
type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
}

func newRootCommand(stdout, stderr io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr, loadConfig: loadConfig}

	root := &cobra.Command{
		Use:   "nazolog",
		Short: "nazolog - attendance log for puzzle events",
		Long: `nazolog keeps a personal log of attended puzzle events.

Without a subcommand it serves the JSON view-state API. Configuration is read
from NAZOLOG_* environment variables.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runServe,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP API",
			Args:  cobra.NoArgs,
			RunE:  c.runServe,
		},
		&cobra.Command{
			Use:   "export",
			Short: "Print the stored record blob as JSON",
			Args:  cobra.NoArgs,
			RunE:  c.runExport,
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Validate a record blob and replace the stored one with it",
			Long: `Import reads a JSON array of records, upgrades entries written by the
browser version of the log and replaces the stored blob. Use "-" to read
from standard input.
`,
			Args: cobra.ExactArgs(1),
			RunE: c.runImport,
		},
		&cobra.Command{
			Use:   "hash-password [password]",
			Short: "Print an argon2id hash for NAZOLOG_OWNER_PASSWORD_HASH",
			Args:  cobra.MaximumNArgs(1),
			RunE:  c.runHashPassword,
		},
	)
	return root
}

// setup loads configuration and builds the JSON logger writing to logOut.
// Commands that print data on stdout log to stderr.
func (c *cli) setup(logOut io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)}))
	return cfg, logger, nil
}
