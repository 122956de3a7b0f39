// Package cli wires configuration, storage and the HTTP server into the
// trusttracker command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"trusttracker/config"
	"trusttracker/store"
)

// RootOptions carries the state every subcommand shares. Config and Logger
// are filled in by the root PersistentPreRunE.
type RootOptions struct {
	LoadConfig func() (*config.Config, error)

	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the trusttracker command. Without a subcommand it
// serves the web application.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.Load})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	serve := NewServeCommand(opts)

	cmd := &cobra.Command{
		Use:           "trusttracker",
		Short:         "Trust Tracker - bookkeeping for family and charitable trusts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}
			opts.Config = cfg
			opts.Logger = newLogger(cfg, cmd.ErrOrStderr())
			return nil
		},
		RunE: serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))
	cmd.AddCommand(NewResetPasswordCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	return cmd
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func (o *RootOptions) openStore() (*store.Store, error) {
	return store.Open(o.Config.Database.URL, store.Options{Debug: o.Config.Debug, Logger: o.Logger})
}

// provisionMaster creates the configured master account when it is missing.
func (o *RootOptions) provisionMaster(ctx context.Context, st *store.Store) error {
	m := o.Config.Master
	if !m.Enabled() {
		o.Logger.Info("master account disabled")
		return nil
	}
	created, err := st.EnsureMaster(ctx, m.Username, m.Password)
	if err != nil {
		return fmt.Errorf("provision master account: %w", err)
	}
	if created {
		o.Logger.Info("master account created", "username", m.Username)
	}
	return nil
}
