package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"trusttracker/server"
	"trusttracker/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, log := opts.Config, opts.Logger
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Database.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := opts.provisionMaster(ctx, st); err != nil {
			return err
		}
	}

	views, err := web.NewRenderer(cfg.Server.TemplateDir, log)
	if err != nil {
		return err
	}
	if cfg.Debug && cfg.Server.TemplateDir != "" {
		go func() {
			if err := views.Watch(ctx); err != nil {
				log.Error("template watcher stopped", "err", err)
			}
		}()
	}

	return server.New(cfg, st, views, log).Run(ctx)
}
