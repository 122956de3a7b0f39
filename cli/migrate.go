package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

type migrateOptions struct {
	reset  bool
	yes    bool
	sample bool
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &migrateOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and provision the master account",
		Long: `Create or update the database schema and provision the master account.

--reset drops every table first and must be confirmed with --yes. --sample loads the demo trusts,
transactions and meetings when the database has no trusts yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "drop all tables before migrating")
	cmd.Flags().BoolVar(&opts.yes, "yes", false, "confirm --reset")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "load demo data into an empty database")
	return cmd
}

func runMigrate(cmd *cobra.Command, rootOpts *RootOptions, opts *migrateOptions) error {
	if opts.reset && !opts.yes {
		return errors.New("--reset drops all data; pass --yes to confirm")
	}
	ctx := cmd.Context()
	st, err := rootOpts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.reset {
		if err := st.Reset(ctx); err != nil {
			return err
		}
		rootOpts.Logger.Warn("database reset")
	} else if err := st.Migrate(ctx); err != nil {
		return err
	}
	if err := rootOpts.provisionMaster(ctx, st); err != nil {
		return err
	}
	if opts.sample {
		if err := st.SeedSample(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
	return nil
}
