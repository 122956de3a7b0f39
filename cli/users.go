package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trusttracker/auth"
	"trusttracker/store"
)

// NewCreateUserCommand creates the create-user command.
func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "create-user <username> <password>",
		Short: "Create a login account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := auth.NewUser(args[0], args[1], admin)
			if err != nil {
				return err
			}
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := st.CreateUser(cmd.Context(), u); err != nil {
				if errors.Is(err, store.ErrUsernameTaken) {
					return fmt.Errorf("user %s already exists", u.Username)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s id=%d\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "grant administrator rights")
	return cmd
}

// NewResetPasswordCommand creates the reset-password command.
func NewResetPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.CheckPasswordPolicy(password); err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SetPasswordHash(cmd.Context(), username, hash); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("user %s not found", username)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password reset for user %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username to reset")
	cmd.Flags().StringVar(&password, "password", "", "new password (min 6 chars)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
