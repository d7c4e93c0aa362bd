package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/quizgame/internal/model"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in; the password is read from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := tty.ReadPassword(ctx, "Password: ")
			if err != nil {
				return err
			}

			user, err := app.AuthService.Login(ctx, args[0], password)
			if err != nil {
				return err
			}

			out.Print(user)
			return nil
		},
	}
}

func newAuthRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := tty.ReadPassword(ctx, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := tty.ReadPassword(ctx, "Confirm password: ")
			if err != nil {
				return err
			}

			user, err := app.AuthService.Register(ctx, args[0], password, confirm)
			if err != nil {
				return err
			}

			out.Print(user)
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.AuthService.Logout(cmd.Context())
			if errors.Is(err, model.ErrDeclined) {
				out.PrintMessage("Still logged in")
				return nil
			}
			if err != nil {
				return err
			}

			out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.AuthService.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}

			out.Print(user)
			return nil
		},
	}
}
