package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active profile, server and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.AuthService.CurrentUser(ctx)
			if err != nil {
				return err
			}
			if user.Authenticated {
				applyButtonColor(ctx)
			}

			out.Print(StatusResult{
				Profile:    app.Profile.Name,
				Server:     app.Profile.ServerURL,
				User:       user,
				Category:   app.Session.Category(),
				Appearance: app.Profile.Appearance,
			})
			return nil
		},
	}
}

// applyButtonColor lets the server's equipped color win over the remembered one.
// A failure only leaves the remembered color in place.
func applyButtonColor(ctx context.Context) {
	if _, err := app.ShopService.ApplyCurrentButtonColor(ctx); err != nil {
		app.Logger.Warn("failed to apply button color", slog.String("error", err.Error()))
	}
}
