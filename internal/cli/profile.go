package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/quizgame/internal/model"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage stored client profiles",
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			names, err := app.Storage.ListProfiles(ctx)
			if err != nil {
				return err
			}

			summaries := make([]ProfileSummary, 0, len(names))
			for _, name := range names {
				p, err := app.Storage.GetProfile(ctx, name)
				if errors.Is(err, model.ErrProfileNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				summaries = append(summaries, ProfileSummary{
					Name:      p.Name,
					Server:    p.ServerURL,
					Username:  p.Username,
					UpdatedAt: p.UpdatedAt,
					Active:    p.Name == app.Profile.Name,
				})
			}

			out.Print(summaries)
			return nil
		},
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored profile",
		Args:  cobra.ExactArgs(1),
		// Saving afterwards would recreate the active profile
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			name := model.ProfileName(args[0])
			if err := app.Storage.DeleteProfile(cmd.Context(), name); err != nil {
				return err
			}

			out.PrintMessage(fmt.Sprintf("Deleted profile %s", name))
			return nil
		},
	}
}
