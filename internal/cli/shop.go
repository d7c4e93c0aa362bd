package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/quizgame/internal/model"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Cosmetics shop commands",
	}

	cmd.AddCommand(newShopListCmd())
	cmd.AddCommand(newShopBuyCmd())
	cmd.AddCommand(newShopEquipCmd())

	return cmd
}

func newShopListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [kind]",
		Short: "List catalog items: theme, button_color, background_color, emote",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}

			kinds := model.CatalogKinds()
			if len(args) == 1 {
				kind, err := parseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []model.CatalogKind{kind}
			}

			catalogs := make([]model.Catalog, 0, len(kinds))
			for _, kind := range kinds {
				catalog, err := app.ShopService.Catalog(ctx, kind)
				if err != nil {
					return err
				}
				catalogs = append(catalogs, catalog)
			}

			if out.JSON() {
				out.Print(catalogs)
				return nil
			}
			for _, catalog := range catalogs {
				out.PrintMessage(fmt.Sprintf("\n%s", kindTitle(catalog.Kind)))
				out.Print(catalog)
			}
			return nil
		},
	}
}

func newShopBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <kind> <id>",
		Short: "Buy a catalog item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}

			purchase, _, err := app.ShopService.Buy(ctx, kind, args[1])
			if err != nil {
				return err
			}

			out.Print(purchase)
			return nil
		},
	}
}

func newShopEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equip <kind> <id>",
		Short: "Equip an owned theme, button color or background",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}

			equipment, _, err := app.ShopService.Equip(ctx, kind, args[1])
			if err != nil {
				return err
			}

			out.Print(equipment)
			return nil
		},
	}
}

func newHintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hints",
		Short: "Show how many hints you have",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}

			count, err := app.Client.HintCount(ctx)
			if err != nil {
				return err
			}

			out.Print(HintBalance{Hints: count})
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "buy <quantity>",
		Short: fmt.Sprintf("Buy hints at %d points each", model.HintPrice),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", model.ErrInvalidQuantity, args[0])
			}

			purchase, err := app.ShopService.BuyHints(ctx, quantity)
			if err != nil {
				return err
			}

			out.Print(purchase)
			return nil
		},
	})

	return cmd
}

func newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "dev",
		Short:  "Developer commands",
		Hidden: true,
	}

	var secret string
	addPoints := &cobra.Command{
		Use:   "add-points <points>",
		Short: "Credit points to the signed-in account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}
			points, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", model.ErrInvalidPoints, args[0])
			}

			purchase, err := app.ShopService.DevAddPoints(ctx, secret, points)
			if err != nil {
				return err
			}

			out.Print(purchase)
			return nil
		},
	}
	addPoints.Flags().StringVar(&secret, "dev-secret", "", "Developer secret (env: QUIZGAME_DEV_SECRET)")

	cmd.AddCommand(addPoints)
	return cmd
}

// parseKind accepts catalog kinds with dashes or underscores
func parseKind(s string) (model.CatalogKind, error) {
	kind := model.CatalogKind(strings.ReplaceAll(strings.ToLower(s), "-", "_"))
	for _, k := range model.CatalogKinds() {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown catalog %q: must be theme, button_color, background_color or emote", s)
}

func kindTitle(kind model.CatalogKind) string {
	switch kind {
	case model.KindTheme:
		return "🎨 Themes"
	case model.KindButtonColor:
		return "🔘 Button colors"
	case model.KindBackgroundColor:
		return "🖼️  Backgrounds"
	case model.KindEmote:
		return "😀 Emotes"
	default:
		return string(kind)
	}
}
