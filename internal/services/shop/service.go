package shop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/ui"
)

// Client is the part of the API client the shop needs
type Client interface {
	Catalog(ctx context.Context, kind model.CatalogKind) (model.Catalog, error)
	Buy(ctx context.Context, kind model.CatalogKind, id string) (model.Purchase, error)
	Equip(ctx context.Context, kind model.CatalogKind, id string) (model.Equipment, error)
	BuyHints(ctx context.Context, quantity int) (model.Purchase, error)
	ButtonColor(ctx context.Context) (model.ButtonColor, error)
	AddPoints(ctx context.Context, secret string, points int) (model.Purchase, error)
}

// Service sells and equips cosmetics. Catalogs are always fetched fresh.
type Service struct {
	client     Client
	prompter   ui.Prompter
	appearance ui.Appearance
	logger     *slog.Logger
}

// New creates a new shop Service
func New(client Client, prompter ui.Prompter, appearance ui.Appearance, logger *slog.Logger) *Service {
	return &Service{
		client:     client,
		prompter:   prompter,
		appearance: appearance,
		logger:     logger.With(slog.String("component", "shop")),
	}
}

// Catalog fetches one listing. Listings without a balance borrow it from the theme listing.
func (s *Service) Catalog(ctx context.Context, kind model.CatalogKind) (model.Catalog, error) {
	catalog, err := s.client.Catalog(ctx, kind)
	if err != nil {
		s.logger.Error("failed to load catalog", slog.String("kind", string(kind)), slog.String("error", err.Error()))
		return model.Catalog{}, err
	}
	if catalog.Balance < 0 {
		balance, err := s.Balance(ctx)
		if err != nil {
			return model.Catalog{}, err
		}
		catalog.Balance = balance
	}
	return catalog, nil
}

// Balance returns the user's spendable points
func (s *Service) Balance(ctx context.Context) (int, error) {
	themes, err := s.client.Catalog(ctx, model.KindTheme)
	if err != nil {
		return 0, err
	}
	return themes.Balance, nil
}

// Buy purchases an item after local checks and a confirmation, then returns the refreshed catalog
func (s *Service) Buy(ctx context.Context, kind model.CatalogKind, id string) (model.Purchase, model.Catalog, error) {
	catalog, err := s.Catalog(ctx, kind)
	if err != nil {
		return model.Purchase{}, model.Catalog{}, err
	}

	item, ok := catalog.Find(id)
	if !ok {
		return model.Purchase{}, catalog, fmt.Errorf("%w: %s", model.ErrUnknownItem, id)
	}
	if item.Owned {
		return model.Purchase{}, catalog, model.ErrAlreadyOwned
	}
	if catalog.Balance < item.Price {
		return model.Purchase{}, catalog, fmt.Errorf("%w: %s costs %d, balance is %d",
			model.ErrInsufficientBalance, item.Name, item.Price, catalog.Balance)
	}

	ok, err = s.prompter.Confirm(ctx, fmt.Sprintf("Buy %s for %d points?", item.Name, item.Price))
	if err != nil {
		return model.Purchase{}, catalog, err
	}
	if !ok {
		return model.Purchase{}, catalog, model.ErrDeclined
	}

	purchase, err := s.client.Buy(ctx, kind, id)
	if err != nil {
		s.logger.Error("purchase failed", slog.String("kind", string(kind)), slog.String("item", id), slog.String("error", err.Error()))
		return model.Purchase{}, catalog, err
	}
	s.logger.Info("item purchased", slog.String("kind", string(kind)), slog.String("item", id), slog.Int("balance", purchase.NewBalance))

	refreshed, err := s.Catalog(ctx, kind)
	if err != nil {
		return purchase, catalog, err
	}
	return purchase, refreshed, nil
}

// Equip applies an owned item. The visual is applied only once the server accepts it.
func (s *Service) Equip(ctx context.Context, kind model.CatalogKind, id string) (model.Equipment, model.Catalog, error) {
	if !kind.Equippable() {
		return model.Equipment{}, model.Catalog{}, model.ErrNotEquippable
	}

	equipment, err := s.client.Equip(ctx, kind, id)
	if err != nil {
		s.logger.Error("equip failed", slog.String("kind", string(kind)), slog.String("item", id), slog.String("error", err.Error()))
		return model.Equipment{}, model.Catalog{}, err
	}
	ui.ApplyVisual(s.appearance, kind, equipment.Visual)
	s.logger.Info("item equipped", slog.String("kind", string(kind)), slog.String("item", id))

	refreshed, err := s.Catalog(ctx, kind)
	if err != nil {
		return equipment, model.Catalog{}, err
	}
	return equipment, refreshed, nil
}

// BuyHints purchases quantity hints at the fixed unit price
func (s *Service) BuyHints(ctx context.Context, quantity int) (model.Purchase, error) {
	if quantity < model.MinHintPurchase || quantity > model.MaxHintPurchase {
		return model.Purchase{}, fmt.Errorf("%w: between %d and %d", model.ErrInvalidQuantity, model.MinHintPurchase, model.MaxHintPurchase)
	}

	balance, err := s.Balance(ctx)
	if err != nil {
		return model.Purchase{}, err
	}
	cost := quantity * model.HintPrice
	if balance < cost {
		return model.Purchase{}, fmt.Errorf("%w: %d hints cost %d, balance is %d", model.ErrInsufficientBalance, quantity, cost, balance)
	}

	ok, err := s.prompter.Confirm(ctx, fmt.Sprintf("Buy %d hint(s) for %d points?", quantity, cost))
	if err != nil {
		return model.Purchase{}, err
	}
	if !ok {
		return model.Purchase{}, model.ErrDeclined
	}

	purchase, err := s.client.BuyHints(ctx, quantity)
	if err != nil {
		s.logger.Error("hint purchase failed", slog.Int("quantity", quantity), slog.String("error", err.Error()))
		return model.Purchase{}, err
	}
	s.logger.Info("hints purchased", slog.Int("quantity", quantity), slog.Int("hints", purchase.HintCount))
	return purchase, nil
}

// ApplyCurrentButtonColor applies the equipped button color at start-up
func (s *Service) ApplyCurrentButtonColor(ctx context.Context) (model.ButtonColor, error) {
	color, err := s.client.ButtonColor(ctx)
	if err != nil {
		s.logger.Warn("failed to load button color", slog.String("error", err.Error()))
		return model.ButtonColor{}, err
	}
	ui.ApplyVisual(s.appearance, model.KindButtonColor, model.Visual{Color: color.Color, HoverColor: color.HoverColor})
	return color, nil
}

// DevAddPoints credits points through the developer endpoint
func (s *Service) DevAddPoints(ctx context.Context, secret string, points int) (model.Purchase, error) {
	if points < 0 || points > model.MaxDevPoints {
		return model.Purchase{}, fmt.Errorf("%w: between 0 and %d", model.ErrInvalidPoints, model.MaxDevPoints)
	}

	purchase, err := s.client.AddPoints(ctx, secret, points)
	if err != nil {
		s.logger.Warn("developer points rejected", slog.String("error", err.Error()))
		return model.Purchase{}, err
	}
	return purchase, nil
}
