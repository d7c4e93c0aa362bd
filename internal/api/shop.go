package api

import (
	"context"
	"fmt"

	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
	"github.com/mcoot/quizgame/internal/model"
)

// Catalog fetches the listing for one shop kind
func (c *Client) Catalog(ctx context.Context, kind model.CatalogKind) (model.Catalog, error) {
	catalog := model.Catalog{Kind: kind, Balance: -1}

	switch kind {
	case model.KindTheme:
		var resp response.ThemesResponse
		if err := c.Get(ctx, "/api/shop/themes", &resp); err != nil {
			return model.Catalog{}, err
		}
		catalog.Balance = resp.UserScore
		for _, t := range resp.Themes {
			catalog.Items = append(catalog.Items, model.CatalogItem{
				ID: t.ID, Name: t.Name, Description: t.Description, Price: t.Price,
				Owned: t.Owned, Equipped: t.Equipped,
				Visual: model.Visual{Gradient: t.Gradient},
			})
		}

	case model.KindButtonColor:
		var resp response.ButtonColorsResponse
		if err := c.Get(ctx, "/api/shop/button_colors", &resp); err != nil {
			return model.Catalog{}, err
		}
		catalog.Balance = resp.UserScore
		for _, b := range resp.Colors {
			catalog.Items = append(catalog.Items, model.CatalogItem{
				ID: b.ID, Name: b.Name, Description: b.Description, Price: b.Price,
				Owned: b.Owned, Equipped: b.Equipped,
				Visual: model.Visual{Color: b.Color, HoverColor: b.HoverColor},
			})
		}

	case model.KindBackgroundColor:
		var resp response.BackgroundColorsResponse
		if err := c.Get(ctx, "/api/shop/background_colors", &resp); err != nil {
			return model.Catalog{}, err
		}
		for _, b := range resp.BackgroundColors {
			catalog.Items = append(catalog.Items, model.CatalogItem{
				ID: b.ID, Name: b.Name, Description: b.Description, Price: b.Price,
				Owned: b.Owned, Equipped: b.Equipped,
				Visual: model.Visual{Gradient: b.Gradient},
			})
		}

	case model.KindEmote:
		var resp response.EmotesResponse
		if err := c.Get(ctx, "/api/shop/emotes", &resp); err != nil {
			return model.Catalog{}, err
		}
		catalog.Balance = resp.UserScore
		for _, e := range resp.Emotes {
			catalog.Items = append(catalog.Items, model.CatalogItem{
				ID: e.ID, Name: e.Name, Description: e.Description, Price: e.Price,
				Owned:  e.Owned,
				Visual: model.Visual{Emoji: e.Emoji},
			})
		}

	default:
		return model.Catalog{}, fmt.Errorf("unknown catalog kind %q", kind)
	}

	return catalog, nil
}

// Buy purchases a catalog item
func (c *Client) Buy(ctx context.Context, kind model.CatalogKind, id string) (model.Purchase, error) {
	var path string
	var body any

	switch kind {
	case model.KindTheme:
		path, body = "/api/shop/buy", request.ThemeRequest{ThemeID: id}
	case model.KindButtonColor:
		path, body = "/api/shop/buy_button_color", request.ColorRequest{ColorID: id}
	case model.KindBackgroundColor:
		path, body = "/api/shop/buy_background_color", request.ColorRequest{ColorID: id}
	case model.KindEmote:
		path, body = "/api/shop/buy_emote", request.EmoteRequest{EmoteID: id}
	default:
		return model.Purchase{}, fmt.Errorf("unknown catalog kind %q", kind)
	}

	var resp response.PurchaseResponse
	if err := c.Post(ctx, path, body, &resp); err != nil {
		return model.Purchase{}, err
	}
	return model.Purchase{Message: resp.Message, NewBalance: resp.NewScore}, nil
}

// Equip applies an owned catalog item
func (c *Client) Equip(ctx context.Context, kind model.CatalogKind, id string) (model.Equipment, error) {
	var path string
	var body any

	switch kind {
	case model.KindTheme:
		path, body = "/api/shop/equip", request.ThemeRequest{ThemeID: id}
	case model.KindButtonColor:
		path, body = "/api/shop/equip_button_color", request.ColorRequest{ColorID: id}
	case model.KindBackgroundColor:
		path, body = "/api/shop/equip_background_color", request.ColorRequest{ColorID: id}
	default:
		return model.Equipment{}, model.ErrNotEquippable
	}

	var resp response.EquipResponse
	if err := c.Post(ctx, path, body, &resp); err != nil {
		return model.Equipment{}, err
	}
	return model.Equipment{
		Kind:    kind,
		ItemID:  id,
		Message: resp.Message,
		Visual:  model.Visual{Gradient: resp.Gradient, Color: resp.Color, HoverColor: resp.HoverColor},
	}, nil
}

// BuyHints purchases hints at the fixed unit price
func (c *Client) BuyHints(ctx context.Context, quantity int) (model.Purchase, error) {
	var resp response.PurchaseResponse
	if err := c.Post(ctx, "/api/shop/buy_hints", request.BuyHintsRequest{Quantity: quantity}, &resp); err != nil {
		return model.Purchase{}, err
	}
	return model.Purchase{Message: resp.Message, NewBalance: resp.NewScore, HintCount: resp.HintsCount}, nil
}

// ButtonColor returns the equipped button color
func (c *Client) ButtonColor(ctx context.Context) (model.ButtonColor, error) {
	var resp response.UserButtonColorResponse
	if err := c.Get(ctx, "/api/user/button_color", &resp); err != nil {
		return model.ButtonColor{}, err
	}
	return model.ButtonColor{ID: resp.ColorID, Color: resp.Color, HoverColor: resp.HoverColor}, nil
}

// AddPoints credits points through the developer endpoint
func (c *Client) AddPoints(ctx context.Context, secret string, points int) (model.Purchase, error) {
	var resp response.PurchaseResponse
	if err := c.Post(ctx, "/api/dev/add_points", request.AddPointsRequest{Password: secret, Points: points}, &resp); err != nil {
		return model.Purchase{}, err
	}
	return model.Purchase{Message: resp.Message, NewBalance: resp.NewScore}, nil
}
