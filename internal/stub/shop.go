package stub

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/mcoot/quizgame/internal/api/apierr"
	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
	"github.com/mcoot/quizgame/internal/model"
)

// wardrobe is the per-kind view of what a user owns and wears
type wardrobe struct {
	items    []cosmetic
	owned    map[string]bool
	equipped *string
}

func (b *Backend) wardrobe(u *user, kind model.CatalogKind) wardrobe {
	switch kind {
	case model.KindTheme:
		return wardrobe{items: b.themes, owned: u.themes, equipped: &u.theme}
	case model.KindButtonColor:
		return wardrobe{items: b.buttons, owned: u.buttonColors, equipped: &u.buttonColor}
	case model.KindBackgroundColor:
		return wardrobe{items: b.backgrounds, owned: u.backgrounds, equipped: &u.backgroundColor}
	}
	return wardrobe{}
}

func (b *Backend) handleThemes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	resp := response.ThemesResponse{UserScore: u.totalScore, CurrentTheme: u.theme}
	for _, t := range b.themes {
		resp.Themes = append(resp.Themes, response.Theme{
			ID: t.id, Name: t.name, Gradient: t.gradient, Price: t.price, Description: t.description,
			Owned: u.themes[t.id], Equipped: u.theme == t.id,
		})
	}
	response.OK(w, resp)
}

func (b *Backend) handleButtonColors(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	resp := response.ButtonColorsResponse{UserScore: u.totalScore}
	for _, c := range b.buttons {
		resp.Colors = append(resp.Colors, response.ButtonColor{
			ID: c.id, Name: c.name, Color: c.color, HoverColor: c.hoverColor, Price: c.price, Description: c.description,
			Owned: u.buttonColors[c.id], Equipped: u.buttonColor == c.id,
		})
	}
	response.OK(w, resp)
}

func (b *Backend) handleBackgroundColors(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	var resp response.BackgroundColorsResponse
	for _, c := range b.backgrounds {
		resp.BackgroundColors = append(resp.BackgroundColors, response.BackgroundColor{
			ID: c.id, Name: c.name, Gradient: c.gradient, Price: c.price, Description: c.description,
			Owned: u.backgrounds[c.id], Equipped: u.backgroundColor == c.id,
		})
	}
	response.OK(w, resp)
}

func (b *Backend) handleEmotes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	resp := response.EmotesResponse{UserScore: u.totalScore, OwnedEmotes: slices.Clone(u.emotes)}
	if resp.OwnedEmotes == nil {
		resp.OwnedEmotes = []string{}
	}
	for _, e := range b.emotes {
		resp.Emotes = append(resp.Emotes, response.Emote{
			ID: e.id, Name: e.name, Emoji: e.emoji, Price: e.price, Description: e.description,
			Owned: u.ownsEmote(e.id),
		})
	}
	response.OK(w, resp)
}

func (b *Backend) handleBuyTheme(w http.ResponseWriter, r *http.Request) {
	var req request.ThemeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	b.buy(w, r, model.KindTheme, req.ThemeID)
}

func (b *Backend) handleBuyButtonColor(w http.ResponseWriter, r *http.Request) {
	var req request.ColorRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	b.buy(w, r, model.KindButtonColor, req.ColorID)
}

func (b *Backend) handleBuyBackground(w http.ResponseWriter, r *http.Request) {
	var req request.ColorRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	b.buy(w, r, model.KindBackgroundColor, req.ColorID)
}

func (b *Backend) handleBuyEmote(w http.ResponseWriter, r *http.Request) {
	var req request.EmoteRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	emote, ok := findCosmetic(b.emotes, req.EmoteID)
	if !ok {
		badRequest(w, "Emote invalide")
		return
	}
	if u.ownsEmote(emote.id) {
		badRequest(w, "Vous possédez déjà cette emote")
		return
	}
	if u.totalScore < emote.price {
		badRequest(w, "Points insuffisants")
		return
	}
	u.totalScore -= emote.price
	u.emotes = append(u.emotes, emote.id)

	response.OK(w, response.PurchaseResponse{
		Success:  true,
		Message:  fmt.Sprintf("Emote %s achetée !", emote.name),
		NewScore: u.totalScore,
	})
}

func (b *Backend) buy(w http.ResponseWriter, r *http.Request, kind model.CatalogKind, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	wr := b.wardrobe(u, kind)
	item, ok := findCosmetic(wr.items, id)
	if !ok {
		badRequest(w, "Article invalide")
		return
	}
	if wr.owned[item.id] {
		badRequest(w, "Vous possédez déjà cet article")
		return
	}
	if u.totalScore < item.price {
		badRequest(w, "Points insuffisants")
		return
	}
	u.totalScore -= item.price
	wr.owned[item.id] = true

	response.OK(w, response.PurchaseResponse{
		Success:  true,
		Message:  fmt.Sprintf("%s acheté !", item.name),
		NewScore: u.totalScore,
	})
}

func (b *Backend) handleEquipTheme(w http.ResponseWriter, r *http.Request) {
	var req request.ThemeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	b.equip(w, r, model.KindTheme, req.ThemeID)
}

func (b *Backend) handleEquipButtonColor(w http.ResponseWriter, r *http.Request) {
	var req request.ColorRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	b.equip(w, r, model.KindButtonColor, req.ColorID)
}

func (b *Backend) handleEquipBackground(w http.ResponseWriter, r *http.Request) {
	var req request.ColorRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	b.equip(w, r, model.KindBackgroundColor, req.ColorID)
}

func (b *Backend) equip(w http.ResponseWriter, r *http.Request, kind model.CatalogKind, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	wr := b.wardrobe(u, kind)
	item, ok := findCosmetic(wr.items, id)
	if !ok {
		badRequest(w, "Article invalide")
		return
	}
	if !wr.owned[item.id] {
		apierr.WriteError(w, http.StatusForbidden, "Vous ne possédez pas cet article")
		return
	}
	*wr.equipped = item.id

	response.OK(w, response.EquipResponse{
		Success:    true,
		Message:    fmt.Sprintf("%s équipé !", item.name),
		Gradient:   item.gradient,
		Color:      item.color,
		HoverColor: item.hoverColor,
	})
}

func (b *Backend) handleBuyHints(w http.ResponseWriter, r *http.Request) {
	var req request.BuyHintsRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	if req.Quantity < model.MinHintPurchase || req.Quantity > model.MaxHintPurchase {
		badRequest(w, "Quantité invalide (1-100)")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	cost := req.Quantity * model.HintPrice
	if u.totalScore < cost {
		badRequest(w, fmt.Sprintf("Points insuffisants. Coût: %d points", cost))
		return
	}
	u.totalScore -= cost
	u.hints += req.Quantity

	response.OK(w, response.PurchaseResponse{
		Success:    true,
		Message:    fmt.Sprintf("%d indice(s) acheté(s) !", req.Quantity),
		NewScore:   u.totalScore,
		HintsCount: u.hints,
	})
}

func (b *Backend) handleUserButtonColor(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	c, ok := findCosmetic(b.buttons, u.buttonColor)
	if !ok {
		c, _ = findCosmetic(b.buttons, defaultItem)
	}
	response.OK(w, response.UserButtonColorResponse{ColorID: c.id, Color: c.color, HoverColor: c.hoverColor})
}

func (b *Backend) handleAddPoints(w http.ResponseWriter, r *http.Request) {
	var req request.AddPointsRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	if req.Password != DevSecret {
		apierr.WriteError(w, http.StatusForbidden, "Mot de passe incorrect")
		return
	}
	if req.Points < 0 || req.Points > model.MaxDevPoints {
		badRequest(w, "Nombre de points invalide (0-10000)")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[currentUser(r)]
	u.totalScore += req.Points
	response.OK(w, response.PurchaseResponse{
		Success:  true,
		Message:  fmt.Sprintf("%d points ajoutés !", req.Points),
		NewScore: u.totalScore,
	})
}
