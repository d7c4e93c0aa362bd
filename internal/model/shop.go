package model

// CatalogKind selects one of the shop catalogs
type CatalogKind string

const (
	KindTheme           CatalogKind = "theme"
	KindButtonColor     CatalogKind = "button_color"
	KindBackgroundColor CatalogKind = "background_color"
	KindEmote           CatalogKind = "emote"
)

// CatalogKinds returns every shop catalog in display order
func CatalogKinds() []CatalogKind {
	return []CatalogKind{KindTheme, KindButtonColor, KindBackgroundColor, KindEmote}
}

// Equippable reports whether items of this kind can be equipped
func (k CatalogKind) Equippable() bool {
	return k != KindEmote
}

// Shop constants
const (
	HintPrice       = 25
	MinHintPurchase = 1
	MaxHintPurchase = 100
	MaxDevPoints    = 10000
)

// Visual is the cosmetic payload of a catalog item
type Visual struct {
	Gradient   string `json:"gradient,omitempty"`
	Color      string `json:"color,omitempty"`
	HoverColor string `json:"hover_color,omitempty"`
	Emoji      string `json:"emoji,omitempty"`
}

// CatalogItem is one purchasable cosmetic
type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Owned       bool   `json:"owned"`
	Equipped    bool   `json:"equipped"`
	Visual      Visual `json:"visual"`
}

// Catalog is a freshly fetched shop listing.
// Balance is -1 when the server does not report it for this kind.
type Catalog struct {
	Kind    CatalogKind   `json:"kind"`
	Items   []CatalogItem `json:"items"`
	Balance int           `json:"balance"`
}

// Find returns the item with the given id
func (c Catalog) Find(id string) (CatalogItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// Owned returns the ids of owned items
func (c Catalog) Owned() []string {
	var ids []string
	for _, item := range c.Items {
		if item.Owned {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// Purchase is the server response to a buy request
type Purchase struct {
	Message    string `json:"message"`
	NewBalance int    `json:"new_balance"`
	HintCount  int    `json:"hint_count,omitempty"`
}

// Equipment is the server response to an equip request
type Equipment struct {
	Kind    CatalogKind `json:"kind"`
	ItemID  string      `json:"item_id"`
	Message string      `json:"message"`
	Visual  Visual      `json:"visual"`
}

// ButtonColor is the user's currently equipped button color
type ButtonColor struct {
	ID         string `json:"id"`
	Color      string `json:"color"`
	HoverColor string `json:"hover_color"`
}
