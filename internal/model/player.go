package model

import "time"

// User is the signed-in account as reported by the server
type User struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// ProfileName identifies a locally stored client profile
type ProfileName string

// DefaultProfile is used when no profile is configured
const DefaultProfile ProfileName = "default"

// Profile is the client state persisted between command invocations
type Profile struct {
	Name       ProfileName     `json:"name"`
	ServerURL  string          `json:"server_url"`
	Username   string          `json:"username,omitempty"`
	Cookies    []SessionCookie `json:"cookies,omitempty"`
	Category   CategoryCode    `json:"category,omitempty"`
	BattleID   BattleID        `json:"battle_id,omitempty"`
	Appearance Appearance      `json:"appearance"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SessionCookie is a persisted HTTP cookie belonging to the server session
type SessionCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// Appearance holds the equipped cosmetic visuals
type Appearance struct {
	ThemeGradient      string `json:"theme_gradient,omitempty"`
	ButtonColor        string `json:"button_color,omitempty"`
	ButtonHoverColor   string `json:"button_hover_color,omitempty"`
	BackgroundGradient string `json:"background_gradient,omitempty"`
}
