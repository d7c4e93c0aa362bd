// Package ui declares the presentation hooks the controllers call into.
// The terminal front end implements them; tests use the fakes in testutil.
package ui

import (
	"context"

	"github.com/mcoot/quizgame/internal/model"
)

// Prompter shows blocking dialogs
type Prompter interface {
	// Confirm blocks until the user answers; a cancelled ctx counts as a decline
	Confirm(ctx context.Context, message string) (bool, error)
	// Alert shows a message that needs no answer
	Alert(message string)
}

// Appearance applies equipped cosmetics to the presentation layer
type Appearance interface {
	ApplyTheme(gradient string)
	ApplyButtonColor(color, hover string)
	ApplyBackground(gradient string)
}

// ApplyVisual routes an equipped item's visual to the matching Appearance hook
func ApplyVisual(a Appearance, kind model.CatalogKind, v model.Visual) {
	switch kind {
	case model.KindTheme:
		if v.Gradient != "" {
			a.ApplyTheme(v.Gradient)
		}
	case model.KindButtonColor:
		if v.Color != "" {
			a.ApplyButtonColor(v.Color, v.HoverColor)
		}
	case model.KindBackgroundColor:
		if v.Gradient != "" {
			a.ApplyBackground(v.Gradient)
		}
	}
}

// AppearanceState records applied visuals into a model.Appearance
type AppearanceState struct {
	State *model.Appearance
}

// Ensure AppearanceState implements Appearance
var _ Appearance = AppearanceState{}

func (a AppearanceState) ApplyTheme(gradient string) {
	a.State.ThemeGradient = gradient
}

func (a AppearanceState) ApplyButtonColor(color, hover string) {
	a.State.ButtonColor = color
	a.State.ButtonHoverColor = hover
}

func (a AppearanceState) ApplyBackground(gradient string) {
	a.State.BackgroundGradient = gradient
}
