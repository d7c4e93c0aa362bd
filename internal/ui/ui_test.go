package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/quizgame/internal/model"
)

func TestApplyVisual(t *testing.T) {
	var state model.Appearance
	a := AppearanceState{State: &state}

	ApplyVisual(a, model.KindTheme, model.Visual{Gradient: "linear-gradient(red, blue)"})
	ApplyVisual(a, model.KindButtonColor, model.Visual{Color: "#111", HoverColor: "#222"})
	ApplyVisual(a, model.KindBackgroundColor, model.Visual{Gradient: "linear-gradient(white, black)"})
	ApplyVisual(a, model.KindEmote, model.Visual{Emoji: "🔥"})

	assert.Equal(t, model.Appearance{
		ThemeGradient:      "linear-gradient(red, blue)",
		ButtonColor:        "#111",
		ButtonHoverColor:   "#222",
		BackgroundGradient: "linear-gradient(white, black)",
	}, state)
}

func TestApplyVisualIgnoresEmptyPayload(t *testing.T) {
	state := model.Appearance{ThemeGradient: "keep"}
	ApplyVisual(AppearanceState{State: &state}, model.KindTheme, model.Visual{})
	assert.Equal(t, "keep", state.ThemeGradient)
}
