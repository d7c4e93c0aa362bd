package stub

// subject is a playable category with its question bank
type subject struct {
	code      string
	name      string
	emoji     string
	group     string
	questions []question
}

type question struct {
	text    string
	correct string
	wrong   []string
	source  string
}

type group struct {
	id       string
	name     string
	emoji    string
	subjects []string
}

type cosmetic struct {
	id          string
	name        string
	description string
	price       int
	gradient    string
	color       string
	hoverColor  string
	emoji       string
}

// defaultItem is owned by everyone for themes, button colors and backgrounds
const defaultItem = "default"

// DevSecret is the shared secret accepted by the developer points endpoint
const DevSecret = "          "

func seedSubjects() []subject {
	return []subject{
		{
			code: "maths", name: "Mathématiques", emoji: "📐", group: "maths",
			questions: []question{
				{text: "Dérivée de x² ?", correct: "2x", wrong: []string{"x", "x²/2"}},
				{text: "Combien vaut 7 × 8 ?", correct: "56", wrong: []string{"54", "64"}},
				{text: "Racine carrée de 81 ?", correct: "9", wrong: []string{"8", "7"}},
			},
		},
		{
			code: "physique_thermo", name: "Thermodynamique", emoji: "🔥", group: "physique",
			questions: []question{
				{text: "Unité de l'entropie ?", correct: "J/K", wrong: []string{"J", "K/J"}},
				{text: "Premier principe ?", correct: "ΔU = W + Q", wrong: []string{"ΔS ≥ 0"}},
			},
		},
		{
			code: "physique_thermique", name: "Thermique", emoji: "🔥", group: "physique",
			questions: []question{
				{text: "Loi de la conduction ?", correct: "Fourier", wrong: []string{"Newton", "Stefan"}},
			},
		},
		{
			code: "anglais", name: "Anglais", emoji: "🇬🇧", group: "anglais",
			questions: []question{
				{text: "Past tense of 'go' ?", correct: "went", wrong: []string{"goed", "gone"}},
				{text: "Plural of 'mouse' ?", correct: "mice", wrong: []string{"mouses"}},
			},
		},
	}
}

func seedGroups() []group {
	return []group{
		{id: "maths", name: "Mathématiques", emoji: "📐", subjects: []string{"maths"}},
		{id: "physique", name: "Physique", emoji: "🔬", subjects: []string{"physique_thermo", "physique_thermique"}},
		{id: "anglais", name: "Anglais", emoji: "🇬🇧", subjects: []string{"anglais"}},
	}
}

func seedThemes() []cosmetic {
	return []cosmetic{
		{id: defaultItem, name: "Violet Classique", description: "Le thème par défaut", gradient: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"},
		{id: "ocean", name: "Océan Profond", description: "Plongez dans les profondeurs", price: 500, gradient: "linear-gradient(135deg, #2E3192 0%, #1BFFFF 100%)"},
		{id: "galaxy", name: "Galaxie Cosmique", description: "Voyage spatial", price: 1000, gradient: "linear-gradient(135deg, #2C3E50 0%, #4CA1AF 100%)"},
	}
}

func seedButtonColors() []cosmetic {
	return []cosmetic{
		{id: defaultItem, name: "Bleu Standard", description: "La couleur par défaut", color: "#4CAF50", hoverColor: "#45a049"},
		{id: "red", name: "Rouge Passion", description: "Boutons rouge vif", price: 150, color: "#FF5252", hoverColor: "#E53935"},
		{id: "purple", name: "Violet Royal", description: "Boutons violets", price: 150, color: "#9C27B0", hoverColor: "#7B1FA2"},
	}
}

func seedBackgroundColors() []cosmetic {
	return []cosmetic{
		{id: defaultItem, name: "Blanc Standard", description: "Le fond blanc classique", gradient: "linear-gradient(135deg, #ffffff 0%, #f5f5f5 100%)"},
		{id: "light_blue", name: "Bleu Clair", description: "Fond bleu pastel apaisant", price: 1000, gradient: "linear-gradient(135deg, #E3F2FD 0%, #BBDEFB 100%)"},
	}
}

func seedEmotes() []cosmetic {
	return []cosmetic{
		{id: "fire", name: "🔥 Enflammé", description: "T'es en feu !", price: 50, emoji: "🔥"},
		{id: "trophy", name: "🏆 Trophée", description: "La victoire est proche", price: 100, emoji: "🏆"},
		{id: "brain", name: "🧠 Cerveau", description: "Trop intelligent", price: 150, emoji: "🧠"},
	}
}

func findCosmetic(items []cosmetic, id string) (cosmetic, bool) {
	for _, c := range items {
		if c.id == id {
			return c, true
		}
	}
	return cosmetic{}, false
}
