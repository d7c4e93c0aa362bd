// Package stub is an in-memory stand-in for the quiz backend. It serves the
// same JSON endpoints and battle channel the client talks to, for local
// development and tests.
package stub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/quizgame/internal/dependencies/clock"
	"github.com/mcoot/quizgame/internal/dependencies/random"
	"github.com/mcoot/quizgame/internal/model"
)

const (
	sessionCookie = "session"
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// battle win bonus and loss penalty applied to total points
	battleStake = 50
)

// Options configures a Backend
type Options struct {
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger
	// BattleDuration is how long a battle must run before battle_end settles it
	BattleDuration time.Duration
}

type user struct {
	name            string
	passwordHash    []byte
	totalScore      int
	hints           int
	themes          map[string]bool
	buttonColors    map[string]bool
	backgrounds     map[string]bool
	emotes          []string
	theme           string
	buttonColor     string
	backgroundColor string
	// progress is subject -> question text -> success|failed
	progress map[string]map[string]string
}

type gameSession struct {
	user         string
	subject      string
	questions    []question
	index        int
	score        int
	remaining    []string
	correct      []int
	review       []int
	timerMinutes int
	startTime    time.Time
}

type savedGame struct {
	user      string
	subject   string
	game      gameSession
	elapsed   int
	completed bool
	duration  int
	score     int
	createdAt time.Time
}

type battle struct {
	id       model.BattleID
	code     model.BattleCode
	subject  string
	public   bool
	player1  string
	player2  string
	p1Score  int
	p2Score  int
	status   model.BattleStatus
	p1Ready  bool
	p2Ready  bool
	start    time.Time
	finished bool
}

// RecordedEvent is a channel frame received from a client
type RecordedEvent struct {
	User  string
	Event model.EventType
	Data  json.RawMessage
}

// Backend holds all stub state
type Backend struct {
	mu     sync.Mutex
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
	opts   Options

	subjects    []subject
	groups      []group
	themes      []cosmetic
	buttons     []cosmetic
	backgrounds []cosmetic
	emotes      []cosmetic

	users    map[string]*user
	sessions map[string]string
	games    map[string]*gameSession
	saves    []*savedGame
	battles  map[model.BattleID]*battle
	nextID   model.BattleID
	recorded []RecordedEvent

	hub *Hub
}

// New creates a Backend seeded with categories, questions and shop catalogs
func New(opts Options) *Backend {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Random == nil {
		opts.Random = random.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BattleDuration == 0 {
		opts.BattleDuration = model.BattleDuration
	}
	logger := opts.Logger.With(slog.String("component", "stub"))

	subjects := seedSubjects()
	for i := range subjects {
		for j := range subjects[i].questions {
			subjects[i].questions[j].source = subjects[i].code
		}
	}

	return &Backend{
		clock:       opts.Clock,
		random:      opts.Random,
		logger:      logger,
		opts:        opts,
		subjects:    subjects,
		groups:      seedGroups(),
		themes:      seedThemes(),
		buttons:     seedButtonColors(),
		backgrounds: seedBackgroundColors(),
		emotes:      seedEmotes(),
		users:       make(map[string]*user),
		sessions:    make(map[string]string),
		games:       make(map[string]*gameSession),
		battles:     make(map[model.BattleID]*battle),
		nextID:      1,
		hub:         NewHub(logger),
	}
}

// AddUser registers an account directly. An existing account is left untouched.
func (b *Backend) AddUser(name, password string) {
	hash, err := hashPassword(password)
	if err != nil {
		b.logger.Error("failed to hash password", slog.String("username", name), slog.String("error", err.Error()))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[name]; !ok {
		b.users[name] = newUser(name, hash)
	}
}

// SetPoints sets a user's total points
func (b *Backend) SetPoints(name string, points int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[name]; ok {
		u.totalScore = points
	}
}

// Points returns a user's total points
func (b *Backend) Points(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[name]; ok {
		return u.totalScore
	}
	return 0
}

// SetHints sets a user's hint balance
func (b *Backend) SetHints(name string, hints int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[name]; ok {
		u.hints = hints
	}
}

// GrantEmote gives a user an emote without charging for it
func (b *Backend) GrantEmote(name, emoteID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[name]; ok && !slices.Contains(u.emotes, emoteID) {
		u.emotes = append(u.emotes, emoteID)
	}
}

// Battle returns a snapshot of a battle
func (b *Backend) Battle(id model.BattleID) (model.Battle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bt, ok := b.battles[id]
	if !ok {
		return model.Battle{}, false
	}
	return bt.toModel(), true
}

// Recorded returns every channel frame clients have emitted, in arrival order
func (b *Backend) Recorded() []RecordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.recorded)
}

// RecordedOf returns the recorded frames of one event type
func (b *Backend) RecordedOf(event model.EventType) []RecordedEvent {
	var out []RecordedEvent
	for _, r := range b.Recorded() {
		if r.Event == event {
			out = append(out, r)
		}
	}
	return out
}

// Push sends an event to every connection in a battle room
func (b *Backend) Push(id model.BattleID, event model.EventType, payload any) error {
	return b.hub.Broadcast(id, event, payload, nil)
}

// Hub returns the battle channel hub
func (b *Backend) Hub() *Hub {
	return b.hub
}

func newUser(name string, passwordHash []byte) *user {
	return &user{
		name:            name,
		passwordHash:    passwordHash,
		themes:          map[string]bool{defaultItem: true},
		buttonColors:    map[string]bool{defaultItem: true},
		backgrounds:     map[string]bool{defaultItem: true},
		theme:           defaultItem,
		buttonColor:     defaultItem,
		backgroundColor: defaultItem,
		progress:        make(map[string]map[string]string),
	}
}

// addScore applies a delta to total points; the total never goes negative
func (u *user) addScore(points int) {
	u.totalScore = max(0, u.totalScore+points)
}

func (u *user) ownsEmote(id string) bool {
	return slices.Contains(u.emotes, id)
}

func (b *Backend) newSession(username string) string {
	token := uuid.NewString()
	b.sessions[token] = username
	return token
}

func (b *Backend) subject(code string) (subject, bool) {
	for _, s := range b.subjects {
		if s.code == code {
			return s, true
		}
	}
	return subject{}, false
}

func (b *Backend) group(id string) (group, bool) {
	for _, g := range b.groups {
		if g.id == id {
			return g, true
		}
	}
	return group{}, false
}

func (b *Backend) questionsFor(codes ...string) []question {
	var qs []question
	for _, code := range codes {
		if s, ok := b.subject(code); ok {
			qs = append(qs, s.questions...)
		}
	}
	return qs
}

func (b *Backend) shuffleQuestions(qs []question) {
	b.random.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

func (b *Backend) battleCode() model.BattleCode {
	for range 10 {
		code := model.BattleCode(b.random.String(model.BattleCodeLength, codeAlphabet))
		if len(code) == model.BattleCodeLength && !b.codeTaken(code) {
			return code
		}
	}
	return model.BattleCode(fmt.Sprintf("B%05d", b.nextID))
}

func (b *Backend) codeTaken(code model.BattleCode) bool {
	for _, bt := range b.battles {
		if bt.code == code {
			return true
		}
	}
	return false
}

func (bt *battle) toModel() model.Battle {
	return model.Battle{
		ID:           bt.id,
		Code:         bt.code,
		Category:     model.CategoryCode(bt.subject),
		Player1Name:  bt.player1,
		Player2Name:  bt.player2,
		Player1Score: bt.p1Score,
		Player2Score: bt.p2Score,
		Status:       bt.status,
		Player1Ready: bt.p1Ready,
		Player2Ready: bt.p2Ready,
	}
}

func (bt *battle) has(username string) bool {
	return username != "" && (bt.player1 == username || bt.player2 == username)
}
