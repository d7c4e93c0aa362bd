package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/bot"
	"github.com/mcoot/quizgame/internal/services/game"
)

// errQuit ends an interactive loop without an error
var errQuit = errors.New("quit")

func newCategoriesCmd() *cobra.Command {
	var groups bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List question categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}

			if groups {
				result, err := app.GameController.CategoryGroups(ctx)
				if err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			result, err := app.GameController.LoadCategories(ctx)
			if err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&groups, "groups", false, "List category groups used by mixed and revision modes")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [category]",
		Short: "Show progress for a category and select it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}

			category := ""
			if len(args) == 1 {
				category = args[0]
			}
			home, err := selectCategory(ctx, category)
			if err != nil {
				return err
			}

			out.Print(home)
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	var (
		category      string
		timer         int
		mode          string
		group         string
		revisionGroup string
		strategy      string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start a single-player game",
		Long: `Start a single-player game in the selected category.

Each question comes with one proposed answer. Answer y to accept it or n to
see the next proposal; h spends a hint, s saves and quits, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}

			opts := model.StartOptions{
				TimerMinutes:  timer,
				Mode:          model.GameMode(mode),
				Group:         group,
				RevisionGroup: revisionGroup,
			}
			if opts.Mode != model.ModeMixedAll {
				if _, err := selectCategory(ctx, category); err != nil {
					return err
				}
			}

			info, err := app.GameController.Start(ctx, opts)
			if errors.Is(err, model.ErrDeclined) {
				out.PrintMessage("Kept the saved game (quizgame resume)")
				return nil
			}
			if err != nil {
				return err
			}

			out.Print(info)
			return runGame(ctx, strategy)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category code (defaults to the selected one)")
	cmd.Flags().IntVarP(&timer, "timer", "t", 0, "Timer in minutes, 0 for untimed")
	cmd.Flags().StringVar(&mode, "mode", string(model.ModeSingle), "Mode: single, mixed_category, mixed_all, revision_category")
	cmd.Flags().StringVar(&group, "group", "", "Category group for mixed_category")
	cmd.Flags().StringVar(&revisionGroup, "revision-group", "", "Category group for revision_category")
	cmd.Flags().StringVar(&strategy, "bot", "", "Let a bot answer: "+strings.Join(model.ValidBotStrategies(), ", "))

	return cmd
}

func newResumeCmd() *cobra.Command {
	var (
		category string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the saved game of a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}
			if _, err := selectCategory(ctx, category); err != nil {
				return err
			}

			info, err := app.GameController.Resume(ctx)
			if err != nil {
				return err
			}

			out.Print(info)
			return runGame(ctx, strategy)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category code (defaults to the selected one)")
	cmd.Flags().StringVar(&strategy, "bot", "", "Let a bot answer: "+strings.Join(model.ValidBotStrategies(), ", "))

	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var (
		category string
		global   bool
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best timed games or the global ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}

			if global {
				board, err := app.GameController.GlobalLeaderboard(ctx)
				if err != nil {
					return err
				}
				out.Print(board)
				return nil
			}

			if _, err := selectCategory(ctx, category); err != nil {
				return err
			}
			board, err := app.GameController.Leaderboard(ctx)
			if err != nil {
				return err
			}
			out.Print(board)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category code (defaults to the selected one)")
	cmd.Flags().BoolVar(&global, "global", false, "Rank users by accumulated points")

	return cmd
}

// selectCategory selects code, or loads the categories so the default applies
func selectCategory(ctx context.Context, code string) (game.HomeView, error) {
	if code != "" {
		return app.GameController.SelectCategory(ctx, model.CategoryCode(code))
	}
	return app.GameController.Home(ctx)
}

// gameObserver announces the low-time warning once and interrupts the
// pending prompt when the game ends on its own
type gameObserver struct {
	mu         sync.Mutex
	warned     bool
	ended      bool
	cancelTurn context.CancelFunc
}

func (o *gameObserver) TimerTicked(view game.TimerView) {
	o.mu.Lock()
	warn := view.Low && !o.warned
	o.warned = o.warned || view.Low
	o.mu.Unlock()
	if warn {
		out.PrintMessage(fmt.Sprintf("⏳ %s left", view.Label))
	}
}

func (o *gameObserver) GameEnded(game.EndView) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ended = true
	if o.cancelTurn != nil {
		o.cancelTurn()
	}
}

// beginTurn derives the context of one prompt. It is already cancelled when
// the game ended after the question was loaded.
func (o *gameObserver) beginTurn(ctx context.Context) (context.Context, context.CancelFunc) {
	turnCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelTurn = cancel
	if o.ended {
		cancel()
	}
	return turnCtx, cancel
}

// reset forgets an earlier end before the next question is loaded
func (o *gameObserver) reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ended = false
	o.cancelTurn = nil
}

func (o *gameObserver) hasEnded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ended
}

// GameRun is the JSON result of an unattended game
type GameRun struct {
	Actions []bot.BotAction `json:"actions"`
	End     *game.EndView   `json:"end,omitempty"`
}

func runGame(ctx context.Context, strategy string) error {
	observer := &gameObserver{}
	app.GameController.SetObserver(observer)
	defer app.GameController.SetObserver(nil)

	if strategy != "" {
		actions, end, err := app.BotService.PlayGame(ctx, app.GameController, strategy)
		if err != nil {
			return err
		}
		if out.JSON() {
			out.Print(GameRun{Actions: actions, End: end})
			return nil
		}
		out.PrintMessage(fmt.Sprintf("🤖 %s", model.BotStrategyDisplayName(strategy)))
		out.Print(actions)
		if end != nil {
			out.Print(*end)
		}
		return nil
	}

	for {
		observer.reset()
		view, end, err := app.GameController.LoadQuestion(ctx)
		if err != nil {
			return err
		}

		if end != nil {
			out.Print(*end)
			if !end.HasRevision {
				return nil
			}
			revise, err := tty.Confirm(ctx, fmt.Sprintf("Revise the %d missed question(s)?", end.RevisionCount))
			if err != nil || !revise {
				return err
			}
			if _, err := app.GameController.StartRevision(ctx); err != nil {
				return err
			}
			continue
		}

		out.Print(view)
		turnCtx, cancel := observer.beginTurn(ctx)
		err = playTurn(turnCtx, view)
		cancel()
		if err != nil {
			if ctx.Err() == nil && observer.hasEnded() {
				// the timer ran out while waiting for input
				continue
			}
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

// playTurn reads choices until one of them moves the game on
func playTurn(ctx context.Context, view game.QuestionView) error {
	prompt := "Accept? [y]es / [n]o"
	if view.HintsAvailable() {
		prompt += " / [h]int"
	}
	prompt += " / [s]ave / [q]uit: "

	for {
		choice, err := tty.ReadLine(ctx, prompt)
		if errors.Is(err, io.EOF) {
			return errQuit
		}
		if err != nil {
			return err
		}

		var accept bool
		switch strings.ToLower(choice) {
		case "y", "yes", "o", "oui":
			accept = true
		case "n", "no", "non":
			accept = false
		case "h", "hint":
			result, err := app.GameController.UseHint(ctx)
			if errors.Is(err, model.ErrNoActiveGame) {
				return nil
			}
			if errors.Is(err, model.ErrNoHints) {
				out.PrintMessage("No hints left (quizgame hints buy)")
				continue
			}
			if err != nil {
				return err
			}
			out.Print(result)
			continue
		case "s", "save":
			err := app.GameController.SaveAndQuit(ctx)
			if errors.Is(err, model.ErrNoActiveGame) {
				return nil
			}
			if errors.Is(err, model.ErrDeclined) {
				continue
			}
			if err != nil {
				return err
			}
			out.PrintMessage("Game saved")
			return errQuit
		case "q", "quit":
			return errQuit
		default:
			out.PrintMessage("Unknown choice")
			continue
		}

		result, err := app.GameController.Answer(ctx, accept)
		if errors.Is(err, model.ErrNoActiveGame) {
			return nil
		}
		if err != nil {
			return err
		}

		out.Print(result)
		if result.AutoAdvance > 0 {
			pause(ctx, result.AutoAdvance)
		}
		return nil
	}
}

func pause(ctx context.Context, d time.Duration) {
	ticker := app.Clock.NewTicker(d)
	defer ticker.Stop()
	select {
	case <-ticker.C():
	case <-ctx.Done():
	}
}
