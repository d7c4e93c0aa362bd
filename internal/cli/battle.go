package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/battle"
)

func newBattleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battle",
		Short: "Head-to-head battle commands",
	}

	cmd.AddCommand(newBattleCreateCmd())
	cmd.AddCommand(newBattleJoinCmd())
	cmd.AddCommand(newBattleMatchmakeCmd())
	cmd.AddCommand(newBattleCancelCmd())

	return cmd
}

func newBattleCreateCmd() *cobra.Command {
	var (
		category string
		showQR   bool
		copyCode bool
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a private battle and wait for an opponent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}
			if _, err := selectCategory(ctx, category); err != nil {
				return err
			}

			view, err := app.BattleController.Create(ctx, "")
			if err != nil {
				return err
			}
			rememberBattle(ctx, view.ID)
			announceCode(view.Code, showQR, copyCode)

			return runBattle(ctx, strategy, strategy == "")
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category code (defaults to the selected one)")
	cmd.Flags().BoolVar(&showQR, "qr", false, "Show the join code as a QR code")
	cmd.Flags().BoolVar(&copyCode, "copy", false, "Copy the join code to the clipboard")
	cmd.Flags().StringVar(&strategy, "bot", "", "Let a bot answer: "+strings.Join(model.ValidBotStrategies(), ", "))

	return cmd
}

func newBattleJoinCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a private battle by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}

			view, err := app.BattleController.Join(ctx, args[0])
			if err != nil {
				return err
			}
			rememberBattle(ctx, view.ID)

			return runBattle(ctx, strategy, strategy == "")
		},
	}

	cmd.Flags().StringVar(&strategy, "bot", "", "Let a bot answer: "+strings.Join(model.ValidBotStrategies(), ", "))

	return cmd
}

func newBattleMatchmakeCmd() *cobra.Command {
	var (
		category string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "matchmake",
		Short: "Find a random opponent in the selected category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.AuthService.RequireUser(ctx); err != nil {
				return err
			}
			if _, err := selectCategory(ctx, category); err != nil {
				return err
			}

			ticket, err := app.MatchmakingService.Enqueue(ctx, "")
			if err != nil {
				return err
			}
			rememberBattle(ctx, ticket.BattleID)

			if !ticket.Matched {
				out.PrintMessage("🔍 Searching for an opponent... (Ctrl+C to cancel)")
				if err := app.MatchmakingService.Wait(ctx); err != nil {
					if ctx.Err() != nil {
						if err := app.MatchmakingService.Cancel(context.WithoutCancel(ctx)); err != nil {
							app.Logger.Warn("failed to cancel matchmaking", slog.String("error", err.Error()))
						}
						forgetBattle(context.WithoutCancel(ctx))
						out.PrintMessage("Matchmaking cancelled")
						return nil
					}
					return err
				}
			}
			out.PrintMessage("Opponent found!")

			return runBattle(ctx, strategy, false)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category code (defaults to the selected one)")
	cmd.Flags().StringVar(&strategy, "bot", "", "Let a bot answer: "+strings.Join(model.ValidBotStrategies(), ", "))

	return cmd
}

func newBattleCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Withdraw the battle this profile created last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := app.Profile.BattleID
			if id == 0 {
				return model.ErrNoActiveBattle
			}

			if err := app.Client.CancelBattle(ctx, id); err != nil {
				return err
			}
			app.Profile.BattleID = 0

			out.PrintMessage(fmt.Sprintf("Battle %d cancelled", id))
			return nil
		},
	}
}

// announceCode shows the join code, optionally as a QR code and on the clipboard
func announceCode(code model.BattleCode, showQR, copyCode bool) {
	out.PrintMessage(fmt.Sprintf("Join code: %s", code))

	if showQR && !out.JSON() {
		qr, err := qrcode.New(string(code), qrcode.Medium)
		if err != nil {
			app.Logger.Warn("failed to render QR code", slog.String("error", err.Error()))
		} else {
			out.PrintMessage(qr.ToSmallString(false))
		}
	}

	if copyCode {
		if err := clipboard.WriteAll(string(code)); err != nil {
			app.Logger.Warn("failed to copy join code", slog.String("error", err.Error()))
			out.PrintMessage("Could not copy the code to the clipboard")
		} else {
			out.PrintMessage("Code copied to the clipboard")
		}
	}
}

// battleWatcher wakes waiters on every view change and prints new emotes
type battleWatcher struct {
	wake chan struct{}

	mu    sync.Mutex
	shown int
}

func newBattleWatcher() *battleWatcher {
	return &battleWatcher{wake: make(chan struct{}, 1)}
}

func (w *battleWatcher) BattleUpdated(view model.BattleView) {
	w.mu.Lock()
	for _, e := range view.NewEmotes(w.shown) {
		out.PrintMessage(fmt.Sprintf("%s %s: %s", e.Emoji, e.Sender, e.Name))
	}
	w.shown = max(w.shown, view.EmotesReceived)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// wait blocks until cond holds for the current view
func (w *battleWatcher) wait(ctx context.Context, cond func(model.BattleView) bool) (model.BattleView, error) {
	for {
		view := app.BattleController.View()
		if cond(view) {
			return view, nil
		}
		select {
		case <-w.wake:
		case <-ctx.Done():
			return view, ctx.Err()
		}
	}
}

// BattleRun is the JSON result of a battle
type BattleRun struct {
	Battle  model.BattleView `json:"battle"`
	Answers int              `json:"answers"`
}

// runBattle walks the battle from the lobby to the result. With askReady the
// player confirms readiness at the terminal; otherwise it is sent for them.
func runBattle(ctx context.Context, strategy string, askReady bool) error {
	watcher := newBattleWatcher()
	unsubscribe := app.BattleController.Subscribe(watcher)
	defer unsubscribe()

	view, err := watcher.wait(ctx, func(v model.BattleView) bool {
		return v.Phase != model.PhaseWaiting || (v.Player1Name != "" && v.Player2Name != "")
	})
	if err != nil {
		return abandonBattle(ctx)
	}
	if !out.JSON() {
		out.Print(view)
	}

	if err := readyUp(ctx, view, askReady); err != nil {
		if errors.Is(err, errQuit) || ctx.Err() != nil {
			return abandonBattle(ctx)
		}
		return err
	}

	view, err = watcher.wait(ctx, func(v model.BattleView) bool { return v.Phase != model.PhaseWaiting })
	if err != nil {
		return abandonBattle(ctx)
	}
	if view.Phase == model.PhaseIdle {
		return model.ErrNoActiveBattle
	}
	out.PrintMessage("⚔️  Battle started!")

	answers := 0
	if strategy != "" {
		actions, err := app.BotService.PlayBattle(ctx, app.BattleController, strategy)
		if err != nil && ctx.Err() == nil {
			return err
		}
		answers = len(actions)
		if !out.JSON() {
			out.Print(actions)
		}
	} else {
		answers, err = playBattle(ctx)
		if errors.Is(err, errQuit) {
			app.BattleController.Leave()
			forgetBattle(ctx)
			out.PrintMessage("Left the battle")
			return nil
		}
		if err != nil {
			return err
		}
	}

	out.PrintMessage("Waiting for the final result...")
	view, err = watcher.wait(ctx, func(v model.BattleView) bool { return v.Phase != model.PhasePlaying })
	if err != nil {
		return abandonBattle(ctx)
	}

	if out.JSON() {
		out.Print(BattleRun{Battle: view, Answers: answers})
	} else {
		out.Print(view)
	}
	app.BattleController.Leave()
	forgetBattle(ctx)
	return nil
}

// readyUp marks the local player ready once the lobby is full. Matched
// battles arrive already ready.
func readyUp(ctx context.Context, view model.BattleView, askReady bool) error {
	if view.Phase != model.PhaseWaiting || view.LocalReady {
		return nil
	}
	if askReady {
		_, err := tty.ReadLine(ctx, "Press Enter when ready: ")
		if errors.Is(err, io.EOF) {
			return errQuit
		}
		if err != nil {
			return err
		}
	}
	if err := app.BattleController.Ready(ctx); err != nil && !errors.Is(err, model.ErrNoActiveBattle) {
		return err
	}
	return nil
}

// playBattle answers battle questions from the terminal
func playBattle(ctx context.Context) (int, error) {
	answers := 0
	for {
		q, err := app.BattleController.LoadQuestion(ctx)
		if errors.Is(err, model.ErrNoActiveBattle) || (err == nil && q == nil) {
			return answers, nil
		}
		if err != nil {
			return answers, err
		}

		out.Print(app.BattleController.View())
		out.Print(q)

		accept, err := readBattleChoice(ctx)
		if err != nil {
			return answers, err
		}

		result, err := app.BattleController.Answer(ctx, accept)
		if errors.Is(err, model.ErrNoActiveBattle) {
			return answers, nil
		}
		if err != nil {
			return answers, err
		}
		answers++
		out.PrintMessage(result.Message)
	}
}

func readBattleChoice(ctx context.Context) (bool, error) {
	prompt := "Accept? [y]es / [n]o"
	if owned := app.BattleController.OwnedEmotes(); len(owned) > 0 {
		prompt += fmt.Sprintf(" / [e]mote <%s>", strings.Join(owned, "|"))
	}
	prompt += " / [q]uit: "

	for {
		line, err := tty.ReadLine(ctx, prompt)
		if errors.Is(err, io.EOF) {
			return false, errQuit
		}
		if err != nil {
			return false, err
		}

		fields := strings.Fields(strings.ToLower(line))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "y", "yes", "o", "oui":
			return true, nil
		case "n", "no", "non":
			return false, nil
		case "q", "quit":
			return false, errQuit
		case "e", "emote":
			if len(fields) != 2 {
				out.PrintMessage("Usage: e <emote>")
				continue
			}
			if err := app.BattleController.SendEmote(ctx, fields[1]); err != nil {
				out.PrintError(err)
			}
		default:
			out.PrintMessage("Unknown choice")
		}
	}
}

// abandonBattle withdraws a battle nobody joined, or just leaves it
func abandonBattle(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if app.BattleController.View().Phase == model.PhaseWaiting {
		if err := app.BattleController.Cancel(ctx); err == nil {
			forgetBattle(ctx)
			out.PrintMessage("Battle cancelled")
			return nil
		}
	}
	app.BattleController.Leave()
	forgetBattle(ctx)
	out.PrintMessage("Left the battle")
	return nil
}

func rememberBattle(ctx context.Context, id model.BattleID) {
	app.Profile.BattleID = id
	saveBattleID(ctx)
}

func forgetBattle(ctx context.Context) {
	app.Profile.BattleID = 0
	saveBattleID(ctx)
}

func saveBattleID(ctx context.Context) {
	if err := app.SaveProfile(ctx); err != nil {
		app.Logger.Warn("failed to save battle id",
			slog.Int("battle_id", int(app.Profile.BattleID)),
			slog.String("error", err.Error()),
		)
	}
}

// Ensure battleWatcher implements Observer
var _ battle.Observer = (*battleWatcher)(nil)
