package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/quizgame/internal/model"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <battle-id>",
		Short: "Stream the push events of a battle",
		Long: `Connect to the battle channel and stream its events in real-time.

Events include:
  - player_joined: The second player arrived
  - player_ready: A player is ready
  - battle_start: Both players are ready, play begins
  - scores_update: Authoritative scores changed
  - battle_finished: The server declared the result
  - emote_received: A player sent an emote

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid battle id %q", args[0])
			}
			return streamEvents(cmd, model.BattleID(id), jsonOutput || out.JSON())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// StreamedEvent is one event printed as a JSON line
type StreamedEvent struct {
	Time  time.Time       `json:"time"`
	Event model.EventType `json:"event"`
	Data  any             `json:"data"`
}

func streamEvents(cmd *cobra.Command, id model.BattleID, jsonOutput bool) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	ch, err := app.Dialer.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Emit(ctx, model.EventJoinBattle, model.JoinBattleMessage{BattleID: id}); err != nil {
		return err
	}

	if !jsonOutput {
		_, _ = fmt.Fprintf(w, "Connected to battle %d\n", id)
	}

	for {
		select {
		case ev, ok := <-ch.Events():
			if !ok {
				if !jsonOutput {
					_, _ = fmt.Fprintln(w, "Disconnected")
				}
				return nil
			}
			if jsonOutput {
				data, _ := json.Marshal(StreamedEvent{Time: ev.ReceivedAt, Event: ev.Type, Data: ev.Payload})
				_, _ = fmt.Fprintln(w, string(data))
			} else {
				out.Print(ev)
			}
		case <-ctx.Done():
			if !jsonOutput {
				_, _ = fmt.Fprintln(w, "\nDisconnected")
			}
			return nil
		}
	}
}
