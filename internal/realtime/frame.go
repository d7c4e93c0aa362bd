package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/quizgame/internal/model"
)

// Frame is one message on the battle channel
type Frame struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode builds a frame for an outgoing event
func Encode(event model.EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// Decode turns a raw frame into a typed event
func Decode(raw []byte, receivedAt time.Time) (model.Event, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return model.Event{}, fmt.Errorf("malformed frame: %w", err)
	}

	var payload any
	switch frame.Event {
	case model.EventPlayerJoined:
		payload = &model.PlayerJoinedPayload{}
	case model.EventPlayerReady:
		payload = &model.PlayerReadyPayload{}
	case model.EventBattleStart:
		payload = &model.BattleStartPayload{}
	case model.EventScoresUpdate:
		payload = &model.ScoresUpdatePayload{}
	case model.EventBattleFinished:
		payload = &model.BattleFinishedPayload{}
	case model.EventEmoteReceived:
		payload = &model.EmoteReceivedPayload{}
	default:
		return model.Event{}, fmt.Errorf("unknown event %q", frame.Event)
	}

	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, payload); err != nil {
			return model.Event{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
	}

	return model.Event{
		Type:       frame.Event,
		ReceivedAt: receivedAt,
		Payload:    deref(payload),
	}, nil
}

func deref(p any) any {
	switch v := p.(type) {
	case *model.PlayerJoinedPayload:
		return *v
	case *model.PlayerReadyPayload:
		return *v
	case *model.BattleStartPayload:
		return *v
	case *model.ScoresUpdatePayload:
		return *v
	case *model.BattleFinishedPayload:
		return *v
	case *model.EmoteReceivedPayload:
		return *v
	}
	return p
}
