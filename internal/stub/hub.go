package stub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/realtime"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Peer is one connected battle channel
type Peer struct {
	user        string
	send        chan []byte
	connectedAt time.Time
}

// Hub fans channel events out to battle rooms
type Hub struct {
	mu     sync.RWMutex
	rooms  map[model.BattleID]map[*Peer]struct{}
	peers  map[*Peer]struct{}
	logger *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[model.BattleID]map[*Peer]struct{}),
		peers:  make(map[*Peer]struct{}),
		logger: logger.With(slog.String("component", "hub")),
	}
}

func (h *Hub) register(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = struct{}{}
	h.logger.Info("channel peer registered", slog.String("user", p.user), slog.Int("total_peers", len(h.peers)))
}

func (h *Hub) unregister(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	for id, room := range h.rooms {
		delete(room, p)
		if len(room) == 0 {
			delete(h.rooms, id)
		}
	}
	close(p.send)
	h.logger.Info("channel peer unregistered",
		slog.String("user", p.user),
		slog.Duration("connection_duration", time.Since(p.connectedAt)),
		slog.Int("total_peers", len(h.peers)))
}

// Join subscribes a peer to a battle room
func (h *Hub) Join(p *Peer, id model.BattleID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; !ok {
		return
	}
	room, ok := h.rooms[id]
	if !ok {
		room = make(map[*Peer]struct{})
		h.rooms[id] = room
	}
	room[p] = struct{}{}
}

// RoomSize returns the number of peers in a battle room
func (h *Hub) RoomSize(id model.BattleID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[id])
}

// Broadcast sends an event to every peer in a room except exclude
func (h *Hub) Broadcast(id model.BattleID, event model.EventType, payload any, exclude *Peer) error {
	msg, err := realtime.Encode(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent, dropped := 0, 0
	for p := range h.rooms[id] {
		if p == exclude {
			continue
		}
		select {
		case p.send <- msg:
			sent++
		default:
			dropped++
		}
	}
	h.logger.Debug("channel broadcast",
		slog.String("event", string(event)),
		slog.Int("battle_id", int(id)),
		slog.Int("sent", sent),
		slog.Int("dropped", dropped))
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// serveChannel upgrades the request and pumps frames until the peer leaves
func (b *Backend) serveChannel(w http.ResponseWriter, r *http.Request) {
	username := b.sessionUser(r)

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("channel upgrade failed", slog.String("error", err.Error()))
		return
	}

	peer := &Peer{user: username, send: make(chan []byte, sendBufferSize), connectedAt: b.clock.Now()}
	b.hub.register(peer)

	go writePump(ws, peer)

	defer b.hub.unregister(peer)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var frame realtime.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			b.logger.Warn("bad channel frame", slog.String("error", err.Error()))
			continue
		}
		b.handleFrame(peer, frame)
	}
}

func writePump(ws *websocket.Conn, p *Peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case msg, ok := <-p.send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
