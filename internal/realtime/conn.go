package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/quizgame/internal/dependencies/clock"
	"github.com/mcoot/quizgame/internal/middleware"
	"github.com/mcoot/quizgame/internal/model"
)

// Channel is a connected battle push channel.
// Events is the single subscription point; it is closed when the connection ends.
type Channel interface {
	Events() <-chan model.Event
	Emit(ctx context.Context, event model.EventType, payload any) error
	Close() error
}

// Connector opens battle channels
type Connector interface {
	Connect(ctx context.Context) (Channel, error)
}

// Config configures a Dialer
type Config struct {
	// ServerURL is the HTTP base URL of the server; the socket URL is derived from it
	ServerURL string
	Path      string
	// Jar supplies the session cookie sent with the handshake
	Jar              http.CookieJar
	HandshakeTimeout time.Duration
	Clock            clock.Clock
	Logger           *slog.Logger
}

// Dialer connects to the battle channel over WebSocket
type Dialer struct {
	cfg    Config
	wsURL  string
	dialer websocket.Dialer
	logger *slog.Logger
}

// Ensure Dialer implements Connector
var _ Connector = (*Dialer)(nil)

// NewDialer creates a Dialer for the given server
func NewDialer(cfg Config) (*Dialer, error) {
	wsURL, err := SocketURL(cfg.ServerURL, cfg.Path)
	if err != nil {
		return nil, err
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Dialer{
		cfg:    cfg,
		wsURL:  wsURL,
		dialer: websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		logger: cfg.Logger.With(slog.String("component", "realtime")),
	}, nil
}

// SocketURL derives the WebSocket URL from the HTTP server URL
func SocketURL(serverURL, path string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", serverURL)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if path == "" {
		path = "/ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String(), nil
}

// Connect dials the channel and starts reading events
func (d *Dialer) Connect(ctx context.Context) (Channel, error) {
	header := http.Header{}
	if d.cfg.Jar != nil {
		if httpURL, err := url.Parse(d.cfg.ServerURL); err == nil {
			var parts []string
			for _, c := range d.cfg.Jar.Cookies(httpURL) {
				parts = append(parts, c.Name+"="+c.Value)
			}
			if len(parts) > 0 {
				header.Set("Cookie", strings.Join(parts, "; "))
			}
		}
	}

	ws, resp, err := d.dialer.DialContext(ctx, d.wsURL, header)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			d.logger.Warn("channel dial rejected",
				slog.String("status", resp.Status),
				slog.String("body", string(body)),
			)
		}
		return nil, fmt.Errorf("failed to connect to battle channel: %w", err)
	}

	d.logger.Debug("channel connected", slog.String("url", d.wsURL))
	return newConn(ws, d.cfg.Clock, d.logger), nil
}

// Conn is a live battle channel connection
type Conn struct {
	ws     *websocket.Conn
	clock  clock.Clock
	logger *slog.Logger
	events chan model.Event
	done   chan struct{}

	writeMu sync.Mutex
	mu      sync.Mutex
	closed  bool
}

// Ensure Conn implements Channel
var _ Channel = (*Conn)(nil)

func newConn(ws *websocket.Conn, clk clock.Clock, logger *slog.Logger) *Conn {
	c := &Conn{
		ws:     ws,
		clock:  clk,
		logger: logger,
		events: make(chan model.Event, 64),
		done:   make(chan struct{}),
	}
	middleware.Go(logger, "battle-channel-reader", c.reader)
	return c
}

// Events returns the stream of decoded push events
func (c *Conn) Events() <-chan model.Event {
	return c.events
}

// Emit sends an event to the server
func (c *Conn) Emit(ctx context.Context, event model.EventType, payload any) error {
	data, err := Encode(event, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return model.ErrChannelClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(deadline)
		defer func() { _ = c.ws.SetWriteDeadline(time.Time{}) }()
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to emit %s: %w", event, err)
	}

	c.logger.Debug("event emitted", slog.String("event", string(event)))
	return nil
}

// Close closes the connection; the events stream ends shortly after
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return c.ws.Close()
}

func (c *Conn) reader() {
	defer close(c.events)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			expected := c.closed
			c.mu.Unlock()
			if !expected && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, io.EOF) {
				c.logger.Warn("channel read failed", slog.String("error", err.Error()))
			}
			return
		}

		event, err := Decode(data, c.clock.Now())
		if err != nil {
			c.logger.Warn("dropping channel frame", slog.String("error", err.Error()))
			continue
		}
		select {
		case c.events <- event:
		case <-c.done:
			return
		}
	}
}
