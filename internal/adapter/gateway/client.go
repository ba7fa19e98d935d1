package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pscheid92/sessionhub/internal/adapter/metrics"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/correlation"
)

const (
	defaultHandshakeTimeout = 30 * time.Second
	closeWaitTimeout        = 2 * time.Second
	correlationHeader       = "X-Correlation-ID"
)

// ErrProtocol is returned when the gateway answers with an unexpected frame.
var ErrProtocol = errors.New("unexpected gateway frame")

// Client keeps one websocket per session to the gateway.
type Client struct {
	base             *url.URL
	dialer           *websocket.Dialer
	sink             domain.SessionEventSink
	metrics          *metrics.GatewayMetrics
	handshakeTimeout time.Duration

	mu    sync.Mutex
	links map[string]*link
}

var _ domain.ConnectionSupervisor = (*Client)(nil)

// New creates a client for a gateway at baseURL (http, https, ws or wss). m may be nil.
func New(baseURL string, sink domain.SessionEventSink, m *metrics.GatewayMetrics, handshakeTimeout time.Duration) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gateway URL: %w", err)
	}
	switch base.Scheme {
	case "http", "ws":
		base.Scheme = "ws"
	case "https", "wss":
		base.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported gateway URL scheme %q", base.Scheme)
	}
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}

	return &Client{
		base:             base,
		dialer:           &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		sink:             sink,
		metrics:          m,
		handshakeTimeout: handshakeTimeout,
		links:            make(map[string]*link),
	}, nil
}

func (c *Client) endpoint(sessionID, action string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/sessions/" + url.PathEscape(sessionID) + "/" + action
	u.RawQuery = query.Encode()
	return u.String()
}

// Open connects a session from its stored credentials.
func (c *Client) Open(ctx context.Context, sessionID string) (domain.Connection, error) {
	l, first, err := c.handshake(ctx, sessionID, c.endpoint(sessionID, "connect", nil), frameOpened)
	if err != nil {
		return nil, err
	}
	if first.Name != "" || first.JID != "" {
		l.setIdentity(first.Name, first.JID)
	}
	c.start(l)
	return l, nil
}

// Pair starts phone-number linking and returns the code the user types on the phone.
func (c *Client) Pair(ctx context.Context, sessionID, phone string) (domain.Connection, string, error) {
	l, first, err := c.handshake(ctx, sessionID, c.endpoint(sessionID, "pair", url.Values{"phone": {phone}}), framePairingCode)
	if err != nil {
		return nil, "", err
	}
	if first.Code == "" {
		_ = l.conn.Close()
		return nil, "", fmt.Errorf("%w: empty pairing code", ErrProtocol)
	}
	c.start(l)
	return l, first.Code, nil
}

// handshake dials and reads the first frame, which must be of type want.
func (c *Client) handshake(ctx context.Context, sessionID, target, want string) (*link, frame, error) {
	header := http.Header{}
	if id, ok := correlation.ID(ctx); ok {
		header.Set(correlationHeader, id)
	}

	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, frame{}, fmt.Errorf("dial gateway: %w (status %d)", err, resp.StatusCode)
		}
		return nil, frame{}, fmt.Errorf("dial gateway: %w", err)
	}

	deadline := time.Now().Add(c.handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	var first frame
	if err := conn.ReadJSON(&first); err != nil {
		_ = conn.Close()
		return nil, frame{}, fmt.Errorf("read first gateway frame: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	c.countFrame(first.Type)

	switch first.Type {
	case want:
		return newLink(sessionID, conn), first, nil
	case frameError:
		_ = conn.Close()
		return nil, frame{}, fmt.Errorf("gateway: %s", first.Error)
	default:
		_ = conn.Close()
		return nil, frame{}, fmt.Errorf("%w: got %q, want %q", ErrProtocol, first.Type, want)
	}
}

// start registers the link, replacing a previous one, and begins dispatching events.
func (c *Client) start(l *link) {
	c.mu.Lock()
	old := c.links[l.sessionID]
	c.links[l.sessionID] = l
	c.mu.Unlock()

	if old != nil {
		c.shutdown(old, frameClose)
	}
	if c.metrics != nil {
		c.metrics.ActiveConnections.Inc()
	}
	go c.readLoop(l)
}

// Close drops the session's websocket. With CloseLogout the gateway also unlinks the
// device. It reports false when no link was open.
func (c *Client) Close(_ context.Context, sessionID string, mode domain.CloseMode) (bool, error) {
	c.mu.Lock()
	l, ok := c.links[sessionID]
	if ok {
		delete(c.links, sessionID)
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}

	control := frameClose
	if mode == domain.CloseLogout {
		control = frameLogout
	}
	return true, c.shutdown(l, control)
}

// shutdown closes a link without reporting it to the sink.
func (c *Client) shutdown(l *link, control string) error {
	if !l.closing.CompareAndSwap(false, true) {
		return nil
	}

	err := l.writeJSON(frame{Type: control})
	_ = l.writeClose()

	select {
	case <-l.done:
	case <-time.After(closeWaitTimeout):
	}
	_ = l.conn.Close()

	if err != nil {
		return fmt.Errorf("send %s frame: %w", control, err)
	}
	return nil
}

func (c *Client) readLoop(l *link) {
	ctx := correlation.WithID(context.Background(), correlation.NewID())
	log := slog.With("session_id", l.sessionID)
	loggedOut := false

	defer func() {
		_ = l.conn.Close()
		close(l.done)

		c.mu.Lock()
		if c.links[l.sessionID] == l {
			delete(c.links, l.sessionID)
		}
		c.mu.Unlock()

		if c.metrics != nil {
			c.metrics.ActiveConnections.Dec()
		}
		if !l.closing.Load() {
			c.sink.OnClosed(ctx, l.sessionID, loggedOut)
		}
	}()

	for {
		var f frame
		if err := l.conn.ReadJSON(&f); err != nil {
			if !l.closing.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.WarnContext(ctx, "Gateway connection lost", "error", err)
			}
			return
		}
		c.countFrame(f.Type)

		switch f.Type {
		case frameHealth:
			c.sink.OnHealth(ctx, l.sessionID, f.Healthy)
		case frameIdentity:
			c.sink.OnIdentity(ctx, l.sessionID, l.setIdentity(f.Name, f.JID))
		case frameCreds:
			c.sink.OnCredentials(ctx, l.sessionID, f.Creds)
		case frameClosed:
			loggedOut = f.LoggedOut
			log.InfoContext(ctx, "Gateway closed session", "logged_out", loggedOut)
			return
		case frameError:
			log.WarnContext(ctx, "Gateway reported error", "error", f.Error)
		default:
			log.DebugContext(ctx, "Ignoring unknown gateway frame", "type", f.Type)
		}
	}
}

func (c *Client) countFrame(frameType string) {
	if c.metrics != nil {
		c.metrics.FramesReceived.WithLabelValues(frameType).Inc()
	}
}

// CloseAll drops every link; used during shutdown.
func (c *Client) CloseAll(ctx context.Context) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.links))
	for id := range c.links {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		if _, err := c.Close(ctx, id, domain.CloseDisconnect); err != nil {
			slog.WarnContext(ctx, "Failed to close gateway link", "session_id", id, "error", err)
		}
	}
}
