package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Subscription is a client-side realtime connection. Events arrive on the
// channel returned by Events; the channel is closed when the server drops
// the connection or Close is called. A dropped subscription is recovered
// by dialing again and re-fetching the task list over REST.
type Subscription struct {
	conn   *websocket.Conn
	events chan Envelope
	done   chan struct{}
}

// Dial establishes an authenticated realtime connection to the server at
// baseURL (http://, https://, ws:// or wss://). The token is passed as a
// query parameter, matching the server handshake.
func Dial(ctx context.Context, baseURL, token string) (*Subscription, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime server: %w", err)
	}

	s := &Subscription{
		conn:   conn,
		events: make(chan Envelope, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the inbound event stream. The channel is closed when the
// subscription ends, whatever the reason.
func (s *Subscription) Events() <-chan Envelope {
	return s.events
}

// Close tears the subscription down. Safe to call concurrently with event
// consumption; pending events may be discarded.
func (s *Subscription) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	return s.conn.Close()
}

func (s *Subscription) readLoop() {
	defer func() {
		close(s.done)
		close(s.events)
		_ = s.conn.Close()
	}()

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			// Unknown frames are skipped, not fatal.
			continue
		}

		s.events <- envelope
	}
}
