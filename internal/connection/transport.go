package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultSocketPath is the server's websocket endpoint
const DefaultSocketPath = "/websocket"

var ErrUnsupportedScheme = errors.New("unsupported origin scheme")

// SocketEvents are the callbacks a Socket delivers after Start.
// They may be invoked from any goroutine.
type SocketEvents struct {
	OnFrame func(frame []byte)
	OnError func(err error)
	OnClose func()
}

// Socket is one physical, already established connection
type Socket interface {
	// Start begins delivering events; called once
	Start(events SocketEvents)
	// Send writes one text frame
	Send(frame []byte) error
	// Close releases the socket; OnClose may still fire afterwards
	Close() error
}

// Dialer establishes sockets
type Dialer interface {
	Dial(ctx context.Context, url string) (Socket, error)
}

// SocketURL derives the websocket URL from the page origin:
// http becomes ws and https becomes wss on the same host
func SocketURL(origin, path string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("parse origin: missing host in %q", origin)
	}

	if path == "" {
		path = DefaultSocketPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// WebsocketDialer dials with gorilla/websocket
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// ReadLimit is a hard bound; a larger frame fails the read and
	// closes the socket. Keep it above the codec's frame limit.
	ReadLimit int64
	Header    http.Header
}

// Dial connects to url, honoring ctx cancellation
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Socket, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	conn, resp, err := dialer.DialContext(ctx, url, d.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	if d.ReadLimit > 0 {
		conn.SetReadLimit(d.ReadLimit)
	}

	return &wsSocket{conn: conn, writeTimeout: d.WriteTimeout}, nil
}

type wsSocket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	startOnce sync.Once
}

func (s *wsSocket) Start(events SocketEvents) {
	s.startOnce.Do(func() {
		go s.readPump(events)
	})
}

func (s *wsSocket) readPump(events SocketEvents) {
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				events.OnError(err)
			}
			events.OnClose()
			return
		}
		events.OnFrame(frame)
	}
}

func (s *wsSocket) Send(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
	}
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *wsSocket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}
