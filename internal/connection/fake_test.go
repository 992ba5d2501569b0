package connection

import (
	"context"
	"errors"
	"sync"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"
)

type fakeSocket struct {
	mu      sync.Mutex
	events  SocketEvents
	started bool
	sent    [][]byte
	closed  int
	sendErr error
}

func (s *fakeSocket) Start(events SocketEvents) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.started = true
}

func (s *fakeSocket) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, append([]byte(nil), frame...))
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSocket) frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, f := range s.sent {
		out[i] = string(f)
	}
	return out
}

func (s *fakeSocket) receive(frame string) {
	s.events.OnFrame([]byte(frame))
}

func (s *fakeSocket) fail(err error) {
	s.events.OnError(err)
	s.events.OnClose()
}

// fakeDialer hands out sockets in order; once they run out it fails
type fakeDialer struct {
	mu      sync.Mutex
	sockets []*fakeSocket
	dials   int
	urls    []string
}

var errRefused = errors.New("connection refused")

func (d *fakeDialer) Dial(ctx context.Context, url string) (Socket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.urls = append(d.urls, url)
	if len(d.sockets) == 0 {
		return nil, errRefused
	}
	s := d.sockets[0]
	d.sockets = d.sockets[1:]
	return s, nil
}

func (d *fakeDialer) queue(n int) []*fakeSocket {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*fakeSocket, n)
	for i := range out {
		out[i] = &fakeSocket{}
	}
	d.sockets = append(d.sockets, out...)
	return out
}

type recorder struct {
	events   []string
	messages []protocol.Message
}

func (r *recorder) OnOpened() { r.events = append(r.events, "opened") }
func (r *recorder) OnClosed() { r.events = append(r.events, "closed") }
func (r *recorder) OnMessage(msg protocol.Message) {
	r.messages = append(r.messages, msg)
}
