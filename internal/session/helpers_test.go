package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/connection"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/loop/looptest"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/mirror"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/model"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, hash string) (*model.Version, error) {
	args := m.Called(ctx, hash)
	v, _ := args.Get(0).(*model.Version)
	return v, args.Error(1)
}

type stubSocket struct {
	mu     sync.Mutex
	events connection.SocketEvents
	sent   []string
	closed bool
}

func (s *stubSocket) Start(events connection.SocketEvents) { s.events = events }

func (s *stubSocket) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, string(frame))
	return nil
}

func (s *stubSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSocket) frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func (s *stubSocket) receive(frame string) { s.events.OnFrame([]byte(frame)) }

func (s *stubSocket) drop() {
	s.events.OnError(errors.New("connection reset"))
	s.events.OnClose()
}

type stubDialer struct {
	mu      sync.Mutex
	sockets []*stubSocket
}

func (d *stubDialer) Dial(ctx context.Context, url string) (connection.Socket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sockets) == 0 {
		return nil, errors.New("refused")
	}
	s := d.sockets[0]
	d.sockets = d.sockets[1:]
	return s, nil
}

func (d *stubDialer) next() *stubSocket {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &stubSocket{}
	d.sockets = append(d.sockets, s)
	return s
}

type fixture struct {
	sched   *looptest.Scheduler
	dialer  *stubDialer
	fetcher *mockFetcher
	ctrl    *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sched:   looptest.New(),
		dialer:  &stubDialer{},
		fetcher: &mockFetcher{},
	}
	opts := Options{
		Connection: connection.DefaultOptions("ws://home.local/websocket"),
		FormFactor: model.FormFactorMobile,
	}
	f.ctrl = New(opts, f.sched, f.dialer, f.fetcher, mirror.New(nil), nil)
	return f
}

// connect starts the session and returns the open socket
func (f *fixture) connect(t *testing.T) *stubSocket {
	t.Helper()
	sock := f.dialer.next()
	f.ctrl.Start()
	require.Equal(t, connection.StateOpen, f.ctrl.ConnectionState())
	return sock
}

func version(t *testing.T, hash string, windows ...string) *model.Version {
	t.Helper()
	doc := &model.Document{DefaultWindow: map[string]string{}}
	for _, id := range windows {
		doc.Windows = append(doc.Windows, model.Window{ID: id})
	}
	if len(windows) > 0 {
		doc.DefaultWindow["mobile"] = windows[0]
		doc.DefaultWindow["desktop"] = windows[0]
	}
	v, err := model.NewVersion(hash, doc)
	require.NoError(t, err)
	return v
}

func controlsVersion(t *testing.T) *model.Version {
	t.Helper()
	doc := &model.Document{
		DefaultWindow: map[string]string{"mobile": "main", "desktop": "main"},
		Windows: []model.Window{
			{
				ID: "main",
				Controls: []model.Control{
					{
						ID:              "lamp",
						PrimaryAction:   &model.Action{Component: &model.ActionComponent{ID: "lamp", Action: "toggle"}},
						SecondaryAction: &model.Action{Window: &model.ActionWindow{ID: "settings", Popup: true}},
					},
					{
						ID:            "go-settings",
						PrimaryAction: &model.Action{Window: &model.ActionWindow{ID: "settings"}},
					},
					{ID: "label"},
				},
			},
			{ID: "settings"},
		},
	}
	v, err := model.NewVersion("controls", doc)
	require.NoError(t, err)
	return v
}
