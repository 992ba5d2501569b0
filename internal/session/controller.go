package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/connection"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/loop"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/mirror"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/model"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"
)

var (
	ErrUnknownControl = errors.New("unknown control")
	ErrNoAction       = errors.New("control has no action")
)

// Trigger selects which action of a control is activated
type Trigger string

const (
	TriggerPrimary   Trigger = "primary"
	TriggerSecondary Trigger = "secondary"
)

// ParseTrigger validates a trigger name; empty means primary
func ParseTrigger(s string) (Trigger, error) {
	switch Trigger(s) {
	case "", TriggerPrimary:
		return TriggerPrimary, nil
	case TriggerSecondary:
		return TriggerSecondary, nil
	}
	return "", fmt.Errorf("unknown trigger %q", s)
}

// Fetcher resolves model hashes
type Fetcher interface {
	Fetch(ctx context.Context, hash string) (*model.Version, error)
}

// Options configures a Controller
type Options struct {
	Connection   connection.Options
	FormFactor   model.FormFactor
	FetchTimeout time.Duration
}

// Controller drives one UI session: it owns the Connection, applies
// inbound sync messages to the Mirror, loads models and forwards actions.
//
// Observer callbacks run on the scheduler. Exported methods are safe for
// concurrent use and must not be called from scheduler callbacks.
type Controller struct {
	sched   loop.Scheduler
	conn    *connection.Connection
	mirror  *mirror.Mirror
	fetcher Fetcher
	signal  *connection.Signal
	opts    Options
	logger  *zap.Logger

	// fetchSeq identifies the latest model request; older results are stale
	fetchSeq    uint64
	pendingHash string

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a controller and its connection
func New(opts Options, sched loop.Scheduler, dialer connection.Dialer, fetcher Fetcher, m *mirror.Mirror, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FormFactor == "" {
		opts.FormFactor = model.FormFactorDesktop
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		sched:   sched,
		mirror:  m,
		fetcher: fetcher,
		signal:  &connection.Signal{},
		opts:    opts,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	c.conn = connection.New(opts.Connection, sched, dialer, c, logger).WithSuspender(c.signal)
	return c
}

// WithMetrics instruments the connection
func (c *Controller) WithMetrics(metrics *monitoring.Metrics) *Controller {
	c.conn.WithMetrics(metrics)
	return c
}

// Start opens the connection
func (c *Controller) Start() {
	c.logger.Info("starting session",
		zap.String("url", c.opts.Connection.URL),
		zap.String("form_factor", string(c.opts.FormFactor)))
	c.sched.Post(c.conn.Open)
}

// Stop tears the connection down and abandons in-flight model fetches
func (c *Controller) Stop(ctx context.Context) error {
	c.cancel()
	return loop.Do(ctx, c.sched, func() {
		c.fetchSeq++
		c.pendingHash = ""
		c.conn.Close()
	})
}

// SetSuspended tells the connection whether the host is suspended; while
// suspended idle timeouts do not force a reconnect
func (c *Controller) SetSuspended(suspended bool) {
	c.signal.Set(suspended)
	c.logger.Debug("suspended signal", zap.Bool("suspended", suspended))
}

// Suspended returns the current suspended signal
func (c *Controller) Suspended() bool {
	return c.signal.Suspended()
}

// ConnectionState returns the connection lifecycle state
func (c *Controller) ConnectionState() connection.State {
	return c.conn.State()
}

// OnOpened implements connection.Observer
func (c *Controller) OnOpened() {
	c.mirror.SetOnline(true)
}

// OnClosed implements connection.Observer. The registry is kept until the
// server sends a fresh state.
func (c *Controller) OnClosed() {
	c.mirror.SetOnline(false)
}

// OnMessage implements connection.Observer
func (c *Controller) OnMessage(msg protocol.Message) {
	switch msg.Kind {
	case protocol.KindState, protocol.KindAdd, protocol.KindRemove, protocol.KindChange:
		c.mirror.Apply(msg)
	case protocol.KindModelHash:
		if hash, ok := msg.Payload.(protocol.ModelHash); ok {
			c.loadModel(string(hash))
		}
	case protocol.KindPing, protocol.KindPong:
	default:
		c.logger.Debug("ignoring message", zap.String("kind", string(msg.Kind)))
	}
}

func (c *Controller) loadModel(hash string) {
	if hash == c.pendingHash {
		c.logger.Debug("model fetch already in flight", zap.String("hash", hash))
		return
	}

	// any earlier request is superseded, even when no fetch is needed
	c.fetchSeq++
	seq := c.fetchSeq

	if current := c.mirror.Snapshot().Model(); current != nil && current.Hash() == hash {
		c.pendingHash = ""
		c.initView()
		return
	}

	c.pendingHash = hash
	c.logger.Info("loading model", zap.String("hash", hash))

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.FetchTimeout)
	fetcher := c.fetcher
	c.sched.Go(func() {
		defer cancel()
		v, err := fetcher.Fetch(ctx, hash)
		c.sched.Post(func() {
			c.onModel(seq, hash, v, err)
		})
	})
}

func (c *Controller) onModel(seq uint64, hash string, v *model.Version, err error) {
	if seq != c.fetchSeq {
		c.logger.Debug("discarding superseded model", zap.String("hash", hash))
		return
	}
	c.pendingHash = ""

	if err != nil {
		c.logger.Error("model fetch failed, keeping previous model", zap.String("hash", hash), zap.Error(err))
		return
	}

	c.mirror.SetModel(v)
	c.initView()
}

func (c *Controller) initView() {
	if err := c.mirror.InitView(c.opts.FormFactor); err != nil {
		c.logger.Warn("view initialisation failed", zap.Error(err))
	}
}

// Snapshot returns the current mirror state
func (c *Controller) Snapshot() *mirror.State {
	return c.mirror.Snapshot()
}

// GetControl looks up a control of the loaded model
func (c *Controller) GetControl(windowID, controlID string) (*model.Control, bool) {
	return c.mirror.Snapshot().Control(windowID, controlID)
}

// IsOnline reports whether the session is connected
func (c *Controller) IsOnline() bool {
	return c.mirror.Snapshot().Online()
}

// GetViewStack returns the window ids of the view stack, root first
func (c *Controller) GetViewStack() []string {
	return c.mirror.Snapshot().ViewStack()
}

// FormFactor returns the form factor used for default windows
func (c *Controller) FormFactor() model.FormFactor {
	return c.opts.FormFactor
}

// SendAction forwards an action to a server component verbatim. While
// disconnected the action is dropped and connection.ErrNotOpen returned.
func (c *Controller) SendAction(ctx context.Context, componentID, action string) error {
	var sendErr error
	err := loop.Do(ctx, c.sched, func() {
		sendErr = c.conn.Send(protocol.KindAction, protocol.Action{ComponentID: componentID, Action: action})
	})
	if err != nil {
		return err
	}
	return sendErr
}

// Navigate shows windowID as the root window, or the default window when
// windowID is unknown
func (c *Controller) Navigate(ctx context.Context, windowID string) error {
	return c.onLoop(ctx, func() error {
		return c.mirror.Navigate(windowID, c.opts.FormFactor)
	})
}

// Popup opens windowID above the visible window
func (c *Controller) Popup(ctx context.Context, windowID string) error {
	return c.onLoop(ctx, func() error {
		return c.mirror.Popup(windowID)
	})
}

// CloseView closes the visible popup
func (c *Controller) CloseView(ctx context.Context) error {
	err := c.onLoop(ctx, c.mirror.CloseView)
	if errors.Is(err, mirror.ErrCloseRoot) {
		c.logger.Warn("cannot close root window")
	}
	return err
}

// Activate runs the primary or secondary action bound to a control
func (c *Controller) Activate(ctx context.Context, windowID, controlID string, trigger Trigger) error {
	control, ok := c.GetControl(windowID, controlID)
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownControl, windowID, controlID)
	}

	action := control.PrimaryAction
	if trigger == TriggerSecondary {
		action = control.SecondaryAction
	}

	switch {
	case action == nil:
		return fmt.Errorf("%w: %s %s/%s", ErrNoAction, trigger, windowID, controlID)
	case action.Component != nil:
		return c.SendAction(ctx, action.Component.ID, action.Component.Action)
	case action.Window != nil && action.Window.Popup:
		return c.Popup(ctx, action.Window.ID)
	case action.Window != nil:
		return c.Navigate(ctx, action.Window.ID)
	}
	return fmt.Errorf("%w: %s %s/%s", ErrNoAction, trigger, windowID, controlID)
}

func (c *Controller) onLoop(ctx context.Context, fn func() error) error {
	var fnErr error
	if err := loop.Do(ctx, c.sched, func() { fnErr = fn() }); err != nil {
		return err
	}
	return fnErr
}
