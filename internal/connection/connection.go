package connection

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/loop"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"
)

var (
	// ErrNotOpen is returned by Send while no socket is open
	ErrNotOpen = errors.New("connection not open")
	// ErrSendFailed wraps a socket write error; the connection is closed
	ErrSendFailed = errors.New("send failed")
)

// Close reasons, used in logs and metrics
const (
	reasonPeer     = "peer"
	reasonError    = "error"
	reasonWrite    = "write"
	reasonIdle     = "idle"
	reasonDial     = "dial"
	reasonShutdown = "shutdown"
)

// Observer receives connection events on the scheduler
type Observer interface {
	OnOpened()
	OnClosed()
	OnMessage(msg protocol.Message)
}

// Options tunes heartbeat, idle detection and reconnect
type Options struct {
	URL                string
	PingInterval       time.Duration
	IdleTimeout        time.Duration
	BaseReconnectDelay time.Duration
	MaxReconnectDelay  time.Duration
	MaxFrameBytes      int
}

// DefaultOptions returns the stock tunables
func DefaultOptions(url string) Options {
	return Options{
		URL:                url,
		PingInterval:       2 * time.Second,
		IdleTimeout:        5 * time.Second,
		BaseReconnectDelay: time.Second,
		MaxReconnectDelay:  10 * time.Second,
		MaxFrameBytes:      protocol.MaxFrameBytes,
	}
}

// Connection keeps one websocket alive. Open, Close and Send must be
// called on the scheduler; State may be read from anywhere.
type Connection struct {
	opts      Options
	sched     loop.Scheduler
	dialer    Dialer
	observer  Observer
	suspender Suspender
	codec     *protocol.Codec
	backoff   *resilience.Backoff
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	state atomic.Int32

	// epoch identifies the current physical socket; callbacks carrying an
	// older epoch are dropped
	epoch      uint64
	socket     Socket
	socketID   string
	cancelDial context.CancelFunc

	pingTimer      loop.Timer
	idleTimer      loop.Timer
	reconnectTimer loop.Timer

	shutdown bool
}

// New creates an idle connection
func New(opts Options, sched loop.Scheduler, dialer Dialer, observer Observer, logger *zap.Logger) *Connection {
	defaults := DefaultOptions(opts.URL)
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaults.PingInterval
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaults.IdleTimeout
	}
	if opts.BaseReconnectDelay <= 0 {
		opts.BaseReconnectDelay = defaults.BaseReconnectDelay
	}
	if opts.MaxReconnectDelay <= 0 {
		opts.MaxReconnectDelay = defaults.MaxReconnectDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Connection{
		opts:     opts,
		sched:    sched,
		dialer:   dialer,
		observer: observer,
		codec:    protocol.NewCodec(opts.MaxFrameBytes),
		backoff:  resilience.NewBackoff(opts.BaseReconnectDelay, opts.MaxReconnectDelay),
		logger:   logger.Named("connection"),
	}
	c.state.Store(int32(StateIdle))
	return c
}

// WithSuspender installs the suspended signal consulted on idle expiry
func (c *Connection) WithSuspender(s Suspender) *Connection {
	c.suspender = s
	return c
}

// WithMetrics enables instrumentation
func (c *Connection) WithMetrics(m *monitoring.Metrics) *Connection {
	c.metrics = m
	return c
}

// State returns the current lifecycle state
func (c *Connection) State() State {
	return State(c.state.Load())
}

// NextReconnectDelay returns the delay the next reconnect would wait
func (c *Connection) NextReconnectDelay() time.Duration {
	return c.backoff.Peek()
}

func (c *Connection) setState(s State) {
	c.state.Store(int32(s))
	c.metrics.SetConnectionState(int(s))
}

// Open starts connecting. It is a no-op while connecting or open and
// after Close.
func (c *Connection) Open() {
	if c.shutdown {
		return
	}
	switch c.State() {
	case StateConnecting, StateOpen:
		return
	}

	stopTimer(&c.reconnectTimer)

	c.epoch++
	epoch := c.epoch
	id := uuid.NewString()
	c.socketID = id
	c.setState(StateConnecting)
	c.metrics.RecordConnAttempt()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelDial = cancel

	c.logger.Debug("connecting", zap.String("socket", id), zap.String("url", c.opts.URL))

	url := c.opts.URL
	dialer := c.dialer
	c.sched.Go(func() {
		sock, err := dialer.Dial(ctx, url)
		c.sched.Post(func() {
			c.onDial(epoch, sock, err)
		})
	})
}

func (c *Connection) onDial(epoch uint64, sock Socket, err error) {
	if epoch != c.epoch || c.State() != StateConnecting {
		if sock != nil {
			_ = sock.Close()
		}
		return
	}

	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}

	if err != nil {
		c.logger.Warn("dial failed", zap.String("socket", c.socketID), zap.Error(err))
		c.handleClose(epoch, reasonDial)
		return
	}

	c.socket = sock
	c.setState(StateOpen)
	c.backoff.Reset()
	c.metrics.RecordConnOpen()
	c.logger.Info("connection open", zap.String("socket", c.socketID))

	sock.Start(SocketEvents{
		OnFrame: func(frame []byte) {
			c.sched.Post(func() { c.onFrame(epoch, frame) })
		},
		OnError: func(err error) {
			c.sched.Post(func() { c.onError(epoch, err) })
		},
		OnClose: func() {
			c.sched.Post(func() { c.handleClose(epoch, reasonPeer) })
		},
	})

	c.armPing(epoch)
	c.armIdle(epoch)

	if c.observer != nil {
		c.observer.OnOpened()
	}
}

func (c *Connection) live(epoch uint64) bool {
	return epoch == c.epoch && c.State() == StateOpen
}

func (c *Connection) onFrame(epoch uint64, frame []byte) {
	if !c.live(epoch) {
		return
	}

	// any traffic proves liveness, even a frame we cannot decode
	c.armIdle(epoch)

	msg, err := c.codec.Decode(frame)
	if err != nil {
		c.metrics.RecordDecodeError()
		c.logger.Warn("dropping malformed frame",
			zap.String("socket", c.socketID),
			zap.Int("bytes", len(frame)),
			zap.Error(err))
		return
	}

	c.metrics.RecordMessage("in", string(msg.Kind))
	if c.observer != nil {
		c.observer.OnMessage(msg)
	}
}

func (c *Connection) onError(epoch uint64, err error) {
	if epoch != c.epoch {
		return
	}
	c.logger.Warn("socket error", zap.String("socket", c.socketID), zap.Error(err))
	c.handleClose(epoch, reasonError)
}

// handleClose runs at most once per socket, then schedules a reconnect
func (c *Connection) handleClose(epoch uint64, reason string) {
	if epoch != c.epoch {
		return
	}
	switch c.State() {
	case StateConnecting, StateOpen:
	default:
		return
	}

	c.setState(StateClosing)
	c.teardownSocket()
	c.setState(StateClosed)

	c.metrics.RecordConnClose(reason)
	c.logger.Info("connection closed", zap.String("socket", c.socketID), zap.String("reason", reason))

	if c.observer != nil {
		c.observer.OnClosed()
	}

	c.scheduleReconnect()
}

func (c *Connection) teardownSocket() {
	stopTimer(&c.pingTimer)
	stopTimer(&c.idleTimer)

	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}

	if c.socket != nil {
		if err := c.socket.Close(); err != nil {
			c.logger.Debug("socket close", zap.String("socket", c.socketID), zap.Error(err))
		}
		c.socket = nil
	}
}

func (c *Connection) scheduleReconnect() {
	if c.shutdown {
		return
	}

	delay := c.backoff.Next()
	c.metrics.RecordReconnect(delay)
	c.logger.Info("reconnect scheduled", zap.Duration("delay", delay))

	stopTimer(&c.reconnectTimer)
	c.reconnectTimer = c.sched.AfterFunc(delay, func() {
		c.reconnectTimer = nil
		c.Open()
	})
}

func (c *Connection) armPing(epoch uint64) {
	stopTimer(&c.pingTimer)
	c.pingTimer = c.sched.AfterFunc(c.opts.PingInterval, func() {
		if !c.live(epoch) {
			return
		}
		if err := c.Send(protocol.KindPing, nil); err != nil {
			return
		}
		if c.live(epoch) {
			c.armPing(epoch)
		}
	})
}

func (c *Connection) armIdle(epoch uint64) {
	stopTimer(&c.idleTimer)
	c.idleTimer = c.sched.AfterFunc(c.opts.IdleTimeout, func() {
		c.onIdle(epoch)
	})
}

func (c *Connection) onIdle(epoch uint64) {
	if !c.live(epoch) {
		return
	}

	if c.suspender != nil && c.suspender.Suspended() {
		c.metrics.RecordIdle(true)
		c.logger.Debug("idle timeout while suspended, keeping socket", zap.String("socket", c.socketID))
		c.armIdle(epoch)
		return
	}

	c.metrics.RecordIdle(false)
	c.logger.Warn("idle timeout, forcing reconnect",
		zap.String("socket", c.socketID),
		zap.Duration("timeout", c.opts.IdleTimeout))
	c.handleClose(epoch, reasonIdle)
}

// Send encodes and writes one message. When not open the message is
// dropped and ErrNotOpen returned; a write failure closes the socket.
func (c *Connection) Send(kind protocol.Kind, payload interface{}) error {
	if c.State() != StateOpen || c.socket == nil {
		c.metrics.RecordDroppedSend(string(kind))
		c.logger.Warn("dropping message, connection not open",
			zap.String("kind", string(kind)),
			zap.Stringer("state", c.State()))
		return ErrNotOpen
	}

	frame, err := protocol.Encode(kind, payload)
	if err != nil {
		return err
	}

	if err := c.socket.Send(frame); err != nil {
		c.logger.Warn("write failed", zap.String("socket", c.socketID), zap.Error(err))
		c.handleClose(c.epoch, reasonWrite)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	c.metrics.RecordMessage("out", string(kind))
	return nil
}

// Close tears the connection down for good: the dial is cancelled, every
// timer stopped, the socket closed and late callbacks become stale.
func (c *Connection) Close() {
	if c.shutdown {
		return
	}
	c.shutdown = true

	stopTimer(&c.reconnectTimer)

	wasLive := c.State() == StateOpen || c.State() == StateConnecting
	c.epoch++
	c.teardownSocket()
	c.setState(StateClosed)

	if wasLive {
		c.metrics.RecordConnClose(reasonShutdown)
		c.logger.Info("connection shut down", zap.String("socket", c.socketID))
		if c.observer != nil {
			c.observer.OnClosed()
		}
	}
}

func stopTimer(t *loop.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
