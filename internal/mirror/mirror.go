package mirror

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/model"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"
)

// Mirror publishes State snapshots. Writers are serialized; readers load
// the current snapshot without locking.
type Mirror struct {
	mu      sync.Mutex
	current atomic.Pointer[State]
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates an empty, offline mirror
func New(logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mirror{logger: logger}
	m.current.Store(emptyState)
	return m
}

// WithMetrics enables the registry, view and online gauges
func (m *Mirror) WithMetrics(metrics *monitoring.Metrics) *Mirror {
	m.metrics = metrics
	return m
}

// Snapshot returns the current state
func (m *Mirror) Snapshot() *State {
	return m.current.Load()
}

func (m *Mirror) update(fn func(s State) (State, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(*m.current.Load())
	if err != nil {
		return err
	}
	m.current.Store(&next)

	m.metrics.SetRegistrySize(len(next.registry))
	m.metrics.SetViewDepth(len(next.view))
	m.metrics.SetOnline(next.online)
	return nil
}

// Apply folds a sync message into the registry
func (m *Mirror) Apply(msg protocol.Message) {
	_ = m.update(func(s State) (State, error) {
		s.registry = s.registry.Apply(msg)
		return s, nil
	})
}

// SetModel replaces the model wholesale
func (m *Mirror) SetModel(v *model.Version) {
	_ = m.update(func(s State) (State, error) {
		s.model = v
		return s, nil
	})
}

// SetOnline records the connection status
func (m *Mirror) SetOnline(online bool) {
	_ = m.update(func(s State) (State, error) {
		s.online = online
		return s, nil
	})
}

// Navigate replaces the view stack with windowID, or with the form
// factor's default window when windowID is unknown
func (m *Mirror) Navigate(windowID string, ff model.FormFactor) error {
	return m.update(func(s State) (State, error) {
		if s.model == nil {
			return s, ErrNoModel
		}

		target := windowID
		if !s.model.HasWindow(target) {
			def, ok := s.model.DefaultWindowID(ff)
			if !ok {
				return s, fmt.Errorf("%w: %q and no default for %s", ErrUnknownWindow, windowID, ff)
			}
			m.logger.Debug("unknown window, using default",
				zap.String("window", windowID),
				zap.String("default", def))
			target = def
		}

		s.view = s.view.Change(target)
		return s, nil
	})
}

// Popup pushes windowID above the visible window
func (m *Mirror) Popup(windowID string) error {
	return m.update(func(s State) (State, error) {
		if s.model == nil {
			return s, ErrNoModel
		}
		if !s.model.HasWindow(windowID) {
			return s, fmt.Errorf("%w: %q", ErrUnknownWindow, windowID)
		}
		s.view = s.view.Push(windowID)
		return s, nil
	})
}

// CloseView pops the top popup; closing the root is rejected
func (m *Mirror) CloseView() error {
	return m.update(func(s State) (State, error) {
		view, err := s.view.Pop()
		if err != nil {
			return s, err
		}
		s.view = view
		return s, nil
	})
}

// InitView navigates to the default window when the view stack has no
// root or its root is unknown to the loaded model. A valid stack is kept.
func (m *Mirror) InitView(ff model.FormFactor) error {
	return m.update(func(s State) (State, error) {
		if s.model == nil {
			return s, ErrNoModel
		}

		if root, ok := s.view.Root(); ok && s.model.HasWindow(root) {
			return s, nil
		}

		def, ok := s.model.DefaultWindowID(ff)
		if !ok {
			return s, fmt.Errorf("%w: no default window for %s", ErrUnknownWindow, ff)
		}
		m.logger.Info("using default window", zap.String("window", def), zap.String("form_factor", string(ff)))
		s.view = s.view.Change(def)
		return s, nil
	})
}
