package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/connection"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/loop"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/mirror"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/model"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/session"
)

// Session is the part of the session controller the adapter drives
type Session interface {
	Snapshot() *mirror.State
	GetControl(windowID, controlID string) (*model.Control, bool)
	ConnectionState() connection.State
	Suspended() bool
	SetSuspended(suspended bool)
	SendAction(ctx context.Context, componentID, action string) error
	Navigate(ctx context.Context, windowID string) error
	Popup(ctx context.Context, windowID string) error
	CloseView(ctx context.Context) error
	Activate(ctx context.Context, windowID, controlID string, trigger session.Trigger) error
}

// Handlers serves the view-layer routes
type Handlers struct {
	session Session
	metrics *monitoring.Metrics
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandlers creates handlers; commands are bounded by timeout
func NewHandlers(s Session, metrics *monitoring.Metrics, timeout time.Duration, logger *zap.Logger) *Handlers {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		session: s,
		metrics: metrics,
		timeout: timeout,
		logger:  logger,
	}
}

// StateResponse is the JSON form of a mirror snapshot
type StateResponse struct {
	Online     bool                           `json:"online"`
	Ready      bool                           `json:"ready"`
	Connection string                         `json:"connection"`
	Suspended  bool                           `json:"suspended"`
	ModelHash  string                         `json:"modelHash,omitempty"`
	StyleHash  string                         `json:"styleHash,omitempty"`
	ViewStack  []string                       `json:"viewStack"`
	Popup      bool                           `json:"popup"`
	Components map[string]protocol.Attributes `json:"components"`
}

// ActionRequest forwards an action to a server component
type ActionRequest struct {
	ID     string `json:"id" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// ActivateRequest selects the control action to run
type ActivateRequest struct {
	Trigger string `json:"trigger"`
}

// WindowRequest names a window for navigate and popup
type WindowRequest struct {
	Window string `json:"window" binding:"required"`
}

// VisibilityRequest reports whether the host is suspended
type VisibilityRequest struct {
	Suspended *bool `json:"suspended" binding:"required"`
}

// Health reports connection status and a metrics summary
func (h *Handlers) Health(c *gin.Context) {
	snap := h.session.Snapshot()
	status := "healthy"
	if !snap.Online() {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"online":     snap.Online(),
		"ready":      snap.Ready(),
		"connection": h.session.ConnectionState().String(),
		"metrics":    h.metrics.GetSnapshot(),
	})
}

// State returns the mirrored state
func (h *Handlers) State(c *gin.Context) {
	snap := h.session.Snapshot()

	resp := StateResponse{
		Online:     snap.Online(),
		Ready:      snap.Ready(),
		Connection: h.session.ConnectionState().String(),
		Suspended:  h.session.Suspended(),
		ViewStack:  snap.ViewStack(),
		Popup:      snap.IsPopup(),
		Components: snap.Registry(),
	}
	if v := snap.Model(); v != nil {
		resp.ModelHash = v.Hash()
		resp.StyleHash = v.StyleHash()
	}
	if resp.ViewStack == nil {
		resp.ViewStack = []string{}
	}
	if resp.Components == nil {
		resp.Components = map[string]protocol.Attributes{}
	}

	c.JSON(http.StatusOK, resp)
}

// GetComponent returns the attributes of one component
func (h *Handlers) GetComponent(c *gin.Context) {
	id := c.Param("id")
	attrs, ok := h.session.Snapshot().Component(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "component not found", "id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         id,
		"attributes": attrs,
	})
}

// GetControl returns a control of the loaded model
func (h *Handlers) GetControl(c *gin.Context) {
	windowID, controlID := c.Param("window"), c.Param("control")
	control, ok := h.session.GetControl(windowID, controlID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "control not found", "window": windowID, "control": controlID})
		return
	}

	c.JSON(http.StatusOK, control)
}

// SendAction forwards an action to a server component
func (h *Handlers) SendAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.command(c, "send_action", func(ctx context.Context) error {
		return h.session.SendAction(ctx, req.ID, req.Action)
	})
}

// Activate runs the primary or secondary action of a control
func (h *Handlers) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trigger, err := session.ParseTrigger(req.Trigger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	windowID, controlID := c.Param("window"), c.Param("control")
	h.command(c, "activate", func(ctx context.Context) error {
		return h.session.Activate(ctx, windowID, controlID, trigger)
	})
}

// Navigate replaces the view stack with a window
func (h *Handlers) Navigate(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.command(c, "navigate", func(ctx context.Context) error {
		return h.session.Navigate(ctx, req.Window)
	})
}

// Popup opens a window above the visible one
func (h *Handlers) Popup(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.command(c, "popup", func(ctx context.Context) error {
		return h.session.Popup(ctx, req.Window)
	})
}

// CloseView closes the visible popup
func (h *Handlers) CloseView(c *gin.Context) {
	h.command(c, "close_view", h.session.CloseView)
}

// SetVisibility records whether the host is suspended
func (h *Handlers) SetVisibility(c *gin.Context) {
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.session.SetSuspended(*req.Suspended)
	c.JSON(http.StatusOK, gin.H{"suspended": *req.Suspended})
}

// command runs fn and answers with the resulting view stack
func (h *Handlers) command(c *gin.Context, name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Warn("command failed", zap.String("command", name), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	snap := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"viewStack": snap.ViewStack(),
		"popup":     snap.IsPopup(),
	})
}

// statusFor maps session errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, connection.ErrNotOpen), errors.Is(err, connection.ErrSendFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, mirror.ErrNoModel), errors.Is(err, loop.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, mirror.ErrUnknownWindow), errors.Is(err, session.ErrUnknownControl):
		return http.StatusNotFound
	case errors.Is(err, mirror.ErrCloseRoot):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoAction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
