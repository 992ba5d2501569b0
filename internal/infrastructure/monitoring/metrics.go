package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "uiclient"

// Metrics holds all Prometheus metrics.
// Every Record/Set method is safe on a nil receiver so components can run
// without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Connection metrics
	ConnAttempts    prometheus.Counter
	ConnOpens       prometheus.Counter
	ConnCloses      *prometheus.CounterVec
	ReconnectDelay  prometheus.Histogram
	IdleEvents      *prometheus.CounterVec
	Messages        *prometheus.CounterVec
	DecodeErrors    prometheus.Counter
	DroppedSends    *prometheus.CounterVec
	ConnectionState prometheus.Gauge

	// Session metrics
	Online       prometheus.Gauge
	RegistrySize prometheus.Gauge
	ViewDepth    prometheus.Gauge

	// Model metrics
	ModelFetches       *prometheus.CounterVec
	ModelFetchDuration prometheus.Histogram
	ModelCache         *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	Reconnects    int64   `json:"reconnects"`
	DroppedSends  int64   `json:"dropped_sends"`
	DecodeErrors  int64   `json:"decode_errors"`
	ModelLoads    int64   `json:"model_loads"`
	ModelFailures int64   `json:"model_failures"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of view adapter HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "View adapter request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "View adapter response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Connection metrics
		ConnAttempts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_attempts_total",
				Help:      "Total number of websocket dial attempts",
			},
		),
		ConnOpens: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_opens_total",
				Help:      "Total number of websocket connections opened",
			},
		),
		ConnCloses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_closes_total",
				Help:      "Total number of websocket closes by reason",
			},
			[]string{"reason"},
		),
		ReconnectDelay: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconnect_delay_seconds",
				Help:      "Scheduled reconnect delays",
				Buckets:   []float64{.5, 1, 2, 4, 8, 16, 32},
			},
		),
		IdleEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "idle_events_total",
				Help:      "Idle timer expirations by outcome",
			},
			[]string{"outcome"},
		),
		Messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Protocol messages by direction and kind",
			},
			[]string{"direction", "kind"},
		),
		DecodeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_errors_total",
				Help:      "Inbound frames dropped as malformed",
			},
		),
		DroppedSends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_sends_total",
				Help:      "Outbound messages dropped while not connected",
			},
			[]string{"kind"},
		),
		ConnectionState: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connection_state",
				Help:      "Connection state (0 idle, 1 connecting, 2 open, 3 closing, 4 closed)",
			},
		),

		// Session metrics
		Online: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "online",
				Help:      "1 while the session is connected",
			},
		),
		RegistrySize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registry_components",
				Help:      "Number of live components in the mirror",
			},
		),
		ViewDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "view_stack_depth",
				Help:      "Depth of the view stack",
			},
		),

		// Model metrics
		ModelFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_fetches_total",
				Help:      "Model fetches by result",
			},
			[]string{"result"},
		),
		ModelFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_fetch_duration_seconds",
				Help:      "Model fetch duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		ModelCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_cache_total",
				Help:      "Model cache lookups by tier and outcome",
			},
			[]string{"tier", "outcome"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Client uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a view adapter request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordConnAttempt counts a dial attempt
func (m *Metrics) RecordConnAttempt() {
	if m == nil {
		return
	}
	m.ConnAttempts.Inc()
}

// RecordConnOpen counts a successful open
func (m *Metrics) RecordConnOpen() {
	if m == nil {
		return
	}
	m.ConnOpens.Inc()
}

// RecordConnClose counts a close by reason
func (m *Metrics) RecordConnClose(reason string) {
	if m == nil {
		return
	}
	m.ConnCloses.WithLabelValues(reason).Inc()
}

// RecordReconnect observes a scheduled reconnect delay
func (m *Metrics) RecordReconnect(delay time.Duration) {
	if m == nil {
		return
	}
	m.ReconnectDelay.Observe(delay.Seconds())

	m.mu.Lock()
	m.snapshot.Reconnects++
	m.mu.Unlock()
}

// RecordIdle counts an idle expiry; suppressed is true when the
// timeout was ignored because the client is suspended
func (m *Metrics) RecordIdle(suppressed bool) {
	if m == nil {
		return
	}
	outcome := "timeout"
	if suppressed {
		outcome = "suppressed"
	}
	m.IdleEvents.WithLabelValues(outcome).Inc()
}

// RecordMessage counts a protocol message
func (m *Metrics) RecordMessage(direction, kind string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(direction, kind).Inc()
}

// RecordDecodeError counts a malformed inbound frame
func (m *Metrics) RecordDecodeError() {
	if m == nil {
		return
	}
	m.DecodeErrors.Inc()

	m.mu.Lock()
	m.snapshot.DecodeErrors++
	m.mu.Unlock()
}

// RecordDroppedSend counts an outbound message dropped while offline
func (m *Metrics) RecordDroppedSend(kind string) {
	if m == nil {
		return
	}
	m.DroppedSends.WithLabelValues(kind).Inc()

	m.mu.Lock()
	m.snapshot.DroppedSends++
	m.mu.Unlock()
}

// SetConnectionState publishes the numeric connection state
func (m *Metrics) SetConnectionState(state int) {
	if m == nil {
		return
	}
	m.ConnectionState.Set(float64(state))
}

// SetOnline publishes the session online flag
func (m *Metrics) SetOnline(online bool) {
	if m == nil {
		return
	}
	if online {
		m.Online.Set(1)
	} else {
		m.Online.Set(0)
	}
}

// SetRegistrySize publishes the number of live components
func (m *Metrics) SetRegistrySize(count int) {
	if m == nil {
		return
	}
	m.RegistrySize.Set(float64(count))
}

// SetViewDepth publishes the view stack depth
func (m *Metrics) SetViewDepth(depth int) {
	if m == nil {
		return
	}
	m.ViewDepth.Set(float64(depth))
}

// RecordModelFetch records a model fetch outcome
func (m *Metrics) RecordModelFetch(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ModelFetches.WithLabelValues(result).Inc()
	m.ModelFetchDuration.Observe(duration.Seconds())

	m.mu.Lock()
	if result == "success" {
		m.snapshot.ModelLoads++
	} else {
		m.snapshot.ModelFailures++
	}
	m.mu.Unlock()
}

// RecordModelCache counts a cache lookup
func (m *Metrics) RecordModelCache(tier string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.ModelCache.WithLabelValues(tier, outcome).Inc()
}

// GetSnapshot returns the current counter values
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
