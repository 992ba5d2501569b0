package model

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/tracing"
)

// Source downloads raw documents by hash
type Source interface {
	Get(ctx context.Context, hash string) ([]byte, error)
}

// Fetcher resolves a model hash to a parsed Version. Parsed versions are
// kept in memory, raw documents optionally on disk, and concurrent
// fetches of one hash share a single download.
type Fetcher struct {
	source  Source
	opts    ParseOptions
	memory  *MemoryCache
	disk    *DiskCache
	group   singleflight.Group
	logger  *zap.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// NewFetcher creates a fetcher backed by source
func NewFetcher(source Source, opts ParseOptions, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source: source,
		opts:   opts,
		memory: NewMemoryCache(0),
		logger: logger,
	}
}

// WithMemoryCache replaces the default in-memory cache
func (f *Fetcher) WithMemoryCache(c *MemoryCache) *Fetcher {
	f.memory = c
	return f
}

// WithDiskCache enables the persistent document cache
func (f *Fetcher) WithDiskCache(c *DiskCache) *Fetcher {
	f.disk = c
	return f
}

// WithMetrics enables instrumentation
func (f *Fetcher) WithMetrics(m *monitoring.Metrics) *Fetcher {
	f.metrics = m
	return f
}

// WithTracer records a span per remote download
func (f *Fetcher) WithTracer(t *tracing.Tracer) *Fetcher {
	f.tracer = t
	return f
}

// Fetch returns the version for hash
func (f *Fetcher) Fetch(ctx context.Context, hash string) (*Version, error) {
	if v, ok := f.memory.Get(hash); ok {
		f.metrics.RecordModelCache("memory", true)
		return v, nil
	}
	f.metrics.RecordModelCache("memory", false)

	result, err, shared := f.group.Do(hash, func() (interface{}, error) {
		return f.load(ctx, hash)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.logger.Debug("shared in-flight model fetch", zap.String("hash", hash))
	}
	return result.(*Version), nil
}

func (f *Fetcher) load(ctx context.Context, hash string) (*Version, error) {
	// a flight that finished between our miss and Do already cached it
	if v, ok := f.memory.Get(hash); ok {
		return v, nil
	}

	if v, ok := f.loadFromDisk(hash); ok {
		f.memory.Add(v)
		return v, nil
	}

	timer := monitoring.NewTimer(f.metrics)
	span, ctx := f.tracer.StartSpan(ctx, "model.fetch")
	defer f.tracer.End(span)
	span.SetTag("hash", hash)

	data, err := f.source.Get(ctx, hash)
	if err != nil {
		timer.Stop("error")
		span.SetError(err)
		return nil, fmt.Errorf("fetch model %s: %w", hash, err)
	}

	v, err := Parse(hash, data, f.opts)
	if err != nil {
		timer.Stop("invalid")
		span.SetError(err)
		return nil, fmt.Errorf("parse model %s: %w", hash, err)
	}
	timer.Stop("success")

	f.logger.Info("model loaded",
		zap.String("hash", hash),
		zap.Int("bytes", len(data)),
		zap.Int("windows", len(v.Document().Windows)))

	if f.disk != nil {
		if err := f.disk.Put(hash, data); err != nil {
			f.logger.Warn("failed to cache model on disk", zap.String("hash", hash), zap.Error(err))
		}
	}

	f.memory.Add(v)
	return v, nil
}

func (f *Fetcher) loadFromDisk(hash string) (*Version, bool) {
	if f.disk == nil {
		return nil, false
	}

	data, ok, err := f.disk.Get(hash)
	if err != nil {
		f.logger.Warn("failed to read cached model", zap.String("hash", hash), zap.Error(err))
	}
	f.metrics.RecordModelCache("disk", ok)
	if !ok {
		return nil, false
	}

	v, err := Parse(hash, data, f.opts)
	if err != nil {
		f.logger.Warn("discarding corrupt cached model", zap.String("hash", hash), zap.Error(err))
		_ = f.disk.Remove(hash)
		return nil, false
	}

	f.logger.Info("model loaded from disk cache", zap.String("hash", hash))
	return v, true
}
