// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: sampled JSON on stderr
//   - Development: colored console output, debug level
//
// Components receive a *zap.Logger named after themselves
// ("connection", "session", "model", "api") so socket churn and model
// loads can be filtered per subsystem.
//
// Example Usage:
//
//	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	conn := logger.Component("connection")
//	conn.Warn("idle timeout, forcing reconnect", zap.String("socket", id))
package logging
