// Package logger provides a simple, thread-safe logging facility.
//
// The logger supports four levels: Debug, Info, Warn, and Error.
// Each log entry includes a timestamp, level, optional source (a worker ID
// such as "worker-3", or a component name such as "pool"), and message.
//
// # Basic Usage
//
// Using the default logger:
//
//	logger.Info("", "Application started")
//	logger.Debug("worker-1", "Factored %d", n)
//	logger.Warn("pool", "Rejected %d: %v", n, err)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stderr, logger.LevelDebug)
//	l.Debug("worker-1", "Debug message")
//
// # Log Levels
//
// Messages below the configured level are filtered:
//   - LevelDebug: all messages
//   - LevelInfo: Info, Warn, Error
//   - LevelWarn: Warn, Error
//   - LevelError: Error only
//
// The default logger writes to stderr so that stdout stays free for the
// LCM report. Levels can be read from configuration with ParseLevel.
//
// # Thread Safety
//
// All logging operations are protected by a mutex and safe for concurrent use.
package logger
