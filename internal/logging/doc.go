// Package logging provides structured logging for stepwise.
//
// This package wraps a process-wide zap logger with convenience functions for
// the logging patterns used by the navigation core and its hosts.
//
// # Log Levels
//
//   - Debug: Navigation commands and location changes
//   - Info: Server lifecycle, HTTP requests, WebSocket connections
//   - Warn: Rejected requests, dropped event subscribers
//   - Error: Startup failures
//
// # Configuration
//
// Logging is silent unless a level is given or STEPWISE_LOG_LEVEL is set:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The terminal UI owns stdout, so it logs to a file instead:
//
//	logging.InitializeWithOutput("debug", "/tmp/stepwise.log")
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialized.
package logging
