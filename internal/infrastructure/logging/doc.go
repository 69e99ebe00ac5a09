// Package logging provides the controller's structured logger.
//
// Everything logs through log/slog. JSON output is the default so a
// controller on a workshop shelf can ship logs straight into journald
// or a collector; text output is for watching a firing from a terminal.
// Every record carries service and version fields so interleaved logs
// from several controllers stay attributable.
//
// Configured through the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Derive component loggers with With:
//
//	kilnLog := log.With("kiln", kilnID)
//	kilnLog.Info("firing started", "schedule", label)
package logging
