// Package logger provides structured logging for nanodraw using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("draw")
//	log.Info("generation settled", logger.Fields("task_id", id))
package logger
