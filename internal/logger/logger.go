// Package logger provides structured logging using zerolog.
//
// This package implements production-ready logging with:
// - Structured JSON logging for production (machine-parsable)
// - Pretty console output for development (human-readable)
// - Component-specific loggers (http, stream, store, auth)
// - Configurable log levels (debug, info, warn, error, fatal)
//
// Usage:
//
//	// Initialize once in main()
//	logger.Initialize("info", false) // production: JSON output
//	logger.Initialize("debug", true) // development: pretty output
//
//	// Use component-specific loggers
//	logger.Stream().Debug().
//	    Str("session", "demo").
//	    Msg("Keep-alive frame re-sent")
//
//	// Use global logger for general events
//	logger.Log.Info().Msg("Server started")
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the global logger instance - use this for general application logging.
//
// For component-specific logging, use the helper functions like Stream(),
// Store(), etc. to get loggers with pre-configured component tags.
var Log zerolog.Logger

// Initialize sets up the global logger with the specified level and output format.
//
// This function should be called once at application startup before any
// logging occurs. An invalid level falls back to "info".
func Initialize(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	Log = log.With().
		Str("service", "realtime-svg").
		Logger()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("Logger initialized")
}

// GetLogger returns the global logger instance
func GetLogger() *zerolog.Logger {
	return &Log
}

// HTTP creates a logger for HTTP request events
func HTTP() *zerolog.Logger {
	l := Log.With().Str("component", "http").Logger()
	return &l
}

// Stream creates a logger for stream driver events
func Stream() *zerolog.Logger {
	l := Log.With().Str("component", "stream").Logger()
	return &l
}

// Store creates a logger for session store and message bus events
func Store() *zerolog.Logger {
	l := Log.With().Str("component", "store").Logger()
	return &l
}

// Auth creates a logger for credential and token events
func Auth() *zerolog.Logger {
	l := Log.With().Str("component", "auth").Logger()
	return &l
}
