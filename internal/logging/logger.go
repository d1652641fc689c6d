// Package logging sets up the structured logrus logger the rest of the
// module logs through, following the same LOG_LEVEL/LOG_FORMAT environment
// switches as shared/pkg/logger.InitLogger.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger configured from LOG_LEVEL and LOG_FORMAT.
// Unset LOG_LEVEL defaults to info; LOG_FORMAT=json switches to structured
// JSON output, otherwise a human-readable text formatter is used.
func New() *logrus.Logger {
	log := logrus.New()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("invalid LOG_LEVEL, using info")
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	log.SetOutput(os.Stdout)
	return log
}

// WithRun tags a logger entry with the run's identity (spec.md §6's
// implicit run scoping), mirroring shared/pkg/logger.WithOptimizationID.
func WithRun(log *logrus.Logger, runID string) *logrus.Entry {
	return log.WithField("run_id", runID)
}
