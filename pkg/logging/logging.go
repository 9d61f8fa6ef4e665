package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the single logger shared by all services. Level parses
// logrus level names ("debug", "info", ...); unknown values fall back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return logger
}

// NewNopLogger returns a logger that discards everything. Tests use it so
// flow logging never pollutes test output.
func NewNopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
