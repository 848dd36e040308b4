package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns the application logger. Logs are JSON on stdout so the
// surrounding infrastructure (docker, journald) can collect them.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}
