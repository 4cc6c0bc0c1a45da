// Package logging provides the daemon's structured logger. Every long-lived
// component holds a *logrus.Entry scoped with its component name, the way
// the orchestration core attaches a logger field to each struct and then
// layers request-specific fields on per call.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses and applies a level name ("debug", "info", "warn", ...);
// invalid names are ignored and leave the current level untouched.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	base.SetLevel(lvl)
}

// SetOutput redirects all future log lines; used by tests to silence or
// capture output.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// New returns a logger scoped to a named component, e.g. "taskgraph",
// "provider-registry", "agent-runtime".
func New(component string) *logrus.Entry {
	return base.WithField("component", component)
}
