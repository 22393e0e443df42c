// Package resolver derives the target file path from the launch arguments and
// the working directory of the host process.
package resolver

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/reclaim/viewerhost/internal/platform"
)

// Resolver computes target paths. It keeps no state between calls: every
// Resolve reads the launch arguments and working directory again.
type Resolver struct {
	proc platform.Process
	log  logrus.FieldLogger
}

// New creates a Resolver reading launch state from proc.
func New(proc platform.Process, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{proc: proc, log: log.WithField("component", "resolver")}
}

// Resolve returns the absolute path of the launch file with suffix appended
// as text, so ".bak" yields "notes.txt.bak". It returns "" when no file was
// given on launch.
func (r *Resolver) Resolve(suffix string) string {
	args := r.proc.Args()
	if len(args) < 2 {
		return ""
	}
	raw := args[1]

	joined := raw
	if !filepath.IsAbs(raw) {
		joined = filepath.Join(r.WorkDir(), raw)
	}
	if !utf8.ValidString(joined) {
		return raw + suffix
	}
	return joined + suffix
}

// WorkDir returns the current working directory, or "" when it cannot be read.
func (r *Resolver) WorkDir() string {
	wd, err := r.proc.Getwd()
	if err != nil {
		r.log.WithError(err).Debug("working directory unavailable")
		return ""
	}
	return wd
}
