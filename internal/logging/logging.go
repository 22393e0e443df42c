// Package logging builds the host's diagnostic logger.
//
// Diagnostics never go to stdout: stdout carries the native messaging
// channel, and a stray byte there corrupts the next frame.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/reclaim/viewerhost/internal/config"
)

const appDir = "viewerhost"

// DefaultLogPath returns the per-user log file used for config.LogFileAuto
func DefaultLogPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, appDir, appDir+".log")
}

// New creates a logger for cfg. Output goes to stderr unless a log file is
// configured; the returned Closer releases that file.
func New(cfg config.Config, stderr io.Writer) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid log level")
	}

	log := logrus.New()
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	path := cfg.LogFile
	if path == config.LogFileAuto {
		path = DefaultLogPath()
	}
	if path == "" {
		log.SetOutput(stderr)
		return log, nopCloser{}, nil
	}

	// Restricted permissions (owner only)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, errors.Wrapf(err, "create log directory for %s", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log file %s", path)
	}
	log.SetOutput(f)
	return log, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
