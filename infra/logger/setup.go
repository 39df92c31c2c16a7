package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	outMu  sync.RWMutex
	output io.Writer = os.Stdout
)

func currentOutput() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	return output
}

// Setup applies the global log level and, when cfg.File is set, tees every
// logger created afterwards to a size-rotated file. Quiet drops stdout. The
// returned closer releases the file.
func Setup(cfg Config) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("logging level %q: %w", cfg.Level, err)
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)

	var stdout io.Writer = os.Stdout
	if cfg.Quiet {
		stdout = io.Discard
	}
	if cfg.File == "" {
		setOutput(stdout)
		return nopCloser{}, nil
	}
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	setOutput(io.MultiWriter(stdout, lj))
	return lj, nil
}

func setOutput(w io.Writer) {
	outMu.Lock()
	output = w
	outMu.Unlock()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
