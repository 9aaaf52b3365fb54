// Package logging configures the process-wide structured logger. The
// appliance keeps JSON logs under the var dir; debug mode mirrors
// them to stderr for bench work.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Setup installs the default slog logger writing to a dated file in
// logsDir. The returned file should be closed on shutdown.
func Setup(logsDir string, debug bool) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare logs dir: %w", err)
	}

	name := time.Now().Format("terminal_02.01.2006.log")
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	level := slog.LevelInfo
	if debug {
		out = io.MultiWriter(file, os.Stderr)
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})))
	return file, nil
}
