package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LevelFromEnv returns the log level configured via environment variables.
// It checks JSONMEND_LOG_LEVEL first, then falls back to LOG_LEVEL.
// Unset or unknown values yield INFO.
func LevelFromEnv() slog.Level {
	level := os.Getenv("JSONMEND_LOG_LEVEL")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		return slog.LevelInfo
	}
	l, err := ParseLevel(level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel parses DEBUG, INFO, WARN, WARNING or ERROR (case-insensitive).
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("slogobs: unknown log level %q", level)
}
