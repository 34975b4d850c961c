// Package logging builds the structured loggers shared by the server and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/httplog/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	App     string
	Version string
	Env     string
	Level   string
	// File enables a rotating log file next to stdout when set
	File string
}

// New returns a JSON slog logger using the ECS field names httplog emits for requests.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, Writer(cfg))
}

func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: logFormat.ReplaceAttr,
	})

	return slog.New(handler).With(
		slog.String("app", cfg.App),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)
}

// Writer is stdout, or stdout plus a rotating file when cfg.File is set.
func Writer(cfg Config) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewCLI returns a human readable logger for terminal use, exposed as slog.
func NewCLI(w io.Writer, debug bool) *slog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}

	logger := charmlog.NewWithOptions(w, charmlog.Options{
		ReportCaller:    debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "hrreport",
	})
	return slog.New(logger)
}
