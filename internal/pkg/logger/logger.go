// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey names a request or task scoped value that ContextHandler copies
// onto log records.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyUserID    ContextKey = "user_id"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyClientIP  ContextKey = "client_ip"
	ContextKeyMethod    ContextKey = "method"
	ContextKeyPath      ContextKey = "path"
	ContextKeyTaskType  ContextKey = "task_type"
)

func defaultContextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeyUserID,
		ContextKeyTraceID,
		ContextKeyClientIP,
		ContextKeyMethod,
		ContextKeyPath,
		ContextKeyTaskType,
	}
}

type LogConfig struct {
	Level          string `json:"level"`
	Format         string `json:"format"`
	Output         string `json:"output"`
	AddSource      bool   `json:"add_source"`
	Environment    string `json:"environment"`
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
}

// Logger is the process logger. The embedded slog.Logger is what components
// receive.
type Logger struct {
	*slog.Logger
}

// SetupLogger builds the process logger from APP_* environment values and
// installs it as the slog default.
func SetupLogger(level string, format string) *Logger {
	l := NewLogger(&LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      strings.EqualFold(level, "debug"),
		ServiceName:    os.Getenv("APP_NAME"),
		ServiceVersion: os.Getenv("APP_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
	})
	slog.SetDefault(l.Logger)
	return l
}

// NewLogger builds a logger. Records pass through the context handler, then
// the sanitizer, then the JSON or text output.
func NewLogger(config *LogConfig) *Logger {
	if config == nil {
		config = &LogConfig{Level: "info", Format: "json", Output: "stdout"}
	}
	return newLogger(config, openOutput(config.Output))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func newLogger(config *LogConfig, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return rewriteAttr(config.Format, a)
		},
	}

	var out slog.Handler
	if config.Format == "text" {
		out = NewPrettyTextHandler(w, opts)
	} else {
		out = slog.NewJSONHandler(w, opts)
	}
	handler := slog.Handler(NewContextHandler(NewSanitizationHandler(out), defaultContextKeys()))

	var static []slog.Attr
	for key, val := range map[string]string{
		"service_name": config.ServiceName,
		"version":      config.ServiceVersion,
		"env":          config.Environment,
	} {
		if val != "" {
			static = append(static, slog.String(key, val))
		}
	}
	if len(static) > 0 {
		handler = handler.WithAttrs(static)
	}

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openOutput resolves "stdout", "stderr" or "file:<path>". An unopenable file
// falls back to stdout.
func openOutput(output string) io.Writer {
	if output == "stderr" {
		return os.Stderr
	}
	if path, ok := strings.CutPrefix(output, "file:"); ok {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return f
		}
	}
	return os.Stdout
}

func extractContextAttrs(ctx context.Context, keys []ContextKey) []any {
	var attrs []any
	for _, key := range keys {
		switch v := ctx.Value(key).(type) {
		case nil:
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(string(key), v))
			}
		case int:
			attrs = append(attrs, slog.Int(string(key), v))
		case time.Duration:
			attrs = append(attrs, slog.Duration(string(key), v))
		case interface{ String() string }:
			attrs = append(attrs, slog.String(string(key), v.String()))
		default:
			attrs = append(attrs, slog.Any(string(key), v))
		}
	}
	return attrs
}

// rewriteAttr renders timestamps as RFC 3339 with nanoseconds, names the level
// "severity" in JSON and turns *_ms durations into milliseconds.
func rewriteAttr(format string, a slog.Attr) slog.Attr {
	switch {
	case a.Key == slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
		}
	case a.Key == slog.LevelKey && format != "text":
		a.Key = "severity"
	case strings.HasSuffix(a.Key, "_ms"):
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Milliseconds()))
		}
	}
	return a
}
