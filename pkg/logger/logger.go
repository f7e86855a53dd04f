package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// Logger is a slog.Logger with the domain event helpers in events.go
type Logger struct {
	*slog.Logger
}

// Options control where and how records are written
type Options struct {
	Level slog.Level
	JSON  bool
}

// New builds a logger writing to w. Records carry the request id stored on
// their context, when there is one.
func New(w io.Writer, opts Options) *Logger {
	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.Level == slog.LevelDebug,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return &Logger{Logger: slog.New(requestIDHandler{handler})}
}

// FromEnv uses LOG_LEVEL, and text output only in gin debug mode
func FromEnv() *Logger {
	return New(os.Stdout, Options{
		Level: ParseLevel(os.Getenv("LOG_LEVEL")),
		JSON:  gin.Mode() != gin.DebugMode,
	})
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

type requestIDKey struct{}

// WithRequestID returns a context whose log records are tagged with id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type requestIDHandler struct {
	slog.Handler
}

func (h requestIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestIDHandler{h.Handler.WithAttrs(attrs)}
}

func (h requestIDHandler) WithGroup(name string) slog.Handler {
	return requestIDHandler{h.Handler.WithGroup(name)}
}

// InfoWithContext logs msg with fields as attributes
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.InfoContext(ctx, msg, attrs(fields)...)
}

// ErrorWithContext logs msg with err and fields as attributes
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	l.ErrorContext(ctx, msg, append([]any{slog.Any("error", err)}, attrs(fields)...)...)
}

func attrs(fields map[string]interface{}) []any {
	out := make([]any, 0, len(fields))
	for k, v := range fields {
		out = append(out, slog.Any(k, v))
	}
	return out
}

var defaultLogger = FromEnv()

func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide logger, mainly for tests
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
