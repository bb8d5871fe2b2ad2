package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger tagged with the component that owns it. The
// component attribute is attached once; WithComponent replaces it rather
// than stacking a second one.
type Logger struct {
	*slog.Logger
	root      *slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	// JSON selects the JSON handler when Handler is nil.
	JSON    bool
	Handler slog.Handler
}

// DefaultConfig returns the text handler on stdout at info level.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		opts := &slog.HandlerOptions{Level: config.Level}
		if config.JSON {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
	}
	return newLogger(slog.New(handler), config.Component)
}

func newLogger(root *slog.Logger, component string) *Logger {
	l := &Logger{Logger: root, root: root, component: component}
	if component != "" {
		l.Logger = root.With(FieldComponent, component)
	}
	return l
}

// With returns a logger carrying extra attributes and the same component.
func (l *Logger) With(args ...any) *Logger {
	return newLogger(l.root.With(args...), l.component)
}

// WithComponent returns a logger for another component sharing l's attributes.
func (l *Logger) WithComponent(component string) *Logger {
	return newLogger(l.root, component)
}

// SetDefault makes logger the process-wide slog default, so packages that
// log through slog.*Context share its handler and level. The component is
// left off; those call sites name their own.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.root)
}

func (l *Logger) Component() string {
	return l.component
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to Info.
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
