package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Options struct {
	Level  string // debug|info|warn|error (default info)
	Format Format
	App    string
	Writer io.Writer // default os.Stdout
}

// zlogger envuelve zerolog detrás de la interfaz Logger para que los
// servicios no dependan del backend concreto.
type zlogger struct {
	zl zerolog.Logger
}

func New(opts Options) Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.Format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(w).Level(lvl).With().Timestamp()
	if app := strings.TrimSpace(opts.App); app != "" {
		zl = zl.Str("app", app)
	}

	return &zlogger{zl: zl.Logger()}
}

// NewFromEnv crea el logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME=med-cabinet (opcional)
func NewFromEnv() Logger {
	return New(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}

// Nop devuelve un logger que descarta todo (para tests).
func Nop() Logger {
	return &zlogger{zl: zerolog.Nop()}
}

func (l *zlogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &zlogger{zl: l.zl.With().Fields(fields).Logger()}
}

func (l *zlogger) Debug(msg string, fields map[string]any) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *zlogger) Info(msg string, fields map[string]any) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *zlogger) Warn(msg string, fields map[string]any) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *zlogger) Error(msg string, fields map[string]any) {
	l.zl.Error().Fields(fields).Msg(msg)
}
