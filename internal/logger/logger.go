package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/signup-service/internal/pkg/context"
)

const serviceName = "signup-service"

// Logger is the process logger. It discards everything until Init or
// Configure runs, which keeps package tests quiet.
var Logger zerolog.Logger = zerolog.Nop()

type Options struct {
	Level  string // zerolog level name; unknown or empty means info
	Format string // "json" or "console" (default)
}

// Init configures the process logger from LOG_LEVEL and LOG_FORMAT.
func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	Configure(w, Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
}

// Configure replaces the process logger and zerolog's global one.
func Configure(w io.Writer, opts Options) {
	Logger = New(w, opts)
	zlog.Logger = Logger
}

func New(w io.Writer, opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	if opts.Format == "json" {
		return zerolog.New(w).Level(level).With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	}

	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// Ctx returns the process logger tagged with the request id on ctx, if any.
func Ctx(ctx context.Context) *zerolog.Logger {
	reqID := appCtx.GetRequestID(ctx)
	if reqID == "" {
		return &Logger
	}
	l := Logger.With().Str("request_id", reqID).Logger()
	return &l
}
