package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	once         sync.Once
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// InitLogging configures the global logger. Output goes to stderr, plus
// logFilePath when it is set. Only the first call has an effect.
func InitLogging(logFilePath, level string) {
	once.Do(func() {
		writers := []io.Writer{os.Stderr}
		if logFilePath != "" {
			file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
			if err != nil {
				os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
			} else {
				writers = append(writers, file)
			}
		}

		lvl, err := zerolog.ParseLevel(level)
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}

		globalLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
			With().Timestamp().Logger().Level(lvl)
		log.Logger = globalLogger
	})
}

// WithLogger returns ctx carrying the global logger with fields attached.
func WithLogger(ctx context.Context, fields map[string]any) context.Context {
	l := globalLogger.With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// getLogger extracts the logger from ctx, falling back to the global one.
func getLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

func DebugLog(ctx context.Context, msg string, args ...any) {
	getLogger(ctx).Debug().Msgf(msg, args...)
}

func InfoLog(ctx context.Context, msg string, args ...any) {
	getLogger(ctx).Info().Msgf(msg, args...)
}

func WarnLog(ctx context.Context, msg string, args ...any) {
	getLogger(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog logs at error level. A leading error argument is attached as
// the error field instead of being formatted into msg.
func ErrorLog(ctx context.Context, msg string, args ...any) {
	l := getLogger(ctx)
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			l.Error().Err(err).Msg(msg)
			return
		}
		l.Error().Msgf(msg, args...)
		return
	}
	l.Error().Msg(msg)
}
