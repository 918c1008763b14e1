package log

import (
	"context"
	"fmt"
	"log/slog"
)

// UserDataValue is a string that should be treated as user data e.g. a document key in an endpoint, and therefore
// tagged as such in the logs; both by 'slog' and when formatted with '%s'.
type UserDataValue string

func (u UserDataValue) String() string {
	return "<ud>" + string(u) + "</ud>"
}

func (u UserDataValue) LogValue() slog.Value {
	return slog.StringValue(u.String())
}

// UserData returns an Attr for a string value that should be treated as user data.
func UserData(key, value string) slog.Attr {
	return slog.Attr{Key: key, Value: UserDataValue(value).LogValue()}
}

// SlogLogger adapts a 'slog.Logger' so that it may be supplied anywhere a 'Logger' is expected.
type SlogLogger struct {
	Logger *slog.Logger
}

var _ Logger = SlogLogger{}

// Log formats the message and emits it through the underlying structured logger.
func (s SlogLogger) Log(level Level, format string, args ...any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Log(context.Background(), toSlogLevel(level), fmt.Sprintf(format, args...))
}

// toSlogLevel maps our levels onto the 'slog' levels; trace is mapped below debug and panic above error.
func toSlogLevel(level Level) slog.Level {
	switch level {
	case LevelTrace:
		return slog.LevelDebug - 4
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}

	return slog.LevelError + 4
}
