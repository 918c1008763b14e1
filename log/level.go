package log

// Level is the severity of a log line emitted by the client.
type Level uint8

const (
	// LevelTrace covers per attempt events, such as each request sent to a coordinator.
	LevelTrace Level = iota

	// LevelDebug covers request and response details, such as cursor batches being fetched.
	LevelDebug

	// LevelInfo covers connection lifecycle events, such as resolving the coordinators.
	LevelInfo

	// LevelWarning covers recoverable failures, such as failing over to another coordinator.
	LevelWarning

	// LevelError covers requests which failed on every coordinator.
	LevelError

	// LevelPanic is only used immediately before panicking.
	LevelPanic
)

// String returns the four character prefix used when printing a log line at this level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRAC"
	case LevelDebug:
		return "DEBU"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARN"
	case LevelError:
		return "ERRO"
	case LevelPanic:
		return "PNIC"
	}

	return "UNKN"
}
