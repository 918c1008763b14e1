package log

import (
	"fmt"
	"io"
	"os"
	"time"
)

// StdoutLogger is the standard output logger for printing all logs into the commandline.
type StdoutLogger struct {
	// MinLevel is the lowest level which will be printed, lines below this level are dropped.
	MinLevel Level

	// out is where lines are written, defaults to 'os.Stdout'.
	out io.Writer
}

// Log method for the StdoutLogger which adds prefix dependant on the level and prints message inputted to terminal.
func (s StdoutLogger) Log(level Level, msg string, args ...any) {
	if level < s.MinLevel {
		return
	}

	out := s.out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, time.Now().Format(time.RFC3339Nano)+" "+level.String()+": "+fmt.Sprintf(msg, args...))
}
