// Package logging renders facade calls into a single message shape and
// emits them on a process-wide zerolog sink. Facades receive the Func
// callback and never touch the sink directly, so callers can swap in any
// implementation with the same signature.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Func is the logging callback injected into facades. Default is the
// implementation used when none is configured.
type Func func(level, action string, err error, fields ...Field)

// Field is one key=value pair attached to a log call.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// fileContentKey carries raw file payloads. Its value is replaced with a
// placeholder so binary content never reaches the logs.
const (
	fileContentKey  = "file_content"
	fileContentMask = "text"
)

var (
	sinkMu sync.RWMutex
	sink   = New(DefaultConfig())
)

// SetLogger replaces the process-wide sink used by Default.
func SetLogger(l zerolog.Logger) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	sink = l
}

// Logger returns the current process-wide sink.
func Logger() zerolog.Logger {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink
}

// Default renders the call with Message and emits it on the process-wide
// sink at the parsed level. Unknown levels fall back to info and
// "exception" maps to error, so it never panics on caller input.
func Default(level, action string, err error, fields ...Field) {
	logger := Logger()
	logger.WithLevel(parseLevel(level)).Msg(Message(level, action, err, fields...))
}

// Message builds the log line for a call:
//
//	{"Error performing " if error-like}{action}{" with "|" returned "}{key=value, ...}{"\nException: " err}
//
// The connector and field list appear only when fields are present, and
// the error suffix only when err is non-nil.
func Message(level, action string, err error, fields ...Field) string {
	var b strings.Builder
	isErr := isErrorLevel(level)
	if isErr {
		b.WriteString("Error performing ")
	}
	b.WriteString(action)
	if len(fields) > 0 {
		if isErr {
			b.WriteString(" with ")
		} else {
			b.WriteString(" returned ")
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Key)
			b.WriteByte('=')
			if f.Key == fileContentKey {
				b.WriteString(fileContentMask)
			} else {
				fmt.Fprintf(&b, "%v", f.Value)
			}
		}
	}
	if err != nil {
		b.WriteString("\nException: ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func isErrorLevel(level string) bool {
	return level == "error" || level == "exception"
}

func parseLevel(level string) zerolog.Level {
	if level == "exception" {
		return zerolog.ErrorLevel
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
