package logger

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Level is the severity tag printed in brackets on every line.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelError   Level = "ERROR"
	LevelWarn    Level = "WARN"
	LevelDebug   Level = "DEBUG"
	LevelSuccess Level = "SUCCESS"
	LevelStep    Level = "STEP"
	LevelTest    Level = "TEST"
)

// Status is the outcome reported by TestEnd.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// TimestampFormat matches ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Data      any
	HasData   bool
}

// String renders the entry without a trailing newline.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(e.Timestamp.UTC().Format(TimestampFormat))
	b.WriteString("] [")
	b.WriteString(string(e.Level))
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.HasData {
		b.WriteString(" - ")
		b.WriteString(encodeData(e.Data))
	}
	return b.String()
}

func newEntry(ts time.Time, level Level, message string, data []any) Entry {
	e := Entry{Timestamp: ts, Level: level, Message: message}
	switch len(data) {
	case 0:
	case 1:
		if data[0] != nil {
			e.Data, e.HasData = data[0], true
		}
	default:
		e.Data, e.HasData = data, true
	}
	return e
}

func encodeData(v any) string {
	v = normalize(v)

	out, err := marshal(v)
	if err != nil {
		out, _ = marshal(fmt.Sprintf("%+v", v))
	}
	return out
}

// marshal encodes v compactly with <, > and & left as they are.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// normalize replaces errors with their messages; encoded as-is they carry no
// exported fields and would render as {}.
func normalize(v any) any {
	switch t := v.(type) {
	case error:
		return t.Error()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	default:
		return v
	}
}
