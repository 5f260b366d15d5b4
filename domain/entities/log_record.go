package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// LogLevel is the severity written in front of every log line
type LogLevel string

const (
	LogInfo  LogLevel = "INFO"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
	LogDebug LogLevel = "DEBUG"
)

// LogTimeFormat is ISO 8601 in UTC with millisecond precision
const LogTimeFormat = "2006-01-02T15:04:05.000Z"

// LogRecord is one line of the run log. Records are append-only.
type LogRecord struct {
	Level     LogLevel
	Timestamp time.Time
	Message   string
}

var logLinePattern = regexp.MustCompile(`^\[(INFO|WARN|ERROR|DEBUG)\] (\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z) - (.*)$`)

// String renders "[LEVEL] timestamp - message" without the trailing newline
func (r LogRecord) String() string {
	return fmt.Sprintf("[%s] %s - %s", r.Level, r.Timestamp.UTC().Format(LogTimeFormat), r.Message)
}

// ParseLogRecord parses a single line produced by LogRecord.String
func ParseLogRecord(line string) (LogRecord, error) {
	m := logLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return LogRecord{}, fmt.Errorf("malformed log line: %q", line)
	}
	ts, err := time.Parse(LogTimeFormat, m[2])
	if err != nil {
		return LogRecord{}, fmt.Errorf("malformed log timestamp: %w", err)
	}
	return LogRecord{Level: LogLevel(m[1]), Timestamp: ts, Message: m[3]}, nil
}
