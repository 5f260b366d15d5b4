package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"quote_automation/domain/entities"

	"github.com/sirupsen/logrus"
)

const (
	// LogFileName is the run log inside a results directory
	LogFileName = "test-run.log"
	// DefaultLogPath is where the process-wide logger appends
	DefaultLogPath = "test-results/" + LogFileName
)

var (
	defaultOnce   sync.Once
	defaultLogger *logrus.Logger
)

// Default returns the process-wide logger, creating it on first use. It is
// never closed; every write opens and closes the file itself.
func Default() *logrus.Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewFileLogger(DefaultLogPath, logrus.DebugLevel)
	})
	return defaultLogger
}

// NewFileLogger creates a logger that appends "[LEVEL] timestamp - message"
// lines to path. Write failures are reported on stderr by logrus and never
// reach the caller.
func NewFileLogger(path string, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&AppendWriter{Path: path})
	logger.SetFormatter(&LineFormatter{})
	logger.SetLevel(level)
	return logger
}

// ForResultsDir returns the logger for a results directory: the process-wide
// one for the default directory, a dedicated file logger otherwise.
func ForResultsDir(dir string, level logrus.Level) *logrus.Logger {
	path := filepath.Join(dir, LogFileName)
	if path == filepath.Clean(DefaultLogPath) {
		logger := Default()
		logger.SetLevel(level)
		return logger
	}
	return NewFileLogger(path, level)
}

// ParseLevel accepts logrus level names plus "WARN"; empty means debug
func ParseLevel(name string) (logrus.Level, error) {
	if strings.TrimSpace(name) == "" {
		return logrus.DebugLevel, nil
	}
	return logrus.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
}

// AppendWriter appends each Write to Path, creating the parent directory
// when needed. The file is opened and closed per call.
type AppendWriter struct {
	Path string
}

var _ io.Writer = (*AppendWriter)(nil)

func (w *AppendWriter) Write(p []byte) (int, error) {
	if err := os.MkdirAll(filepath.Dir(w.Path), 0755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(p)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// LineFormatter renders entries as entities.LogRecord lines. Fields attached
// with WithField are appended as key=value pairs.
type LineFormatter struct{}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	msg := entry.Message
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(msg)
		for _, k := range keys {
			b.WriteString(" ")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(fmt.Sprint(entry.Data[k]))
		}
		msg = b.String()
	}

	record := entities.LogRecord{
		Level:     levelOf(entry.Level),
		Timestamp: entry.Time,
		Message:   strings.ReplaceAll(msg, "\n", " "),
	}
	return []byte(record.String() + "\n"), nil
}

func levelOf(l logrus.Level) entities.LogLevel {
	switch l {
	case logrus.DebugLevel, logrus.TraceLevel:
		return entities.LogDebug
	case logrus.WarnLevel:
		return entities.LogWarn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return entities.LogError
	default:
		return entities.LogInfo
	}
}
