package logger

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

const (
	// FieldPackage is the name of the package that emits the log entry.
	FieldPackage = "package"

	// FieldFunction is the name of the function that emits the log entry.
	FieldFunction = "function"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	// ErrUnknownFormat happens when the log format is neither text nor json.
	ErrUnknownFormat = errors.New("unknown log format")
)

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Config
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// Log is a structured leveled logger.
//
// Error and Errorf take the error that caused the entry
// so that it is always attached to the entry as a field.
type Log interface {
	WithField(key string, value interface{}) Log
	WithFields(fields Fields) Log

	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Error(err error, args ...interface{})
	Errorf(err error, format string, args ...interface{})
}

// logrusLog
type logrusLog struct {
	entry *logrus.Entry
}

// New creates a new logrus backed logger.
func New(conf Config) (Log, error) {
	level := logrus.InfoLevel
	if conf.Level != "" {
		l, err := logrus.ParseLevel(conf.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	l := logrus.New()
	l.SetLevel(level)

	switch conf.Format {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, ErrUnknownFormat
	}

	if conf.Output != nil {
		l.SetOutput(conf.Output)
	} else {
		l.SetOutput(os.Stderr)
	}

	return &logrusLog{entry: logrus.NewEntry(l)}, nil
}

// NewNullLogger creates a discarding logger and a hook
// that records every entry. Used in tests.
func NewNullLogger() (Log, *logtest.Hook) {
	l, hook := logtest.NewNullLogger()
	return &logrusLog{entry: logrus.NewEntry(l)}, hook
}

func (l *logrusLog) WithField(key string, value interface{}) Log {
	return &logrusLog{entry: l.entry.WithField(key, value)}
}

func (l *logrusLog) WithFields(fields Fields) Log {
	return &logrusLog{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLog) Trace(args ...interface{}) {
	l.entry.Trace(args...)
}

func (l *logrusLog) Debug(args ...interface{}) {
	l.entry.Debug(args...)
}

func (l *logrusLog) Info(args ...interface{}) {
	l.entry.Info(args...)
}

func (l *logrusLog) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLog) Warn(args ...interface{}) {
	l.entry.Warn(args...)
}

func (l *logrusLog) Error(err error, args ...interface{}) {
	l.entry.WithError(err).Error(args...)
}

func (l *logrusLog) Errorf(err error, format string, args ...interface{}) {
	l.entry.WithError(err).Errorf(format, args...)
}
