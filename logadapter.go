package sftpmount

import (
	"os"
	"time"

	oarklog "github.com/oarkflow/log"
)

// Logger is the structured-logging seam Session depends on. Grounded in
// oarkflow-sftp/pkg/log.Logger (the interface its own oarklog adapter
// implements) - a daemon the size of cmd/sftp-mount-bridge gets real
// structured logging rather than the teacher library's bare debugStream
// io.Writer, per SPEC_FULL.md 6.2.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// oarkLogger adapts github.com/oarkflow/log's chained Entry API to Logger.
type oarkLogger struct {
	logger oarklog.Logger
}

// NewLogger builds the production Logger, writing structured entries to
// stdout. The level argument ("debug", "info", "warn", "error") is not
// passed to the underlying logger, which keeps its own default level.
func NewLogger(level string) Logger {
	w := oarklog.MultiEntryWriter([]oarklog.Writer{&oarklog.IOWriter{Writer: os.Stdout}})

	l := oarklog.Logger{
		Writer:     &w,
		TimeFormat: time.RFC3339,
	}

	return &oarkLogger{logger: l}
}

func (l *oarkLogger) Debug(msg string, keyvals ...interface{}) { addKeyvals(l.logger.Debug(), msg, keyvals) }
func (l *oarkLogger) Info(msg string, keyvals ...interface{})  { addKeyvals(l.logger.Info(), msg, keyvals) }
func (l *oarkLogger) Warn(msg string, keyvals ...interface{})  { addKeyvals(l.logger.Warn(), msg, keyvals) }
func (l *oarkLogger) Error(msg string, keyvals ...interface{}) { addKeyvals(l.logger.Error(), msg, keyvals) }

func addKeyvals(e *oarklog.Entry, msg string, keyvals []interface{}) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, _ := keyvals[i].(string)
		e = e.Any(key, keyvals[i+1])
	}
	e.Msg(msg)
}

// debugWriter adapts Logger's Debug method to an io.Writer, as a fallback
// sink for any teacher code that still expects the old debugStream
// io.Writer convention (none currently does, but this keeps the seam cheap
// to restore if an adapted teacher file ever needs it again).
type debugWriter struct{ log Logger }

func (d debugWriter) Write(p []byte) (int, error) {
	d.log.Debug(string(p))
	return len(p), nil
}

// NoopLogger discards everything; used in tests that don't care about log
// output.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...interface{}) {}
func (NoopLogger) Info(string, ...interface{})  {}
func (NoopLogger) Warn(string, ...interface{})  {}
func (NoopLogger) Error(string, ...interface{}) {}
