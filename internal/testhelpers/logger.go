// Package testhelpers has logging helpers shared by the tests.
package testhelpers

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/myrjola/interrogation/internal/logging"
)

// NewLogger creates a new logger with the given log sink such as io.Discard.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}

// NewTestLogger routes log records to t.Log so that they only show up for failing or verbose tests.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return NewLogger(NewTestWriter(t))
}

// TestWriter is an io.Writer that logs every complete line with t.Log.
type TestWriter struct {
	t   testing.TB
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewTestWriter(t testing.TB) *TestWriter {
	return &TestWriter{t: t} //nolint:exhaustruct // zero mutex and buffer.
}

func (w *TestWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.Write(line)
			return len(p), nil
		}
		w.t.Log(string(bytes.TrimRight(line, "\n")))
	}
}
