// Package testlog provides a log handler for unit tests.
package testlog

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var useColorInTestLog = os.Getenv("FAUCET_TESTLOG_DISABLE_COLOR") != "true"

// Testing interface to log to. Standard Go testing.TB implements this.
type Testing interface {
	Logf(format string, args ...any)
	Helper()
	Name() string
}

// Logger returns a logger which logs to the unit test log of t.
// Output is line-buffered, so each record shows up as a single t.Logf call.
func Logger(t Testing, level slog.Level) log.Logger {
	w := &testWriter{t: t}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(w, level, useColorInTestLog))
}

// testWriter forwards complete lines to the test log.
type testWriter struct {
	t   Testing
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.t.Helper()
		w.t.Logf("%s", strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}
