package testlog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// CapturedRecord is a flattened log record, for assertions in tests.
type CapturedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CapturingHandler records every log record it handles.
type CapturingHandler struct {
	mu      *sync.Mutex
	records *[]*CapturedRecord
	attrs   []slog.Attr
}

var _ slog.Handler = (*CapturingHandler)(nil)

// CaptureLogger returns a logger whose records can be inspected via the returned handler.
func CaptureLogger(level slog.Level) (log.Logger, *CapturingHandler) {
	h := &CapturingHandler{mu: new(sync.Mutex), records: new([]*CapturedRecord)}
	return log.NewLogger(&levelFilter{level: level, Handler: h}), h
}

type levelFilter struct {
	level slog.Level
	slog.Handler
}

func (f *levelFilter) Enabled(_ context.Context, lvl slog.Level) bool {
	return lvl >= f.level
}

func (f *levelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilter{level: f.level, Handler: f.Handler.WithAttrs(attrs)}
}

func (h *CapturingHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *CapturingHandler) Handle(_ context.Context, r slog.Record) error {
	rec := &CapturedRecord{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, rec)
	return nil
}

func (h *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CapturingHandler{
		mu:      h.mu,
		records: h.records,
		attrs:   append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *CapturingHandler) WithGroup(string) slog.Handler {
	return h
}

// FindLog returns the first record at the given level whose message contains msg, or nil.
func (h *CapturingHandler) FindLog(level slog.Level, msg string) *CapturedRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range *h.records {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return r
		}
	}
	return nil
}
