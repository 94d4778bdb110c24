package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recordStore is shared by a handler and every handler derived from it.
type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler is a slog.Handler that keeps records in memory.
type CaptureHandler struct {
	store *recordStore
	attrs []slog.Attr
	group string
	t     testing.TB
}

// NewCaptureHandler returns a handler that also echoes records to t.Logf
// when t is not nil.
func NewCaptureHandler(t testing.TB) *CaptureHandler {
	return &CaptureHandler{store: &recordStore{}, t: t}
}

// NewTestLogger returns a logger backed by a fresh CaptureHandler.
func NewTestLogger(t testing.TB) (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler(t)
	return slog.New(h), h
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	c := *h
	if c.group != "" {
		name = c.group + "." + name
	}
	c.group = name
	return &c
}

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]LogRecord, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// Find returns the records whose message contains msg.
func (h *CaptureHandler) Find(msg string) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if strings.Contains(r.Message, msg) {
			out = append(out, r)
		}
	}
	return out
}

// AtLevel returns the records logged at level.
func (h *CaptureHandler) AtLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Values returns the value of key for every record carrying it, in order.
func (h *CaptureHandler) Values(key string) []any {
	var out []any
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok {
			out = append(out, v)
		}
	}
	return out
}
