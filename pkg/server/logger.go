package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one record of a session's activity log.
type LogEntry struct {
	ID        int            `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
}

// SessionLog keeps the most recent entries of one session in memory.
type SessionLog struct {
	mu      sync.Mutex
	limit   int
	nextID  int
	entries []LogEntry
}

func NewSessionLog(limit int) *SessionLog {
	if limit <= 0 {
		limit = 100
	}
	return &SessionLog{limit: limit}
}

func (l *SessionLog) append(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	e.ID = l.nextID
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (l *SessionLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// SessionLogHandler is a slog.Handler that records into a SessionLog and
// forwards every record to next.
type SessionLogHandler struct {
	Log       *SessionLog
	SessionID uuid.UUID
	next      slog.Handler
	attrs     []slog.Attr
	group     string
}

func NewSessionLogHandler(log *SessionLog, sessionID uuid.UUID, next slog.Handler) *SessionLogHandler {
	return &SessionLogHandler{
		Log:       log,
		SessionID: sessionID,
		next:      next.WithAttrs([]slog.Attr{slog.String("session_id", sessionID.String())}),
	}
}

func (h *SessionLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo || h.next.Enabled(ctx, level)
}

func (h *SessionLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelInfo {
		meta := make(map[string]any, len(h.attrs)+r.NumAttrs())
		for _, a := range h.attrs {
			meta[a.Key] = attrValue(a.Value)
		}
		r.Attrs(func(a slog.Attr) bool {
			meta[h.key(a.Key)] = attrValue(a.Value)
			return true
		})
		h.Log.append(LogEntry{
			Timestamp: r.Time,
			Level:     r.Level.String(),
			Message:   r.Message,
			Metadata:  meta,
		})
	}

	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *SessionLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	clone.next = h.next.WithAttrs(attrs)
	return &clone
}

func (h *SessionLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.key(name)
	clone.next = h.next.WithGroup(name)
	return &clone
}

func (h *SessionLogHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}
