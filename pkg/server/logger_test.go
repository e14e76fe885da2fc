package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLogIsBounded(t *testing.T) {
	log := NewSessionLog(3)
	logger := slog.New(NewSessionLogHandler(log, uuid.New(), slog.DiscardHandler))

	for i := 1; i <= 5; i++ {
		logger.Info(fmt.Sprintf("entry %d", i))
	}

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 3", entries[0].Message)
	assert.Equal(t, "entry 5", entries[2].Message)
	assert.Equal(t, 3, entries[0].ID)
	assert.Equal(t, 5, entries[2].ID)
}

func TestSessionLogDefaultLimit(t *testing.T) {
	assert.Equal(t, 100, NewSessionLog(0).limit)
}

func TestSessionLogHandlerMetadata(t *testing.T) {
	log := NewSessionLog(10)
	var out bytes.Buffer
	id := uuid.New()
	logger := slog.New(NewSessionLogHandler(log, id, slog.NewTextHandler(&out, nil)))

	logger.With("model", "gemini").WithGroup("search").Warn("slow", "elapsed", 3, "error", errors.New("boom"))
	logger.Debug("dropped")

	entries := log.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "WARN", e.Level)
	assert.Equal(t, "slow", e.Message)
	assert.Equal(t, "gemini", e.Metadata["model"])
	assert.EqualValues(t, 3, e.Metadata["search.elapsed"])
	assert.Equal(t, "boom", e.Metadata["search.error"])

	assert.Contains(t, out.String(), "session_id="+id.String())
	assert.Contains(t, out.String(), "search.elapsed=3")
	assert.NotContains(t, out.String(), "dropped")
}

func TestSessionLogEntriesIsACopy(t *testing.T) {
	log := NewSessionLog(10)
	logger := slog.New(NewSessionLogHandler(log, uuid.New(), slog.DiscardHandler))
	logger.Info("one")

	entries := log.Entries()
	entries[0].Message = "changed"
	assert.Equal(t, "one", log.Entries()[0].Message)
}
