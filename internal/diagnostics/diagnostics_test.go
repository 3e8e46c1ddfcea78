package diagnostics

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServiceStartsWithInitEntry(t *testing.T) {
	s := newTestService()

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "System diagnostics initialized", entries[0].Message)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestLogAppendsInOrder(t *testing.T) {
	s := newTestService()
	s.Log(LevelWarn, "first")
	s.Log(LevelError, "second", errors.New("boom"))

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[1].Message)
	assert.Equal(t, LevelError, entries[2].Level)
	assert.Contains(t, entries[2].Details, "boom")
}

func TestLogStringDetailsPassThrough(t *testing.T) {
	s := newTestService()
	s.Log(LevelInfo, "msg", "plain detail")

	entries := s.Entries()
	assert.Equal(t, "plain detail", entries[len(entries)-1].Details)
}

func TestLogCyclicDetailsDoNotPanic(t *testing.T) {
	s := newTestService()

	cyclic := map[string]any{"name": "loop"}
	cyclic["self"] = cyclic

	require.NotPanics(t, func() {
		s.Log(LevelError, "cycle", cyclic)
	})

	entries := s.Entries()
	assert.Contains(t, entries[len(entries)-1].Details, circularMarker)
}

func TestSubscribeReceivesImmediateAndFollowing(t *testing.T) {
	s := newTestService()

	var calls [][]Entry
	unsubscribe := s.Subscribe(func(entries []Entry) {
		calls = append(calls, entries)
	})

	require.Len(t, calls, 1)
	s.Log(LevelInfo, "after subscribe")
	require.Len(t, calls, 2)
	assert.Len(t, calls[1], 2)

	unsubscribe()
	s.Log(LevelInfo, "after unsubscribe")
	assert.Len(t, calls, 2)
}

func TestClearEmptiesLog(t *testing.T) {
	s := newTestService()
	s.Log(LevelInfo, "something")
	s.Clear()
	assert.Empty(t, s.Entries())
}

func TestStringifyRedactsInternalObjects(t *testing.T) {
	type FirestoreWatcher struct {
		Target string
	}

	out := stringifySafely(map[string]any{"conn": FirestoreWatcher{Target: "x"}})
	assert.Contains(t, out, "[Internal System Object: FirestoreWatcher]")
}

func TestStringifyRendersErrorsAsObjects(t *testing.T) {
	out := stringifySafely(errors.New("denied"))
	assert.Contains(t, out, `"error"`)
	assert.Contains(t, out, "denied")
}

func TestStringifyUnserializableKinds(t *testing.T) {
	out := stringifySafely(map[string]any{"fn": func() {}, "ch": make(chan int)})
	assert.Contains(t, out, "[Unserializable: func]")
	assert.Contains(t, out, "[Unserializable: chan]")
}

func TestStringifyDepthLimit(t *testing.T) {
	deep := map[string]any{}
	current := deep
	for i := 0; i < 40; i++ {
		next := map[string]any{}
		current["next"] = next
		current = next
	}
	current["leaf"] = "end"

	out := stringifySafely(deep)
	assert.Contains(t, out, circularMarker)
	assert.NotContains(t, out, "end")
}
