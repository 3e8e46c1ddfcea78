// Package diagnostics provides a process-wide append-only event log consumed
// by the admin debug panel. Entries are held in memory only; nothing survives
// a restart.
package diagnostics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level tags a log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Entry is a single diagnostics event.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}

// Service collects entries and notifies subscribers on every change.
type Service struct {
	mu        sync.Mutex
	log       *slog.Logger
	entries   []Entry
	listeners map[int]func([]Entry)
	nextID    int
}

// NewService creates a diagnostics service mirroring entries to the given
// slog logger.
func NewService(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		log:       log,
		listeners: map[int]func([]Entry){},
	}
	s.Log(LevelInfo, "System diagnostics initialized", map[string]any{
		"startedAt": time.Now().Format(time.RFC3339),
	})
	return s
}

// Log appends an entry. Details may be any value; it is serialized
// defensively and never causes a panic, even for cyclic structures.
func (s *Service) Log(level Level, message string, details ...any) {
	var safeDetails string
	if len(details) > 0 && details[0] != nil {
		if str, ok := details[0].(string); ok {
			safeDetails = str
		} else {
			safeDetails = stringifySafely(details[0])
		}
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().Format("15:04:05"),
		Level:     level,
		Message:   message,
		Details:   safeDetails,
	}

	switch level {
	case LevelError:
		s.log.Error(message, slog.String("details", safeDetails))
	case LevelWarn:
		s.log.Warn(message, slog.String("details", safeDetails))
	default:
		s.log.Info(message, slog.String("details", safeDetails))
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	snapshot := append([]Entry(nil), s.entries...)
	listeners := make([]func([]Entry), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// Entries returns a copy of the current log.
func (s *Service) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Subscribe registers a listener invoked with the full log on every change.
// The listener is called once immediately with the current entries. The
// returned function removes the subscription.
func (s *Service) Subscribe(fn func([]Entry)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	snapshot := append([]Entry(nil), s.entries...)
	s.mu.Unlock()

	fn(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Clear drops all entries and notifies subscribers.
func (s *Service) Clear() {
	s.mu.Lock()
	s.entries = nil
	listeners := make([]func([]Entry), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
}
