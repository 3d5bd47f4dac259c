// Package progress carries structured pipeline events to a pluggable sink.
package progress

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Type identifies a pipeline event.
type Type string

const (
	ArchiveStarted     Type = "archive_started"
	ArchiveDone        Type = "archive_done"
	ArchiveDeleted     Type = "archive_deleted"
	ArchiveAdded       Type = "archive_added"
	FingerprintMatch   Type = "fingerprint_match"
	FingerprintFailed  Type = "fingerprint_failed"
	Scanning           Type = "scanning"
	ArchiveReadFailed  Type = "archive_read_failed"
	UnitDecompiling    Type = "unit_decompiling"
	DecompileFailed    Type = "decompile_failed"
	ResourceOnlyChange Type = "resource_only_change"
)

// Event is one progress notification.
type Event struct {
	Type    Type
	Archive string
	// Unit is the entry name, empty for archive-level events.
	Unit    string
	Message string
	Err     error
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// LogSink writes events through logrus.
type LogSink struct {
	entry *log.Entry
}

// NewLogSink creates a sink logging with the given entry, or the standard logger when nil.
func NewLogSink(entry *log.Entry) *LogSink {
	if entry == nil {
		entry = log.WithField("package", "progress")
	}
	return &LogSink{entry: entry}
}

func (s *LogSink) Emit(e Event) {
	entry := s.entry.WithField("event", string(e.Type))
	if e.Archive != "" {
		entry = entry.WithField("archive", e.Archive)
	}
	if e.Unit != "" {
		entry = entry.WithField("unit", e.Unit)
	}
	if e.Err != nil {
		entry = entry.WithError(e.Err)
	}

	switch e.Type {
	case FingerprintFailed, ArchiveReadFailed, DecompileFailed:
		entry.Warn(e.Message)
	case UnitDecompiling, Scanning, FingerprintMatch:
		entry.Debug(e.Message)
	default:
		entry.Info(e.Message)
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of the given type.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Multi fans events out to several sinks.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			s.Emit(e)
		}
	})
}
