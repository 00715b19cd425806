package trace

import (
	"bytes"
	"io"
)

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every action of every process.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to events
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// EventTrace collects records in execution order. Two runs of the same
// network with the same seed produce byte-identical traces.
type EventTrace struct {
	Level   TraceLevel
	Records []Record
}

// NewEventTrace creates an EventTrace ready for recording.
func NewEventTrace(level TraceLevel) *EventTrace {
	if level == "" {
		level = TraceLevelEvents
	}
	return &EventTrace{
		Level:   level,
		Records: make([]Record, 0),
	}
}

// Enabled reports whether records are kept.
func (et *EventTrace) Enabled() bool {
	return et != nil && et.Level != TraceLevelNone
}

// Append adds a record if tracing is enabled.
func (et *EventTrace) Append(r Record) {
	if !et.Enabled() {
		return
	}
	et.Records = append(et.Records, r)
}

// Len returns the number of records.
func (et *EventTrace) Len() int {
	if et == nil {
		return 0
	}
	return len(et.Records)
}

// WriteTo writes one line per record.
func (et *EventTrace) WriteTo(w io.Writer) (int64, error) {
	var total int64
	if et == nil {
		return 0, nil
	}
	for _, r := range et.Records {
		n, err := io.WriteString(w, r.String()+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the rendered trace.
func (et *EventTrace) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = et.WriteTo(&buf)
	return buf.Bytes()
}
