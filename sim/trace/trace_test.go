package trace

import (
	"bytes"
	"testing"
)

func TestEventTrace_Append_PreservesOrder(t *testing.T) {
	// GIVEN a trace recording events
	et := NewEventTrace(TraceLevelEvents)

	// WHEN records are appended
	et.Append(Record{Tick: 0, Date: "2025-01-01", ProcessID: "demand-1", Action: "order 1"})
	et.Append(Record{Tick: 15, Date: "2025-01-16", ProcessID: "demand-1", Action: "order 2"})

	// THEN they are kept in append order
	if et.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", et.Len())
	}
	if et.Records[1].Tick != 15 {
		t.Errorf("expected second record at tick 15, got %d", et.Records[1].Tick)
	}
}

func TestEventTrace_LevelNone_DropsRecords(t *testing.T) {
	et := NewEventTrace(TraceLevelNone)
	et.Append(Record{Tick: 1})
	if et.Len() != 0 {
		t.Errorf("expected no records at level none, got %d", et.Len())
	}
}

func TestEventTrace_EmptyLevel_DefaultsToEvents(t *testing.T) {
	et := NewEventTrace("")
	if et.Level != TraceLevelEvents {
		t.Errorf("expected level events, got %q", et.Level)
	}
}

func TestEventTrace_Bytes_TabSeparatedLines(t *testing.T) {
	et := NewEventTrace(TraceLevelEvents)
	et.Append(Record{Tick: 3, Date: "2025-01-04", ProcessID: "p", Action: "did x"})
	et.Append(Record{Tick: 4, Date: "2025-01-05", ProcessID: "q", Action: "did y"})

	want := "3\t2025-01-04\tp\tdid x\n4\t2025-01-05\tq\tdid y\n"
	if got := string(et.Bytes()); got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}

func TestEventTrace_NilIsSafe(t *testing.T) {
	var et *EventTrace
	et.Append(Record{})
	if et.Len() != 0 || et.Enabled() {
		t.Error("nil trace must be empty and disabled")
	}
	var buf bytes.Buffer
	if n, err := et.WriteTo(&buf); n != 0 || err != nil {
		t.Errorf("WriteTo on nil = (%d, %v), want (0, nil)", n, err)
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	for _, lvl := range []string{"", "none", "events"} {
		if !IsValidTraceLevel(lvl) {
			t.Errorf("expected %q to be valid", lvl)
		}
	}
	for _, lvl := range []string{"verbose", "actions"} {
		if IsValidTraceLevel(lvl) {
			t.Errorf("expected %q to be invalid", lvl)
		}
	}
}
