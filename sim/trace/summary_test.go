package trace

import "testing"

func TestSummarize_NilTrace_ReturnsZeroSummary(t *testing.T) {
	s := Summarize(nil)
	if s.TotalRecords != 0 || s.UniqueProcesses != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if s.PerProcess == nil {
		t.Error("PerProcess must be non-nil")
	}
}

func TestSummarize_CountsPerProcess(t *testing.T) {
	// GIVEN a trace with two processes
	et := NewEventTrace(TraceLevelEvents)
	et.Append(Record{Tick: 0, ProcessID: "demand-1"})
	et.Append(Record{Tick: 7, ProcessID: "replenish-2-1"})
	et.Append(Record{Tick: 15, ProcessID: "demand-1"})

	// WHEN summarized
	s := Summarize(et)

	// THEN counts and tick range are reported
	if s.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", s.TotalRecords)
	}
	if s.UniqueProcesses != 2 {
		t.Errorf("UniqueProcesses = %d, want 2", s.UniqueProcesses)
	}
	if s.PerProcess["demand-1"] != 2 {
		t.Errorf("PerProcess[demand-1] = %d, want 2", s.PerProcess["demand-1"])
	}
	if s.FirstTick != 0 || s.LastTick != 15 {
		t.Errorf("tick range = [%d, %d], want [0, 15]", s.FirstTick, s.LastTick)
	}
}
