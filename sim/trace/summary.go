package trace

// TraceSummary aggregates statistics from an EventTrace.
type TraceSummary struct {
	TotalRecords    int
	UniqueProcesses int
	FirstTick       int64
	LastTick        int64
	PerProcess      map[string]int // process ID → number of records
}

// Summarize computes aggregate statistics from an EventTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *EventTrace) *TraceSummary {
	summary := &TraceSummary{
		PerProcess: make(map[string]int),
	}
	if et == nil || len(et.Records) == 0 {
		return summary
	}

	summary.TotalRecords = len(et.Records)
	summary.FirstTick = et.Records[0].Tick
	summary.LastTick = et.Records[len(et.Records)-1].Tick
	for _, r := range et.Records {
		summary.PerProcess[r.ProcessID]++
	}
	summary.UniqueProcesses = len(summary.PerProcess)

	return summary
}
