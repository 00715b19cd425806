// Package trace provides event-trace recording for simulation runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import "fmt"

// Record captures one action taken by a process during a resumption.
type Record struct {
	Tick      int64
	Date      string // calendar date of Tick, YYYY-MM-DD
	ProcessID string
	Action    string
}

// String renders the record as a tab-separated line without newline.
func (r Record) String() string {
	return fmt.Sprintf("%d\t%s\t%s\t%s", r.Tick, r.Date, r.ProcessID, r.Action)
}
