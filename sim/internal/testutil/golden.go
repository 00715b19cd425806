// Package testutil provides shared test infrastructure for the simulator.
// It holds the golden-file and float assertion helpers used across sim/ and
// its sub-packages.
package testutil

import (
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir returns the directory holding golden files. The path is resolved
// relative to this source file: sim/internal/testutil/ → sim/testdata/golden/,
// so every package under sim/ shares one set of fixtures.
func GoldenDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", "golden")
}

// AssertGolden compares got with the golden file <name>.golden. Run the
// tests with -update to rewrite the file from got.
func AssertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir(t)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
