package sim

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/scdt-sim/scdt/sim/metrics"
	"github.com/scdt-sim/scdt/sim/trace"
)

// DefaultTransportKmPerTick is the distance a shipment covers in one tick
// when Config.TransportKmPerTick is zero.
const DefaultTransportKmPerTick = 800.0

// Config groups session parameters.
type Config struct {
	StartDate time.Time // date of tick 0 (required)
	Seed      int64     // master seed of the partitioned RNG

	// Echo prints "<date>:\t<message>" for every traced action to EchoOutput
	// (stdout when nil).
	Echo       bool
	EchoOutput io.Writer

	TraceLevel         trace.TraceLevel // "" records every action
	TransportKmPerTick float64          // shipment speed for delivery lead times

	Processor OrderProcessor    // nil means a RecordingProcessor
	Metrics   *metrics.Recorder // nil means a fresh private recorder
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.StartDate.IsZero() {
		return fmt.Errorf("start date must be set")
	}
	if c.TransportKmPerTick < 0 || math.IsNaN(c.TransportKmPerTick) || math.IsInf(c.TransportKmPerTick, 0) {
		return fmt.Errorf("transport km per tick must be a non-negative number, got %f", c.TransportKmPerTick)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	return nil
}

// LeadTime returns the ticks a shipment needs to cover km, at least one.
func (c Config) LeadTime(km float64) int64 {
	speed := c.TransportKmPerTick
	if speed == 0 {
		speed = DefaultTransportKmPerTick
	}
	return max(int64(math.Ceil(km/speed)), 1)
}
