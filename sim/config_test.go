package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_LeadTime(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		km    float64
		want  int64
	}{
		{"same place still takes a tick", 0, 0, 1},
		{"default speed", 0, 1600, 2},
		{"default speed rounds up", 0, 801, 2},
		{"custom speed", 100, 250, 3},
		{"exact multiple", 50, 100, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{StartDate: testStart, TransportKmPerTick: tt.speed}
			assert.Equal(t, tt.want, cfg.LeadTime(tt.km))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{StartDate: testStart}.Validate())
	assert.NoError(t, Config{StartDate: testStart, TraceLevel: "none"}.Validate())
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{StartDate: testStart, TransportKmPerTick: math.NaN()}.Validate())
	assert.Error(t, Config{StartDate: testStart, TransportKmPerTick: math.Inf(1)}.Validate())
	assert.Error(t, Config{StartDate: testStart, TraceLevel: "decisions"}.Validate())
}
