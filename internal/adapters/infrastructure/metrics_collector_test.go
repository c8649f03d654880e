package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsCollector_ReturnsSharedInstance(t *testing.T) {
	first := NewMetricsCollector()
	second := NewMetricsCollector()

	require.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestMetricsCollector_RecordingDoesNotPanic(t *testing.T) {
	m := NewMetricsCollector()

	assert.NotPanics(t, func() {
		m.RecordProviderCall("stormglass", "success")
		m.RecordProviderCall("stormglass", "quota")
		m.RecordProviderCall("stormglass", "network")
		m.RecordSimulatedPoints(9)
		m.ObserveAggregation(120 * time.Millisecond)
		m.RecordHit()
		m.RecordMiss()
	})
}
