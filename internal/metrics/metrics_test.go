package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector("canon", reg)
	require.NoError(t, err)

	c.AttachSucceeded("data-carousel")
	c.AttachSucceeded("data-carousel")
	c.AttachFailed("data-tree")
	c.Disposed("data-carousel")
	c.EventEmitted("canon:reorder")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.attaches.WithLabelValues("data-carousel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("data-tree")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeRoots.WithLabelValues("data-carousel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues("canon:reorder")))
}

func TestCollectorDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector("canon", reg)
	require.NoError(t, err)
	_, err = NewCollector("canon", reg)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		r := Nop()
		r.AttachSucceeded("x")
		r.AttachFailed("x")
		r.Disposed("x")
		r.EventEmitted("x")
	})
}
