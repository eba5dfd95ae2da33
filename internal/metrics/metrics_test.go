package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.TransactionRecorded("DSP", 4)
	m.TransactionRecorded("DSP", 6)
	m.MonthClosed("success", 3)
	m.MonthClosed("already_closed", 0)
	m.LoginAttempt("invalid")
	m.SetRateLimitBuckets(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("DSP")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.quantity.WithLabelValues("DSP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.monthCloses.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.monthCloses.WithLabelValues("already_closed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.forwardedRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("invalid")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.rateLimitBuckets))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TransactionRecorded("NEW", 1)
		m.MonthClosed("success", 1)
		m.LoginAttempt("success")
		m.SetRateLimitBuckets(1)
	})
}
