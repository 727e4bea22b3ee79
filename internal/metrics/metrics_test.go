package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/Layr-Labs/txcontext/internal/metrics/metricsTypes"
	"github.com/stretchr/testify/assert"
)

type recordingClient struct {
	incrs   map[string]float64
	labels  map[string][]metricsTypes.MetricsLabel
	timings map[string]time.Duration
	err     error
}

func newRecordingClient() *recordingClient {
	return &recordingClient{
		incrs:   map[string]float64{},
		labels:  map[string][]metricsTypes.MetricsLabel{},
		timings: map[string]time.Duration{},
	}
}

func (r *recordingClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	r.incrs[name] += value
	r.labels[name] = labels
	return r.err
}

func (r *recordingClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	r.incrs[name] = value
	return r.err
}

func (r *recordingClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	r.timings[name] = value
	return r.err
}

func Test_MetricsSink(t *testing.T) {
	t.Run("Should fan out to every client", func(t *testing.T) {
		a, b := newRecordingClient(), newRecordingClient()
		sink, err := NewMetricsSink(&MetricsSinkConfig{}, []metricsTypes.IMetricsClient{a, b})
		assert.Nil(t, err)

		assert.Nil(t, sink.Incr(metricsTypes.Metric_Incr_ContextConsume, nil, 1))
		assert.Nil(t, sink.Timing(metricsTypes.Metric_Timing_InvocationDuration, time.Second, nil))

		for _, c := range []*recordingClient{a, b} {
			assert.Equal(t, float64(1), c.incrs[metricsTypes.Metric_Incr_ContextConsume])
			assert.Equal(t, time.Second, c.timings[metricsTypes.Metric_Timing_InvocationDuration])
		}
	})
	t.Run("Should prepend default labels", func(t *testing.T) {
		c := newRecordingClient()
		sink, _ := NewMetricsSink(&MetricsSinkConfig{
			DefaultLabels: []metricsTypes.MetricsLabel{{Name: "env", Value: "test"}},
		}, []metricsTypes.IMetricsClient{c})

		_ = sink.Incr(metricsTypes.Metric_Incr_ContextRejected, []metricsTypes.MetricsLabel{{Name: "reason", Value: "ContextEmpty"}}, 1)
		assert.Equal(t, []metricsTypes.MetricsLabel{
			{Name: "env", Value: "test"},
			{Name: "reason", Value: "ContextEmpty"},
		}, c.labels[metricsTypes.Metric_Incr_ContextRejected])
	})
	t.Run("Should return client errors", func(t *testing.T) {
		c := newRecordingClient()
		c.err = errors.New("boom")
		sink, _ := NewMetricsSink(&MetricsSinkConfig{}, []metricsTypes.IMetricsClient{c})

		assert.NotNil(t, sink.Gauge(metricsTypes.Metric_Gauge_BufferedOutputs, 1, nil))
	})
	t.Run("Should accept calls without clients", func(t *testing.T) {
		sink := NewNoopMetricsSink()
		assert.Nil(t, sink.Incr(metricsTypes.Metric_Incr_ContextConsume, nil, 1))
	})
}
