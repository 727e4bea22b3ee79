package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_ContextAccumulate   = "context.accumulate"
	Metric_Incr_ContextConsume      = "context.consume"
	Metric_Incr_ContextPassthrough  = "context.passthrough"
	Metric_Incr_ContextRejected     = "context.rejected"
	Metric_Incr_OutputsReserialized = "context.outputs.reserialized"

	Metric_Gauge_BufferedOutputs = "context.buffered.outputs"

	Metric_Timing_InvocationDuration = "invoke.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_ContextAccumulate,
			Labels: []string{"first"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ContextConsume,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ContextPassthrough,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ContextRejected,
			Labels: []string{"reason"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_OutputsReserialized,
			Labels: []string{},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_BufferedOutputs,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_InvocationDuration,
			Labels: []string{"mode"},
		},
	},
}
