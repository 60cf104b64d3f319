package helpers

import (
	"github.com/guardian/jobwaiter/common/models"
	"github.com/prometheus/client_golang/prometheus"
	"log"
	"time"
)

/**
summary of one wait, in the shape that gets exported
*/
type WaitMetrics struct {
	JobName        string
	Namespace      string
	Outcome        models.WaitOutcome
	Ticks          int
	Probes         int
	StreamsStarted int
	Elapsed        time.Duration
}

func buildWaitRegistry(m *WaitMetrics) (*prometheus.Registry, error) {
	constLabels := prometheus.Labels{"job": m.JobName, "namespace": m.Namespace}

	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "jobwaiter_poll_ticks_total",
		Help:        "Number of times the job status was polled",
		ConstLabels: constLabels,
	})
	probes := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "jobwaiter_container_probes_total",
		Help:        "Number of container state probes made while the job was running",
		ConstLabels: constLabels,
	})
	streams := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "jobwaiter_log_streams_started_total",
		Help:        "Number of log follow streams opened",
		ConstLabels: constLabels,
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "jobwaiter_wait_duration_seconds",
		Help:        "Time spent waiting for the job",
		ConstLabels: constLabels,
	})
	outcome := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "jobwaiter_outcome",
		Help:        "1 for the outcome the wait resolved to, 0 for the others",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{ticks, probes, streams, duration, outcome} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	ticks.Add(float64(m.Ticks))
	probes.Add(float64(m.Probes))
	streams.Add(float64(m.StreamsStarted))
	duration.Set(m.Elapsed.Seconds())
	for _, o := range models.AllOutcomes() {
		value := 0.0
		if o == m.Outcome {
			value = 1.0
		}
		outcome.WithLabelValues(o.String()).Set(value)
	}
	return reg, nil
}

/**
write the metrics in the node-exporter textfile format. The file is written atomically so a collector
never sees half of it
*/
func WriteMetricsFile(fileName string, m *WaitMetrics) error {
	reg, regErr := buildWaitRegistry(m)
	if regErr != nil {
		log.Printf("ERROR WriteMetricsFile could not set up metrics: %s", regErr)
		return regErr
	}
	writeErr := prometheus.WriteToTextfile(fileName, reg)
	if writeErr != nil {
		log.Printf("ERROR WriteMetricsFile could not write %s: %s", fileName, writeErr)
	}
	return writeErr
}
