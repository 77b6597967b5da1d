// Package metrics records multiplication statistics in a Prometheus registry
// and reads Go runtime memory figures.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "mpolymul"

// Recorder owns a private registry so that several runs in one process,
// such as tests, never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	multiplications *prometheus.CounterVec
	terms           *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	divisions       prometheus.Gauge
	threads         prometheus.Gauge
	operandTerms    *prometheus.GaugeVec
	heapAlloc       prometheus.Gauge
}

// NewRecorder registers every metric plus the Go runtime collector.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		multiplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "multiplications_total",
			Help:      "Multiplications run, by algorithm and outcome.",
		}, []string{"algorithm", "status"}),
		terms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_terms_total",
			Help:      "Terms produced, by algorithm.",
		}, []string{"algorithm"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "multiplication_duration_seconds",
			Help:      "Wall time of one multiplication.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"algorithm"}),
		divisions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "divisions",
			Help:      "Divisions planned for the last threaded product, 0 when it ran on one goroutine.",
		}),
		threads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threads",
			Help:      "Worker goroutines configured.",
		}),
		operandTerms: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operand_terms",
			Help:      "Terms in each operand.",
		}, []string{"operand"}),
		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Go heap in use after the run.",
		}),
	}
	r.registry.MustRegister(
		r.multiplications, r.terms, r.duration,
		r.divisions, r.threads, r.operandTerms, r.heapAlloc,
		collectors.NewGoCollector(),
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveMultiplication records one finished run.
func (r *Recorder) ObserveMultiplication(algorithm string, terms int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	r.multiplications.WithLabelValues(algorithm, status).Inc()
	if err != nil {
		return
	}
	r.terms.WithLabelValues(algorithm).Add(float64(terms))
	r.duration.WithLabelValues(algorithm).Observe(d.Seconds())
}

// SetJob records the shape of the job.
func (r *Recorder) SetJob(lenA, lenB, threads, divisions int) {
	r.operandTerms.WithLabelValues("a").Set(float64(lenA))
	r.operandTerms.WithLabelValues("b").Set(float64(lenB))
	r.threads.Set(float64(threads))
	r.divisions.Set(float64(divisions))
}

// ObserveMemory records a memory snapshot.
func (r *Recorder) ObserveMemory(s MemorySnapshot) {
	r.heapAlloc.Set(float64(s.HeapAlloc))
}

// WriteTextfile writes every metric to path in the text format read by the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
