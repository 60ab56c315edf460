package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//Metrics collects pipeline counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	framesAnalysed   prometheus.Counter
	detectorBatches  prometheus.Counter
	detectorFrames   prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	analysisDuration prometheus.Histogram
}

//New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesAnalysed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "analyzer",
			Name:      "frames_analysed_total",
			Help:      "Frames that went through a complete analysis.",
		}),
		detectorBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "analyzer",
			Name:      "detector_batches_total",
			Help:      "Batches sent to the detector.",
		}),
		detectorFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "analyzer",
			Name:      "detector_frames_total",
			Help:      "Frames sent to the detector.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analyzer",
			Name:      "track_cache_lookups_total",
			Help:      "Track cache lookups by result (hit, miss, stale).",
		}, []string{"result"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analyzer",
			Name:      "analyses_total",
			Help:      "Finished analyses by outcome.",
		}, []string{"outcome"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "analyzer",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one video analysis.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	m.registry.MustRegister(m.framesAnalysed, m.detectorBatches, m.detectorFrames, m.cacheLookups, m.analyses, m.analysisDuration)
	return m
}

//Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveBatch(frames int) {
	if m == nil {
		return
	}
	m.detectorBatches.Inc()
	m.detectorFrames.Add(float64(frames))
}

func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

//ObserveAnalysis records one finished analysis
func (m *Metrics) ObserveAnalysis(frames int, took time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.analyses.WithLabelValues("failed").Inc()
		return
	}
	m.analyses.WithLabelValues("succeeded").Inc()
	m.framesAnalysed.Add(float64(frames))
	m.analysisDuration.Observe(took.Seconds())
}
