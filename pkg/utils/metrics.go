package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricCandidates     = "homolynx_candidates_total"
	MetricEncoded        = "homolynx_encoded_total"
	MetricEncodeFailures = "homolynx_encode_failures_total"
	MetricFiltered       = "homolynx_skeleton_filtered_total"
	MetricDroppedEntries = "homolynx_dropped_codepoints_total"
	MetricCombinations   = "homolynx_combinations"
	MetricBatchDuration  = "homolynx_batch_duration_seconds"
)

type MetricsCollector struct {
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	mu         sync.RWMutex
}

func NewMetricsCollector(enableRuntimeMetrics bool) *MetricsCollector {
	reg := prometheus.NewRegistry()

	if enableRuntimeMetrics {
		_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		_ = reg.Register(collectors.NewGoCollector())
	}

	return &MetricsCollector{
		registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// RegisterHomographMetrics registers every metric a generation run reports.
func (m *MetricsCollector) RegisterHomographMetrics() error {
	counters := []struct{ name, help string }{
		{MetricCandidates, "Variant candidates produced by the generators."},
		{MetricEncoded, "Candidates successfully encoded to punycode."},
		{MetricEncodeFailures, "Candidates skipped because IDNA encoding failed."},
		{MetricFiltered, "Candidates skipped by the skeleton filter."},
		{MetricDroppedEntries, "Wordlist codepoints dropped as invalid."},
	}
	for _, c := range counters {
		if err := m.RegisterCounter(c.name, c.help, "mode"); err != nil {
			return err
		}
	}
	if err := m.RegisterGauge(MetricCombinations, "Size of the combination space of the last domain.", "domain"); err != nil {
		return err
	}
	return m.RegisterHistogram(MetricBatchDuration, "Time spent processing one intensive batch.",
		prometheus.ExponentialBuckets(0.001, 4, 10))
}

func (m *MetricsCollector) RegisterCounter(name, help string, labelNames ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counters[name]; ok {
		return nil
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labelNames)
	if err := m.registry.Register(cv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			m.counters[name] = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	m.counters[name] = cv
	return nil
}

func (m *MetricsCollector) RegisterGauge(name, help string, labelNames ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.gauges[name]; ok {
		return nil
	}
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labelNames)
	if err := m.registry.Register(gv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			m.gauges[name] = are.ExistingCollector.(*prometheus.GaugeVec)
			return nil
		}
		return err
	}
	m.gauges[name] = gv
	return nil
}

func (m *MetricsCollector) RegisterHistogram(name, help string, buckets []float64, labelNames ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.histograms[name]; ok {
		return nil
	}
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labelNames)
	if err := m.registry.Register(hv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			m.histograms[name] = are.ExistingCollector.(*prometheus.HistogramVec)
			return nil
		}
		return err
	}
	m.histograms[name] = hv
	return nil
}

// The update methods below are no-ops on a nil collector or an unknown name.

func (m *MetricsCollector) IncCounter(name string, delta float64, labels prometheus.Labels) {
	if m == nil {
		return
	}
	m.mu.RLock()
	cv := m.counters[name]
	m.mu.RUnlock()
	if cv != nil {
		cv.With(labels).Add(delta)
	}
}

func (m *MetricsCollector) SetGauge(name string, value float64, labels prometheus.Labels) {
	if m == nil {
		return
	}
	m.mu.RLock()
	gv := m.gauges[name]
	m.mu.RUnlock()
	if gv != nil {
		gv.With(labels).Set(value)
	}
}

func (m *MetricsCollector) ObserveHistogram(name string, value float64, labels prometheus.Labels) {
	if m == nil {
		return
	}
	m.mu.RLock()
	hv := m.histograms[name]
	m.mu.RUnlock()
	if hv != nil {
		hv.With(labels).Observe(value)
	}
}

func (m *MetricsCollector) TimeFunc(histogramName string, labels prometheus.Labels, fn func()) {
	start := time.Now()
	fn()
	m.ObserveHistogram(histogramName, time.Since(start).Seconds(), labels)
}

// Snapshot sums every counter and gauge across label values, keyed by
// metric name. Histograms report their sample count.
func (m *MetricsCollector) Snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		var sum float64
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				sum += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				sum += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				sum += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = sum
	}
	return out, nil
}

func SortedMetricNames(snapshot map[string]float64) []string {
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartServerWithContext serves /metrics on addr until ctx is done.
func (m *MetricsCollector) StartServerWithContext(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("metrics server error: %w", err)
	}
}
