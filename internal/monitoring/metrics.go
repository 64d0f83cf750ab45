// Package monitoring records how long each step of a table pipeline takes
// and how many rows it keeps.
package monitoring

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
)

// StepMetrics describes one finished pipeline step.
type StepMetrics struct {
	Step     string        `json:"step"`
	Duration time.Duration `json:"duration"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
}

// MetricsCollector collects StepMetrics. A disabled collector still runs
// the steps but keeps nothing.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []StepMetrics
	enabled bool
	now     func() time.Time
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{enabled: enabled, now: time.Now}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// Record runs fn, which returns the row count it produced, and stores its
// timing. Failed steps are not stored.
func (mc *MetricsCollector) Record(step string, rowsIn int, fn func() (int, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	start := mc.now()
	rowsOut, err := fn()
	if err != nil {
		return err
	}

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, StepMetrics{
		Step:     step,
		Duration: mc.now().Sub(start),
		RowsIn:   rowsIn,
		RowsOut:  rowsOut,
	})
	mc.mu.Unlock()
	return nil
}

// Metrics returns a copy of the collected metrics in recording order.
func (mc *MetricsCollector) Metrics() []StepMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	result := make([]StepMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// MetricsSummary aggregates the collected steps.
type MetricsSummary struct {
	Steps         int           `json:"steps"`
	TotalDuration time.Duration `json:"total_duration"`
	Slowest       string        `json:"slowest"`
	RowsDropped   int           `json:"rows_dropped"`
}

// Summary returns totals over the collected metrics.
func (mc *MetricsCollector) Summary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var summary MetricsSummary
	var slowest time.Duration
	for _, m := range mc.metrics {
		summary.Steps++
		summary.TotalDuration += m.Duration
		if m.RowsOut < m.RowsIn {
			summary.RowsDropped += m.RowsIn - m.RowsOut
		}
		if summary.Slowest == "" || m.Duration > slowest {
			summary.Slowest, slowest = m.Step, m.Duration
		}
	}
	return summary
}

// WriteTable renders the metrics and their total as a table.
func (mc *MetricsCollector) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"step", "rows in", "rows out", "duration"})
	for _, m := range mc.Metrics() {
		table.Append([]string{m.Step, fmt.Sprint(m.RowsIn), fmt.Sprint(m.RowsOut), m.Duration.String()})
	}
	summary := mc.Summary()
	table.SetFooter([]string{"total", "", fmt.Sprintf("-%d", summary.RowsDropped), summary.TotalDuration.String()})
	table.Render()
}
