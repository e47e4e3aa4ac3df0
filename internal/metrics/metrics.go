// Package metrics parses the text exposition reports scraped from benchmark
// nodes and aggregates them into a per-run summary.
//
// A node's report is expected to expose a benchmark_duration counter, a
// latency_s histogram (with its _sum and _count series), and a
// latency_squared_s counter. The orchestration layer hands the raw scrape
// text over; nothing here touches the network.
package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names expected in a node's scrape report.
const (
	metricDuration   = "benchmark_duration"
	metricLatency    = "latency_s"
	metricLatencySqr = "latency_squared_s"
)

// DataPoint is one scrape of one node, reduced to the figures the summary
// needs. Durations are truncated to whole seconds, matching the resolution
// the reports are exposed with.
type DataPoint struct {
	// Timestamp is the benchmark runtime at scrape time.
	Timestamp time.Duration `json:"timestamp"`
	// Buckets maps a latency bucket's upper bound to its cumulative count.
	Buckets map[string]uint64 `json:"buckets"`
	// Sum of the latencies of all finalized operations.
	Sum time.Duration `json:"sum"`
	// Count of finalized operations.
	Count uint64 `json:"count"`
	// SquaredSum of the latencies, kept for the standard deviation.
	SquaredSum time.Duration `json:"squaredSum"`
}

// TPS returns the throughput in operations per second.
func (d DataPoint) TPS() uint64 {
	secs := uint64(d.Timestamp / time.Second)
	if secs == 0 {
		return 0
	}
	return d.Count / secs
}

// AverageLatency returns the mean latency, at millisecond resolution.
func (d DataPoint) AverageLatency() time.Duration {
	if d.Count == 0 {
		return 0
	}
	millis := uint64(d.Sum/time.Millisecond) / d.Count
	return time.Duration(millis) * time.Millisecond
}

// StdevLatency returns the latency standard deviation:
// sqrt(squared_sum/count - avg^2).
func (d DataPoint) StdevLatency() time.Duration {
	if d.Count == 0 {
		return 0
	}
	firstTerm := float64(d.SquaredSum/time.Millisecond) / float64(d.Count)
	avg := float64(d.AverageLatency() / time.Millisecond)
	variance := firstTerm - avg*avg
	if variance <= 0 {
		return 0
	}
	return time.Duration(math.Sqrt(variance)) * time.Millisecond
}

// Parse extracts a DataPoint from a scrape report in the text exposition
// format. Missing metric families leave their fields zeroed; a report that
// does not parse at all is an error.
func Parse(text string) (DataPoint, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		return DataPoint{}, fmt.Errorf("parse scrape report: %w", err)
	}

	point := DataPoint{Buckets: make(map[string]uint64)}

	if mf, ok := families[metricDuration]; ok && len(mf.Metric) > 0 {
		point.Timestamp = time.Duration(uint64(sampleValue(mf.Metric[0]))) * time.Second
	}
	if mf, ok := families[metricLatency]; ok && len(mf.Metric) > 0 {
		if h := mf.Metric[0].GetHistogram(); h != nil {
			point.Sum = time.Duration(uint64(h.GetSampleSum())) * time.Second
			point.Count = h.GetSampleCount()
			for _, b := range h.GetBucket() {
				point.Buckets[bucketID(b.GetUpperBound())] = b.GetCumulativeCount()
			}
		}
	}
	if mf, ok := families[metricLatencySqr]; ok && len(mf.Metric) > 0 {
		point.SquaredSum = time.Duration(uint64(sampleValue(mf.Metric[0]))) * time.Second
	}

	return point, nil
}

// sampleValue reads a metric's scalar value regardless of whether the report
// declared it as a counter, gauge, or left it untyped.
func sampleValue(m *dto.Metric) float64 {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetUntyped() != nil:
		return m.GetUntyped().GetValue()
	default:
		return 0
	}
}

func bucketID(upperBound float64) string {
	if math.IsInf(upperBound, +1) {
		return "+Inf"
	}
	return strconv.FormatFloat(upperBound, 'g', -1, 64)
}
