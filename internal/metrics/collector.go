package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Collector accumulates the data points scraped from each node over a run.
// It is safe for the concurrent appends of a scrape fan-out.
type Collector struct {
	mu       sync.Mutex
	scrapers map[string][]DataPoint
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{scrapers: make(map[string][]DataPoint)}
}

// Collect parses a scrape report and records it under scraperID.
func (c *Collector) Collect(scraperID, text string) error {
	point, err := Parse(text)
	if err != nil {
		return fmt.Errorf("scraper %s: %w", scraperID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrapers[scraperID] = append(c.scrapers[scraperID], point)
	return nil
}

// Points returns the data points recorded for scraperID, oldest first.
func (c *Collector) Points(scraperID string) []DataPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	points := c.scrapers[scraperID]
	out := make([]DataPoint, len(points))
	copy(out, points)
	return out
}

// latest returns the most recent data point of every scraper.
func (c *Collector) latest() []DataPoint {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.scrapers))
	for id := range c.scrapers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	points := make([]DataPoint, 0, len(ids))
	for _, id := range ids {
		if seq := c.scrapers[id]; len(seq) > 0 {
			points = append(points, seq[len(seq)-1])
		}
	}
	return points
}

// Save writes every recorded data point to path as JSON.
func (c *Collector) Save(path string) error {
	c.mu.Lock()
	data, err := json.MarshalIndent(struct {
		Scrapers map[string][]DataPoint `json:"scrapers"`
	}{Scrapers: c.scrapers}, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("serialize metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // results file
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// AggregateDuration is the run duration across data points: the max.
func AggregateDuration(points []DataPoint) time.Duration {
	var longest time.Duration
	for _, p := range points {
		if p.Timestamp > longest {
			longest = p.Timestamp
		}
	}
	return longest
}

// AggregateTPS is the fleet throughput: the sum of per-node throughputs.
func AggregateTPS(points []DataPoint) uint64 {
	var sum uint64
	for _, p := range points {
		sum += p.TPS()
	}
	return sum
}

// AggregateAverageLatency is the mean of the per-node average latencies.
func AggregateAverageLatency(points []DataPoint) time.Duration {
	if len(points) == 0 {
		return 0
	}
	var total time.Duration
	for _, p := range points {
		total += p.AverageLatency()
	}
	return (total / time.Duration(len(points))).Truncate(time.Millisecond)
}

// AggregateStdevLatency is the worst per-node latency deviation: the max.
func AggregateStdevLatency(points []DataPoint) time.Duration {
	var worst time.Duration
	for _, p := range points {
		if s := p.StdevLatency(); s > worst {
			worst = s
		}
	}
	return worst
}
