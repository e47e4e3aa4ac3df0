package metrics

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary renders a human-readable table of the run's aggregate figures,
// built from every scraper's latest data point.
func (c *Collector) Summary(instances int) string {
	points := c.latest()

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Benchmark Summary")
	t.AppendRows([]table.Row{
		{"Instances", instances},
		{"Duration", fmt.Sprintf("%d s", int(AggregateDuration(points).Seconds()))},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"TPS", fmt.Sprintf("%d tx/s", AggregateTPS(points))},
		{"Latency (avg)", fmt.Sprintf("%d ms", AggregateAverageLatency(points).Milliseconds())},
		{"Latency (stdev)", fmt.Sprintf("%d ms", AggregateStdevLatency(points).Milliseconds())},
	})
	return t.Render()
}
