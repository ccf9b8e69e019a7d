// Package metrics exposes a runtime's garbage-collector statistics as a
// prometheus Collector. Hosts that already run a metrics endpoint register
// the collector alongside their own:
//
//	reg.MustRegister(metrics.NewCollector(rt))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	xc "github.com/xc-lang/xc"
)

const namespace = "xc"

// Collector reads a snapshot of the runtime's GC statistics on every
// scrape. It must be scraped from the goroutine owning the runtime, or while
// the runtime is quiescent; the runtime itself is single-threaded state.
type Collector struct {
	rt *xc.Runtime

	heapSize  *prometheus.Desc
	usedBytes *prometheus.Desc
	allocated *prometheus.Desc
	freed     *prometheus.Desc
	cycles    *prometheus.Desc
	avgPause  *prometheus.Desc
	lastPause *prometheus.Desc
}

// NewCollector builds a collector bound to rt. Every metric carries the
// runtime id as a label so multiple runtimes can share a registry.
func NewCollector(rt *xc.Runtime) *Collector {
	labels := prometheus.Labels{"runtime_id": rt.ID()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gc", name), help, nil, labels)
	}
	return &Collector{
		rt:        rt,
		heapSize:  desc("heap_bytes", "Current heap budget in bytes."),
		usedBytes: desc("used_bytes", "Bytes accounted to live objects."),
		allocated: desc("objects_allocated_total", "Objects allocated since runtime start."),
		freed:     desc("objects_freed_total", "Objects freed since runtime start."),
		cycles:    desc("cycles_total", "Completed collection cycles."),
		avgPause:  desc("pause_seconds_avg", "Average collection pause."),
		lastPause: desc("pause_seconds_last", "Most recent collection pause."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.heapSize
	ch <- c.usedBytes
	ch <- c.allocated
	ch <- c.freed
	ch <- c.cycles
	ch <- c.avgPause
	ch <- c.lastPause
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.rt.GCStats()
	ch <- prometheus.MustNewConstMetric(c.heapSize, prometheus.GaugeValue, float64(s.HeapSize))
	ch <- prometheus.MustNewConstMetric(c.usedBytes, prometheus.GaugeValue, float64(s.UsedMemory))
	ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(s.TotalAllocated))
	ch <- prometheus.MustNewConstMetric(c.freed, prometheus.CounterValue, float64(s.TotalFreed))
	ch <- prometheus.MustNewConstMetric(c.cycles, prometheus.CounterValue, float64(s.Cycles))
	ch <- prometheus.MustNewConstMetric(c.avgPause, prometheus.GaugeValue, s.AvgPause.Seconds())
	ch <- prometheus.MustNewConstMetric(c.lastPause, prometheus.GaugeValue, s.LastPause.Seconds())
}
