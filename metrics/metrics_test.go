package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"

	xc "github.com/xc-lang/xc"
)

// TestCollectorRegisters ensures the collector satisfies the prometheus
// interface and exports every series.
func TestCollectorRegisters(t *testing.T) {
	rt, err := xc.NewRuntime(nil)
	assert.NilError(t, err)

	reg := prometheus.NewPedanticRegistry()
	assert.NilError(t, reg.Register(NewCollector(rt)))

	count := testutil.CollectAndCount(NewCollector(rt))
	assert.Equal(t, count, 7)
}

// TestCollectorTracksStats checks that scraped values follow the runtime.
func TestCollectorTracksStats(t *testing.T) {
	rt, err := xc.NewRuntime(nil)
	assert.NilError(t, err)
	c := NewCollector(rt)

	used := testutil.ToFloat64(collectOne(t, c, "xc_gc_used_bytes"))
	assert.Equal(t, used, 0.0)

	v := rt.NewString("metric payload")
	assert.Assert(t, v != nil)

	used = testutil.ToFloat64(collectOne(t, c, "xc_gc_used_bytes"))
	assert.Assert(t, used > 0)

	rt.Release(v)
	rt.GC()

	cycles := testutil.ToFloat64(collectOne(t, c, "xc_gc_cycles_total"))
	assert.Assert(t, cycles >= 1)
}

// collectOne filters a single metric family out of the collector.
func collectOne(t *testing.T, c *Collector, name string) prometheus.Collector {
	t.Helper()
	return &filtered{inner: c, name: name}
}

type filtered struct {
	inner *Collector
	name  string
}

func (f *filtered) Describe(ch chan<- *prometheus.Desc) {
	f.inner.Describe(ch)
}

func (f *filtered) Collect(ch chan<- prometheus.Metric) {
	inner := make(chan prometheus.Metric, 16)
	go func() {
		f.inner.Collect(inner)
		close(inner)
	}()
	for m := range inner {
		if dtoMetricName(m) == f.name {
			ch <- m
		}
	}
}

func dtoMetricName(m prometheus.Metric) string {
	desc := m.Desc().String()
	// Desc.String() renders `Desc{fqName: "name", ...}`; extract the name.
	const prefix = `Desc{fqName: "`
	start := len(prefix)
	if len(desc) < start {
		return ""
	}
	rest := desc[start:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '"' {
			return rest[:i]
		}
	}
	return ""
}
