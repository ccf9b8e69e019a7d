package xc

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// TestNewRuntimeDefaults boots a runtime on the default configuration.
func TestNewRuntimeDefaults(t *testing.T) {
	rt, err := NewRuntime(nil)
	assert.NilError(t, err)
	assert.Assert(t, rt.ID() != "")
	assert.Assert(t, rt.GCEnabled())

	stats := rt.GCStats()
	assert.Equal(t, stats.HeapSize, 1<<20)
	assert.Equal(t, stats.UsedMemory, 0)
	rt.Close()
}

// TestConfigValidation rejects every malformed tuning knob.
func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ZeroInitialHeap", func(c *Config) { c.InitialHeapSize = 0 }},
		{"MaxBelowInitial", func(c *Config) { c.MaxHeapSize = c.InitialHeapSize - 1 }},
		{"GrowthFactorOne", func(c *Config) { c.GrowthFactor = 1 }},
		{"ThresholdZero", func(c *Config) { c.GCThreshold = 0 }},
		{"ThresholdOne", func(c *Config) { c.GCThreshold = 1 }},
		{"ZeroAllocBudget", func(c *Config) { c.MaxAllocBeforeGC = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := NewRuntime(&cfg)
			assert.Assert(t, is.ErrorContains(err, "invalid runtime config"))
		})
	}
}

// TestRuntimeIsolation: two runtimes share nothing, including method
// registrations.
func TestRuntimeIsolation(t *testing.T) {
	a, err := NewRuntime(nil)
	assert.NilError(t, err)
	b, err := NewRuntime(nil)
	assert.NilError(t, err)

	assert.Assert(t, a.ID() != b.ID())

	a.RegisterMethod(TypeNumber, "only_in_a", func(rt *Runtime, self *Value, args ...*Value) *Value {
		return rt.NewBool(true)
	})
	assert.Assert(t, a.FindMethod(TypeNumber, "only_in_a") != nil)
	assert.Assert(t, is.Nil(b.FindMethod(TypeNumber, "only_in_a")))

	va := a.NewNumber(1)
	assert.Equal(t, b.GCStats().UsedMemory, 0)
	assert.Assert(t, va.Size() > 0)
}

// TestConsoleSuite drives the console object through Dot and Invoke.
func TestConsoleSuite(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hook := &captureHook{}
	logger.AddHook(hook)
	logger.SetLevel(logrus.DebugLevel)

	cfg := DefaultConfig()
	cfg.Logger = logger
	rt, err := NewRuntime(&cfg)
	assert.NilError(t, err)

	console := rt.Console()
	assert.Assert(t, rt.Is(console, TypeObject))

	logFn := rt.Dot(console, "log")
	assert.Assert(t, rt.Is(logFn, TypeFunc))
	rt.Invoke(logFn, rt.NewString("hello"), rt.NewNumber(42))

	warnFn := rt.Dot(console, "warn")
	rt.Invoke(warnFn, rt.NewString("careful"))

	assert.Assert(t, hook.contains(logrus.InfoLevel, "hello 42"))
	assert.Assert(t, hook.contains(logrus.WarnLevel, "careful"))

	// The console survives collections: it is permanent.
	rt.GC()
	assert.Assert(t, rt.Is(rt.Dot(console, "error"), TypeFunc))
}

// captureHook records log entries for assertions.
type captureHook struct {
	entries []*logrus.Entry
}

func (h *captureHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *captureHook) Fire(e *logrus.Entry) error {
	h.entries = append(h.entries, e)
	return nil
}

func (h *captureHook) contains(level logrus.Level, message string) bool {
	for _, e := range h.entries {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// TestComponentLogging verifies the per-subsystem child loggers: gc cycles
// carry component=gc and the uncaught path logs at error level with
// component=exception.
func TestComponentLogging(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hook := &captureHook{}
	logger.AddHook(hook)
	logger.SetLevel(logrus.DebugLevel)

	cfg := DefaultConfig()
	cfg.Logger = logger
	rt, err := NewRuntime(&cfg)
	assert.NilError(t, err)
	rt.abort = func(int) {}

	rt.GC()
	assert.Assert(t, hook.hasComponent(logrus.DebugLevel, "gc"))

	rt.Throw(rt.NewError("boom"))
	assert.Assert(t, hook.hasComponent(logrus.ErrorLevel, "exception"))
}

func (h *captureHook) hasComponent(level logrus.Level, component string) bool {
	for _, e := range h.entries {
		if e.Level == level && e.Data["component"] == component {
			return true
		}
	}
	return false
}

// TestAPIVersionParses guards the semver constant the extension gate
// depends on.
func TestAPIVersionParses(t *testing.T) {
	assert.Equal(t, apiVersion.String(), APIVersion)
}
