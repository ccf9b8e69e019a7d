package xc

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xc-lang/xc/internal/trace"
)

// Config tunes a runtime instance. The zero value is not usable; call
// DefaultConfig and adjust.
type Config struct {
	// InitialHeapSize is the starting heap budget in bytes.
	InitialHeapSize int
	// MaxHeapSize caps heap growth; allocation beyond it fails.
	MaxHeapSize int
	// GrowthFactor scales the heap when usage crosses the high-pressure
	// watermarks. Must be greater than 1.
	GrowthFactor float64
	// GCThreshold is the used/heap ratio that triggers a collection.
	GCThreshold float64
	// MaxAllocBeforeGC forces a collection after this many allocations.
	MaxAllocBeforeGC int

	// Logger receives runtime diagnostics. Defaults to the standard logrus
	// logger when nil.
	Logger *logrus.Logger
}

// DefaultConfig returns the standard tuning: 1 MiB initial heap, 1 GiB cap,
// 1.5 growth, 0.7 trigger ratio, 10000 allocations per cycle.
func DefaultConfig() Config {
	return Config{
		InitialHeapSize:  1 << 20,
		MaxHeapSize:      1 << 30,
		GrowthFactor:     1.5,
		GCThreshold:      0.7,
		MaxAllocBeforeGC: 10000,
	}
}

func (c *Config) validate() error {
	if c.InitialHeapSize <= 0 {
		return errors.Errorf("initial heap size must be positive, got %d", c.InitialHeapSize)
	}
	if c.MaxHeapSize < c.InitialHeapSize {
		return errors.Errorf("max heap size %d below initial %d", c.MaxHeapSize, c.InitialHeapSize)
	}
	if c.GrowthFactor <= 1 {
		return errors.Errorf("growth factor must exceed 1, got %g", c.GrowthFactor)
	}
	if c.GCThreshold <= 0 || c.GCThreshold >= 1 {
		return errors.Errorf("gc threshold must be in (0,1), got %g", c.GCThreshold)
	}
	if c.MaxAllocBeforeGC <= 0 {
		return errors.Errorf("max allocations before gc must be positive, got %d", c.MaxAllocBeforeGC)
	}
	return nil
}

// Runtime owns a heap, a type registry, the dispatch machinery and the
// exception frame chain. All of it is single-goroutine state: a separate
// goroutine needs its own Runtime.
type Runtime struct {
	id  string
	log *logrus.Entry

	// Per-subsystem child loggers, derived once at construction.
	logGC  *logrus.Entry
	logExc *logrus.Entry

	reg *registry
	gc  *gcState

	// Exception machine state.
	frame           *exceptionFrame
	currentError    *Value
	uncaughtHandler *Value

	// Logical call stack for trace capture.
	stack *trace.Stack

	console *Value

	// abort terminates the host process on fatal failures. Overridable in
	// tests; defaults to os.Exit.
	abort func(code int)
}

// NewRuntime creates and initializes a runtime: the collector is set up from
// cfg and every built-in type registers itself. Pass nil for defaults.
func NewRuntime(cfg *Config) (*Runtime, error) {
	config := DefaultConfig()
	if cfg != nil {
		config = *cfg
	}
	if err := config.validate(); err != nil {
		return nil, errors.Wrap(err, "xc: invalid runtime config")
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	rt := &Runtime{
		id:    uuid.NewString(),
		reg:   newRegistry(),
		stack: trace.NewStack(),
		abort: exitProcess,
	}
	rt.log = logger.WithField("runtime_id", rt.id)
	rt.logGC = rt.log.WithField("component", "gc")
	rt.logExc = rt.log.WithField("component", "exception")
	rt.gc = newGCState(config)

	registerBuiltins(rt)

	rt.log.WithFields(logrus.Fields{
		"heap":        humanBytes(config.InitialHeapSize),
		"max_heap":    humanBytes(config.MaxHeapSize),
		"api_version": APIVersion,
	}).Debug("runtime initialized")
	return rt, nil
}

// ID returns the unique id of this runtime instance.
func (rt *Runtime) ID() string {
	return rt.id
}

// Close runs a final collection and the registered type cleaners. The
// runtime must not be used afterwards.
func (rt *Runtime) Close() {
	rt.console = nil
	rt.uncaughtHandler = nil
	rt.currentError = nil
	rt.GC()
	for _, t := range rt.reg.byID {
		if t.Cleaner != nil {
			t.Cleaner(rt)
		}
	}
	rt.log.Debug("runtime closed")
}

// New creates a value of the given type. Arguments are passed to the type's
// Create callback, which parses them per type: for example
// New(TypeNumber, 4.2) or New(TypeFunc, handler, arity, closure).
// Returns nil when the type is unknown or has no creator.
func (rt *Runtime) New(id TypeID, args ...any) *Value {
	t, ok := rt.reg.byID[id]
	if !ok || t.Create == nil {
		return nil
	}
	return t.Create(rt, args)
}

// TypeOf reports a value's type id; nil is null.
func (rt *Runtime) TypeOf(v *Value) TypeID {
	return v.TypeID()
}

// Is reports whether v has the given type id.
func (rt *Runtime) Is(v *Value, id TypeID) bool {
	return v.TypeID() == id
}

// Console returns the runtime's console object (log/error/warn/info). It is
// created on first use and pinned as permanent.
func (rt *Runtime) Console() *Value {
	if rt.console == nil {
		rt.console = newConsoleValue(rt)
	}
	return rt.console
}
