package xc

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

// gcList is an intrusive doubly-linked heap list. Every live object is a
// member of exactly one list (white, gray or black); the double link keeps
// recoloring O(1).
type gcList struct {
	head  *Value
	count int
}

func (l *gcList) push(v *Value) {
	v.gcPrev = nil
	v.gcNext = l.head
	if l.head != nil {
		l.head.gcPrev = v
	}
	l.head = v
	l.count++
}

func (l *gcList) remove(v *Value) {
	if v.gcPrev != nil {
		v.gcPrev.gcNext = v.gcNext
	} else {
		l.head = v.gcNext
	}
	if v.gcNext != nil {
		v.gcNext.gcPrev = v.gcPrev
	}
	v.gcPrev = nil
	v.gcNext = nil
	l.count--
}

// GCStats is a snapshot of collector accounting.
type GCStats struct {
	HeapSize       int
	UsedMemory     int
	TotalAllocated int
	TotalFreed     int
	Cycles         int
	AvgPause       time.Duration
	LastPause      time.Duration
}

// gcState is the per-runtime collector context: configuration, heap
// accounting, the root set and the three color lists.
type gcState struct {
	cfg Config

	heapSize        int
	used            int
	allocationCount int
	totalAllocated  int
	totalFreed      int
	cycles          int
	totalPause      time.Duration
	lastPause       time.Duration
	enabled         bool

	// Root slots registered by the host. A set of pointers-to-slots so the
	// slot contents may change between cycles.
	roots mapset.Set[**Value]

	white gcList
	gray  gcList
	black gcList
}

func newGCState(cfg Config) *gcState {
	return &gcState{
		cfg:      cfg,
		heapSize: cfg.InitialHeapSize,
		enabled:  true,
		// The runtime is single-goroutine state; no locking on the root set.
		roots: mapset.NewThreadUnsafeSet[**Value](),
	}
}

// AllocObject hands out a zero-payload object with an initialized header:
// size includes the header, the type record is resolved, the reference count
// starts at one and the object is prepended to the white list. The type's
// Create callback is not called; that is the caller's job. Returns nil for
// an unknown type, a negative payload size, or when the heap budget cannot
// accommodate the object even after a forced collection.
func (rt *Runtime) AllocObject(id TypeID, payloadSize int) *Value {
	if payloadSize < 0 {
		return nil
	}
	t, ok := rt.reg.byID[id]
	if !ok {
		return nil
	}
	g := rt.gc
	size := headerSize + payloadSize

	if g.enabled {
		rt.maybeCollect(size)
	}

	// Heap budget is the allocation-failure surface: one forced collection,
	// then give up with a nil handle.
	if g.used+size > g.cfg.MaxHeapSize {
		rt.GC()
		if g.used+size > g.cfg.MaxHeapSize {
			rt.logGC.WithFields(logrus.Fields{
				"size": humanBytes(size),
				"used": humanBytes(g.used),
			}).Error("allocation failed: heap exhausted")
			return nil
		}
	}

	v := &Value{size: size, typ: t, refCount: 1, color: White}
	g.white.push(v)
	g.used += size
	g.totalAllocated++
	g.allocationCount++

	if g.used > g.heapSize {
		grown := int(float64(g.heapSize) * g.cfg.GrowthFactor)
		if grown > g.cfg.MaxHeapSize {
			grown = g.cfg.MaxHeapSize
		}
		g.heapSize = grown
	}
	return v
}

// maybeCollect applies the allocation-driven trigger policy. The critical
// watermark is checked before the high one so both remain reachable, and a
// collection run by either suppresses the ordinary triggers for this
// allocation.
func (rt *Runtime) maybeCollect(size int) {
	g := rt.gc
	pressure := float64(g.used+size) / float64(g.heapSize)

	switch {
	case pressure > 0.95:
		rt.GC()
		if float64(g.used+size)/float64(g.heapSize) > 0.95 {
			g.heapSize = g.cfg.MaxHeapSize
		}
		return
	case pressure > 0.9:
		rt.GC()
		if float64(g.used+size)/float64(g.heapSize) > 0.9 {
			grown := int(float64(g.heapSize) * g.cfg.GrowthFactor)
			if grown > g.cfg.MaxHeapSize {
				grown = g.cfg.MaxHeapSize
			}
			g.heapSize = grown
		}
		return
	}

	if g.allocationCount >= g.adaptiveThreshold() || pressure > g.cfg.GCThreshold {
		rt.GC()
	}
}

// adaptiveThreshold backs off when collections are unproductive and pushes
// harder when they reclaim more than half of what was allocated.
func (g *gcState) adaptiveThreshold() int {
	threshold := g.cfg.MaxAllocBeforeGC
	if g.cycles > 0 && g.totalAllocated > 0 {
		effectiveness := float64(g.totalFreed) / float64(g.totalAllocated)
		if effectiveness < 0.1 {
			threshold = int(float64(threshold) * 1.5)
		} else if effectiveness > 0.5 {
			threshold = int(float64(threshold) * 0.8)
		}
	}
	return threshold
}

// GC runs one full collection cycle: color reset, root marking, gray
// scanning, then the sweep. A disabled collector makes this a no-op.
func (rt *Runtime) GC() {
	g := rt.gc
	if !g.enabled {
		return
	}
	start := time.Now()

	rt.resetColors()
	rt.markRoots()
	rt.scanGray()
	freed := rt.sweep()

	g.lastPause = time.Since(start)
	g.totalPause += g.lastPause
	g.cycles++
	g.allocationCount = 0

	rt.logGC.WithFields(logrus.Fields{
		"freed": freed,
		"used":  humanBytes(g.used),
		"pause": g.lastPause,
	}).Debug("gc cycle")
}

// resetColors moves every black object back to the white list for the new
// cycle. Permanent objects keep their color and stay on the black list.
func (rt *Runtime) resetColors() {
	g := rt.gc
	v := g.black.head
	for v != nil {
		next := v.gcNext
		if v.color != Permanent {
			g.black.remove(v)
			v.color = White
			g.white.push(v)
		}
		v = next
	}
}

// markGray promotes a white object to gray. Gray, black and permanent
// objects are left alone, which is what terminates the trace; dead objects
// are stale references and are skipped.
func (rt *Runtime) markGray(v *Value) {
	if v == nil || v.dead || v.color != White {
		return
	}
	g := rt.gc
	g.white.remove(v)
	v.color = Gray
	g.gray.push(v)
}

// markRoots seeds the gray list from the runtime's internal references,
// the exception frame chain and every host-registered root slot.
func (rt *Runtime) markRoots() {
	rt.markGray(rt.currentError)
	rt.markGray(rt.uncaughtHandler)
	rt.markGray(rt.console)
	for f := rt.frame; f != nil; f = f.prev {
		rt.markGray(f.exception)
	}
	rt.gc.roots.Each(func(slot **Value) bool {
		rt.markGray(*slot)
		return false
	})
	// Permanent objects never enter the gray list, so their children are
	// traced directly; otherwise a value only reachable from a permanent
	// object would be swept.
	for v := rt.gc.black.head; v != nil; v = v.gcNext {
		if v.color == Permanent && v.typ.Mark != nil {
			v.typ.Mark(v, rt.markGray)
		}
	}
}

// scanGray drains the gray list: each popped object turns black and its
// type's Mark callback reports the outgoing references.
func (rt *Runtime) scanGray() {
	g := rt.gc
	for g.gray.head != nil {
		v := g.gray.head
		g.gray.remove(v)
		v.color = Black
		g.black.push(v)
		if v.typ.Mark != nil {
			v.typ.Mark(v, rt.markGray)
		}
	}
}

// sweep walks the white list. White objects with no external references are
// destroyed; white objects the host still holds a reference to survive the
// cycle as black. Destroy order is heap-list order and deliberately
// unspecified beyond that.
func (rt *Runtime) sweep() int {
	g := rt.gc
	freed := 0
	v := g.white.head
	for v != nil {
		if v.gcNext == v || v.refCount < 0 {
			rt.fatalf("heap corruption detected during sweep (type %s, refs %d)", v.typ.Name, v.refCount)
		}
		next := v.gcNext
		if v.refCount == 0 {
			rt.destroyObject(v)
			freed++
		} else {
			g.white.remove(v)
			v.color = Black
			g.black.push(v)
		}
		v = next
	}
	return freed
}

// destroyObject finalizes and unlinks a single object. Idempotent: a second
// call on the same object is a no-op.
func (rt *Runtime) destroyObject(v *Value) {
	if v.dead {
		return
	}
	v.dead = true
	if v.typ.Destroy != nil {
		v.typ.Destroy(rt, v)
	}
	switch v.color {
	case White:
		rt.gc.white.remove(v)
	case Gray:
		rt.gc.gray.remove(v)
	default:
		rt.gc.black.remove(v)
	}
	rt.gc.used -= v.size
	rt.gc.totalFreed++
	v.data = nil
}

// RefCount reports the external reference count of v; 0 for null.
func (rt *Runtime) RefCount(v *Value) int {
	return v.RefCount()
}

// AddRef takes an external strong reference on v.
func (rt *Runtime) AddRef(v *Value) {
	if v == nil {
		return
	}
	v.refCount++
}

// Release drops an external reference. Hitting zero destroys the object
// immediately, out of band of a full cycle; cycles are left to the tracing
// collector. Permanent objects ignore Release.
func (rt *Runtime) Release(v *Value) {
	if v == nil || v.dead || v.color == Permanent {
		return
	}
	if v.refCount > 0 {
		v.refCount--
	}
	if v.refCount == 0 {
		rt.destroyObject(v)
	}
}

// dropRef surrenders the creating reference without Release's immediate
// destruction: the object keeps living as long as it is reachable and
// becomes an ordinary sweep candidate otherwise. Runtime internals use this
// after storing a fresh value into a container.
func (rt *Runtime) dropRef(v *Value) {
	if v == nil || v.dead {
		return
	}
	if v.refCount > 0 {
		v.refCount--
	}
}

// MarkPermanent pins v for the lifetime of the runtime. Permanent objects
// never change color and are never swept.
func (rt *Runtime) MarkPermanent(v *Value) {
	if v == nil || v.color == Permanent {
		return
	}
	switch v.color {
	case White:
		rt.gc.white.remove(v)
	case Gray:
		rt.gc.gray.remove(v)
	default:
		rt.gc.black.remove(v)
	}
	v.color = Permanent
	rt.gc.black.push(v)
}

// AddRoot registers a slot the collector will always mark through. The slot
// may be reassigned between cycles; the current pointee is what survives.
func (rt *Runtime) AddRoot(slot **Value) {
	if slot == nil {
		return
	}
	rt.gc.roots.Add(slot)
}

// RemoveRoot unregisters a slot added with AddRoot.
func (rt *Runtime) RemoveRoot(slot **Value) {
	if slot == nil {
		return
	}
	rt.gc.roots.Remove(slot)
}

// EnableGC re-enables collection. Triggers accumulated while disabled are
// honored immediately, so this call may run a cycle.
func (rt *Runtime) EnableGC() {
	g := rt.gc
	g.enabled = true
	pressure := float64(g.used) / float64(g.heapSize)
	if g.allocationCount >= g.adaptiveThreshold() || pressure > g.cfg.GCThreshold {
		rt.GC()
	}
}

// DisableGC suspends collection. Allocation still proceeds.
func (rt *Runtime) DisableGC() {
	rt.gc.enabled = false
}

// GCEnabled reports whether the collector is running cycles.
func (rt *Runtime) GCEnabled() bool {
	return rt.gc.enabled
}

// GCStats returns a snapshot of the collector's accounting.
func (rt *Runtime) GCStats() GCStats {
	g := rt.gc
	stats := GCStats{
		HeapSize:       g.heapSize,
		UsedMemory:     g.used,
		TotalAllocated: g.totalAllocated,
		TotalFreed:     g.totalFreed,
		Cycles:         g.cycles,
		LastPause:      g.lastPause,
	}
	if g.cycles > 0 {
		stats.AvgPause = g.totalPause / time.Duration(g.cycles)
	}
	return stats
}

// PrintGCStats logs the current collector statistics at info level.
func (rt *Runtime) PrintGCStats() {
	s := rt.GCStats()
	rt.logGC.WithFields(logrus.Fields{
		"heap":      humanBytes(s.HeapSize),
		"used":      humanBytes(s.UsedMemory),
		"allocated": s.TotalAllocated,
		"freed":     s.TotalFreed,
		"cycles":    s.Cycles,
		"avg_pause": s.AvgPause,
	}).Info("gc statistics")
}
