package xc

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// MarkFunc is handed to a type's Mark callback; the callback must invoke it
// on every outgoing strong reference of the object being scanned.
type MarkFunc func(*Value)

// Method is a native method bound to a type. Dispatch passes the receiver
// and the caller's arguments as a slice; a nil result means "no value".
type Method func(rt *Runtime, self *Value, args ...*Value) *Value

// Lifecycle bundles the callbacks that define a type's behavior. Create and
// Destroy manage the payload, Mark drives GC tracing, Equal and Compare back
// the comparison facade. Initializer runs exactly once at registration.
type Lifecycle struct {
	Initializer func(rt *Runtime)
	Cleaner     func(rt *Runtime)
	Create      func(rt *Runtime, args []any) *Value
	Destroy     func(rt *Runtime, v *Value)
	Mark        func(v *Value, mark MarkFunc)
	Equal       func(rt *Runtime, a, b *Value) bool
	Compare     func(rt *Runtime, a, b *Value) int
	Flags       TypeFlags
}

// Type is a registered type record. Records live for the runtime's lifetime
// and must not be mutated after the first object of the type is allocated.
type Type struct {
	Name string
	ID   TypeID
	Lifecycle
}

// coreTypeIDs maps the hardcoded names to their stable ids.
var coreTypeIDs = map[string]TypeID{
	"null":      TypeNull,
	"boolean":   TypeBool,
	"number":    TypeNumber,
	"string":    TypeString,
	"exception": TypeException,
	"function":  TypeFunc,
	"array":     TypeArray,
	"object":    TypeObject,
	"vm":        TypeVM,
}

// registry owns the bidirectional name/id mapping and the per-type method
// tables. It is effectively frozen once the runtime starts allocating.
type registry struct {
	byName map[string]*Type
	byID   map[TypeID]*Type

	// Method tables, keyed by type id then method name. A map rather than
	// the linear chain of older designs; dispatch is O(1).
	methods map[TypeID]map[string]Method

	nextInternal TypeID
	nextUser     TypeID
	nextExt      TypeID
}

func newRegistry() *registry {
	return &registry{
		byName:       make(map[string]*Type),
		byID:         make(map[TypeID]*Type),
		methods:      make(map[TypeID]map[string]Method),
		nextInternal: TypeInternalBegin,
		nextUser:     TypeUserBegin,
		nextExt:      TypeExtensionBegin,
	}
}

var (
	// ErrTypeRangeFull reports that a registration range has no free ids.
	ErrTypeRangeFull = errors.New("xc: type id range exhausted")
	// ErrTypeNotFound reports an unknown type name or id.
	ErrTypeNotFound = errors.New("xc: type not found")
)

// RegisterType registers a named type and returns its id. Core names receive
// their hardcoded ids; "internal." and "ext." prefixed names allocate from
// their reserved ranges and everything else from the user range.
// Re-registering a known name is idempotent and returns the existing id
// without touching the stored lifecycle: the first registration wins.
// The lifecycle's Initializer runs exactly once, at first registration.
func (rt *Runtime) RegisterType(name string, lc Lifecycle) (TypeID, error) {
	if name == "" {
		return TypeUnknown, errors.New("xc: empty type name")
	}
	if t, ok := rt.reg.byName[name]; ok {
		return t.ID, nil
	}

	id, err := rt.reg.assignID(name)
	if err != nil {
		return TypeUnknown, errors.Wrapf(err, "registering type %q", name)
	}

	t := &Type{Name: name, ID: id, Lifecycle: lc}
	rt.reg.byName[name] = t
	rt.reg.byID[id] = t

	if lc.Initializer != nil {
		lc.Initializer(rt)
	}
	return id, nil
}

// RegisterExtension registers a type in the extension range (names must carry
// the "ext." prefix). A non-empty constraint is a semver range that the
// runtime's API version must satisfy; registration fails otherwise, so an
// extension compiled against a newer runtime surface refuses to load instead
// of misbehaving.
func (rt *Runtime) RegisterExtension(name, constraint string, lc Lifecycle) (TypeID, error) {
	if !strings.HasPrefix(name, "ext.") || len(name) == len("ext.") {
		return TypeUnknown, errors.Errorf("xc: extension type name %q must start with \"ext.\"", name)
	}
	if constraint != "" {
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return TypeUnknown, errors.Wrapf(err, "extension %q: bad version constraint", name)
		}
		if !c.Check(apiVersion) {
			return TypeUnknown, errors.Errorf(
				"xc: extension %q requires runtime %s, this runtime is %s", name, constraint, APIVersion)
		}
	}
	return rt.RegisterType(name, lc)
}

func (r *registry) assignID(name string) (TypeID, error) {
	if id, ok := coreTypeIDs[name]; ok {
		return id, nil
	}
	switch {
	case strings.HasPrefix(name, "internal."):
		return r.nextInRange(&r.nextInternal, TypeInternalEnd)
	case strings.HasPrefix(name, "ext."):
		return r.nextInRange(&r.nextExt, TypeExtensionEnd)
	default:
		return r.nextInRange(&r.nextUser, TypeUserEnd)
	}
}

func (r *registry) nextInRange(next *TypeID, end TypeID) (TypeID, error) {
	for *next <= end {
		id := *next
		*next++
		if _, taken := r.byID[id]; !taken {
			return id, nil
		}
	}
	return TypeUnknown, ErrTypeRangeFull
}

// GetTypeID resolves a type name; TypeUnknown when not registered.
func (rt *Runtime) GetTypeID(name string) TypeID {
	if t, ok := rt.reg.byName[name]; ok {
		return t.ID
	}
	return TypeUnknown
}

// TypeByID resolves a type record by id.
func (rt *Runtime) TypeByID(id TypeID) (*Type, error) {
	if t, ok := rt.reg.byID[id]; ok {
		return t, nil
	}
	return nil, errors.Wrapf(ErrTypeNotFound, "id %d", id)
}

// RegisterMethod binds a native method to a type. Registering a name twice
// shadows the earlier method; this is intentional and lets embedders override
// built-in behavior.
func (rt *Runtime) RegisterMethod(id TypeID, name string, fn Method) bool {
	if name == "" || fn == nil {
		return false
	}
	if _, ok := rt.reg.byID[id]; !ok {
		return false
	}
	table := rt.reg.methods[id]
	if table == nil {
		table = make(map[string]Method)
		rt.reg.methods[id] = table
	}
	table[name] = fn
	return true
}

// FindMethod looks up a method by (type id, name); nil when absent.
func (rt *Runtime) FindMethod(id TypeID, name string) Method {
	return rt.reg.methods[id][name]
}
