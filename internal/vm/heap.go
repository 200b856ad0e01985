package vm

import (
	"io"
	"os"
	"unsafe"
)

// RootSource enumerates GC roots. The VM is always a root source; the
// compiler registers itself while a compilation is in flight so
// half-built functions survive collections.
type RootSource interface {
	MarkRoots(m *Marker)
}

// HeapOptions configure collector behavior.
type HeapOptions struct {
	// Stress forces a full collection before every allocation.
	Stress bool
	// Log writes collector activity to LogW.
	Log  bool
	LogW io.Writer
	// GrowthFactor scales the next collection threshold after a cycle.
	// Zero means the default of 2.
	GrowthFactor int
	// NextGC is the initial collection threshold in bytes. Zero means
	// the default of 1 MiB.
	NextGC int
}

const (
	defaultNextGC       = 1024 * 1024
	defaultGrowthFactor = 2
)

// Heap owns every runtime object. Objects are threaded onto a single
// intrusive list; the collector is the only code that ever unlinks and
// releases them. The intern table holds weak references: it alone does
// not keep a string alive.
type Heap struct {
	objects        Object // head of the intrusive all-objects list
	strings        Table  // intern table, swept weakly
	bytesAllocated int
	nextGC         int
	growthFactor   int
	stress         bool
	log            bool
	logW           io.Writer

	grey    []Object
	sources []RootSource
}

// NewHeap creates an empty heap.
func NewHeap(opts HeapOptions) *Heap {
	gf := opts.GrowthFactor
	if gf <= 0 {
		gf = defaultGrowthFactor
	}
	next := opts.NextGC
	if next <= 0 {
		next = defaultNextGC
	}
	logW := opts.LogW
	if opts.Log && logW == nil {
		logW = os.Stderr
	}
	return &Heap{
		nextGC:       next,
		growthFactor: gf,
		stress:       opts.Stress,
		log:          opts.Log,
		logW:         logW,
	}
}

// AddRootSource registers an additional provider of GC roots.
func (h *Heap) AddRootSource(src RootSource) {
	h.sources = append(h.sources, src)
}

// RemoveRootSource unregisters a provider added with AddRootSource.
func (h *Heap) RemoveRootSource(src RootSource) {
	for i, s := range h.sources {
		if s == src {
			h.sources = append(h.sources[:i], h.sources[i+1:]...)
			return
		}
	}
}

// BytesAllocated reports the heap's current accounted size.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// ObjectCount walks the intrusive list and counts live objects.
func (h *Heap) ObjectCount() int {
	n := 0
	for o := h.objects; o != nil; o = o.header().next {
		n++
	}
	return n
}

// StringCount reports the number of interned strings.
func (h *Heap) StringCount() int { return h.strings.Len() }

// adopt runs the collector if due, then links obj into the object list
// and accounts its size. The collection happens before the link so a
// half-initialized object can never be enumerated.
func (h *Heap) adopt(obj Object, size int) {
	if h.stress || h.bytesAllocated+size > h.nextGC {
		h.Collect()
	}
	hdr := obj.header()
	hdr.next = h.objects
	hdr.size = size
	h.objects = obj
	h.bytesAllocated += size
}

// InternString returns the canonical string object for s, allocating
// one only if the content has never been seen.
func (h *Heap) InternString(s string) *ObjString {
	hash := hashString(s)
	if existing := h.strings.FindString(s, hash); existing != nil {
		return existing
	}
	str := &ObjString{Obj: Obj{kind: OKString}, S: s, Hash: hash}
	h.adopt(str, int(unsafe.Sizeof(*str))+len(s))
	h.strings.Set(str, NilValue())
	return str
}

// NewFunction allocates a blank function object.
func (h *Heap) NewFunction() *ObjFunction {
	fn := &ObjFunction{Obj: Obj{kind: OKFunction}}
	h.adopt(fn, int(unsafe.Sizeof(*fn)))
	return fn
}

// NewNative wraps a host function.
func (h *Heap) NewNative(arity int, fn NativeFn) *ObjNative {
	n := &ObjNative{Obj: Obj{kind: OKNative}, Arity: arity, Fn: fn}
	h.adopt(n, int(unsafe.Sizeof(*n)))
	return n
}

// NewClosure allocates a closure with room for the function's upvalues.
func (h *Heap) NewClosure(fn *ObjFunction) *ObjClosure {
	c := &ObjClosure{
		Obj:      Obj{kind: OKClosure},
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
	h.adopt(c, int(unsafe.Sizeof(*c))+fn.UpvalueCount*int(unsafe.Sizeof(uintptr(0))))
	return c
}

// NewUpvalue allocates an open upvalue for a stack slot.
func (h *Heap) NewUpvalue(slot int) *ObjUpvalue {
	u := &ObjUpvalue{Obj: Obj{kind: OKUpvalue}, Slot: slot}
	h.adopt(u, int(unsafe.Sizeof(*u)))
	return u
}

// NewClass allocates an empty class.
func (h *Heap) NewClass(name *ObjString) *ObjClass {
	c := &ObjClass{Obj: Obj{kind: OKClass}, Name: name}
	h.adopt(c, int(unsafe.Sizeof(*c)))
	return c
}

// NewInstance allocates an instance with no fields.
func (h *Heap) NewInstance(class *ObjClass) *ObjInstance {
	i := &ObjInstance{Obj: Obj{kind: OKInstance}, Class: class}
	h.adopt(i, int(unsafe.Sizeof(*i)))
	return i
}

// NewBoundMethod pairs a receiver with a method closure.
func (h *Heap) NewBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	b := &ObjBoundMethod{Obj: Obj{kind: OKBoundMethod}, Receiver: receiver, Method: method}
	h.adopt(b, int(unsafe.Sizeof(*b)))
	return b
}
