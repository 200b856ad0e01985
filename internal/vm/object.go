package vm

import "fmt"

// ObjKind identifies the concrete type of a heap object.
type ObjKind uint8

const (
	// OKString is an interned string.
	OKString ObjKind = iota
	// OKFunction is a compiled function body.
	OKFunction
	// OKNative is a host-provided function.
	OKNative
	// OKClosure is a function paired with captured upvalues.
	OKClosure
	// OKUpvalue is a captured variable cell.
	OKUpvalue
	// OKClass is a class with its method table.
	OKClass
	// OKInstance is an instance with its field table.
	OKInstance
	// OKBoundMethod is a receiver paired with a method closure.
	OKBoundMethod
)

// String returns a human-readable name for the object kind.
func (k ObjKind) String() string {
	switch k {
	case OKString:
		return "string"
	case OKFunction:
		return "function"
	case OKNative:
		return "native"
	case OKClosure:
		return "closure"
	case OKUpvalue:
		return "upvalue"
	case OKClass:
		return "class"
	case OKInstance:
		return "instance"
	case OKBoundMethod:
		return "bound method"
	default:
		return "ObjKind(?)"
	}
}

// Obj is the common header embedded as the first field of every heap
// object. The next link threads all live objects into the heap's
// intrusive list, the collector's sole enumeration path.
type Obj struct {
	kind   ObjKind
	marked bool
	next   Object
	size   int // bytes accounted against the heap at allocation
}

// Object is any heap-allocated runtime object.
type Object interface {
	fmt.Stringer
	header() *Obj
	// Kind reports the concrete object kind without a type switch.
	Kind() ObjKind
}

func (o *Obj) header() *Obj { return o }

// Kind reports the concrete object kind.
func (o *Obj) Kind() ObjKind { return o.kind }

// ObjString is an interned immutable string. Two strings with the same
// bytes are always the same object, so equality is pointer identity.
type ObjString struct {
	Obj
	S    string
	Hash uint32
}

func (s *ObjString) String() string { return s.S }

// ObjFunction is a compiled function: its bytecode chunk plus the
// metadata the VM needs to call it.
type ObjFunction struct {
	Obj
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString // nil for the top-level script
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.S + ">"
}

// NativeFn is the signature of host functions exposed to scripts.
type NativeFn func(args []Value) Value

// ObjNative wraps a host function. Arity -1 means variadic.
type ObjNative struct {
	Obj
	Arity int
	Fn    NativeFn
}

func (n *ObjNative) String() string { return "<native fn>" }

// ObjClosure pairs a function with the upvalues it captured. The
// upvalue slice length always equals the function's UpvalueCount.
type ObjClosure struct {
	Obj
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) String() string { return c.Function.String() }

// ObjUpvalue is a captured variable. While open it names a live VM
// stack slot; once closed it owns the value. Open upvalues form a
// singly-linked list ordered by descending slot.
type ObjUpvalue struct {
	Obj
	Slot   int // stack slot while open, -1 once closed
	Closed Value
	Next   *ObjUpvalue
}

func (u *ObjUpvalue) String() string { return "upvalue" }

// IsClosed reports whether the upvalue owns its value cell.
func (u *ObjUpvalue) IsClosed() bool { return u.Slot < 0 }

// ObjClass is a runtime class: a name and a method table keyed by
// interned method names.
type ObjClass struct {
	Obj
	Name    *ObjString
	Methods Table
}

func (c *ObjClass) String() string { return c.Name.S }

// ObjInstance is an instance of a class with its own field table.
type ObjInstance struct {
	Obj
	Class  *ObjClass
	Fields Table
}

func (i *ObjInstance) String() string { return i.Class.Name.S + " instance" }

// ObjBoundMethod pairs a receiver with a method closure so the method
// can be passed around as a value.
type ObjBoundMethod struct {
	Obj
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) String() string { return b.Method.String() }
