package vm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"lox/internal/bytecode"
)

const (
	// FramesMax bounds call depth.
	FramesMax = 64
	// StackMax bounds the operand stack: 256 slots per frame.
	StackMax = FramesMax * 256
)

// ErrRuntime is returned by Run when the program raised a runtime
// error. The message and stack trace have already been written to the
// VM's error writer.
var ErrRuntime = errors.New("runtime error")

// CallFrame records one function activation: the closure being run,
// the instruction pointer into its chunk, and the stack slot that is
// the frame's slot zero.
type CallFrame struct {
	closure *ObjClosure
	ip      int
	base    int
}

// Options configure a VM instance.
type Options struct {
	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives runtime error reports. Defaults to os.Stderr.
	Stderr io.Writer
	// Trace prints the stack and each instruction before executing it.
	Trace bool
	// StackTraceOnError controls whether runtime errors are followed
	// by a frame-by-frame trace.
	StackTraceOnError bool
}

// VM is the stack machine. It owns the operand stack, the frame stack,
// the global table, and the open-upvalue list; the heap owns every
// object the machine touches.
type VM struct {
	heap *Heap

	stack    [StackMax]Value
	stackTop int

	frames     [FramesMax]CallFrame
	frameCount int

	globals      Table
	openUpvalues *ObjUpvalue
	initString   *ObjString

	stdout            io.Writer
	stderr            io.Writer
	trace             bool
	stackTraceOnError bool
}

// NewVM creates a machine bound to heap and registers it as a GC root
// source. The clock native is predefined.
func NewVM(heap *Heap, opts Options) *VM {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	vm := &VM{
		heap:              heap,
		stdout:            opts.Stdout,
		stderr:            opts.Stderr,
		trace:             opts.Trace,
		stackTraceOnError: opts.StackTraceOnError,
	}
	heap.AddRootSource(vm)
	vm.initString = heap.InternString("init")
	vm.defineNative("clock", 0, clockNative)
	return vm
}

// Heap returns the heap this VM allocates from.
func (vm *VM) Heap() *Heap { return vm.heap }

// MarkRoots implements RootSource: every stack slot, every frame's
// closure, the open upvalues, the globals, and the cached init name.
func (vm *VM) MarkRoots(m *Marker) {
	for i := 0; i < vm.stackTop; i++ {
		m.MarkValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		m.MarkObject(vm.frames[i].closure)
	}
	for u := vm.openUpvalues; u != nil; u = u.Next {
		m.MarkObject(u)
	}
	m.markTable(&vm.globals)
	if vm.initString != nil {
		m.MarkObject(vm.initString)
	}
}

// Run executes a compiled top-level script to completion.
func (vm *VM) Run(fn *ObjFunction) error {
	vm.push(ObjValue(fn))
	closure := vm.heap.NewClosure(fn)
	vm.pop()
	vm.push(ObjValue(closure))
	vm.call(closure, 0)
	return vm.run()
}

func (vm *VM) push(v Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// runtimeError reports a runtime error with a stack trace, innermost
// frame first, then resets the machine.
func (vm *VM) runtimeError(format string, args ...any) error {
	fmt.Fprintf(vm.stderr, format, args...)
	fmt.Fprintln(vm.stderr)

	if vm.stackTraceOnError {
		for i := vm.frameCount - 1; i >= 0; i-- {
			frame := &vm.frames[i]
			fn := frame.closure.Function
			// ip points one past the faulting instruction.
			line := fn.Chunk.Lines[frame.ip-1]
			if fn.Name == nil {
				fmt.Fprintf(vm.stderr, "[line %d] in script\n", line)
			} else {
				fmt.Fprintf(vm.stderr, "[line %d] in %s()\n", line, fn.Name.S)
			}
		}
	}

	vm.resetStack()
	return ErrRuntime
}

func (vm *VM) defineNative(name string, arity int, fn NativeFn) {
	// Both the name and the native go through the stack so a collection
	// triggered by the second allocation still sees the first.
	vm.push(ObjValue(vm.heap.InternString(name)))
	vm.push(ObjValue(vm.heap.NewNative(arity, fn)))
	vm.globals.Set(vm.stack[0].AsString(), vm.stack[1])
	vm.pop()
	vm.pop()
}

func (vm *VM) currentFrame() *CallFrame {
	return &vm.frames[vm.frameCount-1]
}

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.closure.Function.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readShort(frame *CallFrame) int {
	code := frame.closure.Function.Chunk.Code
	hi, lo := code[frame.ip], code[frame.ip+1]
	frame.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant(frame *CallFrame) Value {
	return frame.closure.Function.Chunk.Constants[vm.readByte(frame)]
}

func (vm *VM) readString(frame *CallFrame) *ObjString {
	return vm.readConstant(frame).AsString()
}

func (vm *VM) run() error {
	frame := vm.currentFrame()

	for {
		if vm.trace {
			vm.traceInstruction(frame)
		}
		op := bytecode.Op(vm.readByte(frame))
		switch op {
		case bytecode.OpConstant:
			vm.push(vm.readConstant(frame))

		case bytecode.OpNil:
			vm.push(NilValue())
		case bytecode.OpTrue:
			vm.push(BoolValue(true))
		case bytecode.OpFalse:
			vm.push(BoolValue(false))
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := int(vm.readByte(frame))
			vm.push(vm.stack[frame.base+slot])
		case bytecode.OpSetLocal:
			slot := int(vm.readByte(frame))
			vm.stack[frame.base+slot] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := vm.readString(frame)
			value, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.S)
			}
			vm.push(value)
		case bytecode.OpDefineGlobal:
			name := vm.readString(frame)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.OpSetGlobal:
			name := vm.readString(frame)
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.S)
			}

		case bytecode.OpGetUpvalue:
			slot := int(vm.readByte(frame))
			vm.push(vm.upvalueGet(frame.closure.Upvalues[slot]))
		case bytecode.OpSetUpvalue:
			slot := int(vm.readByte(frame))
			vm.upvalueSet(frame.closure.Upvalues[slot], vm.peek(0))

		case bytecode.OpGetProperty:
			instance, ok := vm.peek(0).Obj.(*ObjInstance)
			if vm.peek(0).Kind != VKObj || !ok {
				return vm.runtimeError("Only instances have properties.")
			}
			name := vm.readString(frame)
			if value, found := instance.Fields.Get(name); found {
				vm.pop() // instance
				vm.push(value)
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return err
			}
		case bytecode.OpSetProperty:
			instance, ok := vm.peek(1).Obj.(*ObjInstance)
			if vm.peek(1).Kind != VKObj || !ok {
				return vm.runtimeError("Only instances have fields.")
			}
			name := vm.readString(frame)
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop() // instance
			vm.push(value)

		case bytecode.OpGetSuper:
			name := vm.readString(frame)
			superclass := vm.pop().Obj.(*ObjClass)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolValue(Equal(a, b)))
		case bytecode.OpGreater:
			if err := vm.binaryCompare(op); err != nil {
				return err
			}
		case bytecode.OpLess:
			if err := vm.binaryCompare(op); err != nil {
				return err
			}

		case bytecode.OpAdd:
			if vm.peek(0).AsString() != nil && vm.peek(1).AsString() != nil {
				vm.concatenate()
			} else if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
				b := vm.pop().Num
				a := vm.pop().Num
				vm.push(NumberValue(a + b))
			} else {
				return vm.runtimeError("Operands must be two numbers or two strings.")
			}
		case bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Num
			a := vm.pop().Num
			switch op {
			case bytecode.OpSubtract:
				vm.push(NumberValue(a - b))
			case bytecode.OpMultiply:
				vm.push(NumberValue(a * b))
			case bytecode.OpDivide:
				vm.push(NumberValue(a / b))
			}

		case bytecode.OpNot:
			vm.push(BoolValue(vm.pop().IsFalsey()))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(NumberValue(-vm.pop().Num))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop())

		case bytecode.OpJump:
			offset := vm.readShort(frame)
			frame.ip += offset
		case bytecode.OpJumpIfFalse:
			offset := vm.readShort(frame)
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}
		case bytecode.OpLoop:
			offset := vm.readShort(frame)
			frame.ip -= offset

		case bytecode.OpCall:
			argc := int(vm.readByte(frame))
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
			frame = vm.currentFrame()
		case bytecode.OpInvoke:
			name := vm.readString(frame)
			argc := int(vm.readByte(frame))
			if err := vm.invoke(name, argc); err != nil {
				return err
			}
			frame = vm.currentFrame()
		case bytecode.OpSuperInvoke:
			name := vm.readString(frame)
			argc := int(vm.readByte(frame))
			superclass := vm.pop().Obj.(*ObjClass)
			if err := vm.invokeFromClass(superclass, name, argc); err != nil {
				return err
			}
			frame = vm.currentFrame()

		case bytecode.OpClosure:
			fn := vm.readConstant(frame).Obj.(*ObjFunction)
			closure := vm.heap.NewClosure(fn)
			// The closure stays on the stack while its upvalues are
			// captured: each capture may allocate and collect.
			vm.push(ObjValue(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(frame)
				index := int(vm.readByte(frame))
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = frame.base
			vm.push(result)
			frame = vm.currentFrame()

		case bytecode.OpClass:
			vm.push(ObjValue(vm.heap.NewClass(vm.readString(frame))))
		case bytecode.OpInherit:
			superclass, ok := vm.peek(1).Obj.(*ObjClass)
			if vm.peek(1).Kind != VKObj || !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).Obj.(*ObjClass)
			subclass.Methods.AddAll(&superclass.Methods)
			vm.pop() // subclass
		case bytecode.OpMethod:
			vm.defineMethod(vm.readString(frame))

		default:
			return vm.runtimeError("Unknown opcode %d.", byte(op))
		}
	}
}

func (vm *VM) binaryCompare(op bytecode.Op) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().Num
	a := vm.pop().Num
	if op == bytecode.OpGreater {
		vm.push(BoolValue(a > b))
	} else {
		vm.push(BoolValue(a < b))
	}
	return nil
}

// concatenate joins the two strings on top of the stack. The operands
// stay on the stack until the result is interned so a collection
// during interning still reaches them.
func (vm *VM) concatenate() {
	b := vm.peek(0).AsString()
	a := vm.peek(1).AsString()
	result := vm.heap.InternString(a.S + b.S)
	vm.pop()
	vm.pop()
	vm.push(ObjValue(result))
}

// callValue dispatches a call on any callee kind.
func (vm *VM) callValue(callee Value, argc int) error {
	if callee.Kind == VKObj {
		switch obj := callee.Obj.(type) {
		case *ObjBoundMethod:
			// The receiver takes over the callee's slot, which becomes
			// the frame's slot zero.
			vm.stack[vm.stackTop-argc-1] = obj.Receiver
			return vm.call(obj.Method, argc)
		case *ObjClass:
			vm.stack[vm.stackTop-argc-1] = ObjValue(vm.heap.NewInstance(obj))
			if init, ok := obj.Methods.Get(vm.initString); ok {
				return vm.call(init.Obj.(*ObjClosure), argc)
			}
			if argc != 0 {
				return vm.runtimeError("Expected 0 arguments but got %d.", argc)
			}
			return nil
		case *ObjClosure:
			return vm.call(obj, argc)
		case *ObjNative:
			if obj.Arity >= 0 && argc != obj.Arity {
				return vm.runtimeError("Expected %d arguments but got %d.", obj.Arity, argc)
			}
			result := obj.Fn(vm.stack[vm.stackTop-argc : vm.stackTop])
			vm.stackTop -= argc + 1
			vm.push(result)
			return nil
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

func (vm *VM) call(closure *ObjClosure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeError("Stack overflow.")
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.base = vm.stackTop - argc - 1
	return nil
}

// invoke is the property-call fast path. Fields shadow methods, so a
// field lookup comes first; a hit falls back to a plain value call.
func (vm *VM) invoke(name *ObjString, argc int) error {
	receiver := vm.peek(argc)
	instance, ok := receiver.Obj.(*ObjInstance)
	if receiver.Kind != VKObj || !ok {
		return vm.runtimeError("Only instances have methods.")
	}
	if field, found := instance.Fields.Get(name); found {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argc int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.S)
	}
	return vm.call(method.Obj.(*ObjClosure), argc)
}

// bindMethod replaces the receiver on top of the stack with a bound
// method for name, or errors if the class has no such method.
func (vm *VM) bindMethod(class *ObjClass, name *ObjString) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.S)
	}
	bound := vm.heap.NewBoundMethod(vm.peek(0), method.Obj.(*ObjClosure))
	vm.pop()
	vm.push(ObjValue(bound))
	return nil
}

func (vm *VM) defineMethod(name *ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).Obj.(*ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}

// captureUpvalue returns the open upvalue for a stack slot, creating
// and inserting one if no closure has captured that slot yet. The open
// list stays sorted by descending slot with at most one node per slot.
func (vm *VM) captureUpvalue(slot int) *ObjUpvalue {
	var prev *ObjUpvalue
	upvalue := vm.openUpvalues
	for upvalue != nil && upvalue.Slot > slot {
		prev = upvalue
		upvalue = upvalue.Next
	}
	if upvalue != nil && upvalue.Slot == slot {
		return upvalue
	}
	created := vm.heap.NewUpvalue(slot)
	created.Next = upvalue
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above the given slot,
// moving the stack value into the upvalue's owned cell.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Slot >= last {
		u := vm.openUpvalues
		u.Closed = vm.stack[u.Slot]
		u.Slot = -1
		vm.openUpvalues = u.Next
		u.Next = nil
	}
}

func (vm *VM) upvalueGet(u *ObjUpvalue) Value {
	if u.IsClosed() {
		return u.Closed
	}
	return vm.stack[u.Slot]
}

func (vm *VM) upvalueSet(u *ObjUpvalue, v Value) {
	if u.IsClosed() {
		u.Closed = v
		return
	}
	vm.stack[u.Slot] = v
}

// traceInstruction prints the stack and the instruction about to run.
func (vm *VM) traceInstruction(frame *CallFrame) {
	fmt.Fprint(vm.stderr, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.stderr, "[ %s ]", vm.stack[i])
	}
	fmt.Fprintln(vm.stderr)
	DisassembleInstruction(vm.stderr, &frame.closure.Function.Chunk, frame.ip)
}
