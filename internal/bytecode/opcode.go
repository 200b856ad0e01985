// Package bytecode defines the instruction set shared by the compiler,
// the virtual machine, and the disassembler.
package bytecode

// Op is a one-byte instruction opcode. Operands, where present, follow
// the opcode inline in the chunk's code array.
type Op byte

const (
	// OpConstant pushes constants[u8] onto the stack.
	OpConstant Op = iota
	// OpNil pushes nil.
	OpNil
	// OpTrue pushes true.
	OpTrue
	// OpFalse pushes false.
	OpFalse
	// OpPop discards the top of the stack.
	OpPop
	// OpGetLocal pushes the frame slot named by a u8 operand.
	OpGetLocal
	// OpSetLocal writes the top of the stack into a frame slot (no pop).
	OpSetLocal
	// OpGetGlobal looks up a global by name constant; undefined is a runtime error.
	OpGetGlobal
	// OpDefineGlobal installs the top of the stack under a name constant.
	OpDefineGlobal
	// OpSetGlobal assigns an existing global; undefined is a runtime error.
	OpSetGlobal
	// OpGetUpvalue pushes the current closure's upvalue at a u8 index.
	OpGetUpvalue
	// OpSetUpvalue writes the top of the stack through an upvalue (no pop).
	OpSetUpvalue
	// OpGetProperty reads an instance field, falling back to a bound method.
	OpGetProperty
	// OpSetProperty writes an instance field.
	OpSetProperty
	// OpGetSuper pops the superclass and pushes a method bound to the receiver.
	OpGetSuper
	// OpEqual compares the top two values for equality.
	OpEqual
	// OpGreater compares two numbers with >.
	OpGreater
	// OpLess compares two numbers with <.
	OpLess
	// OpAdd adds two numbers or concatenates two strings.
	OpAdd
	// OpSubtract subtracts two numbers.
	OpSubtract
	// OpMultiply multiplies two numbers.
	OpMultiply
	// OpDivide divides two numbers.
	OpDivide
	// OpNot replaces the top of the stack with its logical negation.
	OpNot
	// OpNegate negates a number in place.
	OpNegate
	// OpPrint pops and prints the top of the stack.
	OpPrint
	// OpJump adds a u16 offset to the instruction pointer.
	OpJump
	// OpJumpIfFalse jumps forward when the top of the stack is falsey (no pop).
	OpJumpIfFalse
	// OpLoop subtracts a u16 offset from the instruction pointer.
	OpLoop
	// OpCall invokes the value at stack depth u8 with u8 arguments.
	OpCall
	// OpInvoke is the property-call fast path: u8 name constant, u8 argc.
	OpInvoke
	// OpSuperInvoke is the super-method fast path: u8 name constant, u8 argc.
	OpSuperInvoke
	// OpClosure wraps a function constant, then reads two bytes per upvalue.
	OpClosure
	// OpCloseUpvalue hoists the top stack slot into its upvalue and pops.
	OpCloseUpvalue
	// OpReturn pops the return value and unwinds the current frame.
	OpReturn
	// OpClass pushes a new class named by a constant.
	OpClass
	// OpInherit copies the superclass's methods into the class above it.
	OpInherit
	// OpMethod installs the closure on top into the class below it.
	OpMethod

	// OpCount is the number of defined opcodes.
	OpCount
)

var opNames = [OpCount]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
}

// String returns the assembler mnemonic for the opcode.
func (op Op) String() string {
	if op < OpCount {
		return opNames[op]
	}
	return "OP_UNKNOWN"
}
