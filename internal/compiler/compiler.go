// Package compiler translates source text straight into bytecode in a
// single pass: a Pratt parser whose handlers emit instructions as they
// consume tokens. There is no AST; resolution, emission, and scope
// management interleave.
package compiler

import (
	"math"

	"fortio.org/safecast"

	"lox/internal/bytecode"
	"lox/internal/diag"
	"lox/internal/scanner"
	"lox/internal/source"
	"lox/internal/token"
	"lox/internal/vm"
)

// FunctionType distinguishes the kinds of function bodies being
// compiled; it drives receiver-slot reservation and return rules.
type FunctionType uint8

const (
	// TypeScript is the implicit top-level function.
	TypeScript FunctionType = iota
	// TypeFunction is an ordinary named function.
	TypeFunction
	// TypeMethod is a class method.
	TypeMethod
	// TypeInitializer is the init method of a class.
	TypeInitializer
)

const (
	maxLocals   = 256
	maxUpvalues = 256
	maxArgs     = 255
)

// local tracks a declared local variable within a function context.
// depth -1 means declared but not yet defined.
type local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// upvalue records a captured variable: an index into the enclosing
// function's locals (isLocal) or its upvalue array.
type upvalue struct {
	index   uint8
	isLocal bool
}

// funcCompiler is the per-function compilation context. Contexts form
// an explicit stack through enclosing so nested functions compile
// without hidden recursion state, and so the collector can enumerate
// every function still being built.
type funcCompiler struct {
	enclosing  *funcCompiler
	function   *vm.ObjFunction
	fnType     FunctionType
	locals     [maxLocals]local
	localCount int
	upvalues   [maxUpvalues]upvalue
	scopeDepth int
}

// classCompiler tracks the innermost class declaration being compiled.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// Compiler drives one compilation from source to a top-level function.
type Compiler struct {
	sc   *scanner.Scanner
	heap *vm.Heap
	bag  *diag.Bag

	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool

	fc *funcCompiler
	cc *classCompiler
}

// Compile translates file into a callable top-level function. On any
// compile error the diagnostics land in bag and the result is nil.
func Compile(file *source.File, heap *vm.Heap, bag *diag.Bag) *vm.ObjFunction {
	c := &Compiler{
		sc:   scanner.New(file),
		heap: heap,
		bag:  bag,
	}
	// Functions under construction are reachable only through the
	// compiler chain, so the chain is a root source while we run.
	heap.AddRootSource(c)
	defer heap.RemoveRootSource(c)

	c.beginFunction(TypeScript)
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endFunction()
	if c.hadError {
		return nil
	}
	return fn
}

// MarkRoots implements vm.RootSource: every function on the enclosing
// chain, which in turn keeps their constants (strings, nested
// functions) alive through blackening.
func (c *Compiler) MarkRoots(m *vm.Marker) {
	for fc := c.fc; fc != nil; fc = fc.enclosing {
		if fc.function != nil {
			m.MarkObject(fc.function)
		}
	}
}

// beginFunction pushes a fresh per-function context. Slot 0 is
// reserved: it holds the receiver in methods and is unnameable in
// ordinary functions.
func (c *Compiler) beginFunction(fnType FunctionType) {
	fc := &funcCompiler{
		enclosing: c.fc,
		fnType:    fnType,
	}
	c.fc = fc
	fc.function = c.heap.NewFunction()
	if fnType != TypeScript {
		fc.function.Name = c.heap.InternString(c.previous.Text)
	}

	slot := &fc.locals[fc.localCount]
	fc.localCount++
	slot.depth = 0
	if fnType == TypeMethod || fnType == TypeInitializer {
		slot.name = token.Token{Kind: token.KwThis, Text: "this"}
	} else {
		slot.name = token.Token{Kind: token.Ident, Text: ""}
	}
}

// endFunction seals the current function with its implicit return and
// pops the context.
func (c *Compiler) endFunction() *vm.ObjFunction {
	c.emitReturn()
	fn := c.fc.function
	c.fc = c.fc.enclosing
	return fn
}

func (c *Compiler) currentChunk() *vm.Chunk {
	return &c.fc.function.Chunk
}

// --- token plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.sc.Next()
		if c.current.Kind != token.Invalid {
			break
		}
		c.errorAtCurrent(c.current.Text)
	}
}

func (c *Compiler) consume(kind token.Kind, message string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(kind token.Kind) bool {
	return c.current.Kind == kind
}

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

// --- error reporting ---

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	d := diag.Diagnostic{
		Severity: diag.SevError,
		Line:     tok.Line,
		Message:  message,
	}
	switch tok.Kind {
	case token.EOF:
		d.AtEnd = true
	case token.Invalid:
		// scan errors carry the message, not a lexeme
	default:
		d.Lexeme = tok.Text
	}
	c.bag.Add(d)
	c.hadError = true
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

// synchronize discards tokens until a statement boundary so one error
// does not cascade into a flood.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.KwClass, token.KwFun, token.KwVar, token.KwFor,
			token.KwIf, token.KwWhile, token.KwPrint, token.KwReturn:
			return
		}
		c.advance()
	}
}

// --- emission ---

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op bytecode.Op) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitOps(op1, op2 bytecode.Op) {
	c.emitOp(op1)
	c.emitOp(op2)
}

func (c *Compiler) emitOpByte(op bytecode.Op, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

// emitJump writes a forward jump with a placeholder offset and returns
// the offset's position for patchJump.
func (c *Compiler) emitJump(op bytecode.Op) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

// patchJump backfills a forward jump to land on the next instruction.
func (c *Compiler) patchJump(offset int) {
	chunk := c.currentChunk()
	jump := len(chunk.Code) - offset - 2
	if jump > math.MaxUint16 {
		c.error("Too much code to jump over.")
		jump = 0
	}
	chunk.Code[offset] = byte(jump >> 8)
	chunk.Code[offset+1] = byte(jump)
}

// emitLoop writes a backward jump to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > math.MaxUint16 {
		c.error("Loop body too large.")
		offset = 0
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) emitReturn() {
	if c.fc.fnType == TypeInitializer {
		c.emitOpByte(bytecode.OpGetLocal, 0)
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.emitOp(bytecode.OpReturn)
}

// makeConstant appends v to the constant pool, enforcing the one-byte
// index limit. Equal values are not shared: each call takes a new slot.
func (c *Compiler) makeConstant(v vm.Value) byte {
	idx, err := safecast.Conv[uint8](c.currentChunk().AddConstant(v))
	if err != nil {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v vm.Value) {
	c.emitOpByte(bytecode.OpConstant, c.makeConstant(v))
}

// identifierConstant puts the name's string in the constant pool.
func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(vm.ObjValue(c.heap.InternString(name.Text)))
}
