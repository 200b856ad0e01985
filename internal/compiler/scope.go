package compiler

import (
	"lox/internal/bytecode"
	"lox/internal/token"
)

func (c *Compiler) beginScope() {
	c.fc.scopeDepth++
}

// endScope pops the scope's locals. Captured slots are hoisted into
// their upvalues instead of plainly popped.
func (c *Compiler) endScope() {
	fc := c.fc
	fc.scopeDepth--
	for fc.localCount > 0 && fc.locals[fc.localCount-1].depth > fc.scopeDepth {
		if fc.locals[fc.localCount-1].isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
		fc.localCount--
	}
}

// declareVariable records a local declaration. Globals are late-bound
// by name and need no declaration.
func (c *Compiler) declareVariable() {
	if c.fc.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := c.fc.localCount - 1; i >= 0; i-- {
		l := &c.fc.locals[i]
		if l.depth != -1 && l.depth < c.fc.scopeDepth {
			break
		}
		if l.name.Text == name.Text {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

// addLocal claims a slot for name, initially marked declared-not-defined.
func (c *Compiler) addLocal(name token.Token) {
	if c.fc.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	l := &c.fc.locals[c.fc.localCount]
	c.fc.localCount++
	l.name = name
	l.depth = -1
	l.isCaptured = false
}

// markInitialized flips the newest local from declared to defined.
func (c *Compiler) markInitialized() {
	if c.fc.scopeDepth == 0 {
		return
	}
	c.fc.locals[c.fc.localCount-1].depth = c.fc.scopeDepth
}

// parseVariable consumes an identifier and declares it; for globals it
// returns the name's constant index.
func (c *Compiler) parseVariable(errorMessage string) byte {
	c.consume(token.Ident, errorMessage)
	c.declareVariable()
	if c.fc.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

// defineVariable makes the declared variable available: locals become
// readable, globals are installed by name.
func (c *Compiler) defineVariable(global byte) {
	if c.fc.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.OpDefineGlobal, global)
}

// resolveLocal finds name among fc's locals, innermost first.
// Returns -1 when the name is not a local here.
func (c *Compiler) resolveLocal(fc *funcCompiler, name token.Token) int {
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.name.Text == name.Text {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue finds name in an enclosing function, threading it in
// through intermediate functions as needed. Returns -1 for globals.
func (c *Compiler) resolveUpvalue(fc *funcCompiler, name token.Token) int {
	if fc.enclosing == nil {
		return -1
	}
	if localIdx := c.resolveLocal(fc.enclosing, name); localIdx != -1 {
		fc.enclosing.locals[localIdx].isCaptured = true
		return c.addUpvalue(fc, uint8(localIdx), true)
	}
	if upIdx := c.resolveUpvalue(fc.enclosing, name); upIdx != -1 {
		return c.addUpvalue(fc, uint8(upIdx), false)
	}
	return -1
}

// addUpvalue registers a capture, reusing an existing entry for the
// same (index, isLocal) pair.
func (c *Compiler) addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	count := fc.function.UpvalueCount
	for i := 0; i < count; i++ {
		u := &fc.upvalues[i]
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if count == maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues[count] = upvalue{index: index, isLocal: isLocal}
	fc.function.UpvalueCount++
	return count
}
