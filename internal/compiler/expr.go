package compiler

import (
	"strconv"

	"lox/internal/bytecode"
	"lox/internal/token"
	"lox/internal/vm"
)

// parsePrecedence parses expressions at or above the given binding
// power: one prefix handler, then infix handlers while they bind at
// least as tightly.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.previous.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).prec {
		c.advance()
		getRule(c.previous.Kind).infix(c, canAssign)
	}

	if canAssign && c.match(token.Eq) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RParen, "Expect ')' after expression.")
}

func (c *Compiler) number(_ bool) {
	n, _ := strconv.ParseFloat(c.previous.Text, 64)
	c.emitConstant(vm.NumberValue(n))
}

func (c *Compiler) stringLit(_ bool) {
	// Trim the surrounding quotes; there are no escape sequences.
	text := c.previous.Text[1 : len(c.previous.Text)-1]
	c.emitConstant(vm.ObjValue(c.heap.InternString(text)))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Kind {
	case token.KwFalse:
		c.emitOp(bytecode.OpFalse)
	case token.KwTrue:
		c.emitOp(bytecode.OpTrue)
	case token.KwNil:
		c.emitOp(bytecode.OpNil)
	}
}

func (c *Compiler) unary(_ bool) {
	op := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.Bang:
		c.emitOp(bytecode.OpNot)
	case token.Minus:
		c.emitOp(bytecode.OpNegate)
	}
}

func (c *Compiler) binary(_ bool) {
	op := c.previous.Kind
	c.parsePrecedence(getRule(op).prec + 1)
	switch op {
	case token.BangEq:
		c.emitOps(bytecode.OpEqual, bytecode.OpNot)
	case token.EqEq:
		c.emitOp(bytecode.OpEqual)
	case token.Gt:
		c.emitOp(bytecode.OpGreater)
	case token.GtEq:
		c.emitOps(bytecode.OpLess, bytecode.OpNot)
	case token.Lt:
		c.emitOp(bytecode.OpLess)
	case token.LtEq:
		c.emitOps(bytecode.OpGreater, bytecode.OpNot)
	case token.Plus:
		c.emitOp(bytecode.OpAdd)
	case token.Minus:
		c.emitOp(bytecode.OpSubtract)
	case token.Star:
		c.emitOp(bytecode.OpMultiply)
	case token.Slash:
		c.emitOp(bytecode.OpDivide)
	}
}

// and short-circuits: the right operand only evaluates when the left
// is truthy, and the leftmost falsey value is the result.
func (c *Compiler) and(_ bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or short-circuits: the leftmost truthy value is the result.
func (c *Compiler) or(_ bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(_ bool) {
	argc := c.argumentList()
	c.emitOpByte(bytecode.OpCall, argc)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Ident, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(token.Eq):
		c.expression()
		c.emitOpByte(bytecode.OpSetProperty, name)
	case c.match(token.LParen):
		argc := c.argumentList()
		c.emitOpByte(bytecode.OpInvoke, name)
		c.emitByte(argc)
	default:
		c.emitOpByte(bytecode.OpGetProperty, name)
	}
}

func (c *Compiler) argumentList() byte {
	var argc int
	if !c.check(token.RParen) {
		for {
			c.expression()
			if argc == maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RParen, "Expect ')' after arguments.")
	return byte(argc)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable emits a read or write of name, resolved as a local,
// an upvalue, or finally a late-bound global.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp bytecode.Op
	var arg int
	if arg = c.resolveLocal(c.fc, name); arg != -1 {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
	} else if arg = c.resolveUpvalue(c.fc, name); arg != -1 {
		getOp, setOp = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
	}

	if canAssign && c.match(token.Eq) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) this(_ bool) {
	if c.cc == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(_ bool) {
	if c.cc == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.cc.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Ident, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(syntheticToken(token.KwThis, "this"), false)
	if c.match(token.LParen) {
		argc := c.argumentList()
		c.namedVariable(syntheticToken(token.KwSuper, "super"), false)
		c.emitOpByte(bytecode.OpSuperInvoke, name)
		c.emitByte(argc)
	} else {
		c.namedVariable(syntheticToken(token.KwSuper, "super"), false)
		c.emitOpByte(bytecode.OpGetSuper, name)
	}
}

func syntheticToken(kind token.Kind, text string) token.Token {
	return token.Token{Kind: kind, Text: text}
}
