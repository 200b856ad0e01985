package compiler

import "lox/internal/token"

// precedence orders infix operators from loosest to tightest binding.
type precedence uint8

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

// parseFn is a Pratt handler. canAssign is true only at assignment
// precedence so handlers can reject '=' in non-target positions.
type parseFn func(c *Compiler, canAssign bool)

// parseRule ties a token kind to its prefix handler, infix handler,
// and infix precedence.
type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

var rules [token.KindCount]parseRule

func init() {
	rules = [token.KindCount]parseRule{
		token.LParen:    {(*Compiler).grouping, (*Compiler).call, precCall},
		token.Dot:       {nil, (*Compiler).dot, precCall},
		token.Minus:     {(*Compiler).unary, (*Compiler).binary, precTerm},
		token.Plus:      {nil, (*Compiler).binary, precTerm},
		token.Slash:     {nil, (*Compiler).binary, precFactor},
		token.Star:      {nil, (*Compiler).binary, precFactor},
		token.Bang:      {(*Compiler).unary, nil, precNone},
		token.BangEq:    {nil, (*Compiler).binary, precEquality},
		token.EqEq:      {nil, (*Compiler).binary, precEquality},
		token.Gt:        {nil, (*Compiler).binary, precComparison},
		token.GtEq:      {nil, (*Compiler).binary, precComparison},
		token.Lt:        {nil, (*Compiler).binary, precComparison},
		token.LtEq:      {nil, (*Compiler).binary, precComparison},
		token.Ident:     {(*Compiler).variable, nil, precNone},
		token.StringLit: {(*Compiler).stringLit, nil, precNone},
		token.NumberLit: {(*Compiler).number, nil, precNone},
		token.KwAnd:     {nil, (*Compiler).and, precAnd},
		token.KwOr:      {nil, (*Compiler).or, precOr},
		token.KwFalse:   {(*Compiler).literal, nil, precNone},
		token.KwTrue:    {(*Compiler).literal, nil, precNone},
		token.KwNil:     {(*Compiler).literal, nil, precNone},
		token.KwSuper:   {(*Compiler).super, nil, precNone},
		token.KwThis:    {(*Compiler).this, nil, precNone},
	}
}

func getRule(kind token.Kind) *parseRule {
	return &rules[kind]
}
