package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token; its Text carries the message.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// LParen represents the '(' token.
	LParen // (
	// RParen represents the ')' token.
	RParen // )
	// LBrace represents the '{' token.
	LBrace // {
	// RBrace represents the '}' token.
	RBrace // }
	// Comma represents the ',' token.
	Comma // ,
	// Dot represents the '.' token.
	Dot // .
	// Minus represents the '-' token.
	Minus // -
	// Plus represents the '+' token.
	Plus // +
	// Semicolon represents the ';' token.
	Semicolon // ;
	// Slash represents the '/' token.
	Slash // /
	// Star represents the '*' token.
	Star // *

	// Bang represents the '!' token.
	Bang // !
	// BangEq represents the '!=' token.
	BangEq // !=
	// Eq represents the '=' token.
	Eq // =
	// EqEq represents the '==' token.
	EqEq // ==
	// Gt represents the '>' token.
	Gt // >
	// GtEq represents the '>=' token.
	GtEq // >=
	// Lt represents the '<' token.
	Lt // <
	// LtEq represents the '<=' token.
	LtEq // <=

	// Ident represents an identifier token.
	Ident
	// StringLit represents a string literal token.
	StringLit
	// NumberLit represents a number literal token.
	NumberLit

	// KwAnd represents the 'and' keyword.
	KwAnd // and
	// KwClass represents the 'class' keyword.
	KwClass // class
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwFalse represents the 'false' keyword.
	KwFalse // false
	// KwFor represents the 'for' keyword.
	KwFor // for
	// KwFun represents the 'fun' keyword.
	KwFun // fun
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwNil represents the 'nil' keyword.
	KwNil // nil
	// KwOr represents the 'or' keyword.
	KwOr // or
	// KwPrint represents the 'print' keyword.
	KwPrint // print
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwSuper represents the 'super' keyword.
	KwSuper // super
	// KwThis represents the 'this' keyword.
	KwThis // this
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwVar represents the 'var' keyword.
	KwVar // var
	// KwWhile represents the 'while' keyword.
	KwWhile // while

	// KindCount is the number of token kinds; parse tables are sized by it.
	KindCount
)

var kindNames = [KindCount]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	LParen:    "LParen",
	RParen:    "RParen",
	LBrace:    "LBrace",
	RBrace:    "RBrace",
	Comma:     "Comma",
	Dot:       "Dot",
	Minus:     "Minus",
	Plus:      "Plus",
	Semicolon: "Semicolon",
	Slash:     "Slash",
	Star:      "Star",
	Bang:      "Bang",
	BangEq:    "BangEq",
	Eq:        "Eq",
	EqEq:      "EqEq",
	Gt:        "Gt",
	GtEq:      "GtEq",
	Lt:        "Lt",
	LtEq:      "LtEq",
	Ident:     "Ident",
	StringLit: "StringLit",
	NumberLit: "NumberLit",
	KwAnd:     "KwAnd",
	KwClass:   "KwClass",
	KwElse:    "KwElse",
	KwFalse:   "KwFalse",
	KwFor:     "KwFor",
	KwFun:     "KwFun",
	KwIf:      "KwIf",
	KwNil:     "KwNil",
	KwOr:      "KwOr",
	KwPrint:   "KwPrint",
	KwReturn:  "KwReturn",
	KwSuper:   "KwSuper",
	KwThis:    "KwThis",
	KwTrue:    "KwTrue",
	KwVar:     "KwVar",
	KwWhile:   "KwWhile",
}

// String returns a human-readable name for the token kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
