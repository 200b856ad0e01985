package scanner_test

import (
	"testing"

	"lox/internal/scanner"
	"lox/internal/source"
	"lox/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New(source.NewFile("test.lox", []byte(src)))
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
		if len(toks) > 10000 {
			t.Fatal("scanner did not reach EOF")
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestScanStatement(t *testing.T) {
	toks := scanAll(t, `var answer = 42;`)
	want := []token.Kind{token.KwVar, token.Ident, token.Eq, token.NumberLit, token.Semicolon, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].Text != "answer" {
		t.Errorf("ident text = %q, want %q", toks[1].Text, "answer")
	}
	if toks[3].Text != "42" {
		t.Errorf("number text = %q, want %q", toks[3].Text, "42")
	}
}

func TestScanOperators(t *testing.T) {
	tests := []struct {
		src  string
		want []token.Kind
	}{
		{"! != = == < <= > >=", []token.Kind{
			token.Bang, token.BangEq, token.Eq, token.EqEq,
			token.Lt, token.LtEq, token.Gt, token.GtEq, token.EOF,
		}},
		{"(){};,.-+/*", []token.Kind{
			token.LParen, token.RParen, token.LBrace, token.RBrace,
			token.Semicolon, token.Comma, token.Dot, token.Minus,
			token.Plus, token.Slash, token.Star, token.EOF,
		}},
	}
	for _, tt := range tests {
		got := kinds(scanAll(t, tt.src))
		if len(got) != len(tt.want) {
			t.Fatalf("%q: got %v, want %v", tt.src, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%q token %d = %v, want %v", tt.src, i, got[i], tt.want[i])
			}
		}
	}
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks := scanAll(t, "class classy and android fun")
	want := []token.Kind{token.KwClass, token.Ident, token.KwAnd, token.Ident, token.KwFun, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "123 45.67 8.")
	if toks[0].Text != "123" || toks[0].Kind != token.NumberLit {
		t.Errorf("got %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Text != "45.67" || toks[1].Kind != token.NumberLit {
		t.Errorf("got %v %q", toks[1].Kind, toks[1].Text)
	}
	// A trailing dot is a separate token, not part of the number.
	if toks[2].Text != "8" || toks[3].Kind != token.Dot {
		t.Errorf("trailing dot: got %q then %v", toks[2].Text, toks[3].Kind)
	}
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	if toks[0].Kind != token.StringLit {
		t.Fatalf("kind = %v", toks[0].Kind)
	}
	if toks[0].Text != `"hello world"` {
		t.Errorf("text = %q", toks[0].Text)
	}
}

func TestMultilineStringCountsLines(t *testing.T) {
	toks := scanAll(t, "\"a\nb\"\nprint")
	if toks[0].Kind != token.StringLit {
		t.Fatalf("kind = %v", toks[0].Kind)
	}
	if toks[1].Kind != token.KwPrint || toks[1].Line != 3 {
		t.Errorf("print at line %d, want 3", toks[1].Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"oops`)
	if toks[0].Kind != token.Invalid {
		t.Fatalf("kind = %v, want Invalid", toks[0].Kind)
	}
	if toks[0].Text != "Unterminated string." {
		t.Errorf("text = %q", toks[0].Text)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	if toks[0].Kind != token.Invalid || toks[0].Text != "Unexpected character." {
		t.Errorf("got %v %q", toks[0].Kind, toks[0].Text)
	}
}

func TestCommentsAndLines(t *testing.T) {
	toks := scanAll(t, "// nothing here\nprint 1; // tail\nprint 2;")
	if toks[0].Kind != token.KwPrint || toks[0].Line != 2 {
		t.Errorf("first print at line %d, want 2", toks[0].Line)
	}
	if toks[3].Kind != token.KwPrint || toks[3].Line != 3 {
		t.Errorf("second print at line %d, want 3", toks[3].Line)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := scanner.New(source.NewFile("t.lox", []byte("print 1;")))
	p := s.Peek()
	n := s.Next()
	if p != n {
		t.Errorf("Peek %v != Next %v", p, n)
	}
	if s.Next().Kind != token.NumberLit {
		t.Error("stream advanced incorrectly after Peek")
	}
}
