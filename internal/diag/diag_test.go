package diag_test

import (
	"strings"
	"testing"

	"lox/internal/diag"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		d    diag.Diagnostic
		want string
	}{
		{
			diag.Diagnostic{Severity: diag.SevError, Line: 3, Lexeme: "foo", Message: "Expect ';' after value."},
			"[line 3] Error at 'foo': Expect ';' after value.",
		},
		{
			diag.Diagnostic{Severity: diag.SevError, Line: 7, AtEnd: true, Message: "Expect expression."},
			"[line 7] Error at end: Expect expression.",
		},
		{
			diag.Diagnostic{Severity: diag.SevError, Line: 1, Message: "Unexpected character."},
			"[line 1] Error: Unexpected character.",
		},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBagCap(t *testing.T) {
	b := diag.NewBag(2)
	d := diag.Diagnostic{Severity: diag.SevError, Line: 1, Message: "x"}
	if !b.Add(d) || !b.Add(d) {
		t.Fatal("first two adds should succeed")
	}
	if b.Add(d) {
		t.Error("third add should be rejected by the cap")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if !b.HasErrors() {
		t.Error("HasErrors() should be true")
	}
}

func TestRenderPlain(t *testing.T) {
	b := diag.NewBag(10)
	b.Add(diag.Diagnostic{Severity: diag.SevError, Line: 2, Lexeme: "=", Message: "Invalid assignment target."})
	var sb strings.Builder
	diag.Render(&sb, b, false)
	want := "[line 2] Error at '=': Invalid assignment target.\n"
	if sb.String() != want {
		t.Errorf("Render = %q, want %q", sb.String(), want)
	}
}
