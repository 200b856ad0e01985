package compiler_test

import (
	"strings"
	"testing"

	"lox/internal/compiler"
	"lox/internal/diag"
	"lox/internal/source"
	"lox/internal/vm"
)

func compile(t *testing.T, src string) (*vm.ObjFunction, *diag.Bag) {
	t.Helper()
	heap := vm.NewHeap(vm.HeapOptions{})
	bag := diag.NewBag(100)
	fn := compiler.Compile(source.NewFile("test.lox", []byte(src)), heap, bag)
	return fn, bag
}

func expectCompileError(t *testing.T, src, want string) {
	t.Helper()
	fn, bag := compile(t, src)
	if fn != nil {
		t.Fatalf("compile succeeded, want error %q", want)
	}
	var sb strings.Builder
	diag.Render(&sb, bag, false)
	if !strings.Contains(sb.String(), want) {
		t.Errorf("diagnostics = %q, want containing %q", sb.String(), want)
	}
}

func TestCompileSucceeds(t *testing.T) {
	sources := []string{
		`print 1 + 2;`,
		`var a; a = 3;`,
		`{ var a = 1; { var a = 2; print a; } }`,
		`fun f(a, b) { return a + b; } f(1, 2);`,
		`class A {} class B < A { m() { super.m(); } }`,
		`for (;;) {}`,
		`if (1 < 2) print "x"; else print "y";`,
		`while (false) {}`,
		`var closed = 1; fun f() { return closed; }`,
	}
	for _, src := range sources {
		if fn, bag := compile(t, src); fn == nil {
			var sb strings.Builder
			diag.Render(&sb, bag, false)
			t.Errorf("compile(%q) failed:\n%s", src, sb.String())
		}
	}
}

func TestScriptFunctionShape(t *testing.T) {
	fn, _ := compile(t, `print 1;`)
	if fn == nil {
		t.Fatal("compile failed")
	}
	if fn.Name != nil {
		t.Errorf("script function name = %v, want nil", fn.Name)
	}
	if fn.Arity != 0 || fn.UpvalueCount != 0 {
		t.Errorf("script arity/upvalues = %d/%d", fn.Arity, fn.UpvalueCount)
	}
	if len(fn.Chunk.Code) == 0 || len(fn.Chunk.Code) != len(fn.Chunk.Lines) {
		t.Errorf("code/lines length mismatch: %d vs %d", len(fn.Chunk.Code), len(fn.Chunk.Lines))
	}
}

func TestUpvalueCountsRecorded(t *testing.T) {
	fn, _ := compile(t, `
fun outer() {
  var a = 1;
  var b = 2;
  fun middle() {
    fun inner() { return a + b; }
    return inner;
  }
  return middle;
}`)
	if fn == nil {
		t.Fatal("compile failed")
	}
	outer := findFunction(fn, "outer")
	if outer == nil {
		t.Fatal("outer not found in constants")
	}
	middle := findFunction(outer, "middle")
	if middle == nil {
		t.Fatal("middle not found")
	}
	inner := findFunction(middle, "inner")
	if inner == nil {
		t.Fatal("inner not found")
	}
	// middle threads a and b through; inner captures them from middle.
	if middle.UpvalueCount != 2 {
		t.Errorf("middle.UpvalueCount = %d, want 2", middle.UpvalueCount)
	}
	if inner.UpvalueCount != 2 {
		t.Errorf("inner.UpvalueCount = %d, want 2", inner.UpvalueCount)
	}
}

func findFunction(fn *vm.ObjFunction, name string) *vm.ObjFunction {
	for _, c := range fn.Chunk.Constants {
		if c.Kind != vm.VKObj {
			continue
		}
		if nested, ok := c.Obj.(*vm.ObjFunction); ok {
			if nested.Name != nil && nested.Name.S == name {
				return nested
			}
		}
	}
	return nil
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print 1`, "Expect ';' after value."},
		{`1 + 2`, "Expect ';' after expression."},
		{`print ;`, "Expect expression."},
		{`var 1 = 2;`, "Expect variable name."},
		{`(1 + 2;`, "Expect ')' after expression."},
		{`if 1) {}`, "Expect '(' after 'if'."},
		{`fun f( { }`, "Expect parameter name."},
		{`class {}`, "Expect class name."},
		{`@`, "Unexpected character."},
		{`print "unfinished`, "Unterminated string."},
	}
	for _, tt := range tests {
		expectCompileError(t, tt.src, tt.want)
	}
}

func TestErrorAtEnd(t *testing.T) {
	fn, bag := compile(t, `print 1 +`)
	if fn != nil {
		t.Fatal("compile should fail")
	}
	var sb strings.Builder
	diag.Render(&sb, bag, false)
	if !strings.Contains(sb.String(), "Error at end: Expect expression.") {
		t.Errorf("diagnostics = %q", sb.String())
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	expectCompileError(t, `var a = 1; var b = 2; a + b = 3;`, "Invalid assignment target.")
	expectCompileError(t, `var a = 1; (a) = 3;`, "Invalid assignment target.")
}

func TestResolutionErrors(t *testing.T) {
	expectCompileError(t, `{ var a = a; }`, "Can't read local variable in its own initializer.")
	expectCompileError(t, `{ var a = 1; var a = 2; }`, "Already a variable with this name in this scope.")
	expectCompileError(t, `return 1;`, "Can't return from top-level code.")
}

func TestGlobalRedeclarationAllowed(t *testing.T) {
	if fn, _ := compile(t, `var a = 1; var a = 2;`); fn == nil {
		t.Error("global redeclaration should compile")
	}
	if fn, _ := compile(t, `var a = a;`); fn == nil {
		t.Error("global self-reference compiles; it fails at runtime instead")
	}
}

func TestClassErrors(t *testing.T) {
	expectCompileError(t, `class A < A {}`, "A class can't inherit from itself.")
	expectCompileError(t, `print this;`, "Can't use 'this' outside of a class.")
	expectCompileError(t, `fun f() { return this; }`, "Can't use 'this' outside of a class.")
	expectCompileError(t, `print super.x;`, "Can't use 'super' outside of a class.")
	expectCompileError(t, `class A { m() { super.m(); } }`, "Can't use 'super' in a class with no superclass.")
	expectCompileError(t, `class A { init() { return 1; } }`, "Can't return a value from an initializer.")
}

func TestArgumentAndParameterLimits(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("fun f(")
	for i := 0; i < 256; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("p")
		sb.WriteString(itoa(i))
	}
	sb.WriteString(") {}")
	expectCompileError(t, sb.String(), "Can't have more than 255 parameters.")

	sb.Reset()
	sb.WriteString("fun g() {} g(")
	for i := 0; i < 256; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("1")
	}
	sb.WriteString(");")
	expectCompileError(t, sb.String(), "Can't have more than 255 arguments.")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestTooManyConstants(t *testing.T) {
	var sb strings.Builder
	// Each distinct number literal takes one constant slot.
	for i := 0; i < 300; i++ {
		sb.WriteString("print ")
		sb.WriteString(itoa(i))
		sb.WriteString(".5;\n")
	}
	expectCompileError(t, sb.String(), "Too many constants in one chunk.")
}

func TestPanicModeRecoversAtStatementBoundary(t *testing.T) {
	fn, bag := compile(t, `
var = 1;
print "fine";
var = 2;`)
	if fn != nil {
		t.Fatal("compile should fail")
	}
	// Both statements report: panic mode resets at the boundary, so
	// the second bad statement is not swallowed by the first.
	errors := 0
	for _, d := range bag.Items() {
		if strings.Contains(d.Message, "Expect variable name.") {
			errors++
		}
	}
	if errors != 2 {
		var sb strings.Builder
		diag.Render(&sb, bag, false)
		t.Errorf("got %d 'Expect variable name.' errors, want 2:\n%s", errors, sb.String())
	}
}

func TestErrorLineNumbers(t *testing.T) {
	_, bag := compile(t, "print 1;\nprint 2;\nprint ;\n")
	found := false
	for _, d := range bag.Items() {
		if d.Line == 3 && d.Message == "Expect expression." {
			found = true
		}
	}
	if !found {
		var sb strings.Builder
		diag.Render(&sb, bag, false)
		t.Errorf("want 'Expect expression.' at line 3:\n%s", sb.String())
	}
}
