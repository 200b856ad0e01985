package vm

import "testing"

func TestTruthiness(t *testing.T) {
	falsey := []Value{NilValue(), BoolValue(false)}
	for _, v := range falsey {
		if !v.IsFalsey() {
			t.Errorf("%s should be falsey", v)
		}
	}
	truthy := []Value{
		BoolValue(true),
		NumberValue(0),
		NumberValue(1),
		ObjValue(newTestString("")),
	}
	for _, v := range truthy {
		if v.IsFalsey() {
			t.Errorf("%s should be truthy", v)
		}
	}
}

func TestEquality(t *testing.T) {
	s := newTestString("x")
	tests := []struct {
		a, b Value
		want bool
	}{
		{NilValue(), NilValue(), true},
		{NilValue(), BoolValue(false), false},
		{BoolValue(true), BoolValue(true), true},
		{BoolValue(true), BoolValue(false), false},
		{NumberValue(1), NumberValue(1), true},
		{NumberValue(1), NumberValue(2), false},
		{NumberValue(0), BoolValue(false), false},
		{ObjValue(s), ObjValue(s), true},
		{ObjValue(s), ObjValue(newTestString("x")), false}, // not interned here
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueString(t *testing.T) {
	fn := &ObjFunction{Obj: Obj{kind: OKFunction}}
	named := &ObjFunction{Obj: Obj{kind: OKFunction}, Name: newTestString("whisk")}
	class := &ObjClass{Obj: Obj{kind: OKClass}, Name: newTestString("Egg")}
	inst := &ObjInstance{Obj: Obj{kind: OKInstance}, Class: class}

	tests := []struct {
		v    Value
		want string
	}{
		{NilValue(), "nil"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{NumberValue(7), "7"},
		{NumberValue(2.5), "2.5"},
		{NumberValue(-0.25), "-0.25"},
		{ObjValue(newTestString("hi")), "hi"},
		{ObjValue(fn), "<script>"},
		{ObjValue(named), "<fn whisk>"},
		{ObjValue(&ObjNative{Obj: Obj{kind: OKNative}}), "<native fn>"},
		{ObjValue(class), "Egg"},
		{ObjValue(inst), "Egg instance"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
