package vm

import (
	"io"
	"testing"
)

func newBareVM() *VM {
	h := NewHeap(HeapOptions{})
	return NewVM(h, Options{Stdout: io.Discard, Stderr: io.Discard})
}

func TestCaptureUpvalueIsIdempotentPerSlot(t *testing.T) {
	v := newBareVM()
	v.stack[3] = NumberValue(3)
	v.stackTop = 8

	first := v.captureUpvalue(3)
	second := v.captureUpvalue(3)
	if first != second {
		t.Error("capturing the same slot twice must return one upvalue")
	}
}

func TestOpenUpvalueListSortedDescending(t *testing.T) {
	v := newBareVM()
	v.stackTop = 10

	u2 := v.captureUpvalue(2)
	u7 := v.captureUpvalue(7)
	u5 := v.captureUpvalue(5)

	var slots []int
	for u := v.openUpvalues; u != nil; u = u.Next {
		slots = append(slots, u.Slot)
	}
	want := []int{7, 5, 2}
	if len(slots) != len(want) {
		t.Fatalf("open list slots = %v, want %v", slots, want)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("open list slots = %v, want %v", slots, want)
		}
	}
	_ = u2
	_ = u7
	_ = u5
}

func TestCloseUpvaluesMovesValuesAndUnlinks(t *testing.T) {
	v := newBareVM()
	v.stack[2] = NumberValue(20)
	v.stack[5] = NumberValue(50)
	v.stack[7] = NumberValue(70)
	v.stackTop = 10

	u2 := v.captureUpvalue(2)
	u5 := v.captureUpvalue(5)
	u7 := v.captureUpvalue(7)

	// Close everything at or above slot 5: u7 and u5, but not u2.
	v.closeUpvalues(5)

	if !u7.IsClosed() || u7.Closed.Num != 70 {
		t.Errorf("u7 = %+v, want closed with 70", u7)
	}
	if !u5.IsClosed() || u5.Closed.Num != 50 {
		t.Errorf("u5 = %+v, want closed with 50", u5)
	}
	if u2.IsClosed() {
		t.Error("u2 should remain open")
	}
	if v.openUpvalues != u2 || u2.Next != nil {
		t.Error("open list should hold only u2")
	}

	// Closing is idempotent: a second close changes nothing.
	v.stack[2] = NumberValue(21)
	v.closeUpvalues(5)
	if u2.IsClosed() {
		t.Error("second close above slot 2 should not touch u2")
	}
	v.closeUpvalues(0)
	if !u2.IsClosed() || u2.Closed.Num != 21 {
		t.Errorf("u2 = %+v, want closed with 21", u2)
	}
}

func TestUpvalueReadWriteThroughStackThenCell(t *testing.T) {
	v := newBareVM()
	v.stack[4] = NumberValue(1)
	v.stackTop = 6

	u := v.captureUpvalue(4)
	if got := v.upvalueGet(u); got.Num != 1 {
		t.Errorf("open read = %v", got)
	}
	v.upvalueSet(u, NumberValue(2))
	if v.stack[4].Num != 2 {
		t.Error("open write must hit the stack slot")
	}

	v.closeUpvalues(4)
	v.stack[4] = NumberValue(99) // stale slot must be invisible now
	if got := v.upvalueGet(u); got.Num != 2 {
		t.Errorf("closed read = %v, want 2", got)
	}
	v.upvalueSet(u, NumberValue(3))
	if u.Closed.Num != 3 || v.stack[4].Num != 99 {
		t.Error("closed write must hit the owned cell only")
	}
}
