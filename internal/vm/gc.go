package vm

import "fmt"

// Marker is handed to root sources during the mark phase.
type Marker struct {
	heap *Heap
}

// MarkValue marks a value's object, if it has one.
func (m *Marker) MarkValue(v Value) {
	if v.Kind == VKObj {
		m.MarkObject(v.Obj)
	}
}

// MarkObject greys an object: sets its mark bit and queues it for
// blackening. Already-marked objects are skipped, which keeps cycles
// from looping.
func (m *Marker) MarkObject(o Object) {
	if o == nil {
		return
	}
	hdr := o.header()
	if hdr.marked {
		return
	}
	if m.heap.log {
		fmt.Fprintf(m.heap.logW, "%p mark %s\n", o, o)
	}
	hdr.marked = true
	m.heap.grey = append(m.heap.grey, o)
}

func (m *Marker) markTable(t *Table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			m.MarkObject(e.key)
		}
		m.MarkValue(e.value)
	}
}

// Collect runs a full mark-and-sweep cycle: mark from every root
// source, trace until the grey worklist drains, weakly sweep the
// intern table, then free everything unmarked.
func (h *Heap) Collect() {
	before := h.bytesAllocated
	if h.log {
		fmt.Fprintln(h.logW, "-- gc begin")
	}

	m := &Marker{heap: h}
	for _, src := range h.sources {
		src.MarkRoots(m)
	}
	for len(h.grey) > 0 {
		o := h.grey[len(h.grey)-1]
		h.grey = h.grey[:len(h.grey)-1]
		h.blacken(m, o)
	}

	// Intern-table entries are weak: drop any string the mark phase
	// did not reach before the sweep frees it.
	h.removeWhiteStrings()
	h.sweep()

	h.nextGC = h.bytesAllocated * h.growthFactor
	if h.log {
		fmt.Fprintln(h.logW, "-- gc end")
		fmt.Fprintf(h.logW, "   collected %d bytes (from %d to %d) next at %d\n",
			before-h.bytesAllocated, before, h.bytesAllocated, h.nextGC)
	}
}

// blacken walks an object's outgoing references.
func (h *Heap) blacken(m *Marker, o Object) {
	if h.log {
		fmt.Fprintf(h.logW, "%p blacken %s\n", o, o)
	}
	switch obj := o.(type) {
	case *ObjString, *ObjNative:
		// no outgoing references
	case *ObjFunction:
		if obj.Name != nil {
			m.MarkObject(obj.Name)
		}
		for _, c := range obj.Chunk.Constants {
			m.MarkValue(c)
		}
	case *ObjClosure:
		m.MarkObject(obj.Function)
		for _, u := range obj.Upvalues {
			if u != nil {
				m.MarkObject(u)
			}
		}
	case *ObjUpvalue:
		if obj.IsClosed() {
			m.MarkValue(obj.Closed)
		}
	case *ObjClass:
		m.MarkObject(obj.Name)
		m.markTable(&obj.Methods)
	case *ObjInstance:
		m.MarkObject(obj.Class)
		m.markTable(&obj.Fields)
	case *ObjBoundMethod:
		m.MarkValue(obj.Receiver)
		m.MarkObject(obj.Method)
	}
}

// removeWhiteStrings deletes intern-table entries whose keys were not
// marked. This is the single weak reference in the runtime.
func (h *Heap) removeWhiteStrings() {
	for i := range h.strings.entries {
		e := &h.strings.entries[i]
		if e.key != nil && !e.key.marked {
			h.strings.Delete(e.key)
		}
	}
}

// sweep walks the intrusive list, unlinking and releasing every
// unmarked object and clearing the mark bit on survivors.
func (h *Heap) sweep() {
	var prev Object
	o := h.objects
	for o != nil {
		hdr := o.header()
		if hdr.marked {
			hdr.marked = false
			prev = o
			o = hdr.next
			continue
		}
		dead := o
		o = hdr.next
		if prev == nil {
			h.objects = o
		} else {
			prev.header().next = o
		}
		h.free(dead)
	}
}

// free releases an object's auxiliary storage and its accounting.
// The Go runtime reclaims the memory once nothing references it; the
// job here is to sever the references and keep the byte count honest.
func (h *Heap) free(o Object) {
	hdr := o.header()
	if h.log {
		fmt.Fprintf(h.logW, "%p free %s\n", o, hdr.kind)
	}
	h.bytesAllocated -= hdr.size
	hdr.next = nil
	switch obj := o.(type) {
	case *ObjFunction:
		obj.Chunk = Chunk{}
		obj.Name = nil
	case *ObjClosure:
		obj.Function = nil
		obj.Upvalues = nil
	case *ObjClass:
		obj.Name = nil
		obj.Methods = Table{}
	case *ObjInstance:
		obj.Class = nil
		obj.Fields = Table{}
	case *ObjBoundMethod:
		obj.Receiver = NilValue()
		obj.Method = nil
	case *ObjUpvalue:
		obj.Closed = NilValue()
		obj.Next = nil
	}
}
