package heap

import "testing"

func TestStringRefcountDestroysAtZero(t *testing.T) {
	s := NewString("hello")
	r := Ref{Obj: s}
	r.Incref()
	if got := s.Refcount(); got != 2 {
		t.Fatalf("expected refcount 2 after incref, got %d", got)
	}
	r.Decref()
	if got := s.Refcount(); got != 1 {
		t.Fatalf("expected refcount 1 after one decref, got %d", got)
	}
	r.Decref()
	if got := s.Refcount(); got != 0 {
		t.Fatalf("expected refcount 0 after second decref, got %d", got)
	}
}

func TestArrayDestroyDecrefsElements(t *testing.T) {
	inner := NewString("x")
	arr := NewArray(true)
	arr.PushRef(Ref{Obj: inner})
	r := Ref{Obj: arr}
	r.Decref()
	if got := inner.Refcount(); got != 0 {
		t.Fatalf("expected array element refcount 0 after array destroyed, got %d", got)
	}
}

func TestMapSetOverwriteDecrefsPreviousValue(t *testing.T) {
	first := NewString("a")
	second := NewString("b")
	m := NewMap(true)
	m.Set("k", Ref{Obj: first})
	m.Set("k", Ref{Obj: second})
	if got := first.Refcount(); got != 0 {
		t.Fatalf("expected displaced value refcount 0, got %d", got)
	}
	v, ok := m.Get("k")
	if !ok {
		t.Fatalf("expected key present")
	}
	if v.(Ref).Obj != second {
		t.Fatalf("expected overwritten value to be the new string")
	}
}

func TestChannelSendRecvFIFO(t *testing.T) {
	ch := NewChannel(2, false)
	if !ch.Send(int64(1)) {
		t.Fatalf("expected send to succeed")
	}
	if !ch.Send(int64(2)) {
		t.Fatalf("expected send to succeed")
	}
	v, ok := ch.Recv()
	if !ok || v.(int64) != 1 {
		t.Fatalf("expected first recv to return 1, got %v ok=%v", v, ok)
	}
}

func TestChannelRecvAfterCloseDrainsThenFails(t *testing.T) {
	ch := NewChannel(0, false)
	ch.Send(int64(9))
	ch.Close()
	v, ok := ch.Recv()
	if !ok || v.(int64) != 9 {
		t.Fatalf("expected drained value 9, got %v ok=%v", v, ok)
	}
	_, ok = ch.Recv()
	if ok {
		t.Fatalf("expected recv on drained closed channel to fail")
	}
}

func TestAtomicCellCAS(t *testing.T) {
	c := NewAtomicCell(TagAtomicInt, 5)
	if !c.CAS(5, 10) {
		t.Fatalf("expected CAS(5, 10) to succeed")
	}
	if c.Load() != 10 {
		t.Fatalf("expected value 10 after successful CAS, got %d", c.Load())
	}
	if c.CAS(5, 20) {
		t.Fatalf("expected CAS(5, 20) to fail since value is now 10")
	}
}

// TestDecrefIterativeFreesLongChainWithoutRecursion builds a long
// self-referential linked list (struct { next: option<Node> }) and drops
// the head, matching spec scenario 6: a million-node chain must free
// every node without blowing the Go call stack the way naive recursive
// decref would.
func TestDecrefIterativeFreesLongChainWithoutRecursion(t *testing.T) {
	const n = 1_000_000
	nodes := make([]*StructObj, n)
	for i := 0; i < n; i++ {
		nodes[i] = NewStruct(1, []string{"next"}, []bool{true}, []bool{true})
	}
	for i := 0; i < n-1; i++ {
		nodes[i].Fields[0] = Ref{Obj: nodes[i+1]}
	}

	head := Ref{Obj: nodes[0]}
	DecrefIterative(head, []int{0}, func(o *StructObj, skip map[int]bool) {
		for j, isRef := range o.FieldIsRef {
			if isRef && !skip[j] {
				if r, ok := o.Fields[j].(Ref); ok {
					r.Decref()
				}
			}
		}
	})

	for i, node := range nodes {
		if got := node.Refcount(); got != 0 {
			t.Fatalf("node %d: expected refcount 0 after chain freed, got %d", i, got)
		}
	}
}
