package exception

import (
	"strings"
	"testing"

	"github.com/naml-lang/namlc/internal/heap"
)

func TestSetCheckClear(t *testing.T) {
	s := NewState()
	if s.Check() {
		t.Fatalf("expected no exception set initially")
	}
	obj := heap.NewString("boom")
	s.Set(heap.Ref{Obj: obj}, 7)
	if !s.Check() {
		t.Fatalf("expected exception set after Set")
	}
	if !s.IsType(7) {
		t.Fatalf("expected IsType(7) true")
	}
	if s.IsType(8) {
		t.Fatalf("expected IsType(8) false")
	}
	s.Clear()
	if s.Check() {
		t.Fatalf("expected no exception set after Clear")
	}
}

func TestShadowStackPushPopAndCapture(t *testing.T) {
	s := NewState()
	s.Push(Frame{FuncName: "main", File: "a.nm", Line: 1})
	s.Push(Frame{FuncName: "helper", File: "a.nm", Line: 5})
	trace := s.Capture()
	if len(trace) != 2 {
		t.Fatalf("expected 2 frames captured, got %d", len(trace))
	}
	formatted := Format(trace)
	if !strings.HasPrefix(formatted, "helper") {
		t.Fatalf("expected most-recent frame first, got: %s", formatted)
	}
	s.Pop()
	if len(s.Capture()) != 1 {
		t.Fatalf("expected 1 frame remaining after Pop")
	}
}
