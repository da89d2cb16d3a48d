package builtins

import (
	"testing"

	"github.com/naml-lang/namlc/internal/exception"
	"github.com/naml-lang/namlc/internal/heap"
)

func TestArrayPushLenGet(t *testing.T) {
	r := NewRegistry()
	push, _ := r.Get("naml_array_push")
	length, _ := r.Get("naml_array_len")
	get, _ := r.Get("naml_array_get")

	arr := heap.NewArray(false)
	exc := exception.NewState()
	push(exc, []interface{}{arr, int64(7)})
	push(exc, []interface{}{arr, int64(8)})

	if n := length(exc, []interface{}{arr}); n.(int64) != 2 {
		t.Fatalf("expected length 2, got %v", n)
	}
	got := get(exc, []interface{}{arr, int64(0)}).(heap.Option)
	if !got.Some || got.Value.(int64) != 7 {
		t.Fatalf("expected Some(7), got %+v", got)
	}
}

func TestMapSetGetRemove(t *testing.T) {
	r := NewRegistry()
	set, _ := r.Get("naml_map_set")
	get, _ := r.Get("naml_map_get")
	remove, _ := r.Get("naml_map_remove")

	m := heap.NewMap(false)
	exc := exception.NewState()
	set(exc, []interface{}{m, "k", int64(42)})

	got := get(exc, []interface{}{m, "k"}).(heap.Option)
	if !got.Some || got.Value.(int64) != 42 {
		t.Fatalf("expected Some(42), got %+v", got)
	}
	if removed := remove(exc, []interface{}{m, "k"}); removed != true {
		t.Fatalf("expected remove to report true")
	}
	got = get(exc, []interface{}{m, "k"}).(heap.Option)
	if got.Some {
		t.Fatalf("expected None after remove")
	}
}

func TestOptionUnwrapNoneSetsException(t *testing.T) {
	r := NewRegistry()
	unwrap, _ := r.Get("naml_option_unwrap")
	exc := exception.NewState()
	unwrap(exc, []interface{}{heap.None()})
	if !exc.Check() {
		t.Fatalf("expected force-unwrap of none to set the exception slot")
	}
}

func TestChannelSendRecvThroughRegistry(t *testing.T) {
	r := NewRegistry()
	send, _ := r.Get("naml_channel_send")
	recv, _ := r.Get("naml_channel_recv")
	ch := heap.NewChannel(1, false)
	exc := exception.NewState()
	send(exc, []interface{}{ch, int64(5)})
	got := recv(exc, []interface{}{ch}).(heap.Option)
	if !got.Some || got.Value.(int64) != 5 {
		t.Fatalf("expected Some(5), got %+v", got)
	}
}
