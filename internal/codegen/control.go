package codegen

// signalKind distinguishes why a statement thunk returned early.
type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigBreak
	sigContinue
	sigThrow // exception slot was just set by a nested call/throw
)

// signal threads control flow up through nested statement thunks
// without relying on Go panics, mirroring exception
// propagation contract: "the caller checks it after the call and
// branches to its nearest handler" is implemented here as the codegen
// equivalent — every statement thunk checks the frame's exception
// state after a sub-evaluation and turns it into sigThrow.
type signal struct {
	kind  signalKind
	value interface{}
}

var noSignal = signal{kind: sigNone}
