package codegen

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/exception"
)

// FuncValue is a first-class closure value: the "24-byte stack-allocated
// closure struct {function_ptr, data_ptr, data_size}" collapsed to the
// lambda's parameters and body AST plus its captured-data map (the body
// takes the place of function_ptr; data_size has no meaning once the
// payload is a map rather than a raw byte buffer).
type FuncValue struct {
	Params []string
	Body   ast.Expr // BlockExpr or bare expr
	Throws []string
	data   map[string]interface{} // captured-by-value snapshot
}

// makeClosureData snapshots the current value of every free variable the
// lambda/spawn body reads, by value — spawn and lambda both capture by
// value. A name with no binding in
// the current frame resolves to a global function at call time instead
// and is simply omitted here.
func (e *Exec) makeClosureData(params []string, body ast.Node, fr *Frame) map[string]interface{} {
	data := make(map[string]interface{})
	for _, name := range freeVars(params, body) {
		if v, ok := fr.Get(name); ok {
			data[name] = v
		}
	}
	return data
}

// EvalLambda produces a FuncValue capturing lam's free variables from fr.
func (e *Exec) EvalLambda(lam *ast.LambdaExpr, fr *Frame) *FuncValue {
	names := make([]string, len(lam.Params))
	for i, p := range lam.Params {
		names[i] = p.Name
	}
	return &FuncValue{
		Params: names,
		Body:   lam.Body,
		data:   e.makeClosureData(names, lam.Body, fr),
	}
}

// CallClosure invokes fv with args against a fresh root frame seeded
// from its captured data, mirroring an indirect call through the closure
// struct's function-pointer slot with the closure's data pointer as the
// first arg.
func (e *Exec) CallClosure(fv *FuncValue, args []interface{}, exc *exception.State) (interface{}, error) {
	callee := NewFrame(fv.data, exc)
	for name, v := range fv.data {
		callee.Bind(name, v)
	}
	for i, p := range fv.Params {
		if i < len(args) {
			callee.Bind(p, args[i])
		}
	}
	return e.evalLambdaBody(fv.Body, callee)
}

// SpawnTask builds the scheduler trampoline for a spawn expression:
// capture the body's free variables by value now, and return a
// scheduler.Func that, invoked later on a worker goroutine, replays the
// body against a fresh frame seeded from the snapshot — a trampoline
// that reads captured values back into locals and executes the body.
func (e *Exec) SpawnTask(sp *ast.SpawnExpr, fr *Frame) (data map[string]interface{}, run func(data interface{}, exc *exception.State)) {
	data = e.makeClosureData(nil, sp.Body, fr)
	run = func(raw interface{}, exc *exception.State) {
		snapshot, _ := raw.(map[string]interface{})
		callee := NewFrame(snapshot, exc)
		for name, v := range snapshot {
			callee.Bind(name, v)
		}
		e.execBlock(sp.Body, callee)
	}
	return data, run
}

func (e *Exec) evalLambdaBody(body ast.Expr, fr *Frame) (interface{}, error) {
	if blk, ok := body.(*ast.BlockExpr); ok {
		sig := e.execBlock(blk, fr)
		if sig.kind == sigReturn {
			return sig.value, nil
		}
		if sig.kind == sigThrow {
			return nil, nil
		}
		return sig.value, nil
	}
	return e.eval(body, fr), nil
}
