package ir

// Builder provides the small amount of bookkeeping needed while
// building one function: the current block, plus helpers
// for the instruction shapes that appear at every call site (constants,
// binary ops, calls, branches).
type Builder struct {
	Func *Func
	cur  int // index into Func.Blocks
}

// NewBuilder starts building fn at a fresh entry block.
func NewBuilder(fn *Func) *Builder {
	idx, _ := fn.NewBlock()
	return &Builder{Func: fn, cur: idx}
}

// Block returns the block the builder is currently appending to.
func (b *Builder) Block() *Block { return b.Func.Blocks[b.cur] }

// SetBlock moves the builder's insertion point, used after branching.
func (b *Builder) SetBlock(idx int) { b.cur = idx }

// CurrentBlock returns the index of the block being appended to.
func (b *Builder) CurrentBlock() int { return b.cur }

func (b *Builder) emit(instr Instr) Value {
	return b.Block().Emit(b.cur, instr)
}

// ConstInt emits a constant integer of the given width.
func (b *Builder) ConstInt(kind ValueKind, v int64) Value {
	return b.emit(Instr{Op: OpConstInt, Kind: kind, Aux: v})
}

// ConstFloat emits an F64 constant.
func (b *Builder) ConstFloat(v float64) Value {
	return b.emit(Instr{Op: OpConstFloat, Kind: F64, Aux: v})
}

// ConstPtr emits a constant pointer (null, or an index into the
// module's StaticData for a string literal).
func (b *Builder) ConstPtr(staticIdx int) Value {
	return b.emit(Instr{Op: OpConstPtr, Kind: Ptr, Aux: staticIdx})
}

// Bin emits a binary arithmetic/comparison op.
func (b *Builder) Bin(op Op, kind ValueKind, l, r Value) Value {
	return b.emit(Instr{Op: op, Kind: kind, Operands: []Value{l, r}})
}

// StackSlot allocates size bytes on the current frame and yields a Ptr.
func (b *Builder) StackSlot(size int) Value {
	return b.emit(Instr{Op: OpStackSlot, Kind: Ptr, Aux: size})
}

// Load reads a Kind-sized value from ptr+offset.
func (b *Builder) Load(kind ValueKind, ptr Value, offset int) Value {
	return b.emit(Instr{Op: OpLoad, Kind: kind, Operands: []Value{ptr}, Aux: offset})
}

// Store writes val at ptr+offset.
func (b *Builder) Store(ptr Value, offset int, val Value) {
	b.emit(Instr{Op: OpStore, Kind: val.Kind, Operands: []Value{ptr, val}, Aux: offset})
}

// Call emits a direct call to a user-defined function, prepending a
// closure-data pointer calling convention.
func (b *Builder) Call(kind ValueKind, calleeSymbol string, closureData Value, args []Value) Value {
	operands := append([]Value{closureData}, args...)
	return b.emit(Instr{Op: OpCall, Kind: kind, Operands: operands, Aux: calleeSymbol})
}

// CallExtern emits a call to an extern-declared symbol, with no
// closure-data argument.
func (b *Builder) CallExtern(kind ValueKind, symbol string, args []Value) Value {
	return b.emit(Instr{Op: OpCallExtern, Kind: kind, Operands: args, Aux: symbol})
}

// CallIndirect emits an indirect call through a closure value (function
// pointer + data pointer, "Lambda").
func (b *Builder) CallIndirect(kind ValueKind, funcPtr, dataPtr Value, args []Value) Value {
	operands := append([]Value{funcPtr, dataPtr}, args...)
	return b.emit(Instr{Op: OpCallIndirect, Kind: kind, Operands: operands})
}

// Br emits an unconditional branch and closes the current block.
func (b *Builder) Br(target int) {
	b.emit(Instr{Op: OpBr, Targets: []int{target}})
}

// CondBr emits a conditional branch and closes the current block.
func (b *Builder) CondBr(cond Value, thenBlock, elseBlock int) {
	b.emit(Instr{Op: OpCondBr, Operands: []Value{cond}, Targets: []int{thenBlock, elseBlock}})
}

// Ret emits a return, closing the current block. A nil val emits a
// void/zero-sentinel return.
func (b *Builder) Ret(val *Value) {
	if val == nil {
		b.emit(Instr{Op: OpRet})
		return
	}
	b.emit(Instr{Op: OpRet, Operands: []Value{*val}})
}

// ExceptionCheck emits a check of the per-task exception slot.
func (b *Builder) ExceptionCheck() Value {
	return b.emit(Instr{Op: OpExceptionCheck, Kind: I8})
}

// ZeroSentinel emits the zero value for kind, used when propagating an
// exception out of the current function.
func (b *Builder) ZeroSentinel(kind ValueKind) Value {
	return b.emit(Instr{Op: OpZeroSentinel, Kind: kind})
}
