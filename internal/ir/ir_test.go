package ir

import "testing"

func TestBuilderAddFunction(t *testing.T) {
	fn := &Func{
		Name:   "add",
		Params: []Param{{Name: "$closure", Kind: Ptr}, {Name: "a", Kind: I64}, {Name: "b", Kind: I64}},
		Return: I64,
	}
	b := NewBuilder(fn)
	a := Value{Kind: I64, Block: 0, Index: -1} // stand-in for param reference
	_ = a
	sum := b.Bin(OpAdd, I64, b.ConstInt(I64, 1), b.ConstInt(I64, 2))
	b.Ret(&sum)

	if len(fn.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(fn.Blocks))
	}
	instrs := fn.Blocks[0].Instrs
	if len(instrs) != 4 {
		t.Fatalf("expected 4 instructions (const, const, add, ret), got %d", len(instrs))
	}
	last := instrs[len(instrs)-1]
	if last.Op != OpRet {
		t.Fatalf("expected last instruction to be OpRet, got %v", last.Op)
	}
}

func TestBuilderBranching(t *testing.T) {
	fn := &Func{Name: "f", Return: I64}
	b := NewBuilder(fn)
	thenIdx, _ := fn.NewBlock()
	elseIdx, _ := fn.NewBlock()
	cond := b.ConstInt(I8, 1)
	b.CondBr(cond, thenIdx, elseIdx)

	b.SetBlock(thenIdx)
	one := b.ConstInt(I64, 1)
	b.Ret(&one)

	b.SetBlock(elseIdx)
	zero := b.ConstInt(I64, 0)
	b.Ret(&zero)

	if len(fn.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(fn.Blocks))
	}
	entryTerm := fn.Blocks[0].Instrs[len(fn.Blocks[0].Instrs)-1]
	if entryTerm.Op != OpCondBr || len(entryTerm.Targets) != 2 {
		t.Fatalf("expected entry block to end in a 2-target CondBr, got %+v", entryTerm)
	}
}
