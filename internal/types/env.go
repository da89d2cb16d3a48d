package types

// Scope is a lexical variable scope with parent chaining: each nested
// block/lambda/for-loop gets its own Scope rather than mutating a shared
// map, so leaving the scope is just dropping the reference.
type Scope struct {
	bindings map[string]Type
	parent   *Scope
}

// NewScope creates a root scope with no parent.
func NewScope() *Scope {
	return &Scope{bindings: make(map[string]Type)}
}

// Child opens a nested scope.
func (s *Scope) Child() *Scope {
	return &Scope{bindings: make(map[string]Type), parent: s}
}

// Bind introduces (or shadows) name in this scope.
func (s *Scope) Bind(name string, t Type) {
	s.bindings[name] = t
}

// Lookup walks outward through parents for name.
func (s *Scope) Lookup(name string) (Type, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.bindings[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// FuncSig is a function or method's declared signature, prior to
// monomorphization.
type FuncSig struct {
	TypeParams []string
	Params     []Type
	Return     Type
	Throws     []string
}

// StructInfo records a struct declaration's generic parameters and field
// types (pre-pass: "register every struct ... under its
// name").
type StructInfo struct {
	TypeParams []string
	FieldNames []string
	FieldTypes map[string]Type
}

// EnumVariantInfo is one variant of an enum declaration.
type EnumVariantInfo struct {
	Name       string
	FieldNames []string
	FieldTypes map[string]Type
}

// EnumInfo records an enum declaration's variants.
type EnumInfo struct {
	TypeParams []string
	Variants   map[string]*EnumVariantInfo
	Order      []string // variant names in declaration order; not read by the checker, which does not check switch exhaustiveness
}

// InterfaceInfo records an interface's required method signatures, used to
// resolve calls through a generic parameter's bounds.
type InterfaceInfo struct {
	Methods map[string]*FuncSig
}

// ExceptionInfo records an exception declaration's fields.
type ExceptionInfo struct {
	FieldNames []string
	FieldTypes map[string]Type
}

// SymbolTable is the module-wide pre-pass result:
// every top-level declaration registered by name before any expression is
// checked, so forward references and mutual recursion resolve uniformly.
type SymbolTable struct {
	Funcs      map[string]*FuncSig
	Structs    map[string]*StructInfo
	Enums      map[string]*EnumInfo
	Interfaces map[string]*InterfaceInfo
	Exceptions map[string]*ExceptionInfo
	Aliases    map[string]Type

	// Methods is keyed by (receiver type name, method name).
	Methods map[MethodKey]*FuncSig
}

// MethodKey identifies a method by its receiver type and name.
type MethodKey struct {
	Receiver string
	Method   string
}

// NewSymbolTable creates a pre-pass table seeded with the handful of
// global functions every naml program gets for free, such as `print`,
// with no declaration in sight required. These are registered ahead of
// a file's own prePass so a user program that declares its own `print`
// still wins: prePass runs after NewSymbolTable and a map assignment
// simply overwrites the seeded entry.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		Funcs:      make(map[string]*FuncSig),
		Structs:    make(map[string]*StructInfo),
		Enums:      make(map[string]*EnumInfo),
		Interfaces: make(map[string]*InterfaceInfo),
		Exceptions: make(map[string]*ExceptionInfo),
		Aliases:    make(map[string]Type),
		Methods:    make(map[MethodKey]*FuncSig),
	}
	printSig := &FuncSig{TypeParams: []string{"T"}, Params: []Type{&Named{Name: "T"}}, Return: TUnit}
	st.Funcs["print"] = printSig
	st.Funcs["println"] = printSig

	// Synchronization-primitive constructors and the scheduler's two
	// free-standing control functions: there is no
	// declaration syntax for these, so they're seeded as ordinary global
	// functions the same way print/println are.
	anyT := &Named{Name: "T"}
	st.Funcs["mutex"] = &FuncSig{TypeParams: []string{"T"}, Params: []Type{anyT}, Return: &Sync{Kind: SyncMutex, Elem: anyT}}
	st.Funcs["rwlock"] = &FuncSig{TypeParams: []string{"T"}, Params: []Type{anyT}, Return: &Sync{Kind: SyncRwLock, Elem: anyT}}
	st.Funcs["atomic_int"] = &FuncSig{Params: []Type{TInt}, Return: &Sync{Kind: SyncAtomicInt}}
	st.Funcs["atomic_uint"] = &FuncSig{Params: []Type{TUint}, Return: &Sync{Kind: SyncAtomicUint}}
	st.Funcs["atomic_bool"] = &FuncSig{Params: []Type{TBool}, Return: &Sync{Kind: SyncAtomicBool}}
	st.Funcs["wait_all"] = &FuncSig{Return: TUnit}
	st.Funcs["sleep"] = &FuncSig{Params: []Type{TInt}, Return: TUnit}
	return st
}

// VariantEnum finds which registered enum declares a variant named name,
// used to resolve bare `Some` / `IdentPattern` style variant references
// (`Enum::Variant` paths look the enum up directly instead).
func (st *SymbolTable) VariantEnum(name string) (enumName string, variant *EnumVariantInfo, ok bool) {
	for en, info := range st.Enums {
		if v, ok := info.Variants[name]; ok {
			return en, v, true
		}
	}
	return "", nil, false
}
