package genart

import "math"

// maxStackDepth bounds the operand/frame stack; exceeding it is the
// VM's only overflow condition (spec's error handling design, "Fatal
// everywhere: ... stack-effect invariant").
const maxStackDepth = 1 << 16

// VM executes a compiled Program. It owns the render-list, matrix
// stack, bitmap cache and PRNG a program's NATIVE calls act on, so a
// fresh VM is cheap and a caller never needs to reset global state
// between runs (spec §5 "Concurrency & Resource Model": one VM per
// goroutine, nothing shared).
type VM struct {
	stack []Var
	ip    int
	fp    int
	frames []frame

	prog *Program

	globals []Var
	prng    *PRNG

	renderList  *RenderList
	matrixStack *MatrixStack
	bitmaps     *BitmapCache

	Probes []Var

	// Debug, when set, turns on per-opcode execution counters in
	// OpCounts, so the CLI's --profiling flag can print a report
	// after the run without this VM paying for counting otherwise.
	Debug    bool
	OpCounts [int(OpStop) + 1]uint64

	maxStack int
}

// NewVM builds a VM ready to run prog. nglobals must be at least the
// number of globals prog (and any preamble run before it) declares.
// The stack depth limit defaults to maxStackDepth; call SetConfig to
// override it from a Config's vm.max_stack_depth setting.
func NewVM(prog *Program, nglobals int, prng *PRNG) *VM {
	return &VM{
		prog:        prog,
		globals:     make([]Var, nglobals),
		prng:        prng,
		renderList:  NewRenderList(),
		matrixStack: NewMatrixStack(),
		bitmaps:     NewBitmapCache(nil),
		maxStack:    maxStackDepth,
	}
}

// SetConfig overrides this VM's resource limits from cfg (spec's
// config layer, vm.max_stack_depth).
func (vm *VM) SetConfig(cfg *Config) {
	vm.maxStack = cfg.GetInt("vm.max_stack_depth")
}

// RenderList exposes the packets accumulated by drawing calls.
func (vm *VM) RenderList() *RenderList { return vm.renderList }

// Run executes prog (or, if vm was built by NewVM(prog, ...), the
// program it already holds) to completion, returning the final
// top-of-stack result.
func (vm *VM) Run() (Var, error) {
	return vm.runCurrentProgram()
}

// RunProgram replaces the program a VM executes and runs it from a
// clean stack and frame list, but keeps this VM's globals, PRNG,
// render list, matrix stack and bitmap cache untouched — the shape a
// preamble program followed by the main program needs (spec §4.5
// "Preamble": "its globals persist into the main program via the
// Global memory segment").
func (vm *VM) RunProgram(prog *Program) (Var, error) {
	vm.prog = prog
	vm.stack = nil
	vm.frames = nil
	vm.fp = 0
	vm.ip = 0
	return vm.runCurrentProgram()
}

func (vm *VM) runCurrentProgram() (Var, error) {
	vm.frames = append(vm.frames, frame{fp: 0, nlocals: vm.prog.TopNLocals})
	vm.fp = 0
	if err := vm.growTo(frameHeaderSize + vm.prog.TopNLocals); err != nil {
		return Var{}, err
	}
	vm.stack[0] = NewInt(int32(len(vm.prog.Code))) // callerIP sentinel: falls off the end if RET is ever hit
	vm.stack[1] = NewInt(-1)
	vm.stack[2] = NewInt(0)
	vm.stack[3] = NewInt(int32(vm.prog.TopNLocals))

	vm.ip = 0
	for {
		if vm.ip < 0 || vm.ip >= len(vm.prog.Code) {
			return Var{}, newErr(ErrVM, "instruction pointer %d out of bounds", vm.ip)
		}
		stop, err := vm.step()
		if err != nil {
			return Var{}, err
		}
		if stop {
			break
		}
	}
	if len(vm.stack) == 0 {
		return Var{}, nil
	}
	return vm.stack[len(vm.stack)-1], nil
}

func (vm *VM) growTo(n int) error {
	if n > vm.maxStack {
		return vmStackOverflow("requested depth %d exceeds limit %d", n, vm.maxStack)
	}
	for len(vm.stack) < n {
		vm.stack = append(vm.stack, Var{})
	}
	return nil
}

func (vm *VM) push(v Var) error {
	if len(vm.stack) >= vm.maxStack {
		return vmStackOverflow("at ip %d", vm.ip)
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() (Var, error) {
	if len(vm.stack) <= vm.frameFloor() {
		return Var{}, vmStackUnderflow("at ip %d", vm.ip)
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

// frameFloor is the lowest stack index the current frame may pop
// below: its header, argument and local slots are off-limits to POP.
func (vm *VM) frameFloor() int {
	f := vm.curFrame()
	return f.fp + frameHeaderSize + 2*f.argc + f.nlocals
}

func (vm *VM) readMem(m BArg) (Var, error) {
	switch m.Mem {
	case MemArgument:
		return vm.stack[vm.argSlot(m.I)], nil
	case MemLocal:
		return vm.stack[vm.localSlot(m.I)], nil
	case MemGlobal:
		if int(m.I) >= len(vm.globals) {
			return Var{}, newErr(ErrVM, "global slot %d out of range", m.I)
		}
		return vm.globals[m.I], nil
	case MemVoid:
		return Var{}, nil
	default:
		return Var{}, newErr(ErrVM, "cannot read from constant memory directly")
	}
}

func (vm *VM) writeMem(m BArg, v Var) error {
	switch m.Mem {
	case MemArgument:
		vm.stack[vm.argSlot(m.I)] = v
		return nil
	case MemLocal:
		vm.stack[vm.localSlot(m.I)] = v
		return nil
	case MemGlobal:
		if int(m.I) >= len(vm.globals) {
			return newErr(ErrVM, "global slot %d out of range", m.I)
		}
		vm.globals[m.I] = v
		return nil
	case MemVoid:
		return nil
	default:
		return newErr(ErrVM, "cannot write to constant memory")
	}
}

// step executes exactly one instruction at vm.ip, advancing it (or
// redirecting it, for jumps/calls). It returns stop=true on STOP.
func (vm *VM) step() (bool, error) {
	bc := vm.prog.Code[vm.ip]
	next := vm.ip + 1

	if vm.Debug {
		vm.OpCounts[bc.Op]++
	}

	switch bc.Op {
	case OpLoad:
		var v Var
		if bc.A.Kind == ArgMem {
			var err error
			v, err = vm.readMem(bc.A)
			if err != nil {
				return false, err
			}
		} else {
			v = bc.A.AsVar()
		}
		if err := vm.push(v); err != nil {
			return false, err
		}

	case OpStore:
		v, err := vm.pop()
		if err != nil {
			return false, err
		}
		if err := vm.writeMem(bc.A, v); err != nil {
			return false, err
		}

	case OpStoreF:
		v, err := vm.pop()
		if err != nil {
			return false, err
		}
		if err := vm.writeMem(bc.A, v); err != nil {
			return false, err
		}

	case OpSquish:
		n := int(bc.A.I)
		items, err := vm.popN(n)
		if err != nil {
			return false, err
		}
		if n == 2 && items[0].Kind == VarFloat && items[1].Kind == VarFloat {
			if err := vm.push(NewV2D(items[0].F, items[1].F)); err != nil {
				return false, err
			}
		} else if err := vm.push(NewVector(items)); err != nil {
			return false, err
		}

	case OpAppend:
		value, err := vm.pop()
		if err != nil {
			return false, err
		}
		vec, err := vm.pop()
		if err != nil {
			return false, err
		}
		if vec.Kind != VarVector {
			return false, newErr(ErrVM, "APPEND target is not a vector")
		}
		vec = vec.Clone()
		vec.Vec = append(vec.Vec, value)
		if err := vm.push(vec); err != nil {
			return false, err
		}

	case OpPile:
		n := int(bc.A.I)
		items, err := vm.popN(n)
		if err != nil {
			return false, err
		}
		var flat []Var
		for _, it := range items {
			if it.Kind == VarVector {
				flat = append(flat, it.Vec...)
			} else {
				flat = append(flat, it)
			}
		}
		if err := vm.push(NewVector(flat)); err != nil {
			return false, err
		}

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		if err := vm.binaryArith(bc.Op); err != nil {
			return false, err
		}

	case OpEq, OpGt, OpLt:
		if err := vm.binaryCompare(bc.Op); err != nil {
			return false, err
		}

	case OpAnd, OpOr:
		b, err := vm.pop()
		if err != nil {
			return false, err
		}
		a, err := vm.pop()
		if err != nil {
			return false, err
		}
		var r bool
		if bc.Op == OpAnd {
			r = a.Truthy() && b.Truthy()
		} else {
			r = a.Truthy() || b.Truthy()
		}
		if err := vm.push(NewBool(r)); err != nil {
			return false, err
		}

	case OpSqrt:
		a, err := vm.pop()
		if err != nil {
			return false, err
		}
		if err := vm.push(NewFloat(float32(math.Sqrt(float64(a.F))))); err != nil {
			return false, err
		}

	case OpNot:
		a, err := vm.pop()
		if err != nil {
			return false, err
		}
		if err := vm.push(NewBool(!a.Truthy())); err != nil {
			return false, err
		}

	case OpJump:
		next = int(bc.A.I)

	case OpJumpIf:
		cond, err := vm.pop()
		if err != nil {
			return false, err
		}
		if !cond.Truthy() {
			next = int(bc.A.I)
		}

	case OpCall, OpCall0:
		n, err := vm.doCall(int(bc.A.I), int(bc.B.I), vm.ip+1)
		if err != nil {
			return false, err
		}
		next = n

	case OpCallF, OpCallF0:
		callee, err := vm.pop()
		if err != nil {
			return false, err
		}
		n, err := vm.doCall(int(callee.I), int(bc.B.I), vm.ip+1)
		if err != nil {
			return false, err
		}
		next = n

	case OpRet, OpRet0:
		result, err := vm.pop()
		if err != nil {
			return false, err
		}
		n, err := vm.doReturn(result)
		if err != nil {
			return false, err
		}
		next = n

	case OpNative:
		if err := vm.doNative(Native(bc.A.I), int(bc.B.I)); err != nil {
			return false, err
		}

	case OpVecNonEmpty:
		v, err := vm.readMem(bc.A)
		if err != nil {
			return false, err
		}
		if err := vm.push(NewBool(varLen(v) > 0)); err != nil {
			return false, err
		}

	case OpVecLoadFirst:
		v, err := vm.readMem(bc.A)
		if err != nil {
			return false, err
		}
		items := varItems(v)
		cur := Var{Kind: VarVectorCursor, Cursor: &VectorCursor{Items: items, Index: 0}}
		if err := vm.push(cur); err != nil {
			return false, err
		}
		var first Var
		if len(items) > 0 {
			first = items[0]
		}
		if err := vm.push(first); err != nil {
			return false, err
		}

	case OpVecHasNext:
		cur, err := vm.readMem(bc.A)
		if err != nil {
			return false, err
		}
		if cur.Cursor == nil {
			return false, newErr(ErrVM, "VEC_HAS_NEXT on non-cursor value")
		}
		has := cur.Cursor.Index+1 < len(cur.Cursor.Items)
		if err := vm.push(NewBool(has)); err != nil {
			return false, err
		}

	case OpVecNext:
		cur, err := vm.readMem(bc.A)
		if err != nil {
			return false, err
		}
		if cur.Cursor == nil {
			return false, newErr(ErrVM, "VEC_NEXT on non-cursor value")
		}
		cur.Cursor.Index++
		if err := vm.writeMem(bc.B, cur.Cursor.Items[cur.Cursor.Index]); err != nil {
			return false, err
		}

	case OpStop:
		return true, nil

	default:
		return false, newErr(ErrVM, "unimplemented opcode %s", bc.Op)
	}

	vm.ip = next
	return false, nil
}

func varLen(v Var) int {
	switch v.Kind {
	case VarVector:
		return len(v.Vec)
	case VarV2D:
		return 2
	default:
		return 0
	}
}

func varItems(v Var) []Var {
	switch v.Kind {
	case VarVector:
		cp := make([]Var, len(v.Vec))
		copy(cp, v.Vec)
		return cp
	case VarV2D:
		return []Var{NewFloat(v.F), NewFloat(v.F2)}
	default:
		return nil
	}
}

func (vm *VM) popN(n int) ([]Var, error) {
	items := make([]Var, n)
	for i := n - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

func (vm *VM) binaryArith(op Opcode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	if a.Kind == VarV2D || b.Kind == VarV2D {
		return vm.push2D(op, a, b)
	}
	af, bf := numericOf(a), numericOf(b)
	var r float32
	switch op {
	case OpAdd:
		r = af + bf
	case OpSub:
		r = af - bf
	case OpMul:
		r = af * bf
	case OpDiv:
		if bf == 0 {
			return newErr(ErrVM, "division by zero")
		}
		r = af / bf
	case OpMod:
		if bf == 0 {
			return newErr(ErrVM, "modulo by zero")
		}
		r = float32(math.Mod(float64(af), float64(bf)))
	}
	if a.Kind == VarInt && b.Kind == VarInt {
		return vm.push(NewInt(int32(r)))
	}
	return vm.push(NewFloat(r))
}

func (vm *VM) push2D(op Opcode, a, b Var) error {
	ax, ay := componentsOf(a)
	bx, by := componentsOf(b)
	var rx, ry float32
	switch op {
	case OpAdd:
		rx, ry = ax+bx, ay+by
	case OpSub:
		rx, ry = ax-bx, ay-by
	case OpMul:
		rx, ry = ax*bx, ay*by
	case OpDiv:
		rx, ry = ax/bx, ay/by
	case OpMod:
		rx = float32(math.Mod(float64(ax), float64(bx)))
		ry = float32(math.Mod(float64(ay), float64(by)))
	}
	return vm.push(NewV2D(rx, ry))
}

func componentsOf(v Var) (float32, float32) {
	if v.Kind == VarV2D {
		return v.F, v.F2
	}
	n := numericOf(v)
	return n, n
}

func numericOf(v Var) float32 {
	switch v.Kind {
	case VarInt:
		return float32(v.I)
	case VarFloat:
		return v.F
	case VarLong:
		return float32(v.L)
	default:
		return 0
	}
}

func (vm *VM) binaryCompare(op Opcode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	var r bool
	switch op {
	case OpEq:
		r = varsEqual(a, b)
	case OpGt:
		r = numericOf(a) > numericOf(b)
	case OpLt:
		r = numericOf(a) < numericOf(b)
	}
	return vm.push(NewBool(r))
}

func varsEqual(a, b Var) bool {
	if a.Kind != b.Kind {
		return numericOf(a) == numericOf(b)
	}
	switch a.Kind {
	case VarInt:
		return a.I == b.I
	case VarFloat:
		return a.F == b.F
	case VarBool:
		return a.B == b.B
	case VarV2D:
		return a.F == b.F && a.F2 == b.F2
	case VarName, VarKeyword, VarString:
		return a.I == b.I
	default:
		return false
	}
}

// doCall implements CALL/CALL_0: pop providedCount (label,value)
// pairs, push a new frame for fnIdx, run its default-argument block
// synchronously, apply the provided overrides, and return the address
// the dispatch loop should resume at (the function's body).
func (vm *VM) doCall(fnIdx int, providedCount int, returnTo int) (int, error) {
	if fnIdx < 0 || fnIdx >= len(vm.prog.Fns) {
		return 0, newErr(ErrVM, "call to unknown function index %d", fnIdx)
	}
	fn := vm.prog.Fns[fnIdx]

	type override struct {
		iname int32
		value Var
	}
	overrides := make([]override, providedCount)
	for i := providedCount - 1; i >= 0; i-- {
		value, err := vm.pop()
		if err != nil {
			return 0, err
		}
		label, err := vm.pop()
		if err != nil {
			return 0, err
		}
		overrides[i] = override{iname: label.I, value: value}
	}

	newFp := len(vm.stack)
	if err := vm.growTo(newFp + frameHeaderSize + 2*fn.Argc + fn.NLocals); err != nil {
		return 0, err
	}
	vm.stack[newFp+0] = NewInt(int32(returnTo))
	vm.stack[newFp+1] = NewInt(int32(vm.fp))
	vm.stack[newFp+2] = NewInt(int32(fn.Argc))
	vm.stack[newFp+3] = NewInt(int32(fn.NLocals))
	for i, iname := range fn.ArgInames {
		vm.stack[newFp+frameHeaderSize+2*i] = NewName(iname)
	}

	vm.frames = append(vm.frames, frame{
		fp: newFp, callerIP: returnTo, callerFP: vm.fp, argc: fn.Argc, nlocals: fn.NLocals,
	})
	prevIP := vm.ip
	vm.fp = newFp

	for subIP := fn.ArgAddr; subIP < fn.BodyAddr; {
		vm.ip = subIP
		_, err := vm.step()
		if err != nil {
			return 0, err
		}
		subIP = vm.ip
	}

	for _, ov := range overrides {
		applied := false
		for i, iname := range fn.ArgInames {
			if iname == ov.iname {
				vm.stack[vm.argSlot(int32(i))] = ov.value
				applied = true
				break
			}
		}
		if !applied {
			return 0, newErr(ErrVM, "call to %s: unknown keyword argument", fn.Name)
		}
	}

	vm.ip = prevIP
	return fn.BodyAddr, nil
}

// doReturn pops the current frame, discarding its header/args/locals,
// restores the caller's fp, and leaves result on top of the caller's
// stack.
func (vm *VM) doReturn(result Var) (int, error) {
	if len(vm.frames) == 0 {
		return 0, newErr(ErrVM, "RET with no active frame")
	}
	f := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.stack = vm.stack[:f.fp]
	vm.fp = f.callerFP
	if err := vm.push(result); err != nil {
		return 0, err
	}
	return f.callerIP, nil
}

func (vm *VM) doNative(nv Native, providedCount int) error {
	if int(nv) < 0 || int(nv) >= len(nativeTable) {
		return newErr(ErrNative, "unknown native ordinal %d", nv)
	}
	def := nativeTable[nv]
	args := make([]Var, len(def.Params))
	for i, p := range def.Params {
		args[i] = p.Default
	}
	for i := 0; i < providedCount; i++ {
		value, err := vm.pop()
		if err != nil {
			return err
		}
		slot, err := vm.pop()
		if err != nil {
			return err
		}
		idx := int(slot.I)
		if idx < 0 || idx >= len(args) {
			return newErr(ErrNative, "%s: parameter slot %d out of range", NativeName(int32(nv)+KeywordEnd), idx)
		}
		args[idx] = value
	}
	result, err := def.Handler(vm, args)
	if err != nil {
		return err
	}
	return vm.push(result)
}
