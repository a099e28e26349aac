package genart

// scope tracks the local-variable bindings visible while compiling one
// function body (or the implicit top-level body): argument names,
// loop-bound names and plain locals. Globals live on the compiler
// itself since they are shared across every scope.
type scope struct {
	args      map[string]int32
	locals    map[string]int32
	nextLocal int32
}

func newScope() *scope {
	return &scope{args: map[string]int32{}, locals: map[string]int32{}}
}

func (s *scope) newLocal(name string) int32 {
	off := s.nextLocal
	s.nextLocal++
	if name != "" {
		s.locals[name] = off
	}
	return off
}

// compiler lowers a parsed tree (plus an optional genotype) into a
// Program. It runs a first pass over top-level forms to pre-register
// every global and every user-defined function, so forward references
// resolve without a separate patch list (spec §4.5's fixup
// discussion is instead satisfied by addressing functions through a
// stable Fns-table index, filled in once each body finishes
// compiling), then compiles bodies in a second pass.
type compiler struct {
	wt       *WordTable
	genotype *Genotype

	code []Bytecode

	globals     map[string]int32 // name -> slot
	globalOrder []string

	fnByName map[string]int // name -> index into fns
	fns      []FnInfo
	fnNodes  []*Node // parallel to fns, the original `fn` AST node

	scope *scope
}

// CompileOptions lets a caller seed the compiler's global table from
// an already-compiled preamble, so `define`s in the preamble and the
// main program share the same Global memory segment (spec §4.5
// "Preamble"), and optionally supplies a Genotype whose genes replace
// alterable-site defaults as they're encountered in tree order.
type CompileOptions struct {
	SeedGlobals     map[string]int32
	SeedGlobalOrder []string
	Genotype        *Genotype
}

// Compile lowers top, the nodes of one parse (whitespace/comment
// trivia included — Compile drops non-semantic top-level nodes before
// compiling), into a Program.
func Compile(top []*Node, wt *WordTable, opts CompileOptions) (*Program, error) {
	c := &compiler{
		wt:       wt,
		genotype: opts.Genotype,
		globals:  map[string]int32{},
		fnByName: map[string]int{},
	}
	for name, slot := range opts.SeedGlobals {
		c.globals[name] = slot
	}
	c.globalOrder = append(c.globalOrder, opts.SeedGlobalOrder...)

	var semantic []*Node
	for _, n := range top {
		if n.IsSemantic() {
			semantic = append(semantic, n)
		}
	}

	if err := c.registerPass(semantic); err != nil {
		return nil, err
	}

	skipJumpIdx := c.emit(Bytecode{Op: OpJump, A: argInt(0)})

	for i := range c.fns {
		if err := c.compileFnBody(i); err != nil {
			return nil, err
		}
	}

	mainStart := len(c.code)
	c.code[skipJumpIdx].A = argInt(int32(mainStart))

	c.scope = newScope()
	for _, n := range semantic {
		if err := c.compileTopLevelForm(n); err != nil {
			return nil, err
		}
	}
	c.emit(Bytecode{Op: OpStop})

	return &Program{
		Data:        map[int32]string{},
		Code:        c.code,
		Fns:         c.fns,
		FnByIname:   map[int32]int{},
		GlobalNames: c.globalOrder,
		TopNLocals:  int(c.scope.nextLocal),
	}, nil
}

func (c *compiler) emit(bc Bytecode) int {
	c.code = append(c.code, bc)
	return len(c.code) - 1
}

func (c *compiler) patchTarget(idx int, target int) {
	c.code[idx].A = argInt(int32(target))
}

// registerPass collects every top-level `define` (including nested
// destructuring) and every top-level `fn` signature before any body
// is compiled, so a function may call another defined later in the
// same source.
func (c *compiler) registerPass(top []*Node) error {
	for _, n := range top {
		switch {
		case c.isForm(n, KwDefine):
			if err := c.registerDefine(n); err != nil {
				return err
			}
		case c.isForm(n, KwFn):
			if err := c.registerFn(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) isForm(n *Node, kw Keyword) bool {
	if n.Kind != NodeList {
		return false
	}
	sc := n.SemanticChildren()
	if len(sc) == 0 || sc[0].Kind != NodeName {
		return false
	}
	return sc[0].Iname == KeywordStart+int32(kw)
}

func (c *compiler) registerDefine(n *Node) error {
	sc := n.SemanticChildren()
	if len(sc) < 2 {
		return newErr(ErrCompiler, "define requires a target and a value")
	}
	return c.registerDefineTarget(sc[1])
}

func (c *compiler) registerDefineTarget(target *Node) error {
	switch target.Kind {
	case NodeName:
		if _, exists := c.globals[target.Text]; !exists {
			c.globals[target.Text] = int32(len(c.globalOrder))
			c.globalOrder = append(c.globalOrder, target.Text)
		}
		return nil
	case NodeVector:
		for _, child := range target.SemanticChildren() {
			if err := c.registerDefineTarget(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return newErr(ErrCompiler, "invalid define target")
	}
}

func (c *compiler) registerFn(n *Node) error {
	sc := n.SemanticChildren()
	if len(sc) < 2 || sc[1].Kind != NodeList {
		return newErr(ErrCompiler, "malformed fn form")
	}
	sig := sc[1].SemanticChildren()
	if len(sig) == 0 || sig[0].Kind != NodeName {
		return newErr(ErrCompiler, "fn signature must start with a name")
	}
	name := sig[0].Text

	var argNames []string
	var argInames []int32
	i := 1
	for i < len(sig) {
		if sig[i].Kind != NodeLabel {
			return newErr(ErrCompiler, "expected labeled argument in fn signature")
		}
		argNames = append(argNames, sig[i].Text)
		argInames = append(argInames, sig[i].Iname)
		i += 2 // skip the default-value expression
	}

	idx := len(c.fns)
	c.fns = append(c.fns, FnInfo{
		Name:      name,
		NameIname: sig[0].Iname,
		Argc:      len(argNames),
		ArgInames: argInames,
	})
	c.fnNodes = append(c.fnNodes, n)
	c.fnByName[name] = idx
	return nil
}

func fnArgNames(sig []*Node) []string {
	var names []string
	i := 1
	for i < len(sig) {
		names = append(names, sig[i].Text)
		i += 2
	}
	return names
}

// compileFnBody compiles the i-th pre-registered function's
// default-argument block and body, filling in its ArgAddr/BodyAddr.
func (c *compiler) compileFnBody(i int) error {
	fn := &c.fns[i]
	node := c.fnNodes[i]
	sc := node.SemanticChildren()
	sig := sc[1].SemanticChildren()
	body := sc[2:]

	prevScope := c.scope
	c.scope = newScope()
	for idx, argName := range fnArgNames(sig) {
		c.scope.args[argName] = int32(idx)
	}

	fn.ArgAddr = len(c.code)
	argIdx, argI := 1, 0
	for argIdx < len(sig) {
		defaultExpr := sig[argIdx+1]
		if err := c.compileExpr(defaultExpr); err != nil {
			return err
		}
		c.emit(Bytecode{Op: OpStore, A: argMem(MemArgument, int32(argI))})
		argIdx += 2
		argI++
	}

	fn.BodyAddr = len(c.code)
	if err := c.compileBody(body); err != nil {
		return err
	}
	c.emit(Bytecode{Op: OpRet})

	fn.NLocals = int(c.scope.nextLocal)
	c.scope = prevScope
	return nil
}

func (c *compiler) compileTopLevelForm(n *Node) error {
	switch {
	case c.isForm(n, KwDefine):
		return c.compileDefine(n)
	case c.isForm(n, KwFn):
		return nil
	default:
		return c.compileExpr(n)
	}
}

// compileBody compiles a sequence of body forms, discarding every
// result but the last (spec's implicit-progn body semantics).
func (c *compiler) compileBody(nodes []*Node) error {
	produced := false
	for _, n := range nodes {
		if !n.IsSemantic() {
			continue
		}
		if produced {
			c.emit(Bytecode{Op: OpStore, A: argMem(MemVoid, 0)})
		}
		if err := c.compileExpr(n); err != nil {
			return err
		}
		produced = true
	}
	if !produced {
		c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
	}
	return nil
}

func (c *compiler) compileDefine(n *Node) error {
	sc := n.SemanticChildren()
	return c.compileDefineAssign(sc[1], sc[2])
}

func (c *compiler) compileDefineAssign(target, valueNode *Node) error {
	switch target.Kind {
	case NodeName:
		if err := c.compileExpr(valueNode); err != nil {
			return err
		}
		slot := c.globals[target.Text]
		c.emit(Bytecode{Op: OpStore, A: argMem(MemGlobal, slot)})
		return nil
	case NodeVector:
		if valueNode.Kind != NodeVector {
			return newErr(ErrCompiler, "destructuring define requires a vector literal value")
		}
		targets := target.SemanticChildren()
		values := valueNode.SemanticChildren()
		if len(targets) != len(values) {
			return newErr(ErrCompiler, "destructuring define arity mismatch")
		}
		for i, tgt := range targets {
			if err := c.compileDefineAssign(tgt, values[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return newErr(ErrCompiler, "invalid define target")
	}
}

// resolveName classifies a Name node's binding: argument, local or
// global, in that precedence order (innermost scope wins).
func (c *compiler) resolveName(text string) (BArg, error) {
	if off, ok := c.scope.args[text]; ok {
		return argMem(MemArgument, off), nil
	}
	if off, ok := c.scope.locals[text]; ok {
		return argMem(MemLocal, off), nil
	}
	if slot, ok := c.globals[text]; ok {
		return argMem(MemGlobal, slot), nil
	}
	return BArg{}, newErr(ErrCompiler, "undefined name %q", text)
}

// compileExpr compiles one semantic node as a value-producing
// expression, leaving exactly one Var on the stack. A node carrying
// gene info is, when a Genotype is active, replaced wholesale by its
// next gene(s) rather than compiled structurally (spec §4.4: "the
// compiler consults genotype.clone_next_gene() and emits the gene's
// value as a constant instead of compiling the original literal").
func (c *compiler) compileExpr(n *Node) error {
	if n.Meta.Gene != nil && c.genotype != nil {
		return c.compileGeneSite(n)
	}

	switch n.Kind {
	case NodeFloat:
		c.emit(Bytecode{Op: OpLoad, A: argFloat(n.FloatVal)})
		return nil
	case NodeString:
		c.emit(Bytecode{Op: OpLoad, A: argString(0)})
		return nil
	case NodeName:
		return c.compileNameRef(n)
	case NodeFromName:
		return c.compileFromName(n)
	case NodeVector:
		return c.compileVectorLiteral(n)
	case NodeTilde:
		c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
		return nil
	case NodeList:
		return c.compileList(n)
	default:
		return newErr(ErrCompiler, "node of kind %s cannot be compiled as an expression", n.Kind)
	}
}

func (c *compiler) compileGeneSite(n *Node) error {
	if n.Kind == NodeVector {
		children := n.SemanticChildren()
		for range children {
			g := c.genotype.CloneNextGene()
			c.pushConstant(g)
		}
		c.emit(Bytecode{Op: OpSquish, A: argInt(int32(len(children)))})
		return nil
	}
	g := c.genotype.CloneNextGene()
	c.pushConstant(g)
	return nil
}

func (c *compiler) pushConstant(v Var) {
	switch v.Kind {
	case VarInt:
		c.emit(Bytecode{Op: OpLoad, A: argInt(v.I)})
	case VarFloat:
		c.emit(Bytecode{Op: OpLoad, A: argFloat(v.F)})
	case VarBool:
		c.emit(Bytecode{Op: OpLoad, A: argInt(boolToI32(v.B))})
	case VarKeyword:
		c.emit(Bytecode{Op: OpLoad, A: argKeyword(v.I)})
	case VarName:
		c.emit(Bytecode{Op: OpLoad, A: argName(v.I)})
	case VarColour:
		c.emit(Bytecode{Op: OpLoad, A: argColour(v)})
	case VarV2D:
		c.emit(Bytecode{Op: OpLoad, A: argFloat(v.F)})
		c.emit(Bytecode{Op: OpLoad, A: argFloat(v.F2)})
		c.emit(Bytecode{Op: OpSquish, A: argInt(2)})
	default:
		c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
	}
}

func boolToI32(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func (c *compiler) compileNameRef(n *Node) error {
	switch n.Iname {
	case KeywordStart + int32(KwTrue):
		c.emit(Bytecode{Op: OpLoad, A: argInt(1)})
		return nil
	case KeywordStart + int32(KwFalse), KeywordStart + int32(KwNil), KeywordStart + int32(KwVoid):
		c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
		return nil
	}
	a, err := c.resolveName(n.Text)
	if err != nil {
		return err
	}
	c.emit(Bytecode{Op: OpLoad, A: a})
	return nil
}

// compileFromName handles `name.field`-desugared nodes. Member access
// is not compiled: every FromName node yields a compiler error.
func (c *compiler) compileFromName(n *Node) error {
	return newErr(ErrCompiler, "member access on %q is not supported standalone", n.Text)
}

func (c *compiler) compileVectorLiteral(n *Node) error {
	children := n.SemanticChildren()
	for _, child := range children {
		if err := c.compileExpr(child); err != nil {
			return err
		}
	}
	c.emit(Bytecode{Op: OpSquish, A: argInt(int32(len(children)))})
	return nil
}

func (c *compiler) compileList(n *Node) error {
	sc := n.SemanticChildren()
	if len(sc) == 0 {
		c.emit(Bytecode{Op: OpSquish, A: argInt(0)})
		return nil
	}
	head := sc[0]
	if head.Kind == NodeName && IsKeyword(head.Iname) {
		kw := Keyword(head.Iname - KeywordStart)
		switch kw {
		case KwIf:
			return c.compileIf(sc)
		case KwLoop:
			return c.compileLoop(sc)
		case KwEach, KwFence:
			return c.compileEach(sc)
		case KwOnMatrixStack:
			return c.compileOnMatrixStack(sc)
		case KwSetq:
			return c.compileSetq(sc)
		case KwQuote:
			return c.compileQuote(sc)
		case KwAddressOf:
			return c.compileAddressOf(sc)
		case KwFnCall:
			return c.compileFnCall(sc)
		case KwAdd, KwSub, KwMul, KwDiv, KwMod, KwEq, KwGt, KwLt, KwAnd, KwOr:
			return c.compileBinaryFold(kw, sc[1:])
		case KwSqrt, KwNot:
			return c.compileUnary(kw, sc[1:])
		case KwDefine, KwFn:
			return newErr(ErrCompiler, "%s is only valid as a top-level form", KeywordName(head.Iname))
		}
	}
	if head.Kind == NodeName && IsNative(head.Iname) {
		return c.compileNativeCall(Native(head.Iname-KeywordEnd), sc[1:])
	}
	if head.Kind == NodeName {
		if idx, ok := c.fnByName[head.Text]; ok {
			return c.compileCall(idx, sc[1:])
		}
	}
	return newErr(ErrCompiler, "unknown call target %q", head.Text)
}

func (c *compiler) compileBinaryFold(kw Keyword, args []*Node) error {
	if len(args) == 0 {
		return newErr(ErrCompiler, "%s requires at least one operand", keywordNames[kw])
	}
	if err := c.compileExpr(args[0]); err != nil {
		return err
	}
	op := binaryOpcode(kw)
	for _, a := range args[1:] {
		if err := c.compileExpr(a); err != nil {
			return err
		}
		c.emit(Bytecode{Op: op})
	}
	return nil
}

func binaryOpcode(kw Keyword) Opcode {
	switch kw {
	case KwAdd:
		return OpAdd
	case KwSub:
		return OpSub
	case KwMul:
		return OpMul
	case KwDiv:
		return OpDiv
	case KwMod:
		return OpMod
	case KwEq:
		return OpEq
	case KwGt:
		return OpGt
	case KwLt:
		return OpLt
	case KwAnd:
		return OpAnd
	default:
		return OpOr
	}
}

func (c *compiler) compileUnary(kw Keyword, args []*Node) error {
	if len(args) != 1 {
		return newErr(ErrCompiler, "%s takes exactly one operand", keywordNames[kw])
	}
	if err := c.compileExpr(args[0]); err != nil {
		return err
	}
	if kw == KwSqrt {
		c.emit(Bytecode{Op: OpSqrt})
	} else {
		c.emit(Bytecode{Op: OpNot})
	}
	return nil
}

// compileIf lowers `(if cond then else?)`. JUMP_IF jumps when the
// popped condition is false, so it naturally expresses "skip to else".
func (c *compiler) compileIf(sc []*Node) error {
	if len(sc) < 3 {
		return newErr(ErrCompiler, "if requires a condition and a then-branch")
	}
	if err := c.compileExpr(sc[1]); err != nil {
		return err
	}
	jumpToElse := c.emit(Bytecode{Op: OpJumpIf, A: argInt(0)})
	if err := c.compileExpr(sc[2]); err != nil {
		return err
	}
	jumpToEnd := c.emit(Bytecode{Op: OpJump, A: argInt(0)})
	c.patchTarget(jumpToElse, len(c.code))
	if len(sc) > 3 {
		if err := c.compileExpr(sc[3]); err != nil {
			return err
		}
	} else {
		c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
	}
	c.patchTarget(jumpToEnd, len(c.code))
	return nil
}

// parseBinding reads a `(var label: expr)` iteration signature shared
// by `loop`, `each` and `fence`.
func (c *compiler) parseBinding(sig *Node) (varName string, expr *Node, err error) {
	parts := sig.SemanticChildren()
	if len(parts) != 3 || parts[0].Kind != NodeName || parts[1].Kind != NodeLabel {
		return "", nil, newErr(ErrCompiler, "malformed iteration binding")
	}
	return parts[0].Text, parts[2], nil
}

// lowerIteration compiles the shared each/loop/fence machinery: given
// code that pushes the iterand Vector/V2D onto the stack, it walks it
// with VEC_NON_EMPTY/VEC_LOAD_FIRST/VEC_HAS_NEXT/VEC_NEXT (spec §4.6),
// binding varName to a fresh local for each element in turn while
// compiling body.
func (c *compiler) lowerIteration(varName string, pushIterand func() error, body []*Node) error {
	if err := pushIterand(); err != nil {
		return err
	}
	lIter := c.scope.newLocal("")
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lIter)})

	c.emit(Bytecode{Op: OpVecNonEmpty, A: argMem(MemLocal, lIter)})
	skipAll := c.emit(Bytecode{Op: OpJumpIf, A: argInt(0)})

	lCursor := c.scope.newLocal("")
	lX := c.scope.newLocal(varName)
	c.emit(Bytecode{Op: OpVecLoadFirst, A: argMem(MemLocal, lIter)})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lX)})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lCursor)})

	bodyStart := len(c.code)
	if err := c.compileBody(body); err != nil {
		return err
	}
	c.emit(Bytecode{Op: OpStore, A: argMem(MemVoid, 0)})

	c.emit(Bytecode{Op: OpVecHasNext, A: argMem(MemLocal, lCursor)})
	exitLoop := c.emit(Bytecode{Op: OpJumpIf, A: argInt(0)})
	c.emit(Bytecode{Op: OpVecNext, A: argMem(MemLocal, lCursor), B: argMem(MemLocal, lX)})
	c.emit(Bytecode{Op: OpJump, A: argInt(int32(bodyStart))})

	c.patchTarget(exitLoop, len(c.code))
	c.patchTarget(skipAll, len(c.code))
	c.emit(Bytecode{Op: OpLoad, A: argInt(1)})
	return nil
}

func (c *compiler) compileEach(sc []*Node) error {
	if len(sc) < 2 || sc[1].Kind != NodeList {
		return newErr(ErrCompiler, "malformed each/fence form")
	}
	varName, expr, err := c.parseBinding(sc[1])
	if err != nil {
		return err
	}
	body := sc[2:]
	return c.lowerIteration(varName, func() error { return c.compileExpr(expr) }, body)
}

// compileLoop lowers `(loop (i upto: n) body)`. When n is a literal
// float, the range vector is built once at compile time; otherwise a
// small runtime loop builds it via ADD/APPEND, and either way the
// result feeds the same VEC_*-based lowerIteration as `each`.
func (c *compiler) compileLoop(sc []*Node) error {
	if len(sc) < 2 || sc[1].Kind != NodeList {
		return newErr(ErrCompiler, "malformed loop form")
	}
	varName, nExpr, err := c.parseBinding(sc[1])
	if err != nil {
		return err
	}
	body := sc[2:]

	if nExpr.Kind == NodeFloat {
		n := int(nExpr.FloatVal)
		return c.lowerIteration(varName, func() error {
			for i := 0; i <= n; i++ {
				c.emit(Bytecode{Op: OpLoad, A: argInt(int32(i))})
			}
			c.emit(Bytecode{Op: OpSquish, A: argInt(int32(n + 1))})
			return nil
		}, body)
	}

	return c.lowerIteration(varName, func() error {
		return c.compileDynamicRange(nExpr)
	}, body)
}

// compileDynamicRange builds, at runtime, the inclusive integer vector
// [0 .. n] where n is the value of nExpr, leaving it on the stack.
func (c *compiler) compileDynamicRange(nExpr *Node) error {
	lN := c.scope.newLocal("")
	lAcc := c.scope.newLocal("")
	lI := c.scope.newLocal("")

	if err := c.compileExpr(nExpr); err != nil {
		return err
	}
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lN)})
	c.emit(Bytecode{Op: OpSquish, A: argInt(0)})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lAcc)})
	c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lI)})

	condStart := len(c.code)
	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, lI)})
	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, lN)})
	c.emit(Bytecode{Op: OpGt})
	c.emit(Bytecode{Op: OpNot})
	exitBuild := c.emit(Bytecode{Op: OpJumpIf, A: argInt(0)})

	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, lAcc)})
	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, lI)})
	c.emit(Bytecode{Op: OpAppend})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lAcc)})

	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, lI)})
	c.emit(Bytecode{Op: OpLoad, A: argFloat(1)})
	c.emit(Bytecode{Op: OpAdd})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, lI)})
	c.emit(Bytecode{Op: OpJump, A: argInt(int32(condStart))})

	c.patchTarget(exitBuild, len(c.code))
	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, lAcc)})
	return nil
}

// compileOnMatrixStack lowers `(on-matrix-stack transform body)`: it
// pushes transform (left as a V2D translation for the common case),
// compiles body, then emits a matching pop — the VM tracks the actual
// MatrixStack push/pop as a side effect of these two opcodes' NATIVE
// cousins (see native.go `matrix/push`, `matrix/pop`), so the lowering
// here only has to bracket body between them.
func (c *compiler) compileOnMatrixStack(sc []*Node) error {
	if len(sc) < 3 {
		return newErr(ErrCompiler, "on-matrix-stack requires a transform and a body")
	}
	c.emit(Bytecode{Op: OpLoad, A: argKeyword(0)})
	if err := c.compileExpr(sc[1]); err != nil {
		return err
	}
	c.emit(Bytecode{Op: OpNative, A: argNative(NativeMatrixPush), B: argInt(1)})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemVoid, 0)})

	if err := c.compileBody(sc[2:]); err != nil {
		return err
	}
	result := c.scope.newLocal("")
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, result)})
	c.emit(Bytecode{Op: OpNative, A: argNative(NativeMatrixPop), B: argInt(0)})
	c.emit(Bytecode{Op: OpStore, A: argMem(MemVoid, 0)})
	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, result)})
	return nil
}

func (c *compiler) compileSetq(sc []*Node) error {
	if len(sc) != 3 || sc[1].Kind != NodeName {
		return newErr(ErrCompiler, "setq requires a name and a value")
	}
	dest, err := c.resolveName(sc[1].Text)
	if err != nil {
		return err
	}
	if err := c.compileExpr(sc[2]); err != nil {
		return err
	}
	tmp := c.scope.newLocal("")
	c.emit(Bytecode{Op: OpStore, A: argMem(MemLocal, tmp)})
	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, tmp)})
	c.emit(Bytecode{Op: OpStore, A: dest})
	c.emit(Bytecode{Op: OpLoad, A: argMem(MemLocal, tmp)})
	return nil
}

// compileQuote lowers `(quote expr)`/`'expr`: the expression is not
// evaluated, it is pushed as a Name Var carrying its head iname (or,
// for a literal, its literal value), preserving the "node becomes a
// Name Var without execution" rule used for alterable defaults.
func (c *compiler) compileQuote(sc []*Node) error {
	if len(sc) < 2 {
		return newErr(ErrCompiler, "quote requires one operand")
	}
	target := sc[1]
	switch target.Kind {
	case NodeName:
		c.emit(Bytecode{Op: OpLoad, A: argName(target.Iname)})
	case NodeFloat:
		c.emit(Bytecode{Op: OpLoad, A: argFloat(target.FloatVal)})
	case NodeList:
		tsc := target.SemanticChildren()
		if len(tsc) > 0 && tsc[0].Kind == NodeName {
			c.emit(Bytecode{Op: OpLoad, A: argName(tsc[0].Iname)})
		} else {
			c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
		}
	default:
		c.emit(Bytecode{Op: OpLoad, A: argInt(0)})
	}
	return nil
}

// compileAddressOf lowers `(address-of name)` to the callee's index
// into the program's function table, a compile-time constant usable
// later by `fn-call`/CALL_F.
func (c *compiler) compileAddressOf(sc []*Node) error {
	if len(sc) != 2 || sc[1].Kind != NodeName {
		return newErr(ErrCompiler, "address-of requires a function name")
	}
	idx, ok := c.fnByName[sc[1].Text]
	if !ok {
		return newErr(ErrCompiler, "address-of: unknown function %q", sc[1].Text)
	}
	c.emit(Bytecode{Op: OpLoad, A: argInt(int32(idx))})
	return nil
}

// compileFnCall lowers `(fn-call f label: value ...)`, a dynamic call
// through a function-index Var (typically produced by address-of).
func (c *compiler) compileFnCall(sc []*Node) error {
	if len(sc) < 2 {
		return newErr(ErrCompiler, "fn-call requires a callee")
	}
	labels, values, err := splitLabelledArgs(sc[2:])
	if err != nil {
		return err
	}
	for i := range labels {
		c.emit(Bytecode{Op: OpLoad, A: argName(labels[i])})
		if err := c.compileExpr(values[i]); err != nil {
			return err
		}
	}
	// CALL_F pops the callee before the (label, value) pairs, so the
	// callee is pushed last.
	if err := c.compileExpr(sc[1]); err != nil {
		return err
	}
	op := OpCallF
	if len(labels) == 0 {
		op = OpCallF0
	}
	c.emit(Bytecode{Op: op, B: argInt(int32(len(labels)))})
	return nil
}

func splitLabelledArgs(nodes []*Node) (labels []int32, values []*Node, err error) {
	i := 0
	for i < len(nodes) {
		if nodes[i].Kind != NodeLabel {
			return nil, nil, newErr(ErrCompiler, "expected a label in keyword-argument position")
		}
		if i+1 >= len(nodes) {
			return nil, nil, newErr(ErrCompiler, "label %q has no value", nodes[i].Text)
		}
		labels = append(labels, nodes[i].Iname)
		values = append(values, nodes[i+1])
		i += 2
	}
	return labels, values, nil
}

// compileCall lowers a statically-resolved user function call.
func (c *compiler) compileCall(fnIdx int, args []*Node) error {
	labels, values, err := splitLabelledArgs(args)
	if err != nil {
		return err
	}
	for i := range labels {
		c.emit(Bytecode{Op: OpLoad, A: argName(labels[i])})
		if err := c.compileExpr(values[i]); err != nil {
			return err
		}
	}
	op := OpCall
	if len(labels) == 0 {
		op = OpCall0
	}
	c.emit(Bytecode{Op: op, A: argInt(int32(fnIdx)), B: argInt(int32(len(labels)))})
	return nil
}

// compileNativeCall lowers a builtin call. Each provided label is
// resolved, at compile time, to its position in the builtin's
// parameter schema (native.go), so the runtime NATIVE handler never
// needs a word table: it just indexes an array by that position
// (spec §4.7, and see DESIGN.md for why this departs from a literal
// runtime iname match).
func (c *compiler) compileNativeCall(nv Native, args []*Node) error {
	labels, values, err := splitLabelledArgs(args)
	if err != nil {
		return err
	}
	schema := nativeTable[nv].Params
	for i, lbl := range labels {
		slot := -1
		name := c.wt.Name(lbl)
		for s, p := range schema {
			if p.Name == name {
				slot = s
				break
			}
		}
		if slot < 0 {
			return newErr(ErrCompiler, "%s has no parameter %q", NativeName(int32(nv)+KeywordEnd), name)
		}
		c.emit(Bytecode{Op: OpLoad, A: argKeyword(int32(slot))})
		if err := c.compileExpr(values[i]); err != nil {
			return err
		}
	}
	c.emit(Bytecode{Op: OpNative, A: argNative(nv), B: argInt(int32(len(labels)))})
	return nil
}
