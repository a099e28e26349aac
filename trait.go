package genart

// Trait describes one alterable site discovered by walking a parsed
// program: the default value's shape, the compiled alterator program
// that samples a replacement gene, and enough bookkeeping to know
// where the site sits within a Vector literal (spec §3 "Trait",
// §4.4 "Trait extraction").
type Trait struct {
	Default Gene

	// Alterator is the compiled `(gen/... ...)` (or arbitrary
	// expression) that produces a fresh gene when sampled.
	Alterator *Program

	WithinVector bool
	Index        int // position among sibling gene sites, 0 if not WithinVector
}

// TraitList is the ordered sequence of alterable sites in one parsed
// program. Order is the tree-walk (pre-order, left-to-right) order in
// which `{default alterator}` sites were written, which is also the
// order a Genotype's gene sequence must follow.
type TraitList struct {
	Traits []Trait
}

// ExtractTraits walks top's semantic forms and compiles one Trait per
// alterable site. A site inside a gene-bearing Vector contributes one
// Trait per semantic child (WithinVector=true), since the vector's own
// Meta.Gene covers the whole literal rather than a single scalar
// (spec §4.4). Every non-Name default is compiled and run through a
// private VM seeded with the preamble, so an alterable default can be
// any expression the language can evaluate — including a colour or
// other NATIVE constructor — not just a literal.
func ExtractTraits(top []*Node, wt *WordTable) (*TraitList, error) {
	preamble, seedGlobals, seedOrder, err := CompilePreamble()
	if err != nil {
		return nil, err
	}
	env := &traitCompileEnv{wt: wt, preamble: preamble, seedGlobals: seedGlobals, seedOrder: seedOrder}

	tl := &TraitList{}
	for _, n := range top {
		if !n.IsSemantic() {
			continue
		}
		if err := walkTraits(n, env, tl); err != nil {
			return nil, err
		}
	}
	return tl, nil
}

// traitCompileEnv bundles the word table and compiled preamble every
// defaultValueOf call needs, so its globals (colour presets and the
// like) are visible to a default expression exactly as they are to
// the main program (spec §4.5).
type traitCompileEnv struct {
	wt          *WordTable
	preamble    *Program
	seedGlobals map[string]int32
	seedOrder   []string
}

func walkTraits(n *Node, env *traitCompileEnv, tl *TraitList) error {
	if n.Meta.Gene != nil {
		if n.Kind == NodeVector {
			children := n.SemanticChildren()
			for i, child := range children {
				def, err := defaultValueOf(child, env)
				if err != nil {
					return err
				}
				prog, err := compileAlterator(n.Meta.Gene.ParamAST, env.wt)
				if err != nil {
					return err
				}
				tl.Traits = append(tl.Traits, Trait{
					Default:      def,
					Alterator:    prog,
					WithinVector: true,
					Index:        i,
				})
			}
			return nil
		}
		def, err := defaultValueOf(n, env)
		if err != nil {
			return err
		}
		prog, err := compileAlterator(n.Meta.Gene.ParamAST, env.wt)
		if err != nil {
			return err
		}
		tl.Traits = append(tl.Traits, Trait{Default: def, Alterator: prog})
		return nil
	}

	for _, child := range n.SemanticChildren() {
		if err := walkTraits(child, env, tl); err != nil {
			return err
		}
	}
	return nil
}

// defaultValueOf evaluates a default expression into the Gene it
// contributes. A Name node becomes a Var::Name without execution: it
// doesn't make sense to run a bare name through the VM (it may refer
// to a structure, like a `focal/build-*` result, that isn't itself a
// sane default), so the node's interned name is carried directly.
// Every other node kind is compiled as its own one-off program and run
// to completion against a VM seeded with the preamble's globals, which
// is what actually evaluates `(col/rgb ...)`-shaped defaults, vector
// literals, and anything else the language can express.
func defaultValueOf(n *Node, env *traitCompileEnv) (Gene, error) {
	if n.Kind == NodeName {
		switch n.Iname {
		case KeywordStart + int32(KwTrue):
			return NewBool(true), nil
		case KeywordStart + int32(KwFalse):
			return NewBool(false), nil
		default:
			return NewName(n.Iname), nil
		}
	}

	prog, err := Compile([]*Node{n}, env.wt, CompileOptions{
		SeedGlobals:     env.seedGlobals,
		SeedGlobalOrder: env.seedOrder,
	})
	if err != nil {
		return Gene{}, err
	}

	prng := NewPRNG(0)
	vm := NewVM(prog, len(prog.GlobalNames), &prng)
	if _, err := vm.RunProgram(env.preamble); err != nil {
		return Gene{}, err
	}
	result, err := vm.RunProgram(prog)
	if err != nil {
		return Gene{}, err
	}
	return result, nil
}

// compileAlterator compiles the expression to the right of a default
// value inside `{default alterator}` as its own zero-argument program,
// sharing the default program's Global namespace isn't required since
// alterators are pure generators (spec §4.4): they see no user globals,
// only the NATIVE `gen/*` surface and literals.
func compileAlterator(n *Node, wt *WordTable) (*Program, error) {
	return Compile([]*Node{n}, wt, CompileOptions{})
}
