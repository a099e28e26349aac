package genart

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldReader walks a whitespace-delimited token stream, the reading
// half of the packed text codec (spec §6.2).
type fieldReader struct {
	fields []string
	pos    int
}

func newFieldReader(s string) *fieldReader {
	return &fieldReader{fields: strings.Fields(s)}
}

func (r *fieldReader) next() (string, error) {
	if r.pos >= len(r.fields) {
		return "", newErr(ErrPackable, "unexpected end of packed stream")
	}
	f := r.fields[r.pos]
	r.pos++
	return f, nil
}

func (r *fieldReader) nextInt() (int32, error) {
	f, err := r.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(f, 10, 32)
	if err != nil {
		return 0, newErr(ErrPackable, "expected integer, found %q", f)
	}
	return int32(n), nil
}

func (r *fieldReader) nextFloat() (float32, error) {
	f, err := r.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(f, 32)
	if err != nil {
		return 0, newErr(ErrPackable, "expected float, found %q", f)
	}
	return float32(v), nil
}

// PackVar encodes a Var as the labelled record described in spec
// §6.2. No word table is consulted: Name, String and Keyword payloads
// are all packed as bare integers and are recovered against whatever
// WordTable the caller supplies at unpack time, same as the rest of
// the iname-bearing surface.
func PackVar(v Var) string {
	switch v.Kind {
	case VarInt:
		return fmt.Sprintf("INT %d", v.I)
	case VarFloat:
		return fmt.Sprintf("FLOAT %s", formatFloat(v.F))
	case VarBool:
		return fmt.Sprintf("BOOLEAN %d", boolDigit(v.B))
	case VarKeyword:
		// This VM's Keyword Var carries a NATIVE schema-slot index
		// (see compiler.go's compileNativeCall), not one of the
		// syntactic keyword enum values spec §6.2 illustrates with
		// `KW <keyword-name>` — packing it as a bare integer is the
		// faithful encoding for what the field actually holds.
		return fmt.Sprintf("KW %d", v.I)
	case VarLong:
		return fmt.Sprintf("LONG %d", v.L)
	case VarName:
		return fmt.Sprintf("NAME %d", v.I)
	case VarString:
		return fmt.Sprintf("STRING %d", v.I)
	case VarColour:
		return fmt.Sprintf("COLOUR %s %s %s %s %s", v.ColourFmt,
			formatFloat(v.E0), formatFloat(v.E1), formatFloat(v.E2), formatFloat(v.E3))
	case VarV2D:
		return fmt.Sprintf("2D %s %s", formatFloat(v.F), formatFloat(v.F2))
	case VarVector:
		parts := make([]string, 0, len(v.Vec)+1)
		parts = append(parts, fmt.Sprintf("VECTOR %d", len(v.Vec)))
		for _, it := range v.Vec {
			parts = append(parts, PackVar(it))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("DEBUG %d %s", len(v.Debug), v.Debug)
	}
}

// UnpackVar is the inverse of PackVar, consuming exactly the fields
// one PackVar call produced.
func UnpackVar(r *fieldReader) (Var, error) {
	tag, err := r.next()
	if err != nil {
		return Var{}, err
	}
	switch tag {
	case "INT":
		n, err := r.nextInt()
		return NewInt(n), err
	case "FLOAT":
		f, err := r.nextFloat()
		return NewFloat(f), err
	case "BOOLEAN":
		n, err := r.nextInt()
		if err != nil {
			return Var{}, err
		}
		return NewBool(n != 0), nil
	case "KW":
		n, err := r.nextInt()
		if err != nil {
			return Var{}, err
		}
		return NewKeyword(n), nil
	case "LONG":
		f, err := r.next()
		if err != nil {
			return Var{}, err
		}
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return Var{}, newErr(ErrPackable, "expected u64, found %q", f)
		}
		return NewLong(n), nil
	case "NAME":
		n, err := r.nextInt()
		return NewName(n), err
	case "STRING":
		n, err := r.nextInt()
		return NewStringVar(n), err
	case "COLOUR":
		fmtName, err := r.next()
		if err != nil {
			return Var{}, err
		}
		cf, ok := colourFormatByName(fmtName)
		if !ok {
			return Var{}, newErr(ErrPackable, "unknown colour format %q", fmtName)
		}
		e0, err := r.nextFloat()
		if err != nil {
			return Var{}, err
		}
		e1, err := r.nextFloat()
		if err != nil {
			return Var{}, err
		}
		e2, err := r.nextFloat()
		if err != nil {
			return Var{}, err
		}
		e3, err := r.nextFloat()
		if err != nil {
			return Var{}, err
		}
		return NewColour(cf, e0, e1, e2, e3), nil
	case "2D":
		x, err := r.nextFloat()
		if err != nil {
			return Var{}, err
		}
		y, err := r.nextFloat()
		if err != nil {
			return Var{}, err
		}
		return NewV2D(x, y), nil
	case "VECTOR":
		n, err := r.nextInt()
		if err != nil {
			return Var{}, err
		}
		items := make([]Var, 0, n)
		for i := int32(0); i < n; i++ {
			item, err := UnpackVar(r)
			if err != nil {
				return Var{}, err
			}
			items = append(items, item)
		}
		return NewVector(items), nil
	case "DEBUG":
		n, err := r.nextInt()
		if err != nil {
			return Var{}, err
		}
		s, err := readN(r, int(n))
		if err != nil {
			return Var{}, err
		}
		return Var{Kind: VarDebug, Debug: s}, nil
	default:
		return Var{}, newErr(ErrPackable, "unknown Var tag %q", tag)
	}
}

// readN recovers a length-prefixed string whose text was split into
// whitespace-delimited fields by the tokenizer; byte length n counts
// the original text, so this rejoins exactly that many source bytes
// (accounting for the single space PackVar used to separate fields).
func readN(r *fieldReader, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	var b strings.Builder
	for b.Len() < n {
		f, err := r.next()
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f)
	}
	return b.String(), nil
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func colourFormatByName(s string) (ColourFormat, bool) {
	switch s {
	case "RGB":
		return ColourRGB, true
	case "HSL":
		return ColourHSL, true
	case "HSLuv":
		return ColourHSLuv, true
	case "HSV":
		return ColourHSV, true
	case "LAB":
		return ColourLAB, true
	default:
		return 0, false
	}
}

// PackGenotype packs a Genotype as its gene count followed by each
// gene's record, in order.
func PackGenotype(g *Genotype) string {
	parts := make([]string, 0, len(g.Genes)+1)
	parts = append(parts, strconv.Itoa(len(g.Genes)))
	for _, gene := range g.Genes {
		parts = append(parts, PackVar(gene))
	}
	return strings.Join(parts, " ")
}

// UnpackGenotype is the inverse of PackGenotype.
func UnpackGenotype(s string) (*Genotype, error) {
	r := newFieldReader(s)
	n, err := r.nextInt()
	if err != nil {
		return nil, err
	}
	genes := make([]Gene, 0, n)
	for i := int32(0); i < n; i++ {
		g, err := UnpackVar(r)
		if err != nil {
			return nil, err
		}
		genes = append(genes, g)
	}
	return &Genotype{Genes: genes}, nil
}

// PackBArg encodes one Bytecode operand.
func PackBArg(a BArg) string {
	switch a.Kind {
	case ArgNone:
		return "NONE"
	case ArgInt:
		return fmt.Sprintf("ARG_INT %d", a.I)
	case ArgFloat:
		return fmt.Sprintf("ARG_FLOAT %s", formatFloat(a.F))
	case ArgName:
		return fmt.Sprintf("ARG_NAME %d", a.I)
	case ArgString:
		return fmt.Sprintf("ARG_STRING %d", a.I)
	case ArgNative:
		return fmt.Sprintf("ARG_NATIVE %s", NativeName(KeywordEnd+a.I))
	case ArgMem:
		return fmt.Sprintf("ARG_MEM %s %d", a.Mem, a.I)
	case ArgKeyword:
		return fmt.Sprintf("ARG_KEYWORD %d", a.I)
	case ArgColour:
		return fmt.Sprintf("ARG_COLOUR %s %s %s %s %s", a.Colour,
			formatFloat(a.C0), formatFloat(a.C1), formatFloat(a.C2), formatFloat(a.C3))
	default:
		return "NONE"
	}
}

// UnpackBArg is the inverse of PackBArg.
func UnpackBArg(r *fieldReader) (BArg, error) {
	tag, err := r.next()
	if err != nil {
		return BArg{}, err
	}
	switch tag {
	case "NONE":
		return argNone(), nil
	case "ARG_INT":
		n, err := r.nextInt()
		return argInt(n), err
	case "ARG_FLOAT":
		f, err := r.nextFloat()
		return argFloat(f), err
	case "ARG_NAME":
		n, err := r.nextInt()
		return argName(n), err
	case "ARG_STRING":
		n, err := r.nextInt()
		return argString(n), err
	case "ARG_NATIVE":
		name, err := r.next()
		if err != nil {
			return BArg{}, err
		}
		iname, ok := nativeByName[name]
		if !ok {
			return BArg{}, newErr(ErrPackable, "unknown native %q in packed stream", name)
		}
		return argNative(Native(iname - KeywordEnd)), nil
	case "ARG_MEM":
		memName, err := r.next()
		if err != nil {
			return BArg{}, err
		}
		mem, ok := memKindByName(memName)
		if !ok {
			return BArg{}, newErr(ErrPackable, "unknown memory kind %q", memName)
		}
		n, err := r.nextInt()
		if err != nil {
			return BArg{}, err
		}
		return argMem(mem, n), nil
	case "ARG_KEYWORD":
		n, err := r.nextInt()
		return argKeyword(n), err
	case "ARG_COLOUR":
		fmtName, err := r.next()
		if err != nil {
			return BArg{}, err
		}
		cf, ok := colourFormatByName(fmtName)
		if !ok {
			return BArg{}, newErr(ErrPackable, "unknown colour format %q", fmtName)
		}
		c0, err := r.nextFloat()
		if err != nil {
			return BArg{}, err
		}
		c1, err := r.nextFloat()
		if err != nil {
			return BArg{}, err
		}
		c2, err := r.nextFloat()
		if err != nil {
			return BArg{}, err
		}
		c3, err := r.nextFloat()
		if err != nil {
			return BArg{}, err
		}
		return BArg{Kind: ArgColour, Colour: cf, C0: c0, C1: c1, C2: c2, C3: c3}, nil
	default:
		return BArg{}, newErr(ErrPackable, "unknown BArg tag %q", tag)
	}
}

func memKindByName(s string) (MemKind, bool) {
	switch s {
	case "arg":
		return MemArgument, true
	case "local":
		return MemLocal, true
	case "global":
		return MemGlobal, true
	case "const":
		return MemConstant, true
	case "void":
		return MemVoid, true
	default:
		return 0, false
	}
}

// PackOpcode packs an Opcode by enum name, per spec §6.2, so the
// encoding survives reordering the Opcode const block so long as
// opNames stays in step with it.
func PackOpcode(op Opcode) string { return op.String() }

// UnpackOpcode is the inverse of PackOpcode.
func UnpackOpcode(name string) (Opcode, error) {
	for i, n := range opNames {
		if n == name {
			return Opcode(i), nil
		}
	}
	return 0, newErr(ErrPackable, "unknown opcode %q", name)
}

// PackProgram encodes a compiled Program's bytecode (not its Data or
// Fns tables, which are rebuilt by compilation; a packed program is
// meant to travel as a self-contained alterator, never re-linked
// against a different program's symbol tables) as an instruction
// count followed by one "OPCODE argA argB" record per instruction.
func PackProgram(p *Program) string {
	parts := make([]string, 0, 1+3*len(p.Code))
	parts = append(parts, strconv.Itoa(len(p.Code)))
	for _, bc := range p.Code {
		parts = append(parts, PackOpcode(bc.Op), PackBArg(bc.A), PackBArg(bc.B))
	}
	return strings.Join(parts, " ")
}

// UnpackProgram is the inverse of PackProgram. The returned Program
// carries only a Code section; TopNLocals defaults to 0, which is
// correct for the zero-argument alterator programs this codec is
// meant to round-trip.
func UnpackProgram(s string) (*Program, error) {
	r := newFieldReader(s)
	n, err := r.nextInt()
	if err != nil {
		return nil, err
	}
	p := NewProgram()
	p.Code = make([]Bytecode, 0, n)
	for i := int32(0); i < n; i++ {
		opName, err := r.next()
		if err != nil {
			return nil, err
		}
		op, err := UnpackOpcode(opName)
		if err != nil {
			return nil, err
		}
		a, err := UnpackBArg(r)
		if err != nil {
			return nil, err
		}
		b, err := UnpackBArg(r)
		if err != nil {
			return nil, err
		}
		p.Code = append(p.Code, Bytecode{Op: op, A: a, B: b})
	}
	return p, nil
}

// PackTrait packs one Trait as its default gene, within_vector flag,
// index, and its alterator program.
func PackTrait(t Trait) string {
	return strings.Join([]string{
		PackVar(t.Default),
		strconv.Itoa(boolDigit(t.WithinVector)),
		strconv.Itoa(t.Index),
		PackProgram(t.Alterator),
	}, " ")
}

// UnpackTrait is the inverse of PackTrait.
func UnpackTrait(r *fieldReader) (Trait, error) {
	def, err := UnpackVar(r)
	if err != nil {
		return Trait{}, err
	}
	wv, err := r.nextInt()
	if err != nil {
		return Trait{}, err
	}
	idx, err := r.nextInt()
	if err != nil {
		return Trait{}, err
	}
	progFields, err := consumeProgramFields(r)
	if err != nil {
		return Trait{}, err
	}
	prog, err := UnpackProgram(progFields)
	if err != nil {
		return Trait{}, err
	}
	return Trait{Default: def, WithinVector: wv != 0, Index: int(idx), Alterator: prog}, nil
}

// consumeProgramFields re-reads a packed program's instruction count
// to know how many further fields UnpackProgram will need, then
// returns exactly that span as a string UnpackProgram can re-parse.
// This lets Trait and TraitList embed a packed program inline in a
// larger field stream without a length prefix on the whole blob.
func consumeProgramFields(r *fieldReader) (string, error) {
	start := r.pos
	n, err := r.nextInt()
	if err != nil {
		return "", err
	}
	for i := int32(0); i < n; i++ {
		if _, err := r.next(); err != nil { // opcode name
			return "", err
		}
		for arg := 0; arg < 2; arg++ {
			if err := skipBArgFields(r); err != nil {
				return "", err
			}
		}
	}
	return strings.Join(r.fields[start:r.pos], " "), nil
}

func skipBArgFields(r *fieldReader) error {
	tag, err := r.next()
	if err != nil {
		return err
	}
	var extra int
	switch tag {
	case "NONE":
		extra = 0
	case "ARG_INT", "ARG_FLOAT", "ARG_NAME", "ARG_STRING", "ARG_NATIVE", "ARG_KEYWORD":
		extra = 1
	case "ARG_MEM":
		extra = 2
	case "ARG_COLOUR":
		extra = 5
	default:
		return newErr(ErrPackable, "unknown BArg tag %q", tag)
	}
	for i := 0; i < extra; i++ {
		if _, err := r.next(); err != nil {
			return err
		}
	}
	return nil
}

// PackTraitList packs a TraitList as its trait count followed by each
// trait's record, per spec §6.2.
func PackTraitList(tl *TraitList) string {
	parts := make([]string, 0, len(tl.Traits)+1)
	parts = append(parts, strconv.Itoa(len(tl.Traits)))
	for _, t := range tl.Traits {
		parts = append(parts, PackTrait(t))
	}
	return strings.Join(parts, " ")
}

// UnpackTraitList is the inverse of PackTraitList.
func UnpackTraitList(s string) (*TraitList, error) {
	r := newFieldReader(s)
	n, err := r.nextInt()
	if err != nil {
		return nil, err
	}
	traits := make([]Trait, 0, n)
	for i := int32(0); i < n; i++ {
		t, err := UnpackTrait(r)
		if err != nil {
			return nil, err
		}
		traits = append(traits, t)
	}
	return &TraitList{Traits: traits}, nil
}
