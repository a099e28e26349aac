package genart

import (
	"fmt"
	"strings"

	"github.com/clarete/genart/go/ascii"
)

// FnInfo describes one user-defined function's layout in the compiled
// program (spec §3 "Program").
type FnInfo struct {
	Name      string
	NameIname int32

	// ArgAddr/BodyAddr are the bytecode indices of the function's
	// default-argument block and its body, respectively.
	ArgAddr  int
	BodyAddr int

	Argc int

	// ArgInames is the ordered list of argument name inames, used
	// by CALL to bind keyword arguments by label.
	ArgInames []int32

	// NLocals is the number of local slots the function's frame
	// needs, counted while its body is compiled.
	NLocals int
}

// Program is the immutable output of the compiler: a Data section (for
// String Vars), the instruction vector, and one FnInfo per
// user-defined function (spec §3 "Program").
type Program struct {
	Data map[int32]string

	Code []Bytecode
	Fns  []FnInfo

	// FnByIname is allocated empty by NewProgram and Compile and is not
	// read by the VM: the compiler registers every fn signature before
	// compiling any body, so CALL operands already hold Fns indices,
	// forward references included.
	FnByIname map[int32]int

	// GlobalNames records, by global slot index, the name that
	// slot was declared under — used for disassembly and for
	// resolving a preamble-declared global from a later, separately
	// parsed program (see compiler.go).
	GlobalNames []string

	// TopNLocals is the number of local slots the implicit top-level
	// frame needs, computed the same way a function's NLocals is.
	TopNLocals int
}

func NewProgram() *Program {
	return &Program{
		Data:      map[int32]string{},
		FnByIname: map[int32]int{},
	}
}

// PrettyString renders the bytecode as human-readable assembly,
// grounded on the teacher's `Program.PrettyString` disassembler
// shape (one instruction per line, operands printed after the
// mnemonic).
func (p *Program) PrettyString() string {
	var s strings.Builder
	for i, bc := range p.Code {
		fmt.Fprintf(&s, "%4d  %-14s %s %s\n", i, bc.Op, formatArg(bc.A), formatArg(bc.B))
	}
	return s.String()
}

// PrettyStringColored renders the same disassembly as PrettyString,
// syntax-highlighted through the ascii package's default theme —
// used by the CLI's --debug output, never by the core itself.
func (p *Program) PrettyStringColored() string {
	t := ascii.DefaultTheme
	var s strings.Builder
	for i, bc := range p.Code {
		fmt.Fprintf(&s, "%s%4d%s  %s%-14s%s %s %s\n",
			t.Muted, i, ascii.Reset,
			t.Operator, bc.Op, ascii.Reset,
			ascii.Color(t.Operand, "%s", formatArg(bc.A)),
			ascii.Color(t.Operand, "%s", formatArg(bc.B)))
	}
	return s.String()
}

func formatArg(a BArg) string {
	switch a.Kind {
	case ArgNone:
		return ""
	case ArgInt:
		return fmt.Sprintf("%d", a.I)
	case ArgFloat:
		return fmt.Sprintf("%g", a.F)
	case ArgName:
		return fmt.Sprintf("name#%d", a.I)
	case ArgString:
		return fmt.Sprintf("str#%d", a.I)
	case ArgNative:
		return NativeName(KeywordEnd + a.I)
	case ArgMem:
		return fmt.Sprintf("%s+%d", a.Mem, a.I)
	case ArgKeyword:
		return fmt.Sprintf("kw#%d", a.I)
	case ArgColour:
		return fmt.Sprintf("%s(%g,%g,%g,%g)", a.Colour, a.C0, a.C1, a.C2, a.C3)
	default:
		return "?"
	}
}
