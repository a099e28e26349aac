package genart

import (
	"fmt"
	"strings"
)

// VarKind tags the payload carried by a Var. Var is implemented as a
// single struct rather than an interface hierarchy because values are
// copied through the VM stack at a high rate (see DESIGN.md); keeping
// it a flat struct means most Vars never allocate.
type VarKind int

const (
	VarInt VarKind = iota
	VarFloat
	VarBool
	VarKeyword
	VarLong
	VarName
	VarString
	VarColour
	VarV2D
	VarVector
	VarVectorCursor
	VarDebug
)

func (k VarKind) String() string {
	switch k {
	case VarInt:
		return "int"
	case VarFloat:
		return "float"
	case VarBool:
		return "bool"
	case VarKeyword:
		return "keyword"
	case VarLong:
		return "long"
	case VarName:
		return "name"
	case VarString:
		return "string"
	case VarColour:
		return "colour"
	case VarV2D:
		return "v2d"
	case VarVector:
		return "vector"
	case VarVectorCursor:
		return "vector-cursor"
	default:
		return "debug"
	}
}

// ColourFormat tags which colour space the four components of a
// Colour Var are expressed in.
type ColourFormat int

const (
	ColourRGB ColourFormat = iota
	ColourHSL
	ColourHSLuv
	ColourHSV
	ColourLAB
)

func (f ColourFormat) String() string {
	switch f {
	case ColourRGB:
		return "RGB"
	case ColourHSL:
		return "HSL"
	case ColourHSLuv:
		return "HSLuv"
	case ColourHSV:
		return "HSV"
	default:
		return "LAB"
	}
}

// VectorCursor tracks a logical position within a Vector without
// mutating the iterand, so the same underlying slice can be iterated
// from more than one cursor (e.g. nested `each` loops).
type VectorCursor struct {
	Items []Var
	Index int
}

// Var is the single runtime tagged value used by the compiler, the
// VM and the genetic layer.
type Var struct {
	Kind VarKind

	I  int32   // Int, Name(iname), String(iname), Keyword(NATIVE schema slot)
	F  float32 // Float, V2D.X
	F2 float32 // V2D.Y
	B  bool    // Bool
	L  uint64  // Long

	ColourFmt  ColourFormat
	E0, E1, E2, E3 float32

	Vec    []Var // Vector
	Cursor *VectorCursor

	Debug string
}

func NewInt(v int32) Var     { return Var{Kind: VarInt, I: v} }
func NewFloat(v float32) Var { return Var{Kind: VarFloat, F: v} }
func NewBool(v bool) Var     { return Var{Kind: VarBool, B: v} }
func NewKeyword(iname int32) Var { return Var{Kind: VarKeyword, I: iname} }
func NewLong(v uint64) Var    { return Var{Kind: VarLong, L: v} }
func NewName(iname int32) Var { return Var{Kind: VarName, I: iname} }
func NewStringVar(iname int32) Var { return Var{Kind: VarString, I: iname} }
func NewV2D(x, y float32) Var { return Var{Kind: VarV2D, F: x, F2: y} }
func NewVector(items []Var) Var { return Var{Kind: VarVector, Vec: items} }
func NewDebug(s string) Var  { return Var{Kind: VarDebug, Debug: s} }

func NewColour(format ColourFormat, e0, e1, e2, e3 float32) Var {
	return Var{Kind: VarColour, ColourFmt: format, E0: e0, E1: e1, E2: e2, E3: e3}
}

// IsGeneShape reports whether v's Kind belongs to the subset of Var
// representable as a Gene (everything except Vector, VectorCursor and
// Debug).
func (v Var) IsGeneShape() bool {
	switch v.Kind {
	case VarInt, VarFloat, VarBool, VarKeyword, VarLong, VarName, VarString, VarColour, VarV2D:
		return true
	default:
		return false
	}
}

// SameShape reports whether v and other carry the same Kind (and, for
// Colour, the same format), which the compiler requires when
// substituting a gene for a literal.
func (v Var) SameShape(other Var) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind == VarColour {
		return v.ColourFmt == other.ColourFmt
	}
	return true
}

// Truthy implements the truthiness rule from the VM design: Bool(true)
// is truthy; Bool(false), zero numerics and empty vectors are falsy;
// everything else is truthy.
func (v Var) Truthy() bool {
	switch v.Kind {
	case VarBool:
		return v.B
	case VarInt:
		return v.I != 0
	case VarFloat:
		return v.F != 0
	case VarLong:
		return v.L != 0
	case VarVector:
		return len(v.Vec) != 0
	default:
		return true
	}
}

// Clone deep-copies a Var's Vector payload so that APPEND and SQUISH
// never alias a caller's slice (copy-on-write at those two
// boundaries, per the compiler/VM contract).
func (v Var) Clone() Var {
	if v.Kind == VarVector {
		cp := make([]Var, len(v.Vec))
		copy(cp, v.Vec)
		v.Vec = cp
	}
	return v
}

func (v Var) String() string {
	switch v.Kind {
	case VarInt:
		return fmt.Sprintf("%d", v.I)
	case VarFloat:
		return fmt.Sprintf("%g", v.F)
	case VarBool:
		return fmt.Sprintf("%t", v.B)
	case VarKeyword:
		return fmt.Sprintf("kw#%d", v.I)
	case VarLong:
		return fmt.Sprintf("%dL", v.L)
	case VarName:
		return fmt.Sprintf("name#%d", v.I)
	case VarString:
		return fmt.Sprintf("str#%d", v.I)
	case VarColour:
		return fmt.Sprintf("%s(%g,%g,%g,%g)", v.ColourFmt, v.E0, v.E1, v.E2, v.E3)
	case VarV2D:
		return fmt.Sprintf("(%g, %g)", v.F, v.F2)
	case VarVector:
		var s strings.Builder
		s.WriteString("[")
		for i, it := range v.Vec {
			if i > 0 {
				s.WriteString(" ")
			}
			s.WriteString(it.String())
		}
		s.WriteString("]")
		return s.String()
	case VarVectorCursor:
		return fmt.Sprintf("cursor@%d", v.Cursor.Index)
	default:
		return v.Debug
	}
}

// Gene is an alias for Var restricted (by convention, not the type
// system — see IsGeneShape) to the gene-representable subset.
type Gene = Var
