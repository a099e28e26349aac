package genart

import (
	"strconv"
	"strings"
)

// Unparse reconstructs source text from a parsed tree, substituting a
// Genotype's genes for the default at every alterable site (each site
// keeps its braces, prefix and alterator, so the output re-parses to
// the same traits) and leaving every other subtree exactly as written
// (spec §4.8). genotype's cursor is reset
// first so Unparse always consumes genes in the same pre-order,
// left-to-right sequence ExtractTraits produced them in.
func Unparse(top []*Node, wt *WordTable, genotype *Genotype) (string, error) {
	genotype.ResetCursor()
	var b strings.Builder
	for _, n := range top {
		s, err := unparseNode(n, wt, genotype)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Simplify reconstructs source text the same way Unparse does, but
// drops every alterable site's braces and alterator entirely, keeping
// just the default expression's own original text (spec §4.8). It
// never touches a Genotype, since the values it emits are exactly the
// ones already written in source.
func Simplify(top []*Node) (string, error) {
	var b strings.Builder
	for _, n := range top {
		b.WriteString(simplifyNode(n))
	}
	return b.String(), nil
}

func unparseNode(n *Node, wt *WordTable, genotype *Genotype) (string, error) {
	if n.Meta.Gene != nil {
		var value string
		if n.Kind == NodeVector {
			children := n.SemanticChildren()
			parts := make([]string, 0, len(children))
			for range children {
				parts = append(parts, formatGene(genotype.CloneNextGene(), wt))
			}
			value = "[" + strings.Join(parts, " ") + "]"
		} else {
			value = formatGene(genotype.CloneNextGene(), wt)
		}
		return "{" + n.Meta.Gene.ParamPrefix + value + " " + simplifyNode(n.Meta.Gene.ParamAST) + "}", nil
	}

	switch n.Kind {
	case NodeList, NodeVector:
		var b strings.Builder
		if n.Kind == NodeList {
			b.WriteString("(")
		} else {
			b.WriteString("[")
		}
		for _, c := range n.Children {
			s, err := unparseNode(c, wt, genotype)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		if n.Kind == NodeList {
			b.WriteString(")")
		} else {
			b.WriteString("]")
		}
		return b.String(), nil
	default:
		return renderLeaf(n), nil
	}
}

// simplifyNode walks the same way unparseNode does but, on reaching a
// gene site, renders the default subtree structurally (recursing
// through it for any further nested gene sites) instead of consuming
// a genotype gene — the default expression is already the literal the
// author wrote, so nothing needs to be regenerated.
func simplifyNode(n *Node) string {
	if n.Meta.Gene != nil {
		return simplifyDefault(n)
	}
	switch n.Kind {
	case NodeList, NodeVector:
		var b strings.Builder
		if n.Kind == NodeList {
			b.WriteString("(")
		} else {
			b.WriteString("[")
		}
		for _, c := range n.Children {
			b.WriteString(simplifyNode(c))
		}
		if n.Kind == NodeList {
			b.WriteString(")")
		} else {
			b.WriteString("]")
		}
		return b.String()
	default:
		return renderLeaf(n)
	}
}

// simplifyDefault renders a gene-bearing node's own structure (its
// default expression) verbatim, ignoring its GeneInfo. A Vector gene
// site's semantic children may themselves carry nested gene info (an
// alterable nested inside another alterable's default), so children
// still route back through simplifyNode rather than renderLeaf.
func simplifyDefault(n *Node) string {
	switch n.Kind {
	case NodeList, NodeVector:
		var b strings.Builder
		if n.Kind == NodeList {
			b.WriteString("(")
		} else {
			b.WriteString("[")
		}
		for _, c := range n.Children {
			b.WriteString(simplifyNode(c))
		}
		if n.Kind == NodeList {
			b.WriteString(")")
		} else {
			b.WriteString("]")
		}
		return b.String()
	default:
		return renderLeaf(n)
	}
}

// renderLeaf reproduces a single leaf node's source text from its
// structural fields, without consulting the original source bytes:
// parseAlterable overwrites a gene-bearing node's own Meta.Loc to span
// the whole `{default alterator}` block, so byte-slicing the default
// alone is not an option; every leaf kind already keeps enough text
// in its own fields to round-trip exactly.
func renderLeaf(n *Node) string {
	switch n.Kind {
	case NodeFloat:
		return n.FloatText
	case NodeName:
		return n.Text
	case NodeFromName:
		return n.Text + "."
	case NodeLabel:
		return n.Text + ":"
	case NodeString:
		return "\"" + n.Text + "\""
	case NodeTilde:
		return "~"
	case NodeWhitespace, NodeComment:
		return n.Text
	default:
		return ""
	}
}

// formatGene renders a sampled gene as a literal of the same shape the
// default it replaces had, per spec §4.8 ("emits a literal of shape
// matching the default"). Colour genes render through their format's
// native constructor call so re-parsing recovers the same ColourFmt.
func formatGene(g Gene, wt *WordTable) string {
	switch g.Kind {
	case VarFloat:
		return formatFloat(g.F)
	case VarInt:
		return strconv.Itoa(int(g.I))
	case VarBool:
		if g.B {
			return "true"
		}
		return "false"
	case VarV2D:
		return "[" + formatFloat(g.F) + " " + formatFloat(g.F2) + "]"
	case VarColour:
		c0, c1, c2 := "r: ", "g: ", "b: "
		if g.ColourFmt == ColourHSL {
			c0, c1, c2 = "h: ", "s: ", "l: "
		}
		return "(" + colourCtorName(g.ColourFmt) +
			" " + c0 + formatFloat(g.E0) +
			" " + c1 + formatFloat(g.E1) +
			" " + c2 + formatFloat(g.E2) +
			" alpha: " + formatFloat(g.E3) + ")"
	case VarName:
		return wt.Name(g.I)
	case VarString:
		return "\"" + wt.Name(g.I) + "\""
	case VarVector:
		parts := make([]string, 0, len(g.Vec))
		for _, item := range g.Vec {
			parts = append(parts, formatGene(item, wt))
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "nil"
	}
}

// colourCtorName picks the native constructor a packed Colour gene
// should round-trip through. Only col/rgb and col/hsl are wired as
// NATIVE builtins in this module (spec's source-language reference
// names HSLuv/HSV/LAB formats as planned-but-unimplemented colour
// spaces outside this spec's scenarios), so any other format falls
// back to col/rgb, which re-parses to a Colour gene of the wrong
// format — an accepted limitation for those unwired formats.
func colourCtorName(f ColourFormat) string {
	switch f {
	case ColourHSL:
		return "col/hsl"
	default:
		return "col/rgb"
	}
}
