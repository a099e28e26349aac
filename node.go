package genart

// NodeKind enumerates the parsed-tree node variants from spec §3.
type NodeKind int

const (
	NodeList NodeKind = iota
	NodeVector
	NodeFloat
	NodeName
	NodeFromName
	NodeLabel
	NodeString
	NodeTilde
	NodeWhitespace
	NodeComment
)

func (k NodeKind) String() string {
	switch k {
	case NodeList:
		return "List"
	case NodeVector:
		return "Vector"
	case NodeFloat:
		return "Float"
	case NodeName:
		return "Name"
	case NodeFromName:
		return "FromName"
	case NodeLabel:
		return "Label"
	case NodeString:
		return "String"
	case NodeTilde:
		return "Tilde"
	case NodeWhitespace:
		return "Whitespace"
	default:
		return "Comment"
	}
}

// GeneInfo is attached to a Node's Meta when the node sits at an
// alterable `{default alterator}` site. ParamAST is the alteration
// expression (the text to the right of the default inside the
// braces); ParamPrefix is the whitespace/comment text that separated
// the opening brace from the default expression, kept only so the
// unparser can reproduce the original source exactly.
type GeneInfo struct {
	ParamAST    *Node
	ParamPrefix string
}

// Meta carries a node's source location and optional gene
// annotation. The compiler reads Meta.Gene but never mutates it.
type Meta struct {
	Loc  Range
	Gene *GeneInfo
}

// Node is the parsed syntax tree's single node type; which fields are
// meaningful depends on Kind (documented per field below).
type Node struct {
	Kind NodeKind
	Meta Meta

	// List, Vector
	Children []*Node

	// Float
	FloatVal  float32
	FloatText string // original text, preserved so the unparser keeps decimal-place count

	// Name, FromName, Label, String, Comment
	Text  string
	Iname int32 // Name, FromName, Label

	// Vector: true once any semantic child carries gene info. Set by
	// the parser; trait extraction does not read it (within_vector
	// traits come from a gene-bearing Vector's own Meta.Gene).
	VectorAltered bool
}

// IsSemantic reports whether a node contributes to evaluation;
// Whitespace and Comment nodes are kept only for faithful unparsing.
func (n *Node) IsSemantic() bool {
	return n.Kind != NodeWhitespace && n.Kind != NodeComment
}

// SemanticChildren returns Children filtered to IsSemantic() == true,
// in source order.
func (n *Node) SemanticChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsSemantic() {
			out = append(out, c)
		}
	}
	return out
}

func NewListNode(children []*Node, loc Range) *Node {
	return &Node{Kind: NodeList, Children: children, Meta: Meta{Loc: loc}}
}

func NewVectorNode(children []*Node, loc Range) *Node {
	return &Node{Kind: NodeVector, Children: children, Meta: Meta{Loc: loc}}
}

func NewFloatNode(v float32, text string, loc Range) *Node {
	return &Node{Kind: NodeFloat, FloatVal: v, FloatText: text, Meta: Meta{Loc: loc}}
}

func NewNameNode(text string, iname int32, loc Range) *Node {
	return &Node{Kind: NodeName, Text: text, Iname: iname, Meta: Meta{Loc: loc}}
}

func NewFromNameNode(text string, iname int32, loc Range) *Node {
	return &Node{Kind: NodeFromName, Text: text, Iname: iname, Meta: Meta{Loc: loc}}
}

func NewLabelNode(text string, iname int32, loc Range) *Node {
	return &Node{Kind: NodeLabel, Text: text, Iname: iname, Meta: Meta{Loc: loc}}
}

func NewStringNode(text string, loc Range) *Node {
	return &Node{Kind: NodeString, Text: text, Meta: Meta{Loc: loc}}
}

func NewTildeNode(loc Range) *Node {
	return &Node{Kind: NodeTilde, Meta: Meta{Loc: loc}}
}

func NewWhitespaceNode(text string, loc Range) *Node {
	return &Node{Kind: NodeWhitespace, Text: text, Meta: Meta{Loc: loc}}
}

func NewCommentNode(text string, loc Range) *Node {
	return &Node{Kind: NodeComment, Text: text, Meta: Meta{Loc: loc}}
}
