package genart

import (
	"strconv"
	"strings"
)

// Parser turns a token stream into a slice of top-level Nodes,
// recognising the forms documented in spec §4.3.
type Parser struct {
	toks []Token
	pos  int
	src  []byte
	wt   *WordTable
}

// NewParser lexes src and builds its WordTable up front (spec §4.2:
// the table is built from a complete token stream in one pre-pass),
// so the parser itself never allocates new inames.
func NewParser(src []byte) (*Parser, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks, src: src, wt: BuildWordTable(toks)}, nil
}

func (p *Parser) WordTable() *WordTable { return p.wt }

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEnd}
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) loc() Location {
	return NewLineIndex(p.src).LocationAt(p.cur().Range.Start)
}

// ParseProgram parses every top-level form in the source, including
// whitespace/comment trivia, so the unparser can reproduce the
// original text exactly.
func (p *Parser) ParseProgram() ([]*Node, error) {
	var top []*Node
	for p.cur().Kind != TokEnd {
		nodes, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		top = append(top, nodes...)
	}
	return top, nil
}

// parseNode parses exactly one syntactic unit. It returns more than
// one Node only for the `name.name` desugaring (FromName then Name).
func (p *Parser) parseNode() ([]*Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokWhitespace, TokNewline:
		p.advance()
		return []*Node{NewWhitespaceNode(tok.Text, tok.Range)}, nil
	case TokComment:
		p.advance()
		return []*Node{NewCommentNode(tok.Text, tok.Range)}, nil
	case TokParenStart:
		n, err := p.parseList()
		return wrap(n, err)
	case TokSquareStart:
		n, err := p.parseVector()
		return wrap(n, err)
	case TokCurlyStart:
		n, err := p.parseAlterable()
		return wrap(n, err)
	case TokQuote, TokBackQuote:
		n, err := p.parseQuote()
		return wrap(n, err)
	case TokString:
		p.advance()
		return []*Node{NewStringNode(tok.Text, tok.Range)}, nil
	case TokNumber:
		return p.parseNumber(tok)
	case TokName:
		return p.parseName(tok)
	case TokTilde:
		p.advance()
		return []*Node{NewTildeNode(tok.Range)}, nil
	default:
		return nil, newErrAt(ErrParser, p.loc(), "unexpected token")
	}
}

func wrap(n *Node, err error) ([]*Node, error) {
	if err != nil {
		return nil, err
	}
	return []*Node{n}, nil
}

// parseSingle is used where exactly one Node is required (the
// default and alterator expressions of an alterable site). The rare
// `name.name` desugaring is folded back into a single synthetic List
// so callers never have to special-case it.
func (p *Parser) parseSingle() (*Node, error) {
	nodes, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	lo, hi := nodes[0].Meta.Loc.Start, nodes[len(nodes)-1].Meta.Loc.End
	return NewListNode(nodes, NewRange(lo, hi)), nil
}

func (p *Parser) parseNumber(tok Token) ([]*Node, error) {
	p.advance()
	f, err := strconv.ParseFloat(tok.Text, 32)
	if err != nil {
		return nil, newErrAt(ErrLexer, p.loc(), "malformed number literal %q", tok.Text)
	}
	return []*Node{NewFloatNode(float32(f), tok.Text, tok.Range)}, nil
}

func (p *Parser) parseName(tok Token) ([]*Node, error) {
	p.advance()
	iname, _ := p.wt.Resolve(tok.Text)

	// `name.name` (no gap between the name, the dot and the next
	// name) desugars into FromName followed by Name.
	if p.cur().Kind == TokDot && p.cur().Range.Start == tok.Range.End {
		p.advance() // dot
		next := p.cur()
		if next.Kind != TokName {
			return nil, newErrAt(ErrParser, p.loc(), "expected name after `.`")
		}
		p.advance()
		nextIname, _ := p.wt.Resolve(next.Text)
		return []*Node{
			NewFromNameNode(tok.Text, iname, tok.Range),
			NewNameNode(next.Text, nextIname, next.Range),
		}, nil
	}

	// `name:` (colon immediately follows) is a Label.
	if p.cur().Kind == TokColon && p.cur().Range.Start == tok.Range.End {
		colon := p.advance()
		return []*Node{NewLabelNode(tok.Text, iname, NewRange(tok.Range.Start, colon.Range.End))}, nil
	}

	return []*Node{NewNameNode(tok.Text, iname, tok.Range)}, nil
}

func (p *Parser) parseList() (*Node, error) {
	start := p.advance().Range.Start // consume `(`
	children, endPos, err := p.collectUntil(TokParenEnd)
	if err != nil {
		return nil, err
	}
	return NewListNode(children, NewRange(start, endPos)), nil
}

func (p *Parser) parseVector() (*Node, error) {
	start := p.advance().Range.Start // consume `[`
	children, endPos, err := p.collectUntil(TokSquareEnd)
	if err != nil {
		return nil, err
	}
	n := NewVectorNode(children, NewRange(start, endPos))
	for _, c := range n.SemanticChildren() {
		if c.Meta.Gene != nil {
			n.VectorAltered = true
			break
		}
	}
	return n, nil
}

func (p *Parser) collectUntil(end TokenKind) ([]*Node, int, error) {
	var children []*Node
	for {
		if p.cur().Kind == TokEnd {
			return nil, 0, newErrAt(ErrParser, p.loc(), "unterminated form, expected closing delimiter")
		}
		if p.cur().Kind == end {
			endPos := p.advance().Range.End
			return children, endPos, nil
		}
		nodes, err := p.parseNode()
		if err != nil {
			return nil, 0, err
		}
		children = append(children, nodes...)
	}
}

// parseAlterable parses `{ default alterator }`. The leading
// whitespace/comment text between `{` and the start of the default
// expression is preserved verbatim as ParamPrefix, matching spec
// §4.3's "parameter_prefix" requirement for unparser fidelity.
func (p *Parser) parseAlterable() (*Node, error) {
	start := p.advance().Range.Start // consume `{`

	var prefix strings.Builder
	for p.cur().Kind == TokWhitespace || p.cur().Kind == TokNewline || p.cur().Kind == TokComment {
		prefix.WriteString(p.advance().Text)
	}

	defaultNode, err := p.parseSingle()
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == TokWhitespace || p.cur().Kind == TokNewline || p.cur().Kind == TokComment {
		p.advance()
	}

	paramNode, err := p.parseSingle()
	if err != nil {
		return nil, err
	}

	for p.cur().Kind == TokWhitespace || p.cur().Kind == TokNewline || p.cur().Kind == TokComment {
		p.advance()
	}

	if p.cur().Kind != TokCurlyEnd {
		return nil, newErrAt(ErrParser, p.loc(), "expected `}` closing alterable block")
	}
	end := p.advance().Range.End

	defaultNode.Meta.Gene = &GeneInfo{ParamAST: paramNode, ParamPrefix: prefix.String()}
	defaultNode.Meta.Loc = NewRange(start, end)
	return defaultNode, nil
}

// parseQuote implements `'expr` → List[Name(quote), Whitespace, expr].
func (p *Parser) parseQuote() (*Node, error) {
	start := p.advance().Range.Start // consume `'` or backquote

	var ws *Node
	if p.cur().Kind == TokWhitespace {
		t := p.advance()
		ws = NewWhitespaceNode(t.Text, t.Range)
	} else {
		ws = NewWhitespaceNode("", NewRange(p.cur().Range.Start, p.cur().Range.Start))
	}

	expr, err := p.parseSingle()
	if err != nil {
		return nil, err
	}

	quoteIname := KeywordStart + int32(KwQuote)
	nameNode := NewNameNode("quote", quoteIname, NewRange(start, start+1))
	return NewListNode([]*Node{nameNode, ws, expr}, NewRange(start, expr.Meta.Loc.End)), nil
}
