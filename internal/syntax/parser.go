package syntax

import (
	"github.com/zclconf/go-cty/cty"
)

// PipeGrouping selects how the parser groups chained pipe operators. The
// linearizer flattens either grouping into the same stage order, so this
// only matters to tooling that inspects raw trees.
type PipeGrouping int

const (
	GroupLeft PipeGrouping = iota
	GroupRight
)

type parser struct {
	lex      *lexer
	tok      Token
	peeked   *Token
	grouping PipeGrouping
}

// ParseBody parses a routine body: statements separated by newlines or
// semicolons.
func ParseBody(src string, grouping PipeGrouping) ([]Stmt, error) {
	p, err := newParser(src, grouping)
	if err != nil {
		return nil, err
	}
	return p.parseBody()
}

// ParseExpression parses a single expression and requires it to consume
// the whole input.
func ParseExpression(src string) (Expr, error) {
	p, err := newParser(src, GroupLeft)
	if err != nil {
		return nil, err
	}
	p.skipTerminators()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipTerminators()
	if p.tok.Type != TokenEOF {
		return nil, errAt(p.tok.Pos, "unexpected %s after expression", p.tok.Type)
	}
	return e, nil
}

func newParser(src string, grouping PipeGrouping) (*parser, error) {
	p := &parser{lex: newLexer(src), grouping: grouping}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) peek() (Token, error) {
	if p.peeked == nil {
		tok, err := p.lex.next()
		if err != nil {
			return Token{}, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

func (p *parser) expect(t TokenType) (Token, error) {
	if p.tok.Type != t {
		return Token{}, errAt(p.tok.Pos, "expected %s, found %s", t, p.tok.Type)
	}
	tok := p.tok
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (p *parser) skipTerminators() {
	for p.tok.Type == TokenTerminator {
		if err := p.advance(); err != nil {
			return
		}
	}
}

func (p *parser) parseBody() ([]Stmt, error) {
	var stmts []Stmt
	p.skipTerminators()
	for p.tok.Type != TokenEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.tok.Type != TokenEOF && p.tok.Type != TokenTerminator {
			return nil, errAt(p.tok.Pos, "expected %s, found %s", TokenTerminator, p.tok.Type)
		}
		p.skipTerminators()
	}
	if len(stmts) == 0 {
		return nil, errAt(Pos{1, 1}, "empty routine body")
	}
	return stmts, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	pos := p.tok.Pos

	if p.tok.Type == TokenReturn {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{X: x, SrcPos: pos}, nil
	}

	// Assignment needs one token of lookahead: IDENT '=' not followed by
	// a second '='.
	if p.tok.Type == TokenIdent {
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.Type == TokenAssign {
			name := p.tok.Lit
			if err := p.advance(); err != nil { // ident
				return nil, err
			}
			if err := p.advance(); err != nil { // '='
				return nil, err
			}
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &AssignStmt{Name: name, X: x, SrcPos: pos}, nil
		}
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{X: x, SrcPos: pos}, nil
}

// Precedence, loosest first: ?:, |>, ||, &&, == !=, < <= > >=, + -,
// * / %, ^ (right), unary, postfix (call, attribute), primary.
func (p *parser) parseExpr() (Expr, error) {
	return p.parseCond()
}

func (p *parser) parseCond() (Expr, error) {
	cond, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenQuestion {
		return cond, nil
	}
	pos := p.tok.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	then, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	els, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	return &CondExpr{Cond: cond, Then: then, Else: els, SrcPos: pos}, nil
}

func (p *parser) parsePipe() (Expr, error) {
	first, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenPipe {
		return first, nil
	}

	operands := []Expr{first}
	positions := []Pos{}
	for p.tok.Type == TokenPipe {
		positions = append(positions, p.tok.Pos)
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}

	if p.grouping == GroupRight {
		out := operands[len(operands)-1]
		for i := len(operands) - 2; i >= 0; i-- {
			out = &BinaryExpr{Op: OpPipe, LHS: operands[i], RHS: out, SrcPos: positions[i]}
		}
		return out, nil
	}
	out := operands[0]
	for i := 1; i < len(operands); i++ {
		out = &BinaryExpr{Op: OpPipe, LHS: out, RHS: operands[i], SrcPos: positions[i-1]}
	}
	return out, nil
}

func (p *parser) parseBinaryLevel(ops map[TokenType]Op, next func() (Expr, error)) (Expr, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.tok.Type]
		if !ok {
			return lhs, nil
		}
		pos := p.tok.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{Op: op, LHS: lhs, RHS: rhs, SrcPos: pos}
	}
}

func (p *parser) parseOr() (Expr, error) {
	return p.parseBinaryLevel(map[TokenType]Op{TokenOr: OpOr}, p.parseAnd)
}

func (p *parser) parseAnd() (Expr, error) {
	return p.parseBinaryLevel(map[TokenType]Op{TokenAnd: OpAnd}, p.parseEquality)
}

func (p *parser) parseEquality() (Expr, error) {
	return p.parseBinaryLevel(map[TokenType]Op{TokenEq: OpEq, TokenNe: OpNe}, p.parseComparison)
}

func (p *parser) parseComparison() (Expr, error) {
	return p.parseBinaryLevel(map[TokenType]Op{
		TokenLt: OpLt, TokenLe: OpLe, TokenGt: OpGt, TokenGe: OpGe,
	}, p.parseAdditive)
}

func (p *parser) parseAdditive() (Expr, error) {
	return p.parseBinaryLevel(map[TokenType]Op{TokenPlus: OpAdd, TokenMinus: OpSub}, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (Expr, error) {
	return p.parseBinaryLevel(map[TokenType]Op{
		TokenStar: OpMul, TokenSlash: OpDiv, TokenPercent: OpMod,
	}, p.parseUnary)
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.tok.Type {
	case TokenMinus, TokenNot:
		op := OpNeg
		if p.tok.Type == TokenNot {
			op = OpNot
		}
		pos := p.tok.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, X: x, SrcPos: pos}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenCaret {
		return base, nil
	}
	pos := p.tok.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	// Right-associative: 2^3^2 is 2^(3^2).
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: OpPow, LHS: base, RHS: exp, SrcPos: pos}, nil
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Type {
		case TokenDot:
			pos := p.tok.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			x = &Attr{X: x, Name: name.Lit, SrcPos: pos}
		case TokenLParen:
			pos := p.tok.Pos
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = &CallExpr{Fn: x, Args: args, SrcPos: pos}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseArgs() ([]Arg, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var args []Arg
	for p.tok.Type != TokenRParen {
		var arg Arg
		if p.tok.Type == TokenIdent {
			next, err := p.peek()
			if err != nil {
				return nil, err
			}
			if next.Type == TokenAssign {
				arg.Name = p.tok.Lit
				if err := p.advance(); err != nil { // ident
					return nil, err
				}
				if err := p.advance(); err != nil { // '='
					return nil, err
				}
			}
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arg.Value = val
		args = append(args, arg)
		if p.tok.Type == TokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	pos := p.tok.Pos
	switch p.tok.Type {
	case TokenNumber:
		lit := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := cty.ParseNumberVal(lit)
		if err != nil {
			return nil, errAt(pos, "invalid number literal %q", lit)
		}
		return &Literal{Value: val, SrcPos: pos}, nil
	case TokenString:
		lit := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: cty.StringVal(lit), SrcPos: pos}, nil
	case TokenTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: cty.True, SrcPos: pos}, nil
	case TokenFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: cty.False, SrcPos: pos}, nil
	case TokenNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: cty.NullVal(cty.DynamicPseudoType), SrcPos: pos}, nil
	case TokenPlaceholder:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Placeholder{SrcPos: pos}, nil
	case TokenIdent:
		name := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Name{Ident: name, SrcPos: pos}, nil
	case TokenBackslash:
		return p.parseLambda()
	case TokenLParen:
		return p.parseParenOrTuple()
	case TokenLBrack:
		return p.parseList()
	}
	return nil, errAt(pos, "unexpected %s", p.tok.Type)
}

// parseParenOrTuple handles grouping, captures, and tuple constructors:
// (x) group, (n := e) capture, (), (a,), (a, b) tuples.
func (p *parser) parseParenOrTuple() (Expr, error) {
	pos := p.tok.Pos
	if err := p.advance(); err != nil { // '('
		return nil, err
	}

	if p.tok.Type == TokenRParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &TupleExpr{SrcPos: pos}, nil
	}

	if p.tok.Type == TokenIdent {
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.Type == TokenWalrus {
			name := p.tok.Lit
			if err := p.advance(); err != nil { // ident
				return nil, err
			}
			if err := p.advance(); err != nil { // ':='
				return nil, err
			}
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRParen); err != nil {
				return nil, err
			}
			return &CaptureExpr{Name: name, X: x, SrcPos: pos}, nil
		}
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type == TokenRParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return first, nil // plain grouping
	}

	elems := []Expr{first}
	for p.tok.Type == TokenComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type == TokenRParen {
			break // trailing comma: (a,)
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &TupleExpr{Elems: elems, SrcPos: pos}, nil
}

func (p *parser) parseList() (Expr, error) {
	pos := p.tok.Pos
	if err := p.advance(); err != nil { // '['
		return nil, err
	}
	var elems []Expr
	for p.tok.Type != TokenRBrack {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.tok.Type == TokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBrack); err != nil {
		return nil, err
	}
	return &ListExpr{Elems: elems, SrcPos: pos}, nil
}

// parseLambda parses \x, k = 2 -> expr. Parameters may carry a type
// marker (\xs: list -> ...) and a default.
func (p *parser) parseLambda() (Expr, error) {
	pos := p.tok.Pos
	if err := p.advance(); err != nil { // '\'
		return nil, err
	}
	var params []ParamDecl
	for p.tok.Type != TokenArrow {
		decl, err := p.parseParamDecl()
		if err != nil {
			return nil, err
		}
		params = append(params, decl)
		if p.tok.Type == TokenComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(TokenArrow); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &LambdaExpr{Params: params, Body: body, SrcPos: pos}, nil
}

func (p *parser) parseParamDecl() (ParamDecl, error) {
	var decl ParamDecl
	if p.tok.Type == TokenStar {
		if err := p.advance(); err != nil {
			return decl, err
		}
		if p.tok.Type == TokenStar {
			if err := p.advance(); err != nil {
				return decl, err
			}
			decl.VariadicKW = true
		} else {
			decl.VariadicPos = true
		}
	}
	name, err := p.expect(TokenIdent)
	if err != nil {
		return decl, err
	}
	decl.Name = name.Lit
	if p.tok.Type == TokenColon {
		if err := p.advance(); err != nil {
			return decl, err
		}
		marker, err := p.expect(TokenIdent)
		if err != nil {
			return decl, err
		}
		decl.Marker = marker.Lit
	}
	if p.tok.Type == TokenAssign {
		if err := p.advance(); err != nil {
			return decl, err
		}
		def, err := p.parseExpr()
		if err != nil {
			return decl, err
		}
		decl.Default = def
	}
	return decl, nil
}
