package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer scans duct expression source into tokens. Newlines inside brackets
// are insignificant; outside brackets they become statement terminators.
type lexer struct {
	src   string
	pos   int
	line  int
	col   int
	depth int // bracket nesting; newlines are swallowed while > 0
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

// ParseError reports a lexical or syntactic problem with its position.
type ParseError struct {
	Msg string
	Pos Pos
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Msg)
}

func errAt(pos Pos, format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func (l *lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) advance(r rune, size int) {
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col += 1
	}
}

func (l *lexer) here() Pos {
	return Pos{Line: l.line, Column: l.col}
}

// next returns the next token, or an error for unterminated strings and
// unrecognized characters.
func (l *lexer) next() (Token, error) {
	for {
		r, size := l.peekRune()
		if size == 0 {
			return Token{Type: TokenEOF, Pos: l.here()}, nil
		}

		switch {
		case r == '#': // comment to end of line
			for size != 0 && r != '\n' {
				l.advance(r, size)
				r, size = l.peekRune()
			}
			continue
		case r == '\n':
			pos := l.here()
			l.advance(r, size)
			if l.depth > 0 {
				continue
			}
			return Token{Type: TokenTerminator, Lit: "\n", Pos: pos}, nil
		case unicode.IsSpace(r):
			l.advance(r, size)
			continue
		}

		pos := l.here()
		switch {
		case r == ';':
			l.advance(r, size)
			return Token{Type: TokenTerminator, Lit: ";", Pos: pos}, nil
		case isIdentStart(r):
			return l.lexIdent(pos), nil
		case unicode.IsDigit(r):
			return l.lexNumber(pos), nil
		case r == '"':
			return l.lexString(pos)
		default:
			return l.lexOperator(r, size, pos)
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) lexIdent(pos Pos) Token {
	start := l.pos
	for {
		r, size := l.peekRune()
		if size == 0 || !isIdentPart(r) {
			break
		}
		l.advance(r, size)
	}
	lit := l.src[start:l.pos]
	if lit == "_" {
		return Token{Type: TokenPlaceholder, Lit: lit, Pos: pos}
	}
	if kw, ok := keywords[lit]; ok {
		return Token{Type: kw, Lit: lit, Pos: pos}
	}
	return Token{Type: TokenIdent, Lit: lit, Pos: pos}
}

func (l *lexer) lexNumber(pos Pos) Token {
	start := l.pos
	seenDot := false
	for {
		r, size := l.peekRune()
		if size == 0 {
			break
		}
		if r == '.' && !seenDot {
			// A dot is part of the number only when a digit follows;
			// otherwise it is an attribute access on a literal.
			if next := l.pos + size; next < len(l.src) && unicode.IsDigit(rune(l.src[next])) {
				seenDot = true
				l.advance(r, size)
				continue
			}
			break
		}
		if !unicode.IsDigit(r) {
			break
		}
		l.advance(r, size)
	}
	return Token{Type: TokenNumber, Lit: l.src[start:l.pos], Pos: pos}
}

func (l *lexer) lexString(pos Pos) (Token, error) {
	r, size := l.peekRune()
	l.advance(r, size) // opening quote
	var b strings.Builder
	for {
		r, size = l.peekRune()
		if size == 0 || r == '\n' {
			return Token{}, errAt(pos, "unterminated string literal")
		}
		l.advance(r, size)
		if r == '"' {
			return Token{Type: TokenString, Lit: b.String(), Pos: pos}, nil
		}
		if r == '\\' {
			esc, escSize := l.peekRune()
			if escSize == 0 {
				return Token{}, errAt(pos, "unterminated string literal")
			}
			l.advance(esc, escSize)
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '"', '\\':
				b.WriteRune(esc)
			default:
				return Token{}, errAt(l.here(), "unsupported escape sequence '\\%c'", esc)
			}
			continue
		}
		b.WriteRune(r)
	}
}

func (l *lexer) lexOperator(r rune, size int, pos Pos) (Token, error) {
	two := ""
	if l.pos+size < len(l.src) {
		two = l.src[l.pos : l.pos+size+1]
	}

	emit2 := func(t TokenType) (Token, error) {
		l.advance(r, size)
		r2, s2 := l.peekRune()
		l.advance(r2, s2)
		return Token{Type: t, Lit: two, Pos: pos}, nil
	}
	emit1 := func(t TokenType) (Token, error) {
		l.advance(r, size)
		return Token{Type: t, Lit: string(r), Pos: pos}, nil
	}

	switch two {
	case "|>":
		return emit2(TokenPipe)
	case ":=":
		return emit2(TokenWalrus)
	case "->":
		return emit2(TokenArrow)
	case "==":
		return emit2(TokenEq)
	case "!=":
		return emit2(TokenNe)
	case "<=":
		return emit2(TokenLe)
	case ">=":
		return emit2(TokenGe)
	case "&&":
		return emit2(TokenAnd)
	case "||":
		return emit2(TokenOr)
	}

	switch r {
	case '(':
		l.depth++
		return emit1(TokenLParen)
	case ')':
		if l.depth > 0 {
			l.depth--
		}
		return emit1(TokenRParen)
	case '[':
		l.depth++
		return emit1(TokenLBrack)
	case ']':
		if l.depth > 0 {
			l.depth--
		}
		return emit1(TokenRBrack)
	case ',':
		return emit1(TokenComma)
	case ':':
		return emit1(TokenColon)
	case '?':
		return emit1(TokenQuestion)
	case '.':
		return emit1(TokenDot)
	case '=':
		return emit1(TokenAssign)
	case '+':
		return emit1(TokenPlus)
	case '-':
		return emit1(TokenMinus)
	case '*':
		return emit1(TokenStar)
	case '/':
		return emit1(TokenSlash)
	case '%':
		return emit1(TokenPercent)
	case '^':
		return emit1(TokenCaret)
	case '<':
		return emit1(TokenLt)
	case '>':
		return emit1(TokenGt)
	case '!':
		return emit1(TokenNot)
	case '\\':
		return emit1(TokenBackslash)
	}
	return Token{}, errAt(pos, "unexpected character %q", r)
}
