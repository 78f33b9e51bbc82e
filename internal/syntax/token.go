package syntax

import "fmt"

// Pos is a line/column source position, 1-based.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenTerminator              // newline or ';' between statements
	TokenIdent
	TokenNumber
	TokenString
	TokenPlaceholder // _

	TokenPipe    // |>
	TokenWalrus  // :=
	TokenArrow   // ->
	TokenBackslash
	TokenLParen
	TokenRParen
	TokenLBrack
	TokenRBrack
	TokenComma
	TokenColon
	TokenQuestion
	TokenDot
	TokenAssign // =

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenCaret

	TokenEq // ==
	TokenNe // !=
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAnd // &&
	TokenOr  // ||
	TokenNot // !

	TokenReturn
	TokenTrue
	TokenFalse
	TokenNull
)

var tokenNames = map[TokenType]string{
	TokenEOF:         "end of input",
	TokenTerminator:  "statement terminator",
	TokenIdent:       "identifier",
	TokenNumber:      "number",
	TokenString:      "string",
	TokenPlaceholder: "'_'",
	TokenPipe:        "'|>'",
	TokenWalrus:      "':='",
	TokenArrow:       "'->'",
	TokenBackslash:   "'\\'",
	TokenLParen:      "'('",
	TokenRParen:      "')'",
	TokenLBrack:      "'['",
	TokenRBrack:      "']'",
	TokenComma:       "','",
	TokenColon:       "':'",
	TokenQuestion:    "'?'",
	TokenDot:         "'.'",
	TokenAssign:      "'='",
	TokenPlus:        "'+'",
	TokenMinus:       "'-'",
	TokenStar:        "'*'",
	TokenSlash:       "'/'",
	TokenPercent:     "'%'",
	TokenCaret:       "'^'",
	TokenEq:          "'=='",
	TokenNe:          "'!='",
	TokenLt:          "'<'",
	TokenLe:          "'<='",
	TokenGt:          "'>'",
	TokenGe:          "'>='",
	TokenAnd:         "'&&'",
	TokenOr:          "'||'",
	TokenNot:         "'!'",
	TokenReturn:      "'return'",
	TokenTrue:        "'true'",
	TokenFalse:       "'false'",
	TokenNull:        "'null'",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is one lexical unit with its source text and position.
type Token struct {
	Type TokenType
	Lit  string
	Pos  Pos
}

var keywords = map[string]TokenType{
	"return": TokenReturn,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"null":   TokenNull,
}
