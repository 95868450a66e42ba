// Package dice implements the dice notation lexer, parser and evaluator.
// It turns expressions such as "4d6kh3 + 2" into a numeric total and an
// annotated breakdown of every die rolled.
package dice

import (
	"strconv"
	"strings"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Operators
	TokenPlus     TokenType = iota // +
	TokenMinus                     // -
	TokenMultiply                  // *
	TokenDivide                    // /

	// Parentheses
	TokenLParen // (
	TokenRParen // )

	// Dice notation
	TokenDice // d

	// Modifiers
	TokenMinimum // mi
	TokenMaximum // ma
	TokenExplode // e
	TokenKeep    // k
	TokenDrop    // p

	// Selectors
	TokenHighest     // h
	TokenLowest      // l
	TokenGreaterThan // >
	TokenLessThan    // <
	TokenLiteral     // no text, the factor follows directly

	// Literals
	TokenInt   // integer literal
	TokenFloat // float literal

	// Special
	TokenEOF // end of expression
)

// Token represents a single lexical token.
type Token struct {
	Type  TokenType
	Value string  // raw source text
	Num   float32 // parsed value (for TokenInt and TokenFloat)
	Pos   int     // byte offset in source
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenMultiply:
		return "MULTIPLY"
	case TokenDivide:
		return "DIVIDE"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenDice:
		return "DICE"
	case TokenMinimum:
		return "MINIMUM"
	case TokenMaximum:
		return "MAXIMUM"
	case TokenExplode:
		return "EXPLODE"
	case TokenKeep:
		return "KEEP"
	case TokenDrop:
		return "DROP"
	case TokenHighest:
		return "HIGHEST"
	case TokenLowest:
		return "LOWEST"
	case TokenGreaterThan:
		return "GREATER_THAN"
	case TokenLessThan:
		return "LESS_THAN"
	case TokenLiteral:
		return "LITERAL"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Symbol returns the source text the token type is written as.
// Literal kinds and the end marker have no fixed text.
func (t TokenType) Symbol() string {
	switch t {
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenMultiply:
		return "*"
	case TokenDivide:
		return "/"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenDice:
		return "d"
	case TokenMinimum:
		return "mi"
	case TokenMaximum:
		return "ma"
	case TokenExplode:
		return "e"
	case TokenKeep:
		return "k"
	case TokenDrop:
		return "p"
	case TokenHighest:
		return "h"
	case TokenLowest:
		return "l"
	case TokenGreaterThan:
		return ">"
	case TokenLessThan:
		return "<"
	default:
		return ""
	}
}

// isModifier reports whether the token type starts a dice modifier.
func (t TokenType) isModifier() bool {
	return t >= TokenMinimum && t <= TokenDrop
}

// isSelector reports whether the token type is a modifier selector.
func (t TokenType) isSelector() bool {
	return t >= TokenHighest && t <= TokenLiteral
}

// String renders the token the way it appeared in the input.
func (t Token) String() string {
	switch t.Type {
	case TokenInt:
		return formatInt(t.Num)
	case TokenFloat:
		return formatFloat(t.Num)
	case TokenEOF:
		return "end of input"
	case TokenLiteral:
		return "literal selector"
	default:
		if t.Value != "" {
			return t.Value
		}
		return t.Type.Symbol()
	}
}

// formatInt renders an integral value without fractional digits.
func formatInt(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 0, 32)
}

// formatFloat renders a float value, keeping a fractional part for integral values.
func formatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
