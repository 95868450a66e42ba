package dice

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	KindLex ErrorKind = iota + 1
	KindParse
	KindInvalidDiceExpression
	KindInvalidModifier
	KindDivideByZero
	KindTooManyDice
	KindUnknownOperator
)

// String returns the kind name used in API error payloads.
func (k ErrorKind) String() string {
	switch k {
	case KindLex:
		return "LexError"
	case KindParse:
		return "ParseError"
	case KindInvalidDiceExpression:
		return "InvalidDiceExpression"
	case KindInvalidModifier:
		return "InvalidModifier"
	case KindDivideByZero:
		return "DivideByZero"
	case KindTooManyDice:
		return "TooManyDiceRolled"
	case KindUnknownOperator:
		return "UnknownOperator"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is; every *Error unwraps to the one matching its kind.
var (
	ErrLex                   = errors.New("lex error")
	ErrParse                 = errors.New("parse error")
	ErrInvalidDiceExpression = errors.New("invalid dice expression")
	ErrInvalidModifier       = errors.New("invalid modifier")
	ErrDivideByZero          = errors.New("division by zero")
	ErrTooManyDice           = errors.New("too many dice rolled")
	ErrUnknownOperator       = errors.New("unknown operator")
)

// Error is a failure to lex, parse or evaluate one expression.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     int  // byte offset in the input, -1 when not tied to a position
	Char    rune // offending character (lex errors only)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %s", e.sentinel(), e.Message)
}

// Unwrap returns the sentinel for the error kind.
func (e *Error) Unwrap() error {
	return e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindLex:
		return ErrLex
	case KindParse:
		return ErrParse
	case KindInvalidDiceExpression:
		return ErrInvalidDiceExpression
	case KindInvalidModifier:
		return ErrInvalidModifier
	case KindDivideByZero:
		return ErrDivideByZero
	case KindTooManyDice:
		return ErrTooManyDice
	default:
		return ErrUnknownOperator
	}
}

// KindOf returns the kind of err, or 0 if err is not a dice error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// Common error constructors.

// NewLexError creates a lex error for the character at pos.
func NewLexError(ch rune, pos int, msg string) *Error {
	return &Error{Kind: KindLex, Message: msg, Pos: pos, Char: ch}
}

// NewParseError creates a parse error at pos.
func NewParseError(pos int, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// NewInvalidDiceError creates an InvalidDiceExpression error.
func NewInvalidDiceError(msg string) *Error {
	return &Error{Kind: KindInvalidDiceExpression, Message: msg, Pos: -1}
}

// NewInvalidModifierError creates an InvalidModifier error.
func NewInvalidModifierError(msg string) *Error {
	return &Error{Kind: KindInvalidModifier, Message: msg, Pos: -1}
}

// NewDivideByZeroError creates a DivideByZero error.
func NewDivideByZeroError() *Error {
	return &Error{Kind: KindDivideByZero, Pos: -1}
}

// NewTooManyDiceError creates a TooManyDiceRolled error for the given cap.
func NewTooManyDiceError(limit int) *Error {
	return &Error{Kind: KindTooManyDice, Message: fmt.Sprintf("limit is %d dice", limit), Pos: -1}
}

// NewUnknownOperatorError creates an UnknownOperator error.
func NewUnknownOperatorError(op TokenType) *Error {
	return &Error{Kind: KindUnknownOperator, Message: op.String(), Pos: -1}
}
