package dice

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes a dice expression string.
type Lexer struct {
	input    string
	pos      int
	selector bool // a modifier keyword was just emitted
	tokens   []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Lex scans the entire input and returns its tokens, ending with TokenEOF.
func Lex(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the entire input and returns all tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return l.tokens, nil
}

// next returns the next token from the input.
func (l *Lexer) next() (Token, error) {
	// The selector belongs to the keyword before it, so no whitespace is skipped.
	if l.selector {
		l.selector = false
		return l.readSelector(), nil
	}

	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	ch := l.input[l.pos]

	if isDigit(ch) || ch == '.' {
		return l.readNumber()
	}

	// Two-character modifier keywords
	if ch == 'm' && l.pos+1 < len(l.input) {
		switch l.input[l.pos+1] {
		case 'i':
			return l.modifier(TokenMinimum, 2), nil
		case 'a':
			return l.modifier(TokenMaximum, 2), nil
		}
	}

	switch ch {
	case '+':
		return l.single(TokenPlus), nil
	case '-':
		return l.single(TokenMinus), nil
	case '*':
		return l.single(TokenMultiply), nil
	case '/':
		return l.single(TokenDivide), nil
	case '(':
		return l.single(TokenLParen), nil
	case ')':
		return l.single(TokenRParen), nil
	case 'd':
		return l.single(TokenDice), nil
	case 'e':
		return l.modifier(TokenExplode, 1), nil
	case 'k':
		return l.modifier(TokenKeep, 1), nil
	case 'p':
		return l.modifier(TokenDrop, 1), nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return Token{}, NewLexError(r, l.pos, "unexpected character "+strconv.QuoteRune(r)+" at position "+strconv.Itoa(l.pos))
}

// single consumes a one-character token.
func (l *Lexer) single(tt TokenType) Token {
	tok := Token{Type: tt, Value: l.input[l.pos : l.pos+1], Pos: l.pos}
	l.pos++
	return tok
}

// modifier consumes a modifier keyword of the given width and arms selector lexing.
func (l *Lexer) modifier(tt TokenType, width int) Token {
	tok := Token{Type: tt, Value: l.input[l.pos : l.pos+width], Pos: l.pos}
	l.pos += width
	l.selector = true
	return tok
}

// readSelector reads the selector that follows a modifier keyword. When no
// selector symbol is present a literal selector is emitted and nothing is consumed.
func (l *Lexer) readSelector() Token {
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case 'h':
			return l.single(TokenHighest)
		case 'l':
			return l.single(TokenLowest)
		case '>':
			return l.single(TokenGreaterThan)
		case '<':
			return l.single(TokenLessThan)
		}
	}
	return Token{Type: TokenLiteral, Pos: l.pos}
}

// readNumber reads an integer or float literal: [digits][.][digits], with at
// least one digit on either side of the optional point.
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	isFloat := false

	intDigits := l.skipDigits()
	fracDigits := 0
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		isFloat = true
		l.pos++
		fracDigits = l.skipDigits()
	}

	if intDigits == 0 && fracDigits == 0 {
		return Token{}, NewLexError('.', start, "malformed number at position "+strconv.Itoa(start))
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		return Token{}, NewLexError('.', l.pos, "malformed number: second decimal point at position "+strconv.Itoa(l.pos))
	}

	raw := l.input[start:l.pos]
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return Token{}, NewLexError(rune(raw[0]), start, "number "+strconv.Quote(raw)+" out of range")
	}

	tt := TokenInt
	if isFloat {
		tt = TokenFloat
	}
	return Token{Type: tt, Value: raw, Num: float32(f), Pos: start}, nil
}

// skipDigits advances past a run of ASCII digits and returns its length.
func (l *Lexer) skipDigits() int {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return l.pos - start
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
