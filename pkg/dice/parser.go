package dice

// Parser is a recursive descent parser for dice expressions.
//
// Grammar (lowest to highest precedence):
//
//	expression := term (("+"|"-") term)*
//	term       := dice (("*"|"/") dice)*
//	dice       := factor ["d" factor modifier*]
//	modifier   := ("mi"|"ma"|"e"|"k"|"p") selector factor
//	selector   := "h" | "l" | ">" | "<" | literal
//	factor     := ("+"|"-") factor | "(" expression ")" | number
type Parser struct {
	tokens []Token
	pos    int
}

// ParseExpression lexes and parses a complete dice expression.
func ParseExpression(input string) (Node, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse consumes the whole token stream into a single expression.
func Parse(tokens []Token) (Node, error) {
	p := &Parser{tokens: tokens}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := p.current(); tok.Type != TokenEOF {
		return nil, NewParseError(tok.Pos, "unexpected token %q at position %d", tok.String(), tok.Pos)
	}
	return node, nil
}

// current returns the current token.
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		end := 0
		if n := len(p.tokens); n > 0 {
			end = p.tokens[n-1].Pos
		}
		return Token{Type: TokenEOF, Pos: end}
	}
	return p.tokens[p.pos]
}

// advance consumes the current token and returns it.
func (p *Parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

// expect consumes a token of the expected type or returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != tt {
		return tok, NewParseError(tok.Pos, "expected %q, got %q at position %d", tt.Symbol(), tok.String(), tok.Pos)
	}
	p.advance()
	return tok, nil
}

func (p *Parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := p.advance().Type
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseDice()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenMultiply || p.current().Type == TokenDivide {
		op := p.advance().Type
		right, err := p.parseDice()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseDice() (Node, error) {
	count, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenDice {
		return count, nil
	}
	p.advance()

	sides, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	node := &DiceNode{Count: count, Sides: sides}
	for p.current().Type.isModifier() {
		mod, err := p.parseModifier()
		if err != nil {
			return nil, err
		}
		node.Modifiers = append(node.Modifiers, mod)
	}
	return node, nil
}

func (p *Parser) parseModifier() (Modifier, error) {
	kw := p.advance()

	sel := p.current()
	if !sel.Type.isSelector() {
		return Modifier{}, NewParseError(sel.Pos, "expected selector after modifier %q at position %d", kw.Value, kw.Pos)
	}
	p.advance()

	factor, err := p.parseFactor()
	if err != nil {
		return Modifier{}, err
	}

	return Modifier{
		Kind:     modifierKinds[kw.Type],
		Selector: selectorKinds[sel.Type],
		Factor:   factor,
	}, nil
}

func (p *Parser) parseFactor() (Node, error) {
	tok := p.current()

	switch tok.Type {
	case TokenPlus, TokenMinus:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: tok.Type, Operand: operand}, nil
	case TokenLParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, NewParseError(p.current().Pos, "expected ')' to close '(' at position %d", tok.Pos)
		}
		return &ParenNode{Inner: inner}, nil
	case TokenInt:
		p.advance()
		return &IntNode{Value: tok.Num}, nil
	case TokenFloat:
		p.advance()
		return &FloatNode{Value: tok.Num}, nil
	default:
		return nil, NewParseError(tok.Pos, "expected number, got %q at position %d", tok.String(), tok.Pos)
	}
}
