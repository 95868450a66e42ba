package dice

import (
	"errors"
	"reflect"
	"testing"
)

func lit(v float32) *IntNode { return &IntNode{Value: v} }

func TestParseStructure(t *testing.T) {
	tests := []struct {
		input string
		want  Node
	}{
		{"1 + 2 * 3", &BinaryNode{
			Op:   TokenPlus,
			Left: lit(1),
			Right: &BinaryNode{
				Op: TokenMultiply, Left: lit(2), Right: lit(3),
			},
		}},
		{"1 - 2 - 3", &BinaryNode{
			Op:    TokenMinus,
			Left:  &BinaryNode{Op: TokenMinus, Left: lit(1), Right: lit(2)},
			Right: lit(3),
		}},
		{"(1 + 2) * 3", &BinaryNode{
			Op:    TokenMultiply,
			Left:  &ParenNode{Inner: &BinaryNode{Op: TokenPlus, Left: lit(1), Right: lit(2)}},
			Right: lit(3),
		}},
		{"--2.5", &UnaryNode{Op: TokenMinus, Operand: &UnaryNode{Op: TokenMinus, Operand: &FloatNode{Value: 2.5}}}},
		{"2d6", &DiceNode{Count: lit(2), Sides: lit(6)}},
		{"4d6kh3k1", &DiceNode{
			Count: lit(4),
			Sides: lit(6),
			Modifiers: []Modifier{
				{Kind: ModKeep, Selector: SelectHighest, Factor: lit(3)},
				{Kind: ModKeep, Selector: SelectLiteral, Factor: lit(1)},
			},
		}},
		{"2d6 * 2", &BinaryNode{
			Op:    TokenMultiply,
			Left:  &DiceNode{Count: lit(2), Sides: lit(6)},
			Right: lit(2),
		}},
		{"1d(2)", &DiceNode{Count: lit(1), Sides: &ParenNode{Inner: lit(2)}}},
		{"3d8e>7mi2", &DiceNode{
			Count: lit(3),
			Sides: lit(8),
			Modifiers: []Modifier{
				{Kind: ModExplode, Selector: SelectGreaterThan, Factor: lit(7)},
				{Kind: ModMinimum, Selector: SelectLiteral, Factor: lit(2)},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseExpression(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("unexpected tree for %q: %#v", tt.input, got)
			}
		})
	}
}

func TestParseDistinguishesLiteralAndHighest(t *testing.T) {
	kh, err := ParseExpression("4d6kh3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	k, err := ParseExpression("4d6k3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := kh.(*DiceNode).Modifiers[0].Selector; got != SelectHighest {
		t.Errorf("kh3: got selector %v, want highest", got)
	}
	if got := k.(*DiceNode).Modifiers[0].Selector; got != SelectLiteral {
		t.Errorf("k3: got selector %v, want literal", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"(1 + 2",
		"2d6 3",
		"2d6k",
		"d20",
		"2dd6",
		"1 2",
		")",
		"2d6kh",
		"2d6 * * 2",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseExpression(input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected parse error, got %v", err)
			}
		})
	}
}

func TestParseMissingSelector(t *testing.T) {
	// The lexer always emits a selector; hand-built streams may not.
	tokens := []Token{
		{Type: TokenInt, Num: 2, Pos: 0},
		{Type: TokenDice, Pos: 1},
		{Type: TokenInt, Num: 6, Pos: 2},
		{Type: TokenKeep, Value: "k", Pos: 3},
		{Type: TokenInt, Num: 1, Pos: 4},
		{Type: TokenEOF, Pos: 5},
	}
	_, err := Parse(tokens)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	var de *Error
	if errors.As(err, &de) && de.Pos != 4 {
		t.Errorf("got position %d, want 4", de.Pos)
	}
}

func TestParseUnclosedParenPosition(t *testing.T) {
	_, err := ParseExpression("(1 + 2")
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if de.Kind != KindParse {
		t.Fatalf("got kind %s, want ParseError", de.Kind)
	}
	if de.Pos != 6 {
		t.Errorf("got position %d, want 6", de.Pos)
	}
}
