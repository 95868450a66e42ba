package dice

// Node is an expression AST node. The set of implementations is closed:
// BinaryNode, UnaryNode, ParenNode, IntNode, FloatNode and DiceNode.
type Node interface {
	nodeType() string
}

// BinaryNode represents an arithmetic operation (a + b, a * b, ...).
type BinaryNode struct {
	Op    TokenType
	Left  Node
	Right Node
}

func (n *BinaryNode) nodeType() string { return "Binary" }

// UnaryNode represents a signed operand (+x, -x).
type UnaryNode struct {
	Op      TokenType
	Operand Node
}

func (n *UnaryNode) nodeType() string { return "Unary" }

// ParenNode keeps the original grouping so it survives into the display string.
type ParenNode struct {
	Inner Node
}

func (n *ParenNode) nodeType() string { return "Paren" }

// IntNode is an integer literal. Value is always integral.
type IntNode struct {
	Value float32
}

func (n *IntNode) nodeType() string { return "Int" }

// FloatNode is a literal written with a decimal point.
type FloatNode struct {
	Value float32
}

func (n *FloatNode) nodeType() string { return "Float" }

// DiceNode rolls Count dice with Sides sides and applies Modifiers in order.
type DiceNode struct {
	Count     Node
	Sides     Node
	Modifiers []Modifier
}

func (n *DiceNode) nodeType() string { return "Dice" }

// ModifierKind is the operation a dice modifier performs.
type ModifierKind int

const (
	ModMinimum ModifierKind = iota // mi
	ModMaximum                     // ma
	ModExplode                     // e
	ModKeep                        // k
	ModDrop                        // p
)

// String returns the keyword the modifier is written as.
func (k ModifierKind) String() string {
	switch k {
	case ModMinimum:
		return "mi"
	case ModMaximum:
		return "ma"
	case ModExplode:
		return "e"
	case ModKeep:
		return "k"
	case ModDrop:
		return "p"
	default:
		return "?"
	}
}

// SelectorKind is the criterion a modifier applies its factor with.
type SelectorKind int

const (
	SelectLiteral     SelectorKind = iota // X
	SelectHighest                         // hX
	SelectLowest                          // lX
	SelectGreaterThan                     // >X
	SelectLessThan                        // <X
)

// String returns the selector symbol; the literal selector has none.
func (s SelectorKind) String() string {
	switch s {
	case SelectHighest:
		return "h"
	case SelectLowest:
		return "l"
	case SelectGreaterThan:
		return ">"
	case SelectLessThan:
		return "<"
	default:
		return ""
	}
}

// Modifier is one modifier attached to a dice roll, in the order written.
// Factor is unevaluated; it must reduce to a non-negative integer literal.
type Modifier struct {
	Kind     ModifierKind
	Selector SelectorKind
	Factor   Node
}

var modifierKinds = map[TokenType]ModifierKind{
	TokenMinimum: ModMinimum,
	TokenMaximum: ModMaximum,
	TokenExplode: ModExplode,
	TokenKeep:    ModKeep,
	TokenDrop:    ModDrop,
}

var selectorKinds = map[TokenType]SelectorKind{
	TokenLiteral:     SelectLiteral,
	TokenHighest:     SelectHighest,
	TokenLowest:      SelectLowest,
	TokenGreaterThan: SelectGreaterThan,
	TokenLessThan:    SelectLessThan,
}
