package dice

import (
	"math"
	"strconv"
)

// DefaultMaxDice bounds the number of dice a single roll may produce,
// counting dice added by explosions.
const DefaultMaxDice = 99999

// Result is the outcome of evaluating an expression or sub-expression.
type Result struct {
	Value   float32
	Display string
}

// Options controls evaluation.
type Options struct {
	// Source supplies die faces. Nil uses DefaultSource.
	Source Source
	// MaxDice caps the dice rolled per dice term (default DefaultMaxDice).
	MaxDice int
}

// normalize fills defaults for unset options.
func (o *Options) normalize() Options {
	if o == nil {
		return Options{Source: DefaultSource(), MaxDice: DefaultMaxDice}
	}

	out := *o
	if out.Source == nil {
		out.Source = DefaultSource()
	}
	if out.MaxDice <= 0 {
		out.MaxDice = DefaultMaxDice
	}
	return out
}

// Evaluator walks a parsed expression and rolls its dice.
// It holds no state between calls; whether it is safe for concurrent use
// depends only on its Source.
type Evaluator struct {
	src     Source
	maxDice int
}

// NewEvaluator creates an evaluator. A nil opt uses the defaults.
func NewEvaluator(opt *Options) *Evaluator {
	o := opt.normalize()
	return &Evaluator{src: o.Source, maxDice: o.MaxDice}
}

// MaxDice returns the per-roll dice cap.
func (e *Evaluator) MaxDice() int {
	return e.maxDice
}

var defaultEvaluator = NewEvaluator(nil)

// Roll lexes, parses and evaluates input with the default evaluator.
func Roll(input string) (Result, error) {
	return defaultEvaluator.Roll(input)
}

// Roll lexes, parses and evaluates one expression.
func (e *Evaluator) Roll(input string) (Result, error) {
	node, err := ParseExpression(input)
	if err != nil {
		return Result{}, err
	}
	return e.Evaluate(node)
}

// Evaluate evaluates the expression rooted at node.
func (e *Evaluator) Evaluate(node Node) (Result, error) {
	switch n := node.(type) {
	case *BinaryNode:
		return e.evalBinary(n)
	case *UnaryNode:
		return e.evalUnary(n)
	case *ParenNode:
		inner, err := e.Evaluate(n.Inner)
		if err != nil {
			return Result{}, err
		}
		return Result{Value: inner.Value, Display: "(" + inner.Display + ")"}, nil
	case *IntNode:
		return Result{Value: n.Value, Display: formatInt(n.Value)}, nil
	case *FloatNode:
		return Result{Value: n.Value, Display: formatFloat(n.Value)}, nil
	case *DiceNode:
		return e.evalDice(n)
	default:
		return Result{}, &Error{Kind: KindUnknownOperator, Message: "unsupported node " + strconv.Quote(nodeName(node)), Pos: -1}
	}
}

func nodeName(n Node) string {
	if n == nil {
		return "nil"
	}
	return n.nodeType()
}

func (e *Evaluator) evalBinary(n *BinaryNode) (Result, error) {
	left, err := e.Evaluate(n.Left)
	if err != nil {
		return Result{}, err
	}
	right, err := e.Evaluate(n.Right)
	if err != nil {
		return Result{}, err
	}

	var v float32
	switch n.Op {
	case TokenPlus:
		v = left.Value + right.Value
	case TokenMinus:
		v = left.Value - right.Value
	case TokenMultiply:
		v = left.Value * right.Value
	case TokenDivide:
		if right.Value == 0 {
			return Result{}, NewDivideByZeroError()
		}
		v = left.Value / right.Value
	default:
		return Result{}, NewUnknownOperatorError(n.Op)
	}

	return Result{Value: v, Display: left.Display + " " + n.Op.Symbol() + " " + right.Display}, nil
}

func (e *Evaluator) evalUnary(n *UnaryNode) (Result, error) {
	operand, err := e.Evaluate(n.Operand)
	if err != nil {
		return Result{}, err
	}

	switch n.Op {
	case TokenPlus:
		return Result{Value: operand.Value, Display: "+" + operand.Display}, nil
	case TokenMinus:
		return Result{Value: -operand.Value, Display: "-" + operand.Display}, nil
	default:
		return Result{}, NewUnknownOperatorError(n.Op)
	}
}

// FormatTotal renders a total as an integer when it is integral and as a
// decimal otherwise.
func FormatTotal(v float32) string {
	if f := float64(v); f == math.Trunc(f) {
		return formatInt(v)
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
