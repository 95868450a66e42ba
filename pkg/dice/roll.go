package dice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// dieRoll is one die during the evaluation of a dice term.
type dieRoll struct {
	value int
	kept  bool
	notes []string // annotation fragments, rendered in order
}

// appliedModifier is a modifier whose factor has been reduced to an integer.
type appliedModifier struct {
	kind  ModifierKind
	sel   SelectorKind
	value int
}

func (m appliedModifier) String() string {
	return m.kind.String() + m.sel.String() + strconv.Itoa(m.value)
}

type groupKind int

const (
	groupPerDie groupKind = iota
	groupKeep
	groupDrop
)

// modifierGroup is a run of modifiers applied as one step. Per-die groups
// always hold one modifier; keep and drop groups merge consecutive modifiers
// of the same kind into a union.
type modifierGroup struct {
	kind groupKind
	mods []appliedModifier
}

// evalDice validates a dice term, rolls it and applies its modifiers.
func (e *Evaluator) evalDice(n *DiceNode) (Result, error) {
	count, ok := literalInt(n.Count)
	if !ok {
		return Result{}, NewInvalidDiceError("number of dice must be a literal integer")
	}
	sides, ok := literalInt(n.Sides)
	if !ok {
		return Result{}, NewInvalidDiceError("number of sides must be a literal integer")
	}
	if count < 0 {
		return Result{}, NewInvalidDiceError(fmt.Sprintf("cannot roll %d dice", count))
	}
	if sides <= 0 {
		return Result{}, NewInvalidDiceError(fmt.Sprintf("cannot roll a %d-sided die", sides))
	}
	if count > e.maxDice {
		return Result{}, NewTooManyDiceError(e.maxDice)
	}

	mods, err := reduceModifiers(n.Modifiers)
	if err != nil {
		return Result{}, err
	}

	rolls := make([]dieRoll, 0, count)
	for range count {
		rolls = append(rolls, e.roll(sides))
	}

	for _, g := range groupModifiers(mods) {
		switch g.kind {
		case groupPerDie:
			rolls, err = e.applyPerDie(rolls, g.mods[0], sides)
			if err != nil {
				return Result{}, err
			}
		case groupKeep:
			applySelection(rolls, g.mods, true)
		case groupDrop:
			applySelection(rolls, g.mods, false)
		}
	}

	var b strings.Builder
	b.WriteString(strconv.Itoa(count))
	b.WriteString("d")
	b.WriteString(strconv.Itoa(sides))
	for _, m := range mods {
		b.WriteString(m.String())
	}

	total := 0
	notes := make([]string, len(rolls))
	for i, r := range rolls {
		text := strings.Join(r.notes, "")
		if r.value == 1 || r.value == sides {
			text = "**" + text + "**"
		}
		if r.kept {
			total += r.value
		} else {
			text = "~~" + text + "~~"
		}
		notes[i] = text
	}
	b.WriteString(" (")
	b.WriteString(strings.Join(notes, ", "))
	b.WriteString(")")

	return Result{Value: float32(total), Display: b.String()}, nil
}

// roll rolls one fresh die.
func (e *Evaluator) roll(sides int) dieRoll {
	v := e.src.IntN(sides) + 1
	return dieRoll{value: v, kept: true, notes: []string{strconv.Itoa(v)}}
}

// literalInt reduces an integer literal, optionally signed by unary
// operators, to its value. Anything else is not a literal.
func literalInt(node Node) (int, bool) {
	switch n := node.(type) {
	case *IntNode:
		if n.Value >= 1<<31 {
			return 0, false
		}
		return int(n.Value), true
	case *UnaryNode:
		v, ok := literalInt(n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case TokenPlus:
			return v, true
		case TokenMinus:
			return -v, true
		}
	}
	return 0, false
}

// reduceModifiers validates each modifier factor and selector, keeping the
// original order.
func reduceModifiers(mods []Modifier) ([]appliedModifier, error) {
	out := make([]appliedModifier, 0, len(mods))
	for _, m := range mods {
		v, ok := literalInt(m.Factor)
		if !ok {
			return nil, NewInvalidModifierError(fmt.Sprintf("value of %q must be a literal integer", m.Kind.String()+m.Selector.String()))
		}
		if v < 0 {
			return nil, NewInvalidModifierError(fmt.Sprintf("value of %q cannot be negative", m.Kind.String()+m.Selector.String()))
		}

		switch m.Kind {
		case ModMinimum, ModMaximum:
			if m.Selector != SelectLiteral {
				return nil, NewInvalidModifierError(fmt.Sprintf("%q only takes a literal value", m.Kind.String()))
			}
		case ModExplode:
			if m.Selector == SelectHighest || m.Selector == SelectLowest {
				return nil, NewInvalidModifierError(fmt.Sprintf("%q does not support the %q selector", m.Kind.String(), m.Selector.String()))
			}
		}

		out = append(out, appliedModifier{kind: m.Kind, sel: m.Selector, value: v})
	}
	return out, nil
}

// groupModifiers partitions modifiers into application steps.
func groupModifiers(mods []appliedModifier) []modifierGroup {
	var groups []modifierGroup
	for _, m := range mods {
		kind := groupPerDie
		switch m.kind {
		case ModKeep:
			kind = groupKeep
		case ModDrop:
			kind = groupDrop
		}

		if last := len(groups) - 1; kind != groupPerDie && last >= 0 && groups[last].kind == kind {
			groups[last].mods = append(groups[last].mods, m)
			continue
		}
		groups = append(groups, modifierGroup{kind: kind, mods: []appliedModifier{m}})
	}
	return groups
}

// applyPerDie applies a minimum, maximum or explode modifier to every kept die.
func (e *Evaluator) applyPerDie(rolls []dieRoll, m appliedModifier, sides int) ([]dieRoll, error) {
	switch m.kind {
	case ModMinimum:
		for i := range rolls {
			if rolls[i].kept && rolls[i].value < m.value {
				rolls[i].clamp(m.value)
			}
		}
	case ModMaximum:
		for i := range rolls {
			if rolls[i].kept && rolls[i].value > m.value {
				rolls[i].clamp(m.value)
			}
		}
	case ModExplode:
		return e.explode(rolls, m, sides)
	}
	return rolls, nil
}

func (r *dieRoll) clamp(v int) {
	r.value = v
	r.notes = append(r.notes, " -> "+strconv.Itoa(v))
}

// explode rolls an extra die after every kept die that meets the trigger,
// including dice added by the explosion itself.
func (e *Evaluator) explode(rolls []dieRoll, m appliedModifier, sides int) ([]dieRoll, error) {
	out := make([]dieRoll, 0, len(rolls))
	total := len(rolls)
	for _, r := range rolls {
		out = append(out, r)
		if !r.kept {
			continue
		}

		last := len(out) - 1
		for triggers(out[last].value, m) {
			out[last].notes = append(out[last].notes, "!")
			if total >= e.maxDice {
				return nil, NewTooManyDiceError(e.maxDice)
			}
			total++
			out = append(out, e.roll(sides))
			last = len(out) - 1
		}
	}
	return out, nil
}

func triggers(v int, m appliedModifier) bool {
	switch m.sel {
	case SelectGreaterThan:
		return v > m.value
	case SelectLessThan:
		return v < m.value
	default:
		return v == m.value
	}
}

// selection is the union criterion of a keep or drop group. Counts and
// thresholds are -1 when the selector is absent from the group.
type selection struct {
	highest int
	lowest  int
	greater int
	less    int
	literal map[int]bool
}

// reduceSelection folds duplicate selectors to the most permissive value.
func reduceSelection(mods []appliedModifier) selection {
	s := selection{highest: -1, lowest: -1, greater: -1, less: -1, literal: map[int]bool{}}
	for _, m := range mods {
		switch m.sel {
		case SelectHighest:
			s.highest = max(s.highest, m.value)
		case SelectLowest:
			s.lowest = max(s.lowest, m.value)
		case SelectGreaterThan:
			if s.greater < 0 || m.value < s.greater {
				s.greater = m.value
			}
		case SelectLessThan:
			s.less = max(s.less, m.value)
		case SelectLiteral:
			s.literal[m.value] = true
		}
	}
	return s
}

// matches reports whether the die at sorted rank among n dice meets any criterion.
func (s selection) matches(rank, n, value int) bool {
	switch {
	case s.highest >= 0 && rank >= n-s.highest:
		return true
	case s.lowest >= 0 && rank < s.lowest:
		return true
	case s.greater >= 0 && value > s.greater:
		return true
	case s.less >= 0 && value < s.less:
		return true
	}
	return s.literal[value]
}

// applySelection ranks the kept dice by value and discards those that do not
// match (keep) or do match (drop) the group's union criterion. Dice already
// discarded are not ranked and stay discarded.
func applySelection(rolls []dieRoll, mods []appliedModifier, keep bool) {
	sel := reduceSelection(mods)

	ranked := make([]int, 0, len(rolls))
	for i := range rolls {
		if rolls[i].kept {
			ranked = append(ranked, i)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return rolls[ranked[a]].value < rolls[ranked[b]].value
	})

	for rank, i := range ranked {
		if sel.matches(rank, len(ranked), rolls[i].value) != keep {
			rolls[i].kept = false
		}
	}
}
