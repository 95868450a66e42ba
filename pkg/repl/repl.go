// Package repl implements the interactive dice prompt.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lemonberrylabs/dice-notation/pkg/dice"
)

const (
	banner = "Type a dice expression to evaluate (or 'help' for help, or 'quit' to exit)"
	prompt = "> "
	bye    = "Quitting app..."
)

// HelpText documents the expression syntax.
const HelpText = `================================================================
                        DICE ROLLER HELP
================================================================

BASIC SYNTAX:
  XdY           - Roll X dice with Y sides (e.g. 2d6, 3d20)
  +, -, *, /    - Standard arithmetic operations
  ( )           - Parentheses for grouping expressions

EXAMPLES:
  1d20          - Roll a single 20-sided die
  2d6 + 3       - Roll 2d6 and add 3
  1d4 + 8d6     - Roll 1d4 and 8d6, then sum together
  (1d8 + 2) * 2 - Roll 1d8 and add 2, then multiply sum by 2

----------------------------------------------------------------

MODIFIERS:
  mi[X]         - Minimum. Set rolls below X to X. (e.g. 2d6mi3)
  ma[X]         - Maximum. Set rolls above X to X. (e.g. 2d6ma5)
  e[X]          - Explode. Roll an additional die for every die
                  matching the selector. (e.g. 2d6e6, 3d10e>8)
  k[X]          - Keep. Keeps all dice that match the selector. (e.g. 10d6k3)
  p[X]          - Drop. Drops all dice that match the selector. (e.g. 10d6p1)

Minimum and maximum only take a literal value. Explode takes a
literal value, > or <. Keep and drop take any selector.

----------------------------------------------------------------

SELECTORS:
  hX            - Act on highest X rolls. (e.g. 4d6kh3)
  lX            - Act on lowest X rolls. (e.g. 1d20kl1)
  >X            - Act on rolls more than X. (e.g. 6d6k>2)
  <X            - Act on rolls less than X. (e.g. 3d20k<15)
  X             - Act on rolls literally matching X. (e.g. 10d6k3)

----------------------------------------------------------------

Type 'help' to bring up this guide.
Type 'quit' to quit the program.

================================================================`

// Run reads expressions from in, one per line, and writes results to out
// until quit, end of input or ctx is cancelled.
func Run(ctx context.Context, in io.Reader, out io.Writer, ev *dice.Evaluator) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	fmt.Fprintln(out, banner)
	for {
		fmt.Fprint(out, prompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\n"+bye)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out, "\n"+bye)
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "quit"):
			fmt.Fprintln(out, bye)
			return nil
		case strings.EqualFold(line, "help"):
			fmt.Fprintln(out, HelpText)
			continue
		}

		Eval(out, ev, line)
	}
}

// Eval evaluates one expression and prints the result or the error.
func Eval(out io.Writer, ev *dice.Evaluator, expr string) {
	res, err := ev.Roll(expr)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Rolled: %s\n", res.Display)
	fmt.Fprintf(out, "Total: %s\n", dice.FormatTotal(res.Value))
}
