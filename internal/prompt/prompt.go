// Package prompt reads initial conditions from an interactive terminal or
// any line oriented input.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/spf13/cast"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// DensityPrompt is shown before the reference run reads its densities.
const DensityPrompt = "Enter initial prey and predator densities: "

// LineReader prompts for and returns one line of input. *liner.State
// satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

var _ LineReader = (*liner.State)(nil)

// Terminal wraps a liner session with Ctrl-C aborting the prompt.
func Terminal() *liner.State {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	return ln
}

// Open returns a liner session when in is a terminal and a plain scanner
// echoing prompts to out otherwise, together with its close function.
func Open(in *os.File, out io.Writer) (LineReader, func() error) {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		ln := Terminal()
		return ln, ln.Close
	}
	return NewScanner(in, out), func() error { return nil }
}

type scanner struct {
	sc *bufio.Scanner
	w  io.Writer
}

// NewScanner returns a LineReader over r that echoes prompts to w.
func NewScanner(r io.Reader, w io.Writer) LineReader {
	return &scanner{sc: bufio.NewScanner(r), w: w}
}

func (s *scanner) Prompt(p string) (string, error) {
	if s.w != nil && p != "" {
		if _, err := io.WriteString(s.w, p); err != nil {
			return "", err
		}
	}
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

// ReadState prompts once and then keeps reading lines until n whitespace
// separated numbers have been collected. Extra tokens on the last line are
// ignored. Non-finite spellings such as NaN and Inf are accepted; they
// propagate through the solve.
func ReadState(lr LineReader, prompt string, n int) (dynamo.State, error) {
	state := make(dynamo.State, 0, n)
	p := prompt

	for len(state) < n {
		line, err := lr.Prompt(p)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil, fmt.Errorf("read initial state: got %d of %d values: %w",
					len(state), n, io.ErrUnexpectedEOF)
			}
			return nil, err
		}
		p = ""

		for _, tok := range strings.Fields(line) {
			v, err := cast.ToFloat64E(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", dynamo.ErrInvalidArgument, tok)
			}
			state = append(state, v)
			if len(state) == n {
				break
			}
		}
	}

	return state, nil
}
