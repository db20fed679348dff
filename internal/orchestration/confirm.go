package orchestration

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer gates an intensive run before anything is materialized.
type Confirmer interface {
	Confirm(batchSize int) (bool, error)
}

// PromptConfirmer asks on out and reads y/n answers from in, asking again
// until it gets one.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

const intensiveWarning = `
[!] WARNING!!!
[!] THE MODE YOU HAVE SELECTED IS "intensive"!
[!] BASED ON YOUR INPUT DOMAIN AND WORDLIST,
[!] THE PROGRAM COULD CONSUME ALL YOUR RAM!
[!] THE NUMBER OF STRINGS GENERATED IN EACH BATCH IS %d.

`

func (p *PromptConfirmer) Confirm(batchSize int) (bool, error) {
	for {
		fmt.Fprintf(p.out, intensiveWarning, batchSize)
		fmt.Fprint(p.out, "[!] ARE YOU SURE YOU WANT TO PROCEED? [y/n]: ")

		line, err := p.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, fmt.Errorf("confirmation: %w", io.ErrUnexpectedEOF)
			}
			return false, fmt.Errorf("confirmation: %w", err)
		}
		fmt.Fprintln(p.out, "[!] Invalid input received, please enter [y/n] only. . .")
	}
}

// AutoConfirmer always proceeds.
type AutoConfirmer struct{}

func (AutoConfirmer) Confirm(int) (bool, error) { return true, nil }
