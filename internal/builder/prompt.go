package builder

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter asks line-based questions. Invalid answers are re-asked, never
// returned as errors; only a closed input ends the dialogue.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), out: w}
}

func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Line returns the trimmed answer.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) Float(prompt string) (float64, error) {
	for {
		s, err := p.Line(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(p.out, "Please enter a valid number.")
	}
}

func (p *Prompter) NonNegativeFloat(prompt string) (float64, error) {
	for {
		v, err := p.Float(prompt)
		if err != nil {
			return 0, err
		}
		if v >= 0 {
			return v, nil
		}
		fmt.Fprintln(p.out, "Please enter a value >= 0.")
	}
}

// OptionalFloat returns nil for a blank answer.
func (p *Prompter) OptionalFloat(prompt string) (*float64, error) {
	for {
		s, err := p.Line(prompt)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err == nil && v >= 0 {
			return &v, nil
		}
		fmt.Fprintln(p.out, "Please enter a valid number >= 0 or leave empty.")
	}
}

func (p *Prompter) Count(prompt string) (int, error) {
	for {
		s, err := p.Line(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= 0 {
			return n, nil
		}
		fmt.Fprintln(p.out, "Please enter a whole number >= 0.")
	}
}

func (p *Prompter) YesNo(prompt string) (bool, error) {
	for {
		s, err := p.Line(prompt + " [y/n]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(s) {
		case "y", "yes", "j", "ja":
			return true, nil
		case "n", "no", "nein":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer with 'y' or 'n'.")
	}
}
