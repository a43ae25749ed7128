package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errNoInput is returned when the input ends before a prompt is answered.
var errNoInput = errors.New("input ended before all questions were answered")

// prompter reads one answer per line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", errNoInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}
