package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompt() *Prompt {
	return &Prompt{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (p *Prompt) ReadLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword disables echo when stdin is a terminal and falls back to a plain line otherwise.
func (p *Prompt) ReadPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.ReadLine(label)
	}

	fmt.Fprint(p.out, label)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
