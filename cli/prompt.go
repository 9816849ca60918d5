// ABOUTME: Interactive prompts for credentials and confirmations
// ABOUTME: Passwords are read without echo when stdin is a terminal
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.ErrOrStderr(),
		fd:  -1,
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		p.fd = int(f.Fd())
		p.tty = term.IsTerminal(p.fd)
	}
	return p
}

// Line prints label and reads one trimmed line.
func (p *prompter) Line(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Password reads a secret, hiding it on a terminal.
func (p *prompter) Password(label string) (string, error) {
	if !p.tty {
		line, err := p.Line(label)
		return line, err
	}
	_, _ = fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// Confirm asks a yes/no question. It implements viewmodel.Confirmer.
func (p *prompter) Confirm(message string) bool {
	answer, err := p.Line(message + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
