package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"weatherwizard/manager"
)

// prompt asks the user on the console which city they mean.
type prompt struct {
	in  *bufio.Reader
	out io.Writer

	// listed is set once the full candidate list has been shown.
	listed bool
}

func newPrompt(in io.Reader, out io.Writer) *prompt {
	return &prompt{in: bufio.NewReader(in), out: out}
}

func (p *prompt) Confirm(city manager.City) (bool, error) {
	fmt.Fprintf(p.out, " Do you mean %s? (yes/no) [no]:\n > ", city.Label())

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *prompt) Choose(cities []manager.City) (int, error) {
	p.listed = true

	for i, c := range cities {
		fmt.Fprintf(p.out, " %d: %s\n", i, c.Label())
	}
	fmt.Fprintf(p.out, " %d: None of the above\n", len(cities))
	fmt.Fprint(p.out, " Please choose a number from the above list:\n > ")

	answer, err := p.readLine()
	if err != nil {
		return -1, err
	}

	index, err := strconv.Atoi(answer)
	if err != nil {
		return -1, nil
	}
	return index, nil
}

// readLine returns the next trimmed input line; end of input reads as empty.
func (p *prompt) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
