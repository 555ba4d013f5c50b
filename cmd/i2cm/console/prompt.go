package console

import (
	"strings"

	"github.com/chzyer/readline"
)

const (
	Yes = "y"
	No  = "n"
)

// Confirm asks a yes/no question and returns true only on an explicit
// yes. Prompt errors count as a refusal.
func Confirm(question string) bool {
	answer, err := YesOrNo(question)
	return err == nil && answer == Yes
}

func YesOrNo(question string) (string, error) {
	return Prompt(question, Yes, No)
}

// Prompt reads one line from the terminal. With constraints the first
// one doubles as the default: it is returned on empty input and on
// anything that matches no constraint.
func Prompt(question string, constraints ...string) (string, error) {
	var b strings.Builder
	b.WriteString(question)
	if len(constraints) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.ToUpper(constraints[0]))
		for _, c := range constraints[1:] {
			b.WriteString("/")
			b.WriteString(c)
		}
		b.WriteString("]:")
	}
	rl, err := readline.New(b.String())
	if err != nil {
		return "", err
	}
	defer func() { _ = rl.Close() }()
	response, err := rl.Readline()
	if err != nil {
		return "", err
	}
	if len(constraints) == 0 {
		return response, nil
	}
	response = strings.ToLower(strings.TrimSpace(response))
	for _, c := range constraints {
		if response == c {
			return response, nil
		}
	}
	// unmatched input falls back to the default
	return constraints[0], nil
}
