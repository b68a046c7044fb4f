package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/archival-ops/aspace-reorder/internal/domain"
)

// Prompter reads operator input line by line
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter over the given streams
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a y/N question; anything but yes declines
func (p *Prompter) Confirm(question string) bool {
	answer, err := p.readLine(question + " (y/N): ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// ChooseMode asks for the execution mode until a valid choice arrives
func (p *Prompter) ChooseMode() (string, error) {
	fmt.Fprintln(p.out, "Choose reorder method:")
	fmt.Fprintln(p.out, "  1. Individual moves (one call per object, per-object progress)")
	fmt.Fprintln(p.out, "  2. Bulk move (batched, rate-limited; recommended for large runs)")
	for {
		choice, err := p.readLine("Enter your choice (1 or 2): ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return "individual", nil
		case "2":
			return "bulk", nil
		}
		fmt.Fprintln(p.out, "Please enter 1 or 2.")
	}
}

// AskParent prompts for the target parent until valid input arrives
func (p *Prompter) AskParent() (domain.Parent, error) {
	var parent domain.Parent
	for {
		raw, err := p.readLine("Enter the type of parent record to update (archival_objects/resources): ")
		if err != nil {
			return parent, err
		}
		t, err := domain.ParseRecordType(strings.ToLower(raw))
		if err != nil {
			fmt.Fprintln(p.out, "Invalid input. Please enter 'archival_objects' or 'resources'.")
			continue
		}
		parent.Type = t
		break
	}
	for {
		raw, err := p.readLine(fmt.Sprintf("Enter the ID of the parent %s to move or resort into: ", parent.Type))
		if err != nil {
			return parent, err
		}
		var id int
		if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id <= 0 {
			fmt.Fprintln(p.out, "Invalid input. Please enter a positive number.")
			continue
		}
		parent.ID = id
		return parent, nil
	}
}
