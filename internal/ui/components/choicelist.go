package components

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/ui/theme"
)

// ChoiceList presents the options of a choice question. In multi mode
// space toggles marks and the selection is the marked set; in single
// mode the selection is the option under the cursor.
type ChoiceList struct {
	Options []bank.Option
	Multi   bool
	Cursor  int

	marked   map[int]bool
	revealed bool
	correct  map[string]bool
	chosen   map[string]bool
}

// NewChoiceList creates a choice list over the given options.
func NewChoiceList(options []bank.Option, multi bool) ChoiceList {
	return ChoiceList{
		Options: options,
		Multi:   multi,
		marked:  make(map[int]bool),
	}
}

// Init returns nil.
func (c ChoiceList) Init() tea.Cmd {
	return nil
}

// Update handles cursor movement, mark toggling, and label shortcuts.
// Input is ignored once the answer has been revealed.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	if c.revealed {
		return c, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ":
		if c.Multi {
			c.marked[c.Cursor] = !c.marked[c.Cursor]
		}
	default:
		// Typing an option label jumps to it; in multi mode it
		// also toggles the mark.
		if len(key) == 1 {
			label := strings.ToUpper(key)
			for i, opt := range c.Options {
				if opt.Label == label {
					c.Cursor = i
					if c.Multi {
						c.marked[i] = !c.marked[i]
					}
					break
				}
			}
		}
	}

	return c, nil
}

// Selection returns the labels the learner currently has selected.
// Empty in multi mode until at least one option is marked.
func (c ChoiceList) Selection() []string {
	if !c.Multi {
		if c.Cursor < 0 || c.Cursor >= len(c.Options) {
			return nil
		}
		return []string{c.Options[c.Cursor].Label}
	}
	var labels []string
	for i, opt := range c.Options {
		if c.marked[i] {
			labels = append(labels, opt.Label)
		}
	}
	sort.Strings(labels)
	return labels
}

// Reveal locks the list and colors options by the grading outcome.
func (c *ChoiceList) Reveal(correct, chosen []string) {
	c.revealed = true
	c.correct = make(map[string]bool, len(correct))
	for _, l := range correct {
		c.correct[l] = true
	}
	c.chosen = make(map[string]bool, len(chosen))
	for _, l := range chosen {
		c.chosen[l] = true
	}
}

// View renders the option lines.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor && !c.revealed {
			prefix = "▸ "
		}

		mark := ""
		if c.Multi && !c.revealed {
			if c.marked[i] {
				mark = "[x] "
			} else {
				mark = "[ ] "
			}
		}

		line := fmt.Sprintf("%s%s%s. %s", prefix, mark, opt.Label, opt.Text)

		switch {
		case c.revealed && c.correct[opt.Label]:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render(line))
		case c.revealed && c.chosen[opt.Label]:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(line))
		case c.revealed:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(line))
		case i == c.Cursor || (c.Multi && c.marked[i]):
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
