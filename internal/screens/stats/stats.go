// Package stats shows practice statistics: bank size, attempt history,
// accuracy, and the wrongbook streak distribution.
package stats

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/drillbook/drillbook/internal/screen"
	"github.com/drillbook/drillbook/internal/store"
	"github.com/drillbook/drillbook/internal/ui/components"
	"github.com/drillbook/drillbook/internal/ui/theme"
	"github.com/drillbook/drillbook/internal/wrongbook"
)

// StatsScreen renders aggregate numbers from the store.
type StatsScreen struct {
	st    *store.Store
	stats *store.Stats
	err   error
}

var _ screen.Screen = (*StatsScreen)(nil)

type statsMsg struct {
	Stats *store.Stats
	Err   error
}

// New creates the stats screen.
func New(st *store.Store) *StatsScreen {
	return &StatsScreen{st: st}
}

func (s *StatsScreen) Init() tea.Cmd {
	return func() tea.Msg {
		stats, err := s.st.Stats(context.Background())
		return statsMsg{Stats: stats, Err: err}
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(statsMsg); ok {
		s.stats = m.Stats
		s.err = m.Err
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	if s.err != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render("error: "+s.err.Error()))
	}
	if s.stats == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("loading..."))
	}

	cw := width - 12
	if cw < 40 {
		cw = 40
	}

	var b strings.Builder

	row := func(label string, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(22).Render(label))
		b.WriteString(theme.Body.Render(value))
		b.WriteString("\n")
	}

	row("questions in bank", fmt.Sprintf("%d", s.stats.Questions))
	row("attempts", fmt.Sprintf("%d", s.stats.Attempts))
	row("correct", fmt.Sprintf("%d", s.stats.CorrectAttempts))
	row("wrongbook active", fmt.Sprintf("%d", s.stats.WrongbookActive))
	b.WriteString("\n")

	bar := components.NewProgressBar("accuracy", s.stats.Accuracy(), true, cw)
	b.WriteString(bar.View())
	b.WriteString("\n")

	if s.stats.WrongbookActive > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Body.Render("wrongbook streaks"))
		b.WriteString("\n")
		for streak := 0; streak < wrongbook.EvictionThreshold; streak++ {
			count := s.stats.StreakCounts[streak]
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
				Render(fmt.Sprintf("  %d correct in a row  ", streak)))
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).
				Render(strings.Repeat("■", count)))
			b.WriteString(theme.Hint.Render(fmt.Sprintf(" %d", count)))
			b.WriteString("\n")
		}
	}

	card := theme.Card.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *StatsScreen) Title() string {
	return "Statistics"
}
