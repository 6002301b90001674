// Package home implements the main menu screen.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/drillbook/drillbook/internal/explain"
	"github.com/drillbook/drillbook/internal/quiz"
	"github.com/drillbook/drillbook/internal/router"
	"github.com/drillbook/drillbook/internal/screen"
	"github.com/drillbook/drillbook/internal/screens/practice"
	statsscreen "github.com/drillbook/drillbook/internal/screens/stats"
	"github.com/drillbook/drillbook/internal/store"
	"github.com/drillbook/drillbook/internal/ui/components"
	"github.com/drillbook/drillbook/internal/ui/theme"
)

// HomeScreen is the entry menu: start a practice pass, drill the
// wrongbook, or look at statistics.
type HomeScreen struct {
	st        *store.Store
	explainer *explain.Service

	menu      components.Menu
	bankSize  int
	wrongSize int
	accuracy  float64
	attempts  int
	loadErr   error
}

var _ screen.Screen = (*HomeScreen)(nil)

// statsLoadedMsg carries the counts shown on the stats bar.
type statsLoadedMsg struct {
	Stats *store.Stats
	Err   error
}

// New creates the home screen. explainer may be nil when no LLM
// provider is configured.
func New(st *store.Store, explainer *explain.Service) *HomeScreen {
	h := &HomeScreen{st: st, explainer: explainer}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	push := func(scope practice.Scope, mode quiz.OrderMode) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{
					Screen: practice.New(h.st, h.explainer, scope, mode),
				}
			}
		}
	}

	return []components.MenuItem{
		{Label: "PRACTICE IN ORDER", Action: push(practice.ScopeAll, quiz.OrderSequential), Disabled: h.bankSize == 0},
		{Label: "PRACTICE SHUFFLED", Action: push(practice.ScopeAll, quiz.OrderRandom), Disabled: h.bankSize == 0},
		{Label: "DRILL WRONGBOOK", Action: push(practice.ScopeWrongbook, quiz.OrderSequential), Disabled: h.wrongSize == 0},
		{Label: "STATISTICS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: statsscreen.New(h.st)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := h.st.Stats(context.Background())
		return statsLoadedMsg{Stats: stats, Err: err}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err != nil {
			h.loadErr = msg.Err
			return h, nil
		}
		h.bankSize = msg.Stats.Questions
		h.wrongSize = msg.Stats.WrongbookActive
		h.accuracy = msg.Stats.Accuracy()
		h.attempts = msg.Stats.Attempts
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		if selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil

	case screen.StatsChangedMsg:
		return h, h.loadStats()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	title := theme.Title.Width(width).Render("DRILLBOOK")
	subtitle := theme.Subtitle.Width(width).Render("import question banks, drill what you get wrong")
	sections = append(sections, title+"\n"+subtitle)

	sections = append(sections, h.renderStatsBar(width))

	if h.loadErr != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Error).
			Width(width).
			Align(lipgloss.Center).
			Render("failed to load stats: "+h.loadErr.Error()))
	}

	if h.bankSize == 0 && h.loadErr == nil {
		sections = append(sections, theme.Hint.Width(width).Align(lipgloss.Center).
			Render("The bank is empty. Import a document first:  drillbook import <file>"))
	}

	menu := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(h.menu.View())
	sections = append(sections, menu)

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Center, content)
}

func (h *HomeScreen) renderStatsBar(width int) string {
	stat := func(label, value string) string {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(label+" ") +
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(value)
	}

	parts := []string{
		stat("questions", fmt.Sprintf("%d", h.bankSize)),
		stat("wrongbook", fmt.Sprintf("%d", h.wrongSize)),
	}
	if h.attempts > 0 {
		parts = append(parts, stat("accuracy", fmt.Sprintf("%.0f%%", h.accuracy*100)))
	}

	bar := strings.Join(parts, lipgloss.NewStyle().Foreground(theme.Border).Render("  │  "))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(bar)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
