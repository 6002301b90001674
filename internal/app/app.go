// Package app wires the store and services into the root Bubble Tea
// model: screen routing, global keys, and the header/footer frame.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/drillbook/drillbook/internal/explain"
	"github.com/drillbook/drillbook/internal/router"
	"github.com/drillbook/drillbook/internal/screen"
	"github.com/drillbook/drillbook/internal/screens/home"
	"github.com/drillbook/drillbook/internal/store"
	"github.com/drillbook/drillbook/internal/ui/layout"
)

// Options carries the dependencies the TUI needs. Explainer is nil when
// no LLM provider is configured.
type Options struct {
	Store     *store.Store
	Explainer *explain.Service
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int

	bankSize  int
	wrongSize int
}

// headerCountsMsg refreshes the header badges.
type headerCountsMsg struct {
	Bank  int
	Wrong int
}

func newAppModel(opts Options) AppModel {
	return AppModel{
		opts:   opts,
		router: router.New(home.New(opts.Store, opts.Explainer)),
	}
}

func (m AppModel) refreshCounts() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		bank, err := m.opts.Store.CountQuestions(ctx)
		if err != nil {
			return nil
		}
		wrong, err := m.opts.Store.ActiveWrongbookCount(ctx)
		if err != nil {
			return nil
		}
		return headerCountsMsg{Bank: bank, Wrong: wrong}
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.refreshCounts()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case headerCountsMsg:
		m.bankSize = msg.Bank
		m.wrongSize = msg.Wrong
		return m, nil

	case screen.StatsChangedMsg:
		// Forward to the active screen and refresh the badges.
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.refreshCounts())

	case router.PopScreenMsg:
		cmd := m.router.Update(msg)
		// The revealed screen may show counts that changed underneath.
		return m, tea.Batch(cmd,
			func() tea.Msg { return screen.StatsChangedMsg{} })

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.bankSize, m.wrongSize, m.width)

	var footerHints []layout.KeyHint
	if provider, ok := active.(screen.KeyHintProvider); ok {
		footerHints = provider.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
