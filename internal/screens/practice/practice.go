// Package practice implements the quiz screen: one question per page,
// answer entry by question type, graded feedback with wrongbook status.
package practice

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/explain"
	"github.com/drillbook/drillbook/internal/quiz"
	"github.com/drillbook/drillbook/internal/router"
	"github.com/drillbook/drillbook/internal/screen"
	"github.com/drillbook/drillbook/internal/store"
	"github.com/drillbook/drillbook/internal/ui/components"
	"github.com/drillbook/drillbook/internal/ui/layout"
	"github.com/drillbook/drillbook/internal/ui/theme"
)

// Scope selects which questions a practice pass drills.
type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeWrongbook Scope = "wrongbook"
)

type state int

const (
	stateLoading state = iota
	stateAnswering
	stateFeedback
	stateDone
	stateEmpty
	stateError
)

// PracticeScreen drives one quiz session.
type PracticeScreen struct {
	st        *store.Store
	explainer *explain.Service
	scope     Scope
	mode      quiz.OrderMode

	state state
	sess  *quiz.Session
	view  quiz.View

	choice  components.ChoiceList
	input   components.TextInput
	jump    components.TextInput
	jumping bool

	outcome     *quiz.Outcome
	explanation *explain.Explanation
	explainErr  error
	explaining  bool

	answered int
	correct  int
	notice   string
	err      error
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a practice screen. The working set is loaded in Init.
func New(st *store.Store, explainer *explain.Service, scope Scope, mode quiz.OrderMode) *PracticeScreen {
	return &PracticeScreen{
		st:        st,
		explainer: explainer,
		scope:     scope,
		mode:      mode,
		state:     stateLoading,
	}
}

func (p *PracticeScreen) Init() tea.Cmd {
	return func() tea.Msg {
		sel := store.SelectAll
		if p.scope == ScopeWrongbook {
			sel = store.SelectWrongbookActive
		}
		qs, err := p.st.LoadWorkingSet(context.Background(), sel)
		return workingSetMsg{Questions: qs, Err: err}
	}
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case workingSetMsg:
		return p.onWorkingSet(msg)
	case submitResultMsg:
		return p.onSubmitResult(msg)
	case explainReadyMsg:
		p.explaining = false
		if msg.Err != nil {
			p.explainErr = msg.Err
		} else {
			p.explanation = msg.Out
		}
		return p, nil
	case tea.KeyMsg:
		return p.onKey(msg)
	}
	return p, nil
}

func (p *PracticeScreen) onWorkingSet(msg workingSetMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		p.state = stateError
		p.err = msg.Err
		return p, nil
	}
	if len(msg.Questions) == 0 {
		p.state = stateEmpty
		return p, nil
	}
	sess, err := quiz.Start(msg.Questions, p.mode, p.st)
	if err != nil {
		p.state = stateError
		p.err = err
		return p, nil
	}
	p.sess = sess
	p.showCurrent()
	return p, nil
}

// showCurrent syncs the input widgets to the question at the cursor.
func (p *PracticeScreen) showCurrent() {
	p.view = p.sess.Current()
	p.outcome = nil
	p.explanation = nil
	p.explainErr = nil
	p.notice = ""
	p.jumping = false
	p.state = stateAnswering

	switch p.view.Type {
	case bank.TypeSingleChoice:
		p.choice = components.NewChoiceList(p.view.Options, false)
	case bank.TypeMultiChoice:
		p.choice = components.NewChoiceList(p.view.Options, true)
	case bank.TypeTrueFalse:
		p.choice = components.NewChoiceList(trueFalseOptions(p.view.Options), false)
	default:
		p.input = components.NewTextInput("type your answer", false, 0)
	}
}

// trueFalseOptions presents a stored option pair as-is, or synthesizes
// one for questions imported without options.
func trueFalseOptions(opts []bank.Option) []bank.Option {
	if len(opts) == 2 {
		return opts
	}
	return []bank.Option{
		{Label: "A", Text: "正确 (true)"},
		{Label: "B", Text: "错误 (false)"},
	}
}

// answerValue maps the widget state to the answer string the grader
// expects for the current question type.
func (p *PracticeScreen) answerValue() (string, bool) {
	switch p.view.Type {
	case bank.TypeSingleChoice, bank.TypeMultiChoice:
		sel := p.choice.Selection()
		if len(sel) == 0 {
			return "", false
		}
		return strings.Join(sel, ""), true
	case bank.TypeTrueFalse:
		sel := p.choice.Selection()
		if len(sel) == 0 {
			return "", false
		}
		// Stored pairs grade by option text; synthesized pairs map
		// A to true and B to false.
		if len(p.view.Options) == 2 {
			for _, opt := range p.view.Options {
				if opt.Label == sel[0] {
					return opt.Text, true
				}
			}
		}
		if sel[0] == "A" {
			return "true", true
		}
		return "false", true
	default:
		v := strings.TrimSpace(p.input.Value())
		return v, v != ""
	}
}

func (p *PracticeScreen) submitCmd(answer string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := p.sess.Submit(context.Background(), answer)
		return submitResultMsg{Outcome: outcome, Err: err}
	}
}

func (p *PracticeScreen) explainCmd(given string) tea.Cmd {
	qid := p.view.QuestionID
	return func() tea.Msg {
		q, err := p.st.Question(context.Background(), qid)
		if err != nil {
			return explainReadyMsg{Err: err}
		}
		out, err := p.explainer.Explain(context.Background(), q, given)
		return explainReadyMsg{Out: out, Err: err}
	}
}

func (p *PracticeScreen) onSubmitResult(msg submitResultMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		// The attempt was not persisted; the question stays open.
		p.notice = "could not save the attempt: " + msg.Err.Error()
		return p, nil
	}
	p.outcome = msg.Outcome
	p.state = stateFeedback
	p.answered++
	if msg.Outcome.Correct {
		p.correct++
	}

	if p.view.Type == bank.TypeSingleChoice || p.view.Type == bank.TypeMultiChoice {
		p.choice.Reveal(bank.NormalizeLabels(msg.Outcome.CorrectAnswer), p.choice.Selection())
	} else if p.view.Type == bank.TypeTrueFalse {
		p.revealTrueFalse()
	}

	cmds := []tea.Cmd{func() tea.Msg { return screen.StatsChangedMsg{} }}
	if !msg.Outcome.Correct && msg.Outcome.Analysis == "" && p.explainer != nil {
		given, _ := p.answerValue()
		p.explaining = true
		cmds = append(cmds, p.explainCmd(given))
	}
	return p, tea.Batch(cmds...)
}

func (p *PracticeScreen) revealTrueFalse() {
	want := p.outcome.CorrectAnswer
	var correctLabel string
	for _, opt := range p.choice.Options {
		if canon, ok := bank.FoldTrueFalse(opt.Text); ok && canon == want {
			correctLabel = opt.Label
			break
		}
	}
	if correctLabel == "" {
		// Synthesized pair.
		correctLabel = "B"
		if want == "true" {
			correctLabel = "A"
		}
	}
	p.choice.Reveal([]string{correctLabel}, p.choice.Selection())
}

func (p *PracticeScreen) onKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch p.state {
	case stateEmpty, stateError:
		if key == "enter" || key == "q" {
			return p, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return p, nil

	case stateDone:
		if key == "enter" || key == "q" || key == "esc" {
			return p, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return p, nil

	case stateLoading:
		return p, nil
	}

	if p.jumping {
		return p.onJumpKey(msg)
	}

	switch key {
	case "left":
		if p.sess.Prev() {
			p.showCurrent()
		}
		return p, nil
	case "right":
		return p.advance()
	case "tab":
		if p.sess.RandomNext() {
			p.showCurrent()
		} else {
			return p.finish()
		}
		return p, nil
	case "ctrl+g":
		p.jumping = true
		p.jump = components.NewTextInput(fmt.Sprintf("1-%d", p.view.Total), true, 4)
		return p, p.jump.Init()
	}

	if p.state == stateFeedback {
		if key == "enter" {
			return p.advance()
		}
		return p, nil
	}

	// Answering.
	if key == "enter" {
		if p.view.Answered {
			return p.advance()
		}
		answer, ok := p.answerValue()
		if !ok {
			p.notice = "pick an answer first"
			return p, nil
		}
		return p, p.submitCmd(answer)
	}

	if p.view.Answered {
		return p, nil
	}

	var cmd tea.Cmd
	switch p.view.Type {
	case bank.TypeSingleChoice, bank.TypeMultiChoice, bank.TypeTrueFalse:
		p.choice, cmd = p.choice.Update(msg)
	default:
		p.input, cmd = p.input.Update(msg)
	}
	return p, cmd
}

func (p *PracticeScreen) onJumpKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		n, err := p.jump.NumericValue()
		if err != nil || n < 1 || n > p.view.Total {
			p.notice = fmt.Sprintf("position must be between 1 and %d", p.view.Total)
			p.jumping = false
			return p, nil
		}
		if err := p.sess.Jump(n - 1); err != nil {
			p.notice = err.Error()
			p.jumping = false
			return p, nil
		}
		p.showCurrent()
		return p, nil
	case "esc", "ctrl+g":
		p.jumping = false
		return p, nil
	}
	var cmd tea.Cmd
	p.jump, cmd = p.jump.Update(msg)
	return p, cmd
}

// advance moves forward, detouring to unanswered questions at the end
// of the pass before finishing.
func (p *PracticeScreen) advance() (screen.Screen, tea.Cmd) {
	if p.sess.Next() {
		p.showCurrent()
		return p, nil
	}
	if p.sess.Remaining() > 0 && p.sess.RandomNext() {
		p.showCurrent()
		return p, nil
	}
	return p.finish()
}

func (p *PracticeScreen) finish() (screen.Screen, tea.Cmd) {
	p.state = stateDone
	return p, nil
}

func (p *PracticeScreen) View(width, height int) string {
	cw := width - 8
	if cw < 40 {
		cw = 40
	}

	switch p.state {
	case stateLoading:
		return centered(width, height, theme.Hint.Render("loading questions..."))
	case stateEmpty:
		msg := "The bank has no questions yet."
		if p.scope == ScopeWrongbook {
			msg = "The wrongbook is empty. Nothing to drill."
		}
		return centered(width, height, theme.Body.Render(msg)+"\n\n"+theme.Hint.Render("press Enter to go back"))
	case stateError:
		return centered(width, height,
			lipgloss.NewStyle().Foreground(theme.Error).Render("error: "+p.err.Error())+
				"\n\n"+theme.Hint.Render("press Enter to go back"))
	case stateDone:
		return centered(width, height, p.renderSummary(cw))
	}

	var b strings.Builder

	b.WriteString(p.renderProgress(cw))
	b.WriteString("\n\n")

	stem := fmt.Sprintf("%d. %s", p.view.Position+1, p.view.Stem)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(cw).Render(stem))
	b.WriteString("\n\n")

	switch p.view.Type {
	case bank.TypeSingleChoice, bank.TypeMultiChoice, bank.TypeTrueFalse:
		b.WriteString(p.choice.View())
	default:
		b.WriteString(p.input.View())
		b.WriteString("\n")
	}

	if p.view.Answered && p.state == stateAnswering {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("already answered this pass"))
		b.WriteString("\n")
	}

	if p.state == stateFeedback {
		b.WriteString("\n")
		b.WriteString(p.renderFeedback(cw))
	}

	if p.jumping {
		b.WriteString("\n")
		b.WriteString(theme.Body.Render("jump to question: ") + p.jump.View())
	}

	if p.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(p.notice))
	}

	return lipgloss.NewStyle().Padding(1, 4).Width(width).Render(b.String())
}

func (p *PracticeScreen) renderProgress(cw int) string {
	total := p.view.Total
	done := total - p.sess.Remaining()
	percent := 0.0
	if total > 0 {
		percent = float64(done) / float64(total)
	}

	label := fmt.Sprintf("Question %d / %d", p.view.Position+1, total)
	kind := lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + typeLabel(p.view.Type))
	bar := components.NewProgressBar("", percent, false, cw/2)

	return theme.Body.Render(label) + kind + "\n" + bar.View()
}

func typeLabel(t bank.QuestionType) string {
	switch t {
	case bank.TypeSingleChoice:
		return "single choice"
	case bank.TypeMultiChoice:
		return "multiple choice, space marks"
	case bank.TypeTrueFalse:
		return "true or false"
	case bank.TypeFillIn:
		return "fill in"
	default:
		return "short answer"
	}
}

func (p *PracticeScreen) renderFeedback(cw int) string {
	var b strings.Builder

	if p.outcome.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Wrong"))
		b.WriteString(theme.Body.Render("   answer: " + p.outcome.CorrectAnswer))
	}
	b.WriteString("\n")

	switch {
	case p.outcome.Evicted:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).
			Render("mastered, removed from wrongbook"))
		b.WriteString("\n")
	case p.outcome.InWrongbook && p.outcome.Correct:
		b.WriteString(theme.Hint.Render(
			fmt.Sprintf("wrongbook streak %d of %d", p.outcome.Streak, 3)))
		b.WriteString("\n")
	case p.outcome.InWrongbook:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).
			Render("added to wrongbook"))
		b.WriteString("\n")
	}

	if p.outcome.Analysis != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("解析: "))
		b.WriteString(theme.Body.Width(cw).Render(p.outcome.Analysis))
		b.WriteString("\n")
	} else if p.explaining {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("asking for an explanation..."))
		b.WriteString("\n")
	} else if p.explanation != nil {
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(cw).Render(p.explanation.Explanation))
		if p.explanation.KeyPoint != "" {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render("key point: " + p.explanation.KeyPoint))
		}
		b.WriteString("\n")
	} else if p.explainErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("no explanation available"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Enter for the next question"))
	return b.String()
}

func (p *PracticeScreen) renderSummary(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Pass complete"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("answered %d of %d", p.answered, p.sess.Size())))
	b.WriteString("\n")
	if p.answered > 0 {
		b.WriteString(theme.Body.Render(fmt.Sprintf("correct  %d (%.0f%%)",
			p.correct, float64(p.correct)/float64(p.answered)*100)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("press Enter to return"))
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(b.String())
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	switch p.state {
	case stateAnswering:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "←→", Description: "Browse"},
			{Key: "Tab", Description: "Random"},
			{Key: "Ctrl+G", Description: "Jump"},
			{Key: "Esc", Description: "Back"},
		}
	case stateFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "←", Description: "Back"},
			{Key: "Esc", Description: "Quit pass"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Back"},
		}
	}
}

func (p *PracticeScreen) Title() string {
	if p.scope == ScopeWrongbook {
		return "Wrongbook Drill"
	}
	return "Practice"
}
