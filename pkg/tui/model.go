package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikeboe/research-assistant/pkg/render"
	"github.com/mikeboe/research-assistant/pkg/research"
)

const defaultWidth = 80

// settledMsg is delivered once a submitted search has been applied or discarded.
type settledMsg struct{}

// Model is the bubbletea model of the terminal research assistant. The query
// text and operation state live in the Orchestrator; the textarea mirrors
// the query.
type Model struct {
	ctx       context.Context
	orch      *research.Orchestrator
	modelName string

	input   textarea.Model
	spinner spinner.Model
	styles  *Styles
	width   int
}

func NewModel(ctx context.Context, orch *research.Orchestrator, modelName string) Model {
	ta := textarea.New()
	ta.Placeholder = "e.g. Find the current population of Tokyo and compare it to New York..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(5)
	ta.SetWidth(defaultWidth - 4)
	ta.SetValue(orch.Snapshot().Query)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		orch:      orch,
		modelName: modelName,
		input:     ta,
		spinner:   sp,
		styles:    NewStyles(),
		width:     defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(msg.Width-4, 20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			return m.submit()
		case "ctrl+e":
			m.orch.LoadExample()
			m.input.SetValue(research.ExampleTask)
			return m, nil
		case "ctrl+l":
			m.orch.Clear()
			m.input.Reset()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != m.orch.Snapshot().Query {
			m.orch.SetQuery(m.input.Value())
		}
		return m, cmd

	case settledMsg:
		return m, nil

	case spinner.TickMsg:
		if !m.orch.Snapshot().Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	done := m.orch.Submit(m.ctx, m.input.Value())
	if done == nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, waitForSettle(done))
}

func waitForSettle(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return settledMsg{}
	}
}

func (m Model) View() string {
	snap := m.orch.Snapshot()
	s := m.styles

	var b strings.Builder
	b.WriteString(s.Title.Render("Research Assistant"))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render("Give it a research task; it searches the web and cites its sources."))
	b.WriteString("\n")
	b.WriteString(s.Input.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(s.Help.Render(m.helpLine(snap)))
	b.WriteString("\n")

	if msg := snap.ErrorMessage(); msg != "" {
		b.WriteString(m.renderError(msg, snap.ConfigError))
		b.WriteString("\n")
	}

	view := render.BuildResultView(snap.State.Result, snap.Loading())
	if out := m.renderResult(view); out != "" {
		b.WriteString(out)
		b.WriteString("\n")
	}

	b.WriteString(s.Footer.Render(fmt.Sprintf("Powered by %s & Google Search", m.modelName)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) helpLine(snap research.Snapshot) string {
	submit := "ctrl+s execute task"
	if !snap.CanSubmit() {
		submit = "ctrl+s (disabled)"
	}
	return strings.Join([]string{submit, "ctrl+e load example", "ctrl+l clear", "esc quit"}, " • ")
}

func (m Model) renderError(msg string, configErr bool) string {
	s := m.styles
	box := s.ErrorBox
	if configErr {
		box = s.ConfigBox
	}

	var b strings.Builder
	b.WriteString(s.ErrorTitle.Render("Error Encountered"))
	b.WriteString("\n")
	b.WriteString(msg)
	if configErr {
		b.WriteString("\n\n")
		b.WriteString(s.ErrorTitle.Render("Troubleshooting Guide"))
		for i, step := range render.TroubleshootingSteps {
			fmt.Fprintf(&b, "\n%d. %s", i+1, step)
		}
	}
	return box.Width(m.contentWidth()).Render(b.String())
}

func (m Model) renderResult(view render.ResultView) string {
	s := m.styles
	if view.Empty {
		return ""
	}
	if view.Loading {
		return s.Loading.Render(m.spinner.View() + " Researching...")
	}

	parts := []string{
		s.Heading.Render("Answer"),
		s.Answer.Width(m.contentWidth()).Render(view.Answer),
	}
	if len(view.Citations) > 0 {
		parts = append(parts, s.Heading.Render("Sources"))
		for i, c := range view.Citations {
			label := s.Dim.Render(c.Label)
			if c.Linked {
				label = s.Link.Render(c.Label)
				if c.Href != c.Label {
					label += " " + s.Dim.Render(c.Href)
				}
			}
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) contentWidth() int {
	return max(m.width-4, 20)
}
