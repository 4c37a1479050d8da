// Package tui is the terminal front end of the shorten form.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailRaia/shortlink/internal/form"
)

type focusTarget int

const (
	focusURL focusTarget = iota
	focusAlias
	focusExpiry
	focusSubmit
	focusCopy
)

const inputCount = 3

// viewMsg carries a view published by the controller.
type viewMsg form.View

type submitDoneMsg struct{ err error }

type copyDoneMsg struct{ err error }

// Model is the bubbletea model of the form. Submit and copy run as commands
// so the event loop keeps drawing while they are in flight.
type Model struct {
	ctx    context.Context
	ctrl   *form.Controller
	inputs []textinput.Model
	focus  focusTarget
	view   form.View
	styles Styles
}

// New creates the model for ctrl. ctx bounds every submission.
func New(ctx context.Context, ctrl *form.Controller) Model {
	placeholders := []string{"https://example.com/a/long/path", "optional custom code", "optional, days"}
	limits := []int{2048, 32, 6}

	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 48
		inputs[i] = ti
	}
	inputs[focusURL].Focus()

	return Model{
		ctx:    ctx,
		ctrl:   ctrl,
		inputs: inputs,
		focus:  focusURL,
		view:   ctrl.View(),
		styles: DefaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = form.View(msg)
		return m, nil

	case submitDoneMsg, copyDoneMsg:
		m.view = m.ctrl.View()
		if m.focus == focusCopy && !m.view.Result.Visible {
			return m, m.setFocus(focusSubmit)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m, m.setFocus(m.nextFocus(1))
		case "shift+tab", "up":
			return m, m.setFocus(m.nextFocus(-1))
		case "enter":
			switch m.focus {
			case focusURL, focusSubmit:
				return m, m.submit()
			case focusCopy:
				return m, m.copy()
			}
			return m, nil
		}
	}

	if m.focus > focusExpiry {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.ctrl.SetFields(m.fields())
	return m, cmd
}

func (m Model) fields() form.Fields {
	return form.Fields{
		URL:    m.inputs[focusURL].Value(),
		Alias:  m.inputs[focusAlias].Value(),
		Expiry: m.inputs[focusExpiry].Value(),
	}
}

func (m *Model) submit() tea.Cmd {
	if m.view.Submit.Disabled {
		return nil
	}

	m.ctrl.SetFields(m.fields())
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx)}
	}
}

func (m *Model) copy() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return copyDoneMsg{err: ctrl.Copy()}
	}
}

// nextFocus steps through the focusable widgets. The copy button only takes
// part while a result is shown.
func (m Model) nextFocus(step int) focusTarget {
	count := int(focusCopy)
	if m.view.Result.Visible {
		count++
	}
	return focusTarget((int(m.focus) + step + count) % count)
}

func (m *Model) setFocus(target focusTarget) tea.Cmd {
	m.focus = target

	var cmd tea.Cmd
	for i := range m.inputs {
		if focusTarget(i) == target {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("shortlink"))
	b.WriteString("\n")

	labels := []string{"URL", "Alias", "Expires"}
	for i, input := range m.inputs {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Label.Render(labels[i]), input.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderButton(m.view.Submit, m.focus == focusSubmit))
	b.WriteString("\n")

	if m.view.Error.Visible {
		b.WriteString(m.styles.Error.Render(m.view.Error.Text))
		b.WriteString("\n")
	}

	if m.view.Result.Visible {
		result := lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Link.Render(m.view.Result.Text),
			m.styles.Meta.Render(m.view.Result.Meta),
			m.renderButton(m.view.Copy, m.focus == focusCopy),
		)
		b.WriteString(m.styles.Result.Render(result))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("tab: next • enter: shorten/copy • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderButton(btn form.Button, focused bool) string {
	switch {
	case btn.Disabled:
		return m.styles.ButtonDisabled.Render(btn.Label)
	case focused:
		return m.styles.ButtonFocused.Render(btn.Label)
	default:
		return m.styles.Button.Render(btn.Label)
	}
}

// Run shows the form until the user quits or ctx is done.
func Run(ctx context.Context, ctrl *form.Controller, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, ctrl), opts...)

	// Controller callbacks run outside the event loop, so views are handed
	// over as messages.
	ctrl.OnChange(func(v form.View) {
		p.Send(viewMsg(v))
	})
	defer ctrl.OnChange(nil)

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
