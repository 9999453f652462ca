package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formAction int

const (
	formNone formAction = iota
	formBack
	formSubmit
)

// credentialsForm is the input block shared by the sign-in and sign-up pages.
// The first field is the login, every further one a masked password.
type credentialsForm struct {
	title  string
	button string
	labels []string

	inputs     []textinput.Model
	focus      int
	submitting bool
	notice     string
	errMsg     string
}

func newCredentialsForm(title, button string, labels ...string) credentialsForm {
	inputs := make([]textinput.Model, len(labels))
	for i := range inputs {
		in := textinput.New()
		in.Width = 40
		in.CharLimit = 256
		if i == 0 {
			in.Placeholder = "login"
			in.CharLimit = 64
			in.Focus()
		} else {
			in.Placeholder = "password"
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '*'
		}
		inputs[i] = in
	}

	return credentialsForm{title: title, button: button, labels: labels, inputs: inputs}
}

// handle moves focus and edits the focused input. It reports formSubmit on
// enter unless a request is already in flight.
func (f *credentialsForm) handle(msg tea.Msg) (formAction, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			f.submitting = false
			f.errMsg = ""
			f.notice = ""
			return formBack, nil
		case key.Matches(keyMsg, keys.tab):
			f.moveFocus(1)
			return formNone, nil
		case key.Matches(keyMsg, keys.backtab):
			f.moveFocus(-1)
			return formNone, nil
		case key.Matches(keyMsg, keys.enter):
			if f.submitting {
				return formNone, nil
			}
			return formSubmit, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formNone, cmd
}

func (f *credentialsForm) login() string {
	return strings.TrimSpace(f.inputs[0].Value())
}

func (f *credentialsForm) password(i int) string {
	return f.inputs[i].Value()
}

func (f *credentialsForm) moveFocus(delta int) {
	if delta > 0 {
		focusNext(f.inputs, &f.focus)
		return
	}
	focusPrev(f.inputs, &f.focus)
}

func focusNext(inputs []textinput.Model, focus *int) {
	inputs[*focus].Blur()
	*focus = (*focus + 1) % len(inputs)
	inputs[*focus].Focus()
}

func focusPrev(inputs []textinput.Model, focus *int) {
	inputs[*focus].Blur()
	*focus = (*focus - 1 + len(inputs)) % len(inputs)
	inputs[*focus].Focus()
}

func (f *credentialsForm) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = 0
	f.inputs[0].Focus()
	f.submitting = false
	f.errMsg = ""
	f.notice = ""
}

func (f *credentialsForm) view() string {
	labelWidth := lipgloss.Width("Поле")
	for _, label := range f.labels {
		labelWidth = max(labelWidth, lipgloss.Width(label))
	}

	var b strings.Builder
	if f.notice != "" {
		b.WriteString(f.notice + "\n\n")
	}
	fmt.Fprintf(&b, "%-*s │ Значение\n", labelWidth, "Поле")
	b.WriteString(strings.Repeat("─", labelWidth+1) + "┼" + strings.Repeat("─", 44) + "\n")
	for i, label := range f.labels {
		fmt.Fprintf(&b, "%-*s │ [%s]\n", labelWidth, label, f.inputs[i].View())
	}

	button := "[" + f.button + "]"
	if f.submitting {
		button = "[" + f.button + "...]"
	}
	b.WriteString("\n" + button + "\n")

	if f.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("Ошибка: "+f.errMsg) + "\n")
	}

	return renderPage(f.title, strings.TrimRight(b.String(), "\n"), "esc: назад │ tab: след. поле │ enter: подтвердить")
}
