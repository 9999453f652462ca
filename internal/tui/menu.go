package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type menuItem struct {
	label string
	hint  string
	page  string
}

// MenuModel is the start page shown without a session.
type MenuModel struct {
	items  []menuItem
	idx    int
	status string
}

func NewMenuModel() *MenuModel {
	return &MenuModel{
		items: []menuItem{
			{label: "Войти", hint: "продолжить со своим списком", page: pageLogin},
			{label: "Зарегистрироваться", hint: "новый аккаунт на сервере", page: pageRegister},
		},
	}
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusNotice:
		m.status = msg.text
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.up):
			m.idx = max(m.idx-1, 0)
		case key.Matches(msg, keys.down):
			m.idx = min(m.idx+1, len(m.items)-1)
		case msg.String() == "q":
			return m, tea.Quit
		case key.Matches(msg, keys.enter):
			m.status = ""
			return m, navigate(m.items[m.idx].page, nil)
		}
	}
	return m, nil
}

func (m *MenuModel) View() string {
	labelWidth := 0
	for _, item := range m.items {
		labelWidth = max(labelWidth, lipgloss.Width(item.label))
	}

	var b strings.Builder
	if m.status != "" {
		b.WriteString(m.status + "\n\n")
	}
	b.WriteString("Список фильмов хранится локально и работает без сети.\n")
	b.WriteString("Изменения уходят на сервер, как только появится связь.\n\n")

	for i, item := range m.items {
		line := fmt.Sprintf("  %-*s  %s", labelWidth, item.label, helpStyle.Render(item.hint))
		if i == m.idx {
			line = selectedStyle.Render(fmt.Sprintf("> %-*s", labelWidth, item.label)) + "  " + helpStyle.Render(item.hint)
		}
		b.WriteString(line + "\n")
	}

	return renderPage("СПИСОК ФИЛЬМОВ", strings.TrimRight(b.String(), "\n"), "enter: выбрать │ ↑/↓: навигация │ v: о программе │ q: выход")
}

func navigate(page string, payload any) tea.Cmd {
	return func() tea.Msg { return NavigateTo{Page: page, Payload: payload} }
}
