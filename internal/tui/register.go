package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

// RegisterModel is the account creation page. A registered account is signed
// in right away, so success is handled by [RootModel] like a login.
type RegisterModel struct {
	credentialsForm

	ctx  context.Context
	auth service.ClientAuthService
}

func NewRegisterModel(ctx context.Context, auth service.ClientAuthService) *RegisterModel {
	return &RegisterModel{
		credentialsForm: newCredentialsForm("РЕГИСТРАЦИЯ", "Зарегистрироваться", "Логин", "Пароль", "Повтор пароля"),
		ctx:             ctx,
		auth:            auth,
	}
}

func (m *RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(RegisterResult); ok {
		m.submitting = false
		if result.Err != nil {
			m.errMsg = humanizeAuthError(result.Err)
			return m, nil
		}
		m.reset()
		return m, nil
	}

	action, cmd := m.handle(msg)
	switch action {
	case formBack:
		return m, navigate(pageMenu, nil)
	case formSubmit:
		login, pass, repeat := m.login(), m.password(1), m.password(2)
		switch {
		case login == "" || pass == "" || repeat == "":
			m.errMsg = "Все поля обязательны"
			return m, nil
		case pass != repeat:
			m.errMsg = "Пароли не совпадают"
			return m, nil
		}
		m.errMsg = ""
		m.submitting = true
		return m, m.cmdRegister(login, pass)
	}
	return m, cmd
}

func (m *RegisterModel) View() string {
	return m.view()
}

func (m *RegisterModel) cmdRegister(login, pass string) tea.Cmd {
	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		session, err := auth.Register(ctx, models.User{Login: login, Password: pass})
		return RegisterResult{Session: session, Err: err}
	}
}
