// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

// LoginModel is the sign-in page. A successful [LoginResult] is handled by
// [RootModel], which opens the watch list.
type LoginModel struct {
	credentialsForm

	ctx  context.Context
	auth service.ClientAuthService
}

func NewLoginModel(ctx context.Context, auth service.ClientAuthService) *LoginModel {
	return &LoginModel{
		credentialsForm: newCredentialsForm("ВХОД", "Войти", "Логин", "Пароль"),
		ctx:             ctx,
		auth:            auth,
	}
}

func (m *LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoginResult:
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = humanizeAuthError(msg.Err)
			return m, nil
		}
		m.reset()
		return m, nil
	case statusNotice:
		m.notice = msg.text
		return m, textinput.Blink
	}

	action, cmd := m.handle(msg)
	switch action {
	case formBack:
		return m, navigate(pageMenu, nil)
	case formSubmit:
		login, pass := m.login(), m.password(1)
		if login == "" || pass == "" {
			m.errMsg = "Логин и пароль обязательны"
			return m, nil
		}
		m.errMsg = ""
		m.submitting = true
		return m, m.cmdLogin(login, pass)
	}
	return m, cmd
}

func (m *LoginModel) View() string {
	return m.view()
}

func (m *LoginModel) cmdLogin(login, pass string) tea.Cmd {
	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		session, err := auth.Login(ctx, models.User{Login: login, Password: pass})
		return LoginResult{Session: session, Err: err}
	}
}
