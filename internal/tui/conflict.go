package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

// ConflictModel shows a rejected local edit next to the server version and
// lets the user pick the winner.
type ConflictModel struct {
	ctx  context.Context
	sync service.SyncCoordinator

	record    models.Record
	resolving bool
}

func NewConflictModel(ctx context.Context, sync service.SyncCoordinator) *ConflictModel {
	return &ConflictModel{ctx: ctx, sync: sync}
}

func (m *ConflictModel) Init() tea.Cmd {
	return nil
}

func (m *ConflictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case showConflictMsg:
		m.record = msg.record
		m.resolving = false
		return m, nil
	case conflictResolvedMsg:
		m.resolving = false
		if msg.err != nil {
			text := "Локальная версия сохранена (" + humanizeSyncError(msg.err) + ")"
			if !msg.keepLocal {
				text = "Ошибка: " + humanizeSyncError(msg.err)
			}
			return m, navigate(pageRecords, statusNotice{text: text})
		}
		text := "Принята версия сервера: " + m.record.Title
		if msg.keepLocal {
			text = "Локальная версия отправлена: " + m.record.Title
		}
		return m, navigate(pageRecords, statusNotice{text: text})
	case tea.KeyMsg:
		if m.resolving {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.esc):
			return m, navigate(pageRecords, nil)
		case key.Matches(msg, keys.keepLocal):
			m.resolving = true
			return m, m.cmdResolve(true)
		case key.Matches(msg, keys.useServer):
			m.resolving = true
			return m, m.cmdResolve(false)
		}
	}
	return m, nil
}

func (m *ConflictModel) View() string {
	local := titleStyle.Render("Локальная версия") + "\n\n" + recordDetails(m.record)

	server := titleStyle.Render("Версия сервера") + "\n\n"
	if m.record.Conflict != nil && m.record.Conflict.Server != nil {
		server += recordDetails(*m.record.Conflict.Server)
	} else {
		server += "Неизвестна, будет загружена\nпри следующей синхронизации"
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sideBoxStyle.Render(local), " ", sideBoxStyle.Render(server)))
	if m.record.Conflict != nil {
		b.WriteString("\n\nОтклонено: ")
		b.WriteString(m.record.Conflict.At.Local().Format("2006-01-02 15:04:05"))
	}
	if m.resolving {
		b.WriteString("\n\n[Применение...]")
	}

	return renderPage("КОНФЛИКТ", b.String(), "l: оставить локальную │ s: взять серверную │ esc: назад")
}

func (m *ConflictModel) cmdResolve(keepLocal bool) tea.Cmd {
	ctx, coordinator, id := m.ctx, m.sync, m.record.ID
	return func() tea.Msg {
		return conflictResolvedMsg{keepLocal: keepLocal, err: coordinator.ResolveConflict(ctx, id, keepLocal)}
	}
}
