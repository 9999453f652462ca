// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// rows taken by everything around the table
const listChromeHeight = 16

// RecordsModel is the watch-list page. It renders the latest coordinator
// [service.Snapshot] and turns keys into coordinator calls; it never mutates
// records itself.
type RecordsModel struct {
	ctx    context.Context
	sync   service.SyncCoordinator
	search service.SearchService
	auth   service.ClientAuthService
	export service.ExportService

	snap   service.Snapshot
	idx    int
	height int

	searchInput textinput.Model
	searching   bool

	syncing     bool
	loadingMore bool
	spinner     spinner.Model

	confirm *confirmModel
	status  string
	errMsg  string
}

func NewRecordsModel(ctx context.Context, services Services) *RecordsModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "название начинается с..."
	input.CharLimit = 128
	input.Width = 40

	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return &RecordsModel{
		ctx:         ctx,
		sync:        services.Sync,
		search:      services.Search,
		auth:        services.Auth,
		export:      services.Export,
		searchInput: input,
		spinner:     s,
	}
}

// Init shows the cached state and revalidates the first page.
func (m *RecordsModel) Init() tea.Cmd {
	m.applySnapshot(m.sync.Snapshot())
	m.syncing = true
	return tea.Batch(m.spinner.Tick, m.cmdRefresh(false))
}

func (m *RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case snapshotMsg:
		m.applySnapshot(msg.snapshot)
		return m, nil
	case syncDoneMsg:
		m.syncing = false
		m.loadingMore = false
		if msg.err != nil {
			m.errMsg = humanizeSyncError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		if text := outcomeText(msg.result); text != "" {
			m.status = text
		}
		return m, nil
	case reconcileDoneMsg:
		m.syncing = false
		switch {
		case msg.err != nil:
			m.errMsg = humanizeSyncError(msg.err)
		case len(msg.failures) > 0:
			m.errMsg = ""
			m.status = fmt.Sprintf("Не отправлено записей: %d (%s)", len(msg.failures), humanizeSyncError(msg.failures[0].Err))
		default:
			m.errMsg = ""
			m.status = "Все изменения отправлены"
		}
		return m, nil
	case deleteDoneMsg:
		if msg.err != nil {
			m.errMsg = "Ошибка удаления: " + humanizeSyncError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = "Удалено: " + msg.title
		return m, nil
	case copiedMsg:
		if msg.err != nil {
			m.errMsg = "Буфер обмена недоступен: " + msg.err.Error()
			return m, nil
		}
		m.status = "Скопировано: " + msg.title
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			m.errMsg = "Ошибка экспорта: " + humanizeSyncError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("Экспортировано записей: %d (в буфере обмена)", msg.count)
		return m, nil
	case statusNotice:
		m.errMsg = ""
		m.status = msg.text
		return m, nil
	case logoutDoneMsg:
		m.reset()
		return m, nil
	case spinner.TickMsg:
		if !m.syncing && !m.loadingMore {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *RecordsModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		switch {
		case key.Matches(msg, keys.yes):
			record := m.confirm.record
			m.confirm = nil
			return m, m.cmdDelete(record)
		case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
			m.confirm = nil
		}
		return m, nil
	}

	if m.searching {
		return m.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(msg, keys.down):
		if m.idx < len(m.snap.Records)-1 {
			m.idx++
		}
		if m.idx >= len(m.snap.Records)-1 && m.snap.HasMore {
			return m, m.cmdLoadMore()
		}
	case key.Matches(msg, keys.more):
		return m, m.cmdLoadMore()
	case key.Matches(msg, keys.search):
		m.searching = true
		return m, m.searchInput.Focus()
	case key.Matches(msg, keys.newItem):
		return m, navigate(pageForm, newRecordMsg{})
	case key.Matches(msg, keys.conflict):
		if record, ok := m.current(); ok && record.Conflict != nil {
			return m, navigate(pageConflict, showConflictMsg{record: record})
		}
	case key.Matches(msg, keys.edit):
		record, ok := m.current()
		if !ok {
			return m, nil
		}
		if record.Conflict != nil {
			return m, navigate(pageConflict, showConflictMsg{record: record})
		}
		return m, navigate(pageForm, editRecordMsg{record: record})
	case key.Matches(msg, keys.delete):
		if record, ok := m.current(); ok {
			m.confirm = &confirmModel{record: record}
		}
	case key.Matches(msg, keys.copy):
		if record, ok := m.current(); ok {
			return m, cmdCopy(record.Title)
		}
	case key.Matches(msg, keys.export):
		return m, m.cmdExport()
	case key.Matches(msg, keys.refresh):
		return m, m.startSync(m.cmdRefresh(false))
	case key.Matches(msg, keys.fullFetch):
		return m, m.startSync(m.cmdRefresh(true))
	case key.Matches(msg, keys.push):
		return m, m.startSync(m.cmdReconcile())
	case key.Matches(msg, keys.logout):
		return m, m.cmdLogout()
	}

	return m, nil
}

// updateSearch feeds type-ahead input to the debounced search. esc clears the
// filter, enter keeps it.
func (m *RecordsModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.searching = false
		m.searchInput.Blur()
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.search.Input(m.ctx, "")
		}
		return m, nil
	case key.Matches(msg, keys.enter):
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if value := m.searchInput.Value(); value != before {
		m.idx = 0
		m.search.Input(m.ctx, value)
	}
	return m, cmd
}

func (m *RecordsModel) View() string {
	var b strings.Builder

	header := "Пользователь: " + valueOrDash(m.snap.Login)
	if m.syncing || m.loadingMore {
		header += "  " + m.spinner.View()
	}
	b.WriteString(header)
	b.WriteString("\n")

	switch {
	case m.searching:
		b.WriteString(m.searchInput.View())
	case m.snap.Filter != "":
		b.WriteString("Фильтр: " + m.snap.Filter)
	default:
		b.WriteString(helpStyle.Render("Фильтр не задан"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderTable())

	b.WriteString("\n")
	fmt.Fprintf(&b, "Всего: %d │ Не отправлено: %d │ Конфликтов: %d", m.snap.Total, m.snap.Dirty, m.snap.Conflicts)
	if m.snap.HasMore {
		b.WriteString(" │ есть ещё (m)")
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Ошибка: " + m.errMsg))
		b.WriteString("\n")
	}
	if m.confirm != nil {
		b.WriteString("\n")
		b.WriteString(m.confirm.View())
		b.WriteString("\n")
	}

	hotKeys := "↑/↓: навигация │ enter: изменить │ n: новая │ d: удалить │ c: копировать │ /: поиск\n" +
		"  s: обновить │ S: полностью │ p: отправить │ x: конфликт │ E: экспорт │ L: выйти │ q: выход"
	if m.searching {
		hotKeys = "enter: применить │ esc: сбросить фильтр"
	}

	return renderPage("СПИСОК ФИЛЬМОВ", strings.TrimRight(b.String(), "\n"), hotKeys)
}

func (m *RecordsModel) renderTable() string {
	if len(m.snap.Records) == 0 {
		if m.syncing {
			return "Загрузка...\n"
		}
		return "Нет записей\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %-1s │ %-30s │ %-20s │ %-4s │ %s\n", "", "Название", "Режиссёр", "Год", "Просм.")
	b.WriteString("────┼────────────────────────────────┼──────────────────────┼──────┼───────\n")

	start, end := m.window()
	for i := start; i < end; i++ {
		record := m.snap.Records[i]
		cursor := " "
		if i == m.idx {
			cursor = ">"
		}
		row := fmt.Sprintf("%-30s │ %-20s │ %-4s │ %s",
			fitText(record.Title, 30),
			fitText(valueOrDash(record.Director), 20),
			releaseYear(record),
			watchedMark(record.Watched),
		)
		if i == m.idx {
			row = selectedStyle.Render(row)
		}
		fmt.Fprintf(&b, "%s %s │ %s\n", cursor, stateMarker(record), row)
	}

	return b.String()
}

// window returns the slice of rows that fits the terminal with the cursor
// inside it.
func (m *RecordsModel) window() (int, int) {
	total := len(m.snap.Records)
	rows := m.height - listChromeHeight
	if m.height == 0 || rows >= total {
		return 0, total
	}
	rows = max(rows, 3)

	start := max(m.idx-rows+1, 0)
	return start, min(start+rows, total)
}

func (m *RecordsModel) current() (models.Record, bool) {
	if m.idx < 0 || m.idx >= len(m.snap.Records) {
		return models.Record{}, false
	}
	return m.snap.Records[m.idx], true
}

func (m *RecordsModel) applySnapshot(snap service.Snapshot) {
	m.snap = snap
	if m.idx >= len(snap.Records) {
		m.idx = len(snap.Records) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func (m *RecordsModel) reset() {
	m.snap = service.Snapshot{}
	m.idx = 0
	m.searching = false
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.syncing = false
	m.loadingMore = false
	m.confirm = nil
	m.status = ""
	m.errMsg = ""
}

func (m *RecordsModel) startSync(cmd tea.Cmd) tea.Cmd {
	if m.syncing {
		return nil
	}
	m.syncing = true
	return tea.Batch(m.spinner.Tick, cmd)
}

func (m *RecordsModel) cmdRefresh(forceFull bool) tea.Cmd {
	ctx, coordinator := m.ctx, m.sync
	return func() tea.Msg {
		result, err := coordinator.Refresh(ctx, forceFull)
		return syncDoneMsg{result: result, err: err}
	}
}

func (m *RecordsModel) cmdLoadMore() tea.Cmd {
	if m.loadingMore {
		return nil
	}
	m.loadingMore = true

	ctx, coordinator := m.ctx, m.sync
	return func() tea.Msg {
		result, err := coordinator.LoadNextPage(ctx)
		return syncDoneMsg{result: result, err: err}
	}
}

func (m *RecordsModel) cmdReconcile() tea.Cmd {
	ctx, coordinator := m.ctx, m.sync
	return func() tea.Msg {
		failures, err := coordinator.Reconcile(ctx)
		return reconcileDoneMsg{failures: failures, err: err}
	}
}

func (m *RecordsModel) cmdDelete(record models.Record) tea.Cmd {
	ctx, coordinator := m.ctx, m.sync
	return func() tea.Msg {
		err := coordinator.Delete(ctx, record.ID)
		return deleteDoneMsg{title: record.Title, err: err}
	}
}

func (m *RecordsModel) cmdLogout() tea.Cmd {
	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		return logoutDoneMsg{err: auth.Logout(ctx)}
	}
}

func cmdCopy(title string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{title: title, err: writeClipboard(title)}
	}
}

// cmdExport downloads the whole collection from the server and puts it on
// the clipboard as JSON.
func (m *RecordsModel) cmdExport() tea.Cmd {
	ctx, export := m.ctx, m.export
	return func() tea.Msg {
		data, count, err := export.Export(ctx)
		if err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{count: count, err: writeClipboard(string(data))}
	}
}

func outcomeText(result service.SyncResult) string {
	var text string
	switch result.Outcome {
	case service.OutcomeFetched:
		text = fmt.Sprintf("Страница %d загружена", result.Page)
	case service.OutcomeUnchanged:
		text = "Изменений нет"
	case service.OutcomeOffline:
		text = "Нет связи, показан локальный кэш"
	case service.OutcomeSkipped:
		text = "Нет активной сессии"
	default:
		return ""
	}

	if n := len(result.Failures); n > 0 {
		text += fmt.Sprintf(" │ не отправлено: %d", n)
	}
	return text
}
