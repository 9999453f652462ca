package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

// RootModel is a TUI router:
// 1) keeps the active page
// 2) handles global Ctrl+C quit and the build info window
// 3) handles NavigateTo messages
// 4) relays coordinator snapshots to the records page
// 5) delegates all other messages to the active page
type RootModel struct {
	pages   map[string]tea.Model
	current string
	records *RecordsModel
	updates <-chan service.Snapshot

	ctx  context.Context
	info service.ServerInfoService

	buildInfo     models.AppBuildInfo
	showBuildInfo bool
	server        *serverInfoMsg
}

// NewRootModel builds every page and opens startPage.
func NewRootModel(ctx context.Context, services Services, startPage string, buildInfo models.AppBuildInfo) RootModel {
	records := NewRecordsModel(ctx, services)

	return RootModel{
		pages: map[string]tea.Model{
			pageMenu:     NewMenuModel(),
			pageLogin:    NewLoginModel(ctx, services.Auth),
			pageRegister: NewRegisterModel(ctx, services.Auth),
			pageRecords:  records,
			pageForm:     NewRecordFormModel(ctx, services.Sync),
			pageConflict: NewConflictModel(ctx, services.Sync),
		},
		current:   startPage,
		records:   records,
		updates:   services.Sync.Updates(),
		ctx:       ctx,
		info:      services.Info,
		buildInfo: buildInfo,
	}
}

func (r RootModel) Init() tea.Cmd {
	page, ok := r.pages[r.current]
	if !ok {
		return waitForSnapshot(r.updates)
	}
	return tea.Batch(page.Init(), waitForSnapshot(r.updates))
}

func (r RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Global hotkeys for every page.
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "v":
			if r.current == pageMenu {
				r.showBuildInfo = !r.showBuildInfo
				if r.showBuildInfo {
					r.server = nil
					return r, r.cmdServerInfo()
				}
				return r, nil
			}
		case "esc":
			if r.showBuildInfo {
				r.showBuildInfo = false
				return r, nil
			}
		}

		if r.showBuildInfo {
			return r, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		var cmds []tea.Cmd
		for _, page := range r.pages {
			_, cmd := page.Update(msg)
			cmds = append(cmds, cmd)
		}
		return r, tea.Batch(cmds...)

	case NavigateTo:
		return r.navigate(msg)

	case serverInfoMsg:
		r.server = &msg
		return r, nil

	case snapshotMsg:
		cmds := []tea.Cmd{waitForSnapshot(r.updates)}
		_, cmd := r.records.Update(msg)
		cmds = append(cmds, cmd)
		if msg.snapshot.NeedsLogin && r.signedInPage() {
			cmds = append(cmds, navigate(pageLogin, statusNotice{text: "Сессия истекла, войдите снова"}))
		}
		return r, tea.Batch(cmds...)

	case LoginResult:
		if msg.Err == nil {
			r.pages[pageLogin].Update(msg)
			return r.navigate(NavigateTo{Page: pageRecords})
		}

	case RegisterResult:
		if msg.Err == nil {
			r.pages[pageRegister].Update(msg)
			return r.navigate(NavigateTo{Page: pageRecords})
		}

	case logoutDoneMsg:
		r.records.Update(msg)
		text := "Вы вышли из аккаунта"
		if msg.err != nil {
			text += " (" + humanizeServerUnavailableError(msg.err) + ")"
		}
		return r.navigate(NavigateTo{Page: pageMenu, Payload: statusNotice{text: text}})
	}

	page, ok := r.pages[r.current]
	if !ok {
		return r, nil
	}
	_, cmd := page.Update(msg)
	return r, cmd
}

func (r RootModel) View() string {
	if r.showBuildInfo {
		return appStyle.Render(renderBuildInfoWindow(r.buildInfo, r.server))
	}
	page, ok := r.pages[r.current]
	if !ok {
		return renderPage("TUI", "", "")
	}
	return appStyle.Render(page.View())
}

func (r RootModel) navigate(nav NavigateTo) (tea.Model, tea.Cmd) {
	next, ok := r.pages[nav.Page]
	if !ok {
		return r, nil
	}

	r.showBuildInfo = false
	r.current = nav.Page

	if nav.Payload != nil {
		payload := nav.Payload
		return r, func() tea.Msg { return payload }
	}
	return r, next.Init()
}

// cmdServerInfo asks the server to describe itself for the build info window.
func (r RootModel) cmdServerInfo() tea.Cmd {
	if r.info == nil {
		return nil
	}
	ctx, info := r.ctx, r.info
	return func() tea.Msg {
		server, err := info.ServerInfo(ctx)
		return serverInfoMsg{info: server, err: err}
	}
}

func (r RootModel) signedInPage() bool {
	switch r.current {
	case pageRecords, pageForm, pageConflict:
		return true
	}
	return false
}

// waitForSnapshot delivers the next coordinator snapshot. It is re-armed
// after every delivered snapshot and stops once the channel is closed.
func waitForSnapshot(updates <-chan service.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg{snapshot: snap}
	}
}
