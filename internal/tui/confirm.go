package tui

import "github.com/MKhiriev/go-offline-sync/models"

// confirmModel asks before a record is deleted.
type confirmModel struct {
	record models.Record
}

func (m confirmModel) View() string {
	content := "Удалить \"" + fitText(m.record.Title, 40) + "\"?\n"
	if !m.record.HasServerID() {
		content += "Запись ещё не отправлена на сервер.\n"
	}
	content += "\ny да    n нет"
	return overlayBoxStyle.Render(content)
}
