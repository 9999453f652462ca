package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-offline-sync/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

const releaseDateLayout = "2006-01-02"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		lines := strings.Split(data, "\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(hotKeys))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("  ctrl+c: выход"))

	return b.String()
}

func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func valueOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func releaseYear(r models.Record) string {
	if r.ReleaseDate.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d", r.ReleaseDate.Year())
}

func watchedMark(watched bool) string {
	if watched {
		return "да"
	}
	return "нет"
}

// stateMarker renders the sync state column of a record row.
func stateMarker(r models.Record) string {
	switch r.State() {
	case models.StateConflict:
		return conflictStyle.Render("!")
	case models.StateDirty:
		return dirtyStyle.Render("*")
	default:
		return " "
	}
}

// recordDetails renders every user-visible field of r, one per line.
func recordDetails(r models.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Название:  %s\n", valueOrDash(r.Title))
	fmt.Fprintf(&b, "Режиссёр:  %s\n", valueOrDash(r.Director))
	if r.ReleaseDate.IsZero() {
		b.WriteString("Дата:      -\n")
	} else {
		fmt.Fprintf(&b, "Дата:      %s\n", r.ReleaseDate.Format(releaseDateLayout))
	}
	fmt.Fprintf(&b, "Длит.:     %d мин\n", r.Duration)
	fmt.Fprintf(&b, "Просмотр:  %s\n", watchedMark(r.Watched))
	fmt.Fprintf(&b, "Фото:      %s\n", valueOrDash(r.Photo))
	if r.Location != nil {
		fmt.Fprintf(&b, "Место:     %.5f, %.5f\n", r.Location.Lat, r.Location.Long)
	} else {
		b.WriteString("Место:     -\n")
	}
	fmt.Fprintf(&b, "Изменено:  %d", r.LastEdit)

	return b.String()
}
