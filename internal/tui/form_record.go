package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

const (
	fieldTitle = iota
	fieldDirector
	fieldReleaseDate
	fieldDuration
	fieldWatched
	fieldPhoto
	fieldLocation
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Название",
	"Режиссёр",
	"Дата выхода",
	"Длительность",
	"Просмотрен",
	"Фото (URL)",
	"Место",
}

var (
	errTitleRequired   = errors.New("название обязательно")
	errBadReleaseDate  = errors.New("дата выхода в формате ГГГГ-ММ-ДД")
	errBadDuration     = errors.New("длительность: целое число минут")
	errBadWatched      = errors.New("просмотрен: да или нет")
	errBadLocation     = errors.New("место в формате широта,долгота")
	errLocationInRange = errors.New("широта от -90 до 90, долгота от -180 до 180")
)

// RecordFormModel creates a record or edits an existing one. The record is
// handed to the coordinator, which stamps lastEditTimestamp and queues the
// write.
type RecordFormModel struct {
	ctx  context.Context
	sync service.SyncCoordinator

	base       models.Record
	editing    bool
	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

func NewRecordFormModel(ctx context.Context, sync service.SyncCoordinator) *RecordFormModel {
	inputs := make([]textinput.Model, fieldCount)
	placeholders := [fieldCount]string{"", "", "2006-01-02", "минуты", "да / нет", "https://", "55.75,37.61"}
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].Width = 40
		inputs[i].CharLimit = 256
	}
	inputs[fieldTitle].Focus()

	return &RecordFormModel{
		ctx:    ctx,
		sync:   sync,
		inputs: inputs,
	}
}

func (m *RecordFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *RecordFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case newRecordMsg:
		m.load(models.Record{}, false)
		return m, textinput.Blink
	case editRecordMsg:
		m.load(msg.record, true)
		return m, textinput.Blink
	case recordSavedMsg:
		m.submitting = false
		// a failed write still leaves the edit queued locally
		return m, navigate(pageRecords, statusNotice{text: saveNotice(msg.record, msg.err)})
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.esc):
			m.submitting = false
			return m, navigate(pageRecords, nil)
		case key.Matches(msg, keys.tab), msg.Type == tea.KeyDown:
			focusNext(m.inputs, &m.focus)
			return m, nil
		case key.Matches(msg, keys.backtab), msg.Type == tea.KeyUp:
			focusPrev(m.inputs, &m.focus)
			return m, nil
		case key.Matches(msg, keys.save), key.Matches(msg, keys.enter):
			if key.Matches(msg, keys.enter) && m.focus < fieldCount-1 {
				focusNext(m.inputs, &m.focus)
				return m, nil
			}
			if m.submitting {
				return m, nil
			}

			record, err := parseRecordForm(m.base, m.values())
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdSave(record)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *RecordFormModel) View() string {
	var b strings.Builder

	b.WriteString("Поле          │ Значение\n")
	b.WriteString("──────────────┼──────────────────────────────────────────\n")
	for i, label := range fieldLabels {
		fmt.Fprintf(&b, "%-13s │ [%s]\n", label, m.inputs[i].View())
	}

	if m.submitting {
		b.WriteString("\n[Сохранение...]\n")
	} else {
		b.WriteString("\n[Сохранить]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Ошибка: " + m.errMsg))
		b.WriteString("\n")
	}

	title := "НОВАЯ ЗАПИСЬ"
	if m.editing {
		title = "ИЗМЕНЕНИЕ ЗАПИСИ"
	}
	return renderPage(title, strings.TrimRight(b.String(), "\n"), "esc: отмена │ tab/↑/↓: поле │ enter: далее │ ctrl+s: сохранить")
}

func (m *RecordFormModel) load(record models.Record, editing bool) {
	m.base = record
	m.editing = editing
	m.submitting = false
	m.errMsg = ""

	values := [fieldCount]string{}
	if editing {
		values[fieldTitle] = record.Title
		values[fieldDirector] = record.Director
		if !record.ReleaseDate.IsZero() {
			values[fieldReleaseDate] = record.ReleaseDate.Format(releaseDateLayout)
		}
		values[fieldDuration] = strconv.Itoa(record.Duration)
		values[fieldWatched] = watchedMark(record.Watched)
		values[fieldPhoto] = record.Photo
		if record.Location != nil {
			values[fieldLocation] = fmt.Sprintf("%g,%g", record.Location.Lat, record.Location.Long)
		}
	}

	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].Blur()
	}
	m.focus = fieldTitle
	m.inputs[m.focus].Focus()
}

func (m *RecordFormModel) values() [fieldCount]string {
	var out [fieldCount]string
	for i := range m.inputs {
		out[i] = strings.TrimSpace(m.inputs[i].Value())
	}
	return out
}

func (m *RecordFormModel) cmdSave(record models.Record) tea.Cmd {
	ctx, coordinator := m.ctx, m.sync
	return func() tea.Msg {
		saved, err := coordinator.Save(ctx, record)
		return recordSavedMsg{record: saved, err: err}
	}
}

// parseRecordForm applies the form values onto base. Client markers and the
// id of base are kept.
func parseRecordForm(base models.Record, values [fieldCount]string) (models.Record, error) {
	record := base

	record.Title = values[fieldTitle]
	if record.Title == "" {
		return models.Record{}, errTitleRequired
	}
	record.Director = values[fieldDirector]
	record.Photo = values[fieldPhoto]

	record.ReleaseDate = time.Time{}
	if v := values[fieldReleaseDate]; v != "" {
		date, err := time.Parse(releaseDateLayout, v)
		if err != nil {
			return models.Record{}, errBadReleaseDate
		}
		record.ReleaseDate = date.UTC()
	}

	record.Duration = 0
	if v := values[fieldDuration]; v != "" {
		duration, err := strconv.Atoi(v)
		if err != nil || duration < 0 {
			return models.Record{}, errBadDuration
		}
		record.Duration = duration
	}

	switch strings.ToLower(values[fieldWatched]) {
	case "", "нет", "н", "no", "n", "-":
		record.Watched = false
	case "да", "д", "yes", "y", "+":
		record.Watched = true
	default:
		return models.Record{}, errBadWatched
	}

	record.Location = nil
	if v := values[fieldLocation]; v != "" {
		location, err := parseLocation(v)
		if err != nil {
			return models.Record{}, err
		}
		record.Location = location
	}

	return record, nil
}

func parseLocation(v string) (*models.Location, error) {
	latText, longText, ok := strings.Cut(v, ",")
	if !ok {
		return nil, errBadLocation
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return nil, errBadLocation
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(longText), 64)
	if err != nil {
		return nil, errBadLocation
	}
	if lat < -90 || lat > 90 || long < -180 || long > 180 {
		return nil, errLocationInRange
	}
	return &models.Location{Lat: lat, Long: long}, nil
}

func saveNotice(record models.Record, err error) string {
	if err == nil {
		return "Сохранено: " + record.Title
	}
	return "Сохранено локально: " + record.Title + " (" + humanizeSyncError(err) + ")"
}
