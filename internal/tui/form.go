package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/idilsaglam/journal/internal/model"
)

const (
	fieldTitle = iota
	fieldDate
	fieldStart
	fieldDuration
	fieldLocation
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Date", "Start", "Minutes", "Location"}

// addForm is the inline "new event" editor.
type addForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newAddForm(day time.Time, defaultDuration int) *addForm {
	f := &addForm{}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		f.inputs[i] = ti
	}
	f.inputs[fieldTitle].Placeholder = "Dentist"
	f.inputs[fieldDate].SetValue(day.Format("2006-01-02"))
	f.inputs[fieldDate].CharLimit = 10
	f.inputs[fieldStart].Placeholder = "09:30"
	f.inputs[fieldStart].CharLimit = 5
	f.inputs[fieldDuration].SetValue(strconv.Itoa(defaultDuration))
	f.inputs[fieldDuration].CharLimit = 4
	f.inputs[fieldLocation].Placeholder = "optional"
	f.inputs[fieldTitle].Focus()
	return f
}

func (f *addForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// draft builds the event to submit. Conflicts are the service's call.
func (f *addForm) draft(loc *time.Location) (model.Event, error) {
	title := strings.TrimSpace(f.inputs[fieldTitle].Value())
	if title == "" {
		return model.Event{}, errors.New("title cannot be empty")
	}
	day, err := model.ParseDate(f.inputs[fieldDate].Value(), loc)
	if err != nil {
		return model.Event{}, err
	}
	start, err := model.ParseClock(f.inputs[fieldStart].Value())
	if err != nil {
		return model.Event{}, err
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(f.inputs[fieldDuration].Value()))
	if err != nil || minutes <= 0 {
		return model.Event{}, errors.New("minutes must be a positive number")
	}
	return model.Event{
		Title:     title,
		Date:      day,
		StartTime: model.FormatClock(start),
		Duration:  minutes,
		Location:  strings.TrimSpace(f.inputs[fieldLocation].Value()),
	}, nil
}

func (f *addForm) view() string {
	var b strings.Builder
	for i, in := range f.inputs {
		cursor := "  "
		if i == f.focus {
			cursor = "> "
		}
		b.WriteString(cursor + padRight(fieldLabels[i], 9) + in.View() + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
