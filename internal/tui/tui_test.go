package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/journal/internal/journal"
	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/store/jsonstore"
)

var now = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2026, 10, 18+offset, 0, 0, 0, 0, time.UTC)
}

func newAgenda(t *testing.T) (Model, *journal.Service) {
	t.Helper()
	ctx := context.Background()
	st, err := jsonstore.New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	seed := []model.Event{
		{ID: "standup", Title: "Standup", Date: day(0), StartTime: "08:00", Duration: 60},
		{ID: "dentist", Title: "Dentist", Date: day(0), StartTime: "14:00", Duration: 60, Location: "Main St"},
		{ID: "gym", Title: "Gym", Date: day(1), StartTime: "09:00", Duration: 30},
		{ID: "lunch", Title: "Lunch", Date: day(3), StartTime: "12:00", Duration: 60},
		{ID: "old", Title: "Old", Date: day(-2), StartTime: "12:00", Duration: 60},
	}
	for _, ev := range seed {
		require.NoError(t, st.Add(ctx, ev))
	}
	svc := journal.New(st, zerolog.Nop(), journal.WithClock(func() time.Time { return now }))

	m := New(ctx, svc, Options{DefaultDuration: 45})
	m = send(t, m, m.Init()())
	return m, svc
}

// send feeds msg to the model and follows the agenda's own commands.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(Model)
		msg = nil
		if cmd == nil {
			continue
		}
		switch out := cmd().(type) {
		case loadedMsg, changedMsg, addedMsg, errMsg, formErrMsg:
			msg = out
		}
	}
	return m
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func titles(m Model) []string {
	var out []string
	for _, it := range m.list.Items() {
		out = append(out, it.(row).ev.Title)
	}
	return out
}

func find(t *testing.T, svc *journal.Service, title string) model.Event {
	t.Helper()
	events, err := svc.Events(context.Background())
	require.NoError(t, err)
	for _, ev := range events {
		if ev.Title == title {
			return ev
		}
	}
	t.Fatalf("no event titled %q", title)
	return model.Event{}
}

func TestTabs(t *testing.T) {
	m, _ := newAgenda(t)
	assert.Equal(t, schedule.Today, m.tab)
	assert.Equal(t, []string{"Standup", "Dentist"}, titles(m))
	require.NotNil(t, m.upcoming)
	assert.Equal(t, "dentist", m.upcoming.ID)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, schedule.Tomorrow, m.tab)
	assert.Equal(t, []string{"Gym"}, titles(m))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, []string{"Lunch"}, titles(m))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, schedule.Today, m.tab, "tabs wrap around")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, schedule.Past, m.tab)
	assert.Equal(t, []string{"Old"}, titles(m))
}

func TestToggleAndDelete(t *testing.T) {
	m, svc := newAgenda(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, find(t, svc, "Standup").Completed)
	assert.False(t, m.failed)
	assert.Contains(t, m.status, "toggled")

	m = send(t, m, keys("d"))
	assert.Equal(t, []string{"Dentist"}, titles(m))
}

func TestReschedule(t *testing.T) {
	m, svc := newAgenda(t)

	// Dentist is upcoming, not overdue.
	m.list.Select(1)
	m = send(t, m, keys("r"))
	assert.True(t, m.failed)
	assert.True(t, find(t, svc, "Dentist").Date.Equal(day(0)))

	m.list.Select(0)
	m = send(t, m, keys("r"))
	assert.False(t, m.failed, m.status)
	moved := find(t, svc, "Standup")
	assert.True(t, moved.Date.Equal(day(1)))
	assert.NotEqual(t, "standup", moved.ID)
	assert.Equal(t, []string{"Dentist"}, titles(m))
}

func TestAddForm(t *testing.T) {
	m, svc := newAgenda(t)

	m = send(t, m, keys("a"))
	require.NotNil(t, m.form)
	assert.Equal(t, "2026-10-18", m.form.inputs[fieldDate].Value())
	assert.Equal(t, "45", m.form.inputs[fieldDuration].Value())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.form)
	assert.Equal(t, "title cannot be empty", m.form.err)

	m.form.inputs[fieldTitle].SetValue("Call")
	m.form.inputs[fieldStart].SetValue("14:30")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.form, "conflicts keep the form open")
	assert.Contains(t, m.form.err, "Dentist")

	m.form.inputs[fieldStart].SetValue("15:00")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.form)
	assert.Equal(t, []string{"Standup", "Dentist", "Call"}, titles(m))
	assert.Equal(t, 45, find(t, svc, "Call").Duration)

	m = send(t, m, keys("a"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.form)
}

func TestView(t *testing.T) {
	m, _ := newAgenda(t)
	out := m.View()
	assert.Contains(t, out, "Next:")
	assert.Contains(t, out, "Dentist")
	assert.Contains(t, out, "Today (2)")
	assert.Contains(t, out, "no conflicts")
	assert.True(t, strings.Contains(out, "overdue"), "Standup started before now")
}
