package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/journal/internal/model"
)

var (
	day   = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	stamp = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
)

func TestExportImport(t *testing.T) {
	events := []model.Event{
		{ID: "a", Title: "Dentist", Date: day, StartTime: "09:30", Duration: 45, Location: "Main St"},
		{ID: "b", Title: "Gym", Date: day.AddDate(0, 0, 1), StartTime: "18:00", Duration: 60, Completed: true},
	}
	out := Export(events, stamp)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "DTSTART:20261018T093000")
	assert.Contains(t, out, "DTEND:20261018T101500")
	assert.Contains(t, out, "X-JOURNAL-COMPLETED:TRUE")

	res, err := Import(strings.NewReader(out), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Events, 2)
	assert.Equal(t, events[0], res.Events[0])
	assert.Equal(t, events[1], res.Events[1])
}

const foreign = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:utc
DTSTAMP:20261018T080000Z
DTSTART:20261018T120000Z
DTEND:20261018T130000Z
SUMMARY:Standup
END:VEVENT
BEGIN:VEVENT
UID:allday
DTSTAMP:20261018T080000Z
DTSTART;VALUE=DATE:20261019
SUMMARY:Holiday
END:VEVENT
BEGIN:VEVENT
UID:weekly
DTSTAMP:20261018T080000Z
DTSTART:20261018T090000
DTEND:20261018T100000
RRULE:FREQ=WEEKLY
SUMMARY:Yoga
END:VEVENT
BEGIN:VEVENT
UID:trip
DTSTAMP:20261018T080000Z
DTSTART:20261018T220000
DTEND:20261019T020000
SUMMARY:Night train
END:VEVENT
BEGIN:VEVENT
UID:open
DTSTAMP:20261018T080000Z
DTSTART:20261020T070000
SUMMARY:Call
END:VEVENT
END:VCALENDAR
`

func TestImportSkipsUnsupported(t *testing.T) {
	cest := time.FixedZone("CEST", 2*60*60)

	res, err := Import(strings.NewReader(foreign), cest)
	require.NoError(t, err)

	require.Len(t, res.Events, 2)
	standup := res.Events[0]
	assert.Equal(t, "utc", standup.ID)
	assert.Equal(t, "14:00", standup.StartTime, "UTC converted to the journal's zone")
	assert.Equal(t, 60, standup.Duration)
	assert.Equal(t, "2026-10-18", standup.DateString())

	call := res.Events[1]
	assert.Equal(t, "07:00", call.StartTime)
	assert.Equal(t, DefaultDuration, call.Duration)

	reasons := map[string]string{}
	for _, s := range res.Skipped {
		reasons[s.UID] = s.Reason
	}
	assert.Equal(t, map[string]string{
		"allday": "all-day",
		"weekly": "recurring",
		"trip":   "multi-day",
	}, reasons)
}

func TestImportGarbage(t *testing.T) {
	res, err := Import(strings.NewReader("not a calendar"), time.UTC)
	if err == nil {
		assert.Empty(t, res.Events)
	}
}
