package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/journal/internal/model"
)

func TestFindUpcoming_SkipsCompletedAndPicksEarliest(t *testing.T) {
	done := event("morning", day1, "08:00", 30)
	done.Completed = true
	afternoon := event("afternoon", day1, "14:00", 30)
	tomorrow := event("tomorrow", day2, "09:00", 30)

	got, ok := FindUpcoming([]model.Event{tomorrow, done, afternoon}, at(day1, 10, 0))
	require.True(t, ok)
	assert.Equal(t, "afternoon", got.ID)
}

func TestFindUpcoming_StartingNowQualifies(t *testing.T) {
	ev := event("now", day1, "10:00", 30)
	got, ok := FindUpcoming([]model.Event{ev}, at(day1, 10, 0))
	require.True(t, ok)
	assert.Equal(t, "now", got.ID)
}

func TestFindUpcoming_FutureDaysQualify(t *testing.T) {
	ev := event("next-week", day1.AddDate(0, 0, 7), "08:00", 30)
	got, ok := FindUpcoming([]model.Event{ev}, at(day1, 23, 0))
	require.True(t, ok)
	assert.Equal(t, "next-week", got.ID)
}

func TestFindUpcoming_TieKeepsFirst(t *testing.T) {
	a := event("a", day1, "15:00", 30)
	b := event("b", day1, "15:00", 60)

	got, ok := FindUpcoming([]model.Event{a, b}, at(day1, 10, 0))
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	got, ok = FindUpcoming([]model.Event{b, a}, at(day1, 10, 0))
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestFindUpcoming_NoneQualify(t *testing.T) {
	past := event("past", day1, "08:00", 30)
	completed := event("completed", day2, "08:00", 30)
	completed.Completed = true

	_, ok := FindUpcoming([]model.Event{past, completed}, at(day1, 10, 0))
	assert.False(t, ok)
}

func TestFindUpcoming_Empty(t *testing.T) {
	_, ok := FindUpcoming(nil, at(day1, 10, 0))
	assert.False(t, ok)
}

func TestFindUpcoming_DoesNotMutate(t *testing.T) {
	events := []model.Event{
		event("b", day2, "09:00", 30),
		event("a", day1, "14:00", 30),
	}
	snapshot := append([]model.Event(nil), events...)
	_, _ = FindUpcoming(events, at(day1, 10, 0))
	assert.Equal(t, snapshot, events)
}

func TestIsOverdue(t *testing.T) {
	now := at(day1, 10, 0)
	past := event("p", day1, "09:00", 30)
	assert.True(t, IsOverdue(past, now))

	past.Completed = true
	assert.False(t, IsOverdue(past, now))

	assert.False(t, IsOverdue(event("f", day1, "10:00", 30), now))
}
