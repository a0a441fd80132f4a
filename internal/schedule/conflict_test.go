package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/journal/internal/model"
)

func TestIntervalsOverlap_Symmetric(t *testing.T) {
	intervals := [][2]int{
		{540, 600}, {600, 630}, {570, 630}, {500, 700}, {0, 1}, {599, 601}, {540, 540},
	}
	for _, a := range intervals {
		for _, b := range intervals {
			assert.Equal(t,
				IntervalsOverlap(a[0], a[1], b[0], b[1]),
				IntervalsOverlap(b[0], b[1], a[0], a[1]),
				"a=%v b=%v", a, b)
		}
	}
}

// threeClause is the start-in-range / end-in-range / containment form the
// two-inequality test replaces; kept here only as an oracle.
func threeClause(aStart, aEnd, bStart, bEnd int) bool {
	return (aStart >= bStart && aStart < bEnd) ||
		(aEnd > bStart && aEnd <= bEnd) ||
		(aStart <= bStart && aEnd >= bEnd)
}

func TestIntervalsOverlap_MatchesThreeClauseForm(t *testing.T) {
	for aStart := 0; aStart < 12; aStart++ {
		for aLen := 1; aLen < 6; aLen++ {
			for bStart := 0; bStart < 12; bStart++ {
				for bLen := 1; bLen < 6; bLen++ {
					aEnd, bEnd := aStart+aLen, bStart+bLen
					require.Equal(t,
						threeClause(aStart, aEnd, bStart, bEnd),
						IntervalsOverlap(aStart, aEnd, bStart, bEnd),
						"[%d,%d) vs [%d,%d)", aStart, aEnd, bStart, bEnd)
				}
			}
		}
	}
}

func TestDetectConflict_HalfOpenBoundary(t *testing.T) {
	a := event("a", day1, "09:00", 60)
	b := event("b", day1, "10:00", 30)
	c := event("c", day1, "09:30", 60)

	res := DetectConflict([]model.Event{a}, b)
	assert.False(t, res.HasConflict, "ending at 10:00 must not clash with starting at 10:00")
	assert.Nil(t, res.With)

	res = DetectConflict([]model.Event{a}, c)
	require.True(t, res.HasConflict)
	assert.Equal(t, "a", res.With.ID)
}

func TestDetectConflict_DifferentDaysNeverConflict(t *testing.T) {
	a := event("a", day1, "09:00", 60)
	b := event("b", day2, "09:00", 60)

	assert.False(t, DetectConflict([]model.Event{a}, b).HasConflict)
	assert.Zero(t, CountConflicts([]model.Event{a, b}))
}

func TestDetectConflict_SameDayDifferentTimeOfDayInDate(t *testing.T) {
	a := event("a", day1, "09:00", 60)
	b := event("b", at(day1, 15, 0), "09:30", 15)

	assert.True(t, DetectConflict([]model.Event{a}, b).HasConflict)
}

func TestDetectConflict_SkipsSelf(t *testing.T) {
	stored := event("a", day1, "09:00", 60)
	edited := stored
	edited.StartTime = "09:15"

	res := DetectConflict([]model.Event{stored}, edited)
	assert.False(t, res.HasConflict)

	other := event("b", day1, "09:45", 30)
	res = DetectConflict([]model.Event{stored, other}, edited)
	require.True(t, res.HasConflict)
	assert.Equal(t, "b", res.With.ID)
}

func TestDetectConflict_ReturnsFirstInInputOrder(t *testing.T) {
	existing := []model.Event{
		event("x", day2, "09:00", 60),
		event("late", day1, "10:00", 60),
		event("early", day1, "08:00", 180),
	}
	res := DetectConflict(existing, event("new", day1, "10:30", 15))
	require.True(t, res.HasConflict)
	assert.Equal(t, "late", res.With.ID)
}

func TestDetectConflict_DoesNotMutateAndIsRepeatable(t *testing.T) {
	existing := []model.Event{
		event("a", day1, "09:00", 60),
		event("b", day1, "11:00", 60),
	}
	snapshot := append([]model.Event(nil), existing...)
	candidate := event("c", day1, "11:30", 10)

	first := DetectConflict(existing, candidate)
	second := DetectConflict(existing, candidate)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, existing)
}

func TestDetectConflict_Empty(t *testing.T) {
	res := DetectConflict(nil, event("a", day1, "09:00", 60))
	assert.False(t, res.HasConflict)
	assert.Nil(t, res.With)
}

func TestCountConflicts_ThreeMutuallyOverlapping(t *testing.T) {
	events := []model.Event{
		event("a", day1, "09:00", 90), // 09:00-10:30
		event("b", day1, "09:30", 90), // 09:30-11:00
		event("c", day1, "10:00", 45), // 10:00-10:45
	}
	assert.Equal(t, 3, CountConflicts(events))
	assert.Len(t, ConflictPairs(events), 3)
}

func TestCountConflicts_OneEventOverlappingTwo(t *testing.T) {
	events := []model.Event{
		event("long", day1, "09:00", 180),
		event("x", day1, "09:00", 30),
		event("y", day1, "11:00", 30),
		event("z", day1, "12:00", 30), // touches long's end only
	}
	assert.Equal(t, 2, CountConflicts(events))
}

func TestCountConflicts_PerDayBuckets(t *testing.T) {
	events := []model.Event{
		event("a1", day1, "09:00", 60),
		event("b1", day2, "09:00", 60),
		event("a2", day1, "09:30", 60),
		event("b2", day2, "09:30", 60),
		event("b3", day2, "13:00", 60),
	}
	assert.Equal(t, 2, CountConflicts(events))

	pairs := ConflictPairs(events)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a1", pairs[0].A.ID)
	assert.Equal(t, "a2", pairs[0].B.ID)
	assert.Equal(t, "b1", pairs[1].A.ID)
	assert.Equal(t, "b2", pairs[1].B.ID)
}

func TestCountConflicts_Idempotent(t *testing.T) {
	events := []model.Event{
		event("a", day1, "09:00", 60),
		event("b", day1, "09:30", 60),
	}
	assert.Equal(t, CountConflicts(events), CountConflicts(events))
}

func TestCountConflicts_Empty(t *testing.T) {
	assert.Zero(t, CountConflicts(nil))
	assert.Empty(t, ConflictPairs(nil))
}

func TestCountConflicts_MalformedInputDoesNotPanic(t *testing.T) {
	events := []model.Event{
		event("a", day1, "nope", -10),
		event("b", day1, "", 0),
	}
	assert.NotPanics(t, func() { _ = CountConflicts(events) })
}
