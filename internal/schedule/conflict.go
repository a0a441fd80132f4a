package schedule

import (
	"time"

	"github.com/idilsaglam/journal/internal/model"
)

// ConflictResult reports the first existing event a candidate overlaps.
type ConflictResult struct {
	HasConflict bool
	With        *model.Event
}

// Pair is one unordered pair of conflicting events, A listed before B in
// the input order.
type Pair struct {
	A, B model.Event
}

// IntervalsOverlap reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Conflicts reports whether a and b are on the same day and overlap.
func Conflicts(a, b model.Event) bool {
	if !model.SameDay(a.Date, b.Date) {
		return false
	}
	return IntervalsOverlap(a.StartMinutes(), a.EndMinutes(), b.StartMinutes(), b.EndMinutes())
}

// DetectConflict returns the first event in existing that shares the
// candidate's day and overlaps it. Entries with the candidate's id are
// skipped so an edited event is not compared with its stored self.
func DetectConflict(existing []model.Event, candidate model.Event) ConflictResult {
	for i := range existing {
		ev := existing[i]
		if ev.ID == candidate.ID {
			continue
		}
		if Conflicts(ev, candidate) {
			return ConflictResult{HasConflict: true, With: &ev}
		}
	}
	return ConflictResult{}
}

// CountConflicts returns the number of distinct conflicting pairs.
func CountConflicts(events []model.Event) int {
	n := 0
	for _, bucket := range byDay(events) {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				if overlapsWithin(events[bucket[i]], events[bucket[j]]) {
					n++
				}
			}
		}
	}
	return n
}

// ConflictPairs lists every conflicting pair, grouped by day in order of
// first appearance.
func ConflictPairs(events []model.Event) []Pair {
	var out []Pair
	for _, bucket := range byDay(events) {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := events[bucket[i]], events[bucket[j]]
				if overlapsWithin(a, b) {
					out = append(out, Pair{A: a, B: b})
				}
			}
		}
	}
	return out
}

// overlapsWithin compares two events already known to share a day.
func overlapsWithin(a, b model.Event) bool {
	return IntervalsOverlap(a.StartMinutes(), a.EndMinutes(), b.StartMinutes(), b.EndMinutes())
}

// byDay buckets event indexes per calendar day, keeping input order inside
// each bucket and ordering buckets by first appearance.
func byDay(events []model.Event) [][]int {
	type dayKey struct {
		y int
		m time.Month
		d int
	}
	pos := make(map[dayKey]int)
	var buckets [][]int
	for i, ev := range events {
		y, m, d := ev.Date.Date()
		k := dayKey{y, m, d}
		b, ok := pos[k]
		if !ok {
			b = len(buckets)
			pos[k] = b
			buckets = append(buckets, nil)
		}
		buckets[b] = append(buckets[b], i)
	}
	return buckets
}
