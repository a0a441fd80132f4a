// Package schedule classifies journal events: conflict detection between
// overlapping events on the same day, selection of the next upcoming event,
// and grouping of a collection into agenda sections.
//
// Every function takes the event collection as an explicit snapshot and
// never mutates it. Events occupy the half-open minute interval
// [start, start+duration) on their calendar day, so an event ending at 10:00
// does not conflict with one starting at 10:00.
package schedule
