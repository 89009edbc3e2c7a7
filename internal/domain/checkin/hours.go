package checkin

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// RecordKind distinguishes the sources of working hours
type RecordKind string

const (
	RecordKindActivity RecordKind = "activity"
	RecordKindCasual   RecordKind = "casual"
)

// Window bounds the check-in time of records counted in the windowed total.
// Nil bounds are open; both bounds are inclusive.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// IsBounded reports whether either bound is set
func (w Window) IsBounded() bool {
	return w.Start != nil || w.End != nil
}

// Contains reports whether t lies inside the window
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// WorkEntry is one record's contribution to working hours
type WorkEntry struct {
	Kind       RecordKind
	RecordID   uuid.UUID
	ActivityID *uuid.UUID
	CheckInAt  time.Time
	CheckOutAt *time.Time
	Hours      float64
	InWindow   bool
}

// WorkingHours is the aggregate over all of a user's records
type WorkingHours struct {
	Entries       []WorkEntry
	TotalHours    float64
	WindowedHours float64
}

// AggregateHours sums durations over activity and casual records. Open
// records count 0. TotalHours ignores the window; WindowedHours only counts
// records whose CheckInAt lies inside it. Entries are newest first.
func AggregateHours(activityRecords []*CheckRecord, casualRecords []*CasualCheckRecord, w Window) WorkingHours {
	entries := make([]WorkEntry, 0, len(activityRecords)+len(casualRecords))

	for _, r := range activityRecords {
		activityID := r.ActivityID
		entries = append(entries, WorkEntry{
			Kind:       RecordKindActivity,
			RecordID:   r.ID,
			ActivityID: &activityID,
			CheckInAt:  r.CheckInAt,
			CheckOutAt: r.CheckOutAt,
			Hours:      r.DurationHours(),
		})
	}
	for _, r := range casualRecords {
		entries = append(entries, WorkEntry{
			Kind:       RecordKindCasual,
			RecordID:   r.ID,
			CheckInAt:  r.CheckInAt,
			CheckOutAt: r.CheckOutAt,
			Hours:      r.DurationHours(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CheckInAt.After(entries[j].CheckInAt)
	})

	result := WorkingHours{Entries: entries}
	for i := range entries {
		result.TotalHours += entries[i].Hours
		if w.Contains(entries[i].CheckInAt) {
			entries[i].InWindow = true
			result.WindowedHours += entries[i].Hours
		}
	}
	return result
}
