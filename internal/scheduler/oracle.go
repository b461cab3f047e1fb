package scheduler

import (
	"github.com/noah-isme/college-timetable-api/internal/models"
)

// ResourceKind names what a booking occupies.
type ResourceKind string

const (
	ResourceRoom       ResourceKind = "room"
	ResourceInstructor ResourceKind = "instructor"
	ResourceCohort     ResourceKind = "cohort"
)

// Resource is a room, an instructor or a set of cohorts. A resource without ids
// never conflicts.
type Resource struct {
	Kind ResourceKind
	IDs  []string
}

// RoomResource wraps an optional room id.
func RoomResource(roomID *string) Resource {
	return Resource{Kind: ResourceRoom, IDs: optionalID(roomID)}
}

// InstructorResource wraps an optional instructor id.
func InstructorResource(instructorID *string) Resource {
	return Resource{Kind: ResourceInstructor, IDs: optionalID(instructorID)}
}

// CohortResource wraps the cohorts attending a section.
func CohortResource(cohortIDs []string) Resource {
	return Resource{Kind: ResourceCohort, IDs: cohortIDs}
}

func optionalID(id *string) []string {
	if id == nil || *id == "" {
		return nil
	}
	return []string{*id}
}

type booking struct {
	slotID     string
	sectionID  string
	locked     bool
	day        int
	start      int
	end        int
	room       string
	instructor string
	cohorts    map[string]struct{}
	weeks      map[string]struct{}
}

func (b booking) holds(kind ResourceKind, id string) bool {
	switch kind {
	case ResourceRoom:
		return b.room != "" && b.room == id
	case ResourceInstructor:
		return b.instructor != "" && b.instructor == id
	case ResourceCohort:
		_, ok := b.cohorts[id]
		return ok
	}
	return false
}

// Oracle answers occupancy questions against the teaching slots of one term.
// It is not safe for concurrent use; callers serialize per term.
type Oracle struct {
	bookings map[string]booking
	order    []string
}

// NewOracle indexes existing slots. Sections supply the instructor and cohorts
// each slot occupies; slots whose section is unknown only occupy their room.
func NewOracle(slots []models.TeachingSlot, sections map[string]models.CourseSection) *Oracle {
	o := &Oracle{bookings: make(map[string]booking, len(slots))}
	for _, slot := range slots {
		o.Record(sections[slot.SectionID], slot)
	}
	return o
}

// Record adds a slot as occupied. Recording the same slot id twice replaces it.
func (o *Oracle) Record(section models.CourseSection, slot models.TeachingSlot) {
	b := booking{
		slotID:    slot.ID,
		sectionID: slot.SectionID,
		locked:    slot.Locked,
		day:       slot.DayOfWeek,
		start:     slot.StartPeriod,
		end:       slot.EndPeriod,
		cohorts:   make(map[string]struct{}, len(section.CohortIDs)),
		weeks:     make(map[string]struct{}, len(slot.WeekIDs)),
	}
	if slot.RoomID != nil {
		b.room = *slot.RoomID
	}
	if section.InstructorID != nil {
		b.instructor = *section.InstructorID
	}
	for _, id := range section.CohortIDs {
		b.cohorts[id] = struct{}{}
	}
	for _, id := range slot.WeekIDs {
		b.weeks[id] = struct{}{}
	}
	if _, exists := o.bookings[slot.ID]; !exists {
		o.order = append(o.order, slot.ID)
	}
	o.bookings[slot.ID] = b
}

// Remove forgets the given slots.
func (o *Oracle) Remove(slotIDs ...string) {
	if len(slotIDs) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(slotIDs))
	for _, id := range slotIDs {
		if _, ok := o.bookings[id]; !ok {
			continue
		}
		delete(o.bookings, id)
		drop[id] = struct{}{}
	}
	if len(drop) == 0 {
		return
	}
	kept := o.order[:0]
	for _, id := range o.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	o.order = kept
}

// Release drops the section's unlocked bookings so a re-run can reuse their
// positions. The returned func puts them back.
func (o *Oracle) Release(sectionID string) (restore func()) {
	var released []booking
	var ids []string
	for _, id := range o.order {
		b := o.bookings[id]
		if b.sectionID != sectionID || b.locked {
			continue
		}
		released = append(released, b)
		ids = append(ids, id)
	}
	o.Remove(ids...)
	return func() {
		for _, b := range released {
			if _, exists := o.bookings[b.slotID]; !exists {
				o.order = append(o.order, b.slotID)
			}
			o.bookings[b.slotID] = b
		}
	}
}

// SlotIDsForSection lists the unlocked slot ids currently booked by a section.
func (o *Oracle) SlotIDsForSection(sectionID string) []string {
	var ids []string
	for _, id := range o.order {
		b := o.bookings[id]
		if b.sectionID == sectionID && !b.locked {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len reports the number of bookings.
func (o *Oracle) Len() int {
	return len(o.bookings)
}

// HasConflict reports whether any booking holding the resource on day overlaps
// [start, end] and shares at least one week with weekIDs.
func (o *Oracle) HasConflict(resource Resource, day, start, end int, weekIDs []string) bool {
	if len(resource.IDs) == 0 || len(weekIDs) == 0 {
		return false
	}
	for _, slotID := range o.order {
		b := o.bookings[slotID]
		if b.day != day || !PeriodsOverlap(start, end, b.start, b.end) {
			continue
		}
		if !b.holdsAny(resource) {
			continue
		}
		if weeksIntersect(b.weeks, weekIDs) {
			return true
		}
	}
	return false
}

func (b booking) holdsAny(resource Resource) bool {
	for _, id := range resource.IDs {
		if b.holds(resource.Kind, id) {
			return true
		}
	}
	return false
}

// PeriodsOverlap reports whether two inclusive period ranges intersect.
func PeriodsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd < bStart || bEnd < aStart)
}

// WeeksOverlap reports whether two week id sets share an element.
func WeeksOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	return weeksIntersect(set, b)
}

func weeksIntersect(set map[string]struct{}, ids []string) bool {
	for _, id := range ids {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
