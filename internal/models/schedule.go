package models

import (
	"fmt"
	"sort"
)

// InvalidAssignmentError reports a grid mutation that was refused before it
// touched the grid: out-of-range slot, malformed class, locked cell, or an
// attempt to overwrite a protected subject.
type InvalidAssignmentError struct {
	Slot   TimeSlot
	Class  ClassRef
	Reason string
}

func (e *InvalidAssignmentError) Error() string {
	return fmt.Sprintf("invalid assignment at %s for class %s: %s", e.Slot, e.Class, e.Reason)
}

// MutationHook observes a successful cell mutation. Hooks run synchronously
// after the grid has changed, in registration order.
type MutationHook func(slot TimeSlot, class ClassRef)

type cellKey struct {
	Slot  TimeSlot
	Class ClassRef
}

// Schedule is the mutable weekly grid: one optional assignment per
// (slot, class) cell, plus per-cell locks and a protected-subject guard.
// A Schedule is owned by a single goroutine during generation; it carries no
// internal locking.
type Schedule struct {
	cells     map[TimeSlot]map[ClassRef]Assignment
	locked    map[cellKey]struct{}
	protected map[Subject]struct{}
	hooks     []MutationHook
}

// NewSchedule returns an empty grid. Assignments whose subject appears in
// protected cannot be overwritten or removed once placed.
func NewSchedule(protected ...Subject) *Schedule {
	s := &Schedule{
		cells:     make(map[TimeSlot]map[ClassRef]Assignment),
		locked:    make(map[cellKey]struct{}),
		protected: make(map[Subject]struct{}, len(protected)),
	}
	for _, subject := range protected {
		s.protected[subject] = struct{}{}
	}
	return s
}

// OnMutate registers a hook fired after every successful Assign or Remove.
func (s *Schedule) OnMutate(hook MutationHook) {
	if hook != nil {
		s.hooks = append(s.hooks, hook)
	}
}

func (s *Schedule) fireHooks(slot TimeSlot, class ClassRef) {
	for _, hook := range s.hooks {
		hook(slot, class)
	}
}

func (s *Schedule) guard(slot TimeSlot, class ClassRef) *InvalidAssignmentError {
	if !slot.Valid() {
		return &InvalidAssignmentError{Slot: slot, Class: class, Reason: "slot outside the school week"}
	}
	if !class.Valid() {
		return &InvalidAssignmentError{Slot: slot, Class: class, Reason: "malformed class reference"}
	}
	if _, ok := s.locked[cellKey{Slot: slot, Class: class}]; ok {
		return &InvalidAssignmentError{Slot: slot, Class: class, Reason: "cell is locked"}
	}
	if existing, ok := s.Get(slot, class); ok {
		if _, prot := s.protected[existing.Subject]; prot {
			return &InvalidAssignmentError{Slot: slot, Class: class,
				Reason: fmt.Sprintf("cell holds protected subject %q", existing.Subject)}
		}
	}
	return nil
}

// Assign places an assignment into the cell, replacing any unprotected
// occupant. Locked cells and cells holding a protected subject are refused.
func (s *Schedule) Assign(slot TimeSlot, a Assignment) error {
	if a.Subject.Empty() {
		return &InvalidAssignmentError{Slot: slot, Class: a.Class, Reason: "assignment has no subject"}
	}
	if err := s.guard(slot, a.Class); err != nil {
		return err
	}
	if s.cells[slot] == nil {
		s.cells[slot] = make(map[ClassRef]Assignment)
	}
	s.cells[slot][a.Class] = a
	s.fireHooks(slot, a.Class)
	return nil
}

// Remove clears the cell. Removing from an empty cell is a no-op; locked and
// protected cells are refused.
func (s *Schedule) Remove(slot TimeSlot, class ClassRef) error {
	if err := s.guard(slot, class); err != nil {
		return err
	}
	row, ok := s.cells[slot]
	if !ok {
		return nil
	}
	if _, ok := row[class]; !ok {
		return nil
	}
	delete(row, class)
	if len(row) == 0 {
		delete(s.cells, slot)
	}
	s.fireHooks(slot, class)
	return nil
}

// Get returns the assignment occupying the cell, if any.
func (s *Schedule) Get(slot TimeSlot, class ClassRef) (Assignment, bool) {
	a, ok := s.cells[slot][class]
	return a, ok
}

// Lock pins the cell so later Assign and Remove calls are refused.
func (s *Schedule) Lock(slot TimeSlot, class ClassRef) {
	s.locked[cellKey{Slot: slot, Class: class}] = struct{}{}
}

// Unlock releases a pinned cell.
func (s *Schedule) Unlock(slot TimeSlot, class ClassRef) {
	delete(s.locked, cellKey{Slot: slot, Class: class})
}

// IsLocked reports whether the cell is pinned.
func (s *Schedule) IsLocked(slot TimeSlot, class ClassRef) bool {
	_, ok := s.locked[cellKey{Slot: slot, Class: class}]
	return ok
}

// Clone returns a deep copy of the grid, locks and protected set included.
// Mutation hooks are not carried over; the copy starts unobserved.
func (s *Schedule) Clone() *Schedule {
	out := &Schedule{
		cells:     make(map[TimeSlot]map[ClassRef]Assignment, len(s.cells)),
		locked:    make(map[cellKey]struct{}, len(s.locked)),
		protected: make(map[Subject]struct{}, len(s.protected)),
	}
	for slot, row := range s.cells {
		copied := make(map[ClassRef]Assignment, len(row))
		for class, a := range row {
			copied[class] = a
		}
		out.cells[slot] = copied
	}
	for key := range s.locked {
		out.locked[key] = struct{}{}
	}
	for subject := range s.protected {
		out.protected[subject] = struct{}{}
	}
	return out
}

// All enumerates every placed assignment in deterministic order: slots in
// week order, classes sorted within each slot.
func (s *Schedule) All() []PlacedAssignment {
	out := make([]PlacedAssignment, 0, s.Len())
	for _, slot := range WeekSlots() {
		for _, a := range s.AtSlot(slot) {
			out = append(out, PlacedAssignment{Slot: slot, Assignment: a})
		}
	}
	return out
}

// AtSlot returns the assignments occupying the slot across all classes,
// sorted by class.
func (s *Schedule) AtSlot(slot TimeSlot) []Assignment {
	row := s.cells[slot]
	if len(row) == 0 {
		return nil
	}
	out := make([]Assignment, 0, len(row))
	for _, a := range row {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return classLess(out[i].Class, out[j].Class) })
	return out
}

// ByClass returns one class's placed assignments in week order.
func (s *Schedule) ByClass(class ClassRef) []PlacedAssignment {
	var out []PlacedAssignment
	for _, slot := range WeekSlots() {
		if a, ok := s.Get(slot, class); ok {
			out = append(out, PlacedAssignment{Slot: slot, Assignment: a})
		}
	}
	return out
}

// DailySubjects returns the subjects a class has on the given day, keyed by
// period.
func (s *Schedule) DailySubjects(class ClassRef, day Day) map[int]Subject {
	out := make(map[int]Subject)
	for period := MinPeriod; period <= MaxPeriod; period++ {
		if a, ok := s.Get(TimeSlot{Day: day, Period: period}, class); ok {
			out[period] = a.Subject
		}
	}
	return out
}

// CountSubjectWeek counts how many times the class has the subject placed
// across the whole week.
func (s *Schedule) CountSubjectWeek(class ClassRef, subject Subject) int {
	n := 0
	for _, row := range s.cells {
		if a, ok := row[class]; ok && a.Subject == subject {
			n++
		}
	}
	return n
}

// Len returns the number of occupied cells.
func (s *Schedule) Len() int {
	n := 0
	for _, row := range s.cells {
		n += len(row)
	}
	return n
}
