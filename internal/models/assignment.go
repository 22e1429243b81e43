package models

import "fmt"

// Subject is a curricular subject code such as "math" or "pe". Whether a
// subject is protected, core, or an independent activity is decided by the
// School reference data, not by the subject value itself.
type Subject string

// Empty reports whether the subject carries no value.
func (s Subject) Empty() bool { return s == "" }

func (s Subject) String() string { return string(s) }

// Teacher is an instructor identified by name. The zero value means the
// teacher is unresolved; teacher-specific rules pass on unresolved teachers
// and defer to upstream data-completeness checks.
type Teacher struct {
	Name string
}

// Known reports whether the teacher has been resolved.
func (t Teacher) Known() bool { return t.Name != "" }

func (t Teacher) String() string {
	if !t.Known() {
		return "<unassigned>"
	}
	return t.Name
}

// Assignment is the content of one grid cell: a subject taught to a class,
// optionally by a resolved teacher. Immutable once placed except by explicit
// replacement through the grid.
type Assignment struct {
	Class   ClassRef
	Subject Subject
	Teacher Teacher
}

// HasTeacher reports whether the assignment carries a resolved teacher.
func (a Assignment) HasTeacher() bool { return a.Teacher.Known() }

func (a Assignment) String() string {
	if a.HasTeacher() {
		return fmt.Sprintf("%s: %s (%s)", a.Class, a.Subject, a.Teacher)
	}
	return fmt.Sprintf("%s: %s", a.Class, a.Subject)
}

// PlacedAssignment pairs an assignment with the slot it occupies, used when
// enumerating a grid.
type PlacedAssignment struct {
	Slot       TimeSlot
	Assignment Assignment
}
