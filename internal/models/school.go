package models

import "sort"

// Default subject classifications. A deployment normally loads these from the
// subjects table; the defaults keep a bare SchoolConfig usable in tests and
// match the observed school's curriculum.
var (
	DefaultProtectedSubjects = []Subject{
		"assembly", "homeroom", "moral", "integrated", "event", "test", "club",
	}
	DefaultCoreSubjects = []Subject{
		"japanese", "math", "english", "science", "social",
	}
	DefaultIndependentSubjects = []Subject{
		"self_study", "daily_living", "work_study",
	}
	DefaultAllowedParentSubjects = []Subject{"math", "english"}

	// DefaultSharedResourceSubject is the subject bound to the single shared
	// room (the gymnasium).
	DefaultSharedResourceSubject = Subject("pe")

	// DefaultStandardHours is the standard weekly hour count per subject.
	DefaultStandardHours = map[Subject]int{
		"japanese": 4, "math": 3, "english": 4, "science": 3, "social": 3,
		"music": 1, "art": 1, "pe": 3, "tech": 1, "home_ec": 1,
		"moral": 1, "integrated": 2, "homeroom": 1,
	}
)

// TeacherEligibility states that a teacher teaches a subject to a class.
// Used to resolve the effective teacher of an assignment that carries none.
type TeacherEligibility struct {
	Teacher Teacher
	Subject Subject
	Class   ClassRef
}

// ExchangePair binds a support-needs exchange class to the mainstream parent
// class it mirrors.
type ExchangePair struct {
	Exchange ClassRef
	Parent   ClassRef
}

// SchoolConfig is the raw reference data a School is built from. Empty
// classification sets fall back to the package defaults; everything else is
// taken as-is.
type SchoolConfig struct {
	Classes               []ClassRef
	Subjects              []Subject
	ProtectedSubjects     []Subject
	CoreSubjects          []Subject
	IndependentSubjects   []Subject
	AllowedParentSubjects []Subject
	SharedResourceSubject Subject
	ExchangePairs         map[ClassRef]ClassRef
	JointCohorts          [][]ClassRef
	CombinedTeachers      []string
	Eligibility           []TeacherEligibility
	StandardHours         map[Subject]int
	TestPeriods           []TimeSlot
	Absences              *AbsenceCalendar
}

type eligibilityKey struct {
	Subject Subject
	Class   ClassRef
}

// School is the static reference data every constraint reads: rosters,
// classifications, pairings, eligibility, absences, and test periods. It is
// read-only for the lifetime of a generation run and safe to share across
// validation calls.
type School struct {
	classes        []ClassRef
	subjects       []Subject
	protected      map[Subject]struct{}
	core           map[Subject]struct{}
	independent    map[Subject]struct{}
	allowedParent  map[Subject]struct{}
	sharedResource Subject
	exchangeParent map[ClassRef]ClassRef
	parentExchange map[ClassRef]ClassRef
	cohorts        [][]ClassRef
	cohortIndex    map[ClassRef]int
	combined       map[string]struct{}
	eligibility    map[eligibilityKey]Teacher
	standardHours  map[Subject]int
	testPeriods    map[TimeSlot]struct{}
	absences       *AbsenceCalendar
}

// NewSchool assembles a School from raw reference data.
func NewSchool(cfg SchoolConfig) *School {
	s := &School{
		classes:        append([]ClassRef(nil), cfg.Classes...),
		subjects:       append([]Subject(nil), cfg.Subjects...),
		protected:      subjectSet(orDefault(cfg.ProtectedSubjects, DefaultProtectedSubjects)),
		core:           subjectSet(orDefault(cfg.CoreSubjects, DefaultCoreSubjects)),
		independent:    subjectSet(orDefault(cfg.IndependentSubjects, DefaultIndependentSubjects)),
		allowedParent:  subjectSet(orDefault(cfg.AllowedParentSubjects, DefaultAllowedParentSubjects)),
		sharedResource: cfg.SharedResourceSubject,
		exchangeParent: make(map[ClassRef]ClassRef, len(cfg.ExchangePairs)),
		parentExchange: make(map[ClassRef]ClassRef, len(cfg.ExchangePairs)),
		cohortIndex:    make(map[ClassRef]int),
		combined:       make(map[string]struct{}, len(cfg.CombinedTeachers)),
		eligibility:    make(map[eligibilityKey]Teacher, len(cfg.Eligibility)),
		standardHours:  make(map[Subject]int),
		testPeriods:    make(map[TimeSlot]struct{}, len(cfg.TestPeriods)),
		absences:       cfg.Absences,
	}

	sort.Slice(s.classes, func(i, j int) bool { return classLess(s.classes[i], s.classes[j]) })
	sort.Slice(s.subjects, func(i, j int) bool { return s.subjects[i] < s.subjects[j] })

	if s.sharedResource.Empty() {
		s.sharedResource = DefaultSharedResourceSubject
	}
	for exchange, parent := range cfg.ExchangePairs {
		s.exchangeParent[exchange] = parent
		s.parentExchange[parent] = exchange
	}
	for i, cohort := range cfg.JointCohorts {
		members := append([]ClassRef(nil), cohort...)
		sort.Slice(members, func(a, b int) bool { return classLess(members[a], members[b]) })
		s.cohorts = append(s.cohorts, members)
		for _, member := range members {
			s.cohortIndex[member] = i
		}
	}
	for _, name := range cfg.CombinedTeachers {
		s.combined[name] = struct{}{}
	}
	for _, e := range cfg.Eligibility {
		s.eligibility[eligibilityKey{Subject: e.Subject, Class: e.Class}] = e.Teacher
	}
	hours := cfg.StandardHours
	if len(hours) == 0 {
		hours = DefaultStandardHours
	}
	for subject, n := range hours {
		s.standardHours[subject] = n
	}
	for _, slot := range cfg.TestPeriods {
		s.testPeriods[slot] = struct{}{}
	}
	if s.absences == nil {
		s.absences = NewAbsenceCalendar()
	}
	return s
}

// Classes returns the sorted class roster.
func (s *School) Classes() []ClassRef {
	return append([]ClassRef(nil), s.classes...)
}

// Subjects returns the sorted subject roster.
func (s *School) Subjects() []Subject {
	return append([]Subject(nil), s.subjects...)
}

// IsProtected reports whether the subject is fixed reference data exempt from
// duplication and placement constraints (assemblies, homeroom, locked test
// slots).
func (s *School) IsProtected(subject Subject) bool {
	_, ok := s.protected[subject]
	return ok
}

// IsCore reports whether the subject belongs to the core academic set.
func (s *School) IsCore(subject Subject) bool {
	_, ok := s.core[subject]
	return ok
}

// IsIndependentActivity reports whether the subject is one of the exchange
// classes' designated independent activities.
func (s *School) IsIndependentActivity(subject Subject) bool {
	_, ok := s.independent[subject]
	return ok
}

// IsAllowedParentSubject reports whether a parent class may run the subject
// while its exchange class is in an independent activity.
func (s *School) IsAllowedParentSubject(subject Subject) bool {
	_, ok := s.allowedParent[subject]
	return ok
}

// AllowedParentSubjects returns the sorted allowed set for messages.
func (s *School) AllowedParentSubjects() []Subject {
	out := make([]Subject, 0, len(s.allowedParent))
	for subject := range s.allowedParent {
		out = append(out, subject)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SharedResourceSubject returns the subject bound to the single shared room.
func (s *School) SharedResourceSubject() Subject { return s.sharedResource }

// IsExchangeClass reports whether the class is a support-needs exchange class.
func (s *School) IsExchangeClass(class ClassRef) bool {
	_, ok := s.exchangeParent[class]
	return ok
}

// ParentOf returns the parent class an exchange class is paired with.
func (s *School) ParentOf(exchange ClassRef) (ClassRef, bool) {
	parent, ok := s.exchangeParent[exchange]
	return parent, ok
}

// ExchangeOf returns the exchange class paired with a parent class, if any.
func (s *School) ExchangeOf(parent ClassRef) (ClassRef, bool) {
	exchange, ok := s.parentExchange[parent]
	return exchange, ok
}

// ExchangePairs returns every pairing sorted by exchange class.
func (s *School) ExchangePairs() []ExchangePair {
	pairs := make([]ExchangePair, 0, len(s.exchangeParent))
	for exchange, parent := range s.exchangeParent {
		pairs = append(pairs, ExchangePair{Exchange: exchange, Parent: parent})
	}
	sort.Slice(pairs, func(i, j int) bool { return classLess(pairs[i].Exchange, pairs[j].Exchange) })
	return pairs
}

// CohortOf returns the joint cohort the class belongs to, if any. Cohort
// members run one shared lesson and count as a single logical class for
// double-booking and room exclusivity.
func (s *School) CohortOf(class ClassRef) ([]ClassRef, bool) {
	i, ok := s.cohortIndex[class]
	if !ok {
		return nil, false
	}
	return append([]ClassRef(nil), s.cohorts[i]...), true
}

// JointCohorts returns every cohort, members sorted.
func (s *School) JointCohorts() [][]ClassRef {
	out := make([][]ClassRef, len(s.cohorts))
	for i, cohort := range s.cohorts {
		out[i] = append([]ClassRef(nil), cohort...)
	}
	return out
}

// SameCohort reports whether every listed class belongs to one joint cohort.
func (s *School) SameCohort(classes []ClassRef) bool {
	if len(classes) == 0 {
		return false
	}
	first, ok := s.cohortIndex[classes[0]]
	if !ok {
		return false
	}
	for _, class := range classes[1:] {
		if i, ok := s.cohortIndex[class]; !ok || i != first {
			return false
		}
	}
	return true
}

// IsJointGroup reports whether the classes are mutually sanctioned to share a
// slot-bound resource: all members of one cohort, or an exchange class with
// its own parent.
func (s *School) IsJointGroup(classes []ClassRef) bool {
	if s.SameCohort(classes) {
		return true
	}
	if len(classes) != 2 {
		return false
	}
	a, b := classes[0], classes[1]
	if parent, ok := s.exchangeParent[a]; ok && parent == b {
		return true
	}
	if parent, ok := s.exchangeParent[b]; ok && parent == a {
		return true
	}
	return false
}

// IsCombinedLessonTeacher reports whether the named supervisor runs a lesson
// in every class simultaneously (whole-school slots), exempting them from
// double-booking.
func (s *School) IsCombinedLessonTeacher(name string) bool {
	_, ok := s.combined[name]
	return ok
}

// TeacherFor returns the teacher eligible to teach the subject to the class.
func (s *School) TeacherFor(subject Subject, class ClassRef) (Teacher, bool) {
	t, ok := s.eligibility[eligibilityKey{Subject: subject, Class: class}]
	return t, ok
}

// EffectiveTeacher resolves who actually stands in front of the class for an
// assignment: the explicit teacher when set, otherwise the eligibility table.
// The second return is false when no teacher can be resolved at all.
func (s *School) EffectiveTeacher(a Assignment) (Teacher, bool) {
	if a.HasTeacher() {
		return a.Teacher, true
	}
	return s.TeacherFor(a.Subject, a.Class)
}

// StandardHoursFor returns the standard weekly hour count for a subject,
// zero when the subject has no standard.
func (s *School) StandardHoursFor(subject Subject) int {
	return s.standardHours[subject]
}

// StandardHoursTable returns the subjects that carry a standard, sorted.
func (s *School) StandardHoursTable() []Subject {
	out := make([]Subject, 0, len(s.standardHours))
	for subject := range s.standardHours {
		out = append(out, subject)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsTestPeriod reports whether the slot falls inside a locked test period.
func (s *School) IsTestPeriod(slot TimeSlot) bool {
	_, ok := s.testPeriods[slot]
	return ok
}

// TestPeriods returns every test-period slot in week order.
func (s *School) TestPeriods() []TimeSlot {
	out := make([]TimeSlot, 0, len(s.testPeriods))
	for _, slot := range WeekSlots() {
		if _, ok := s.testPeriods[slot]; ok {
			out = append(out, slot)
		}
	}
	return out
}

// Absences returns the teacher absence calendar.
func (s *School) Absences() *AbsenceCalendar { return s.absences }

func subjectSet(subjects []Subject) map[Subject]struct{} {
	set := make(map[Subject]struct{}, len(subjects))
	for _, subject := range subjects {
		set[subject] = struct{}{}
	}
	return set
}

func orDefault(subjects, fallback []Subject) []Subject {
	if len(subjects) > 0 {
		return subjects
	}
	return fallback
}
