// Package engine implements the timetable generation core: expanding subject
// credit loads into teaching units and greedily placing each unit into a
// (day, slot, faculty, room) combination under hard constraints. The engine
// is storage-free; callers snapshot the catalog, run it, and persist the
// committed assignments.
package engine

import (
	"math/rand"
)

// Calendar holds the institution-wide grid parameters for one run.
type Calendar struct {
	WorkingDays    int
	PeriodsPerDay  int
	LabBlockLength int
}

// Normalized clamps the calendar into its valid range, applying defaults
// for missing values: 5 working days, 6 periods, lab blocks of 2.
func (c Calendar) Normalized() Calendar {
	if c.WorkingDays < 5 {
		c.WorkingDays = 5
	}
	if c.WorkingDays > 6 {
		c.WorkingDays = 6
	}
	if c.PeriodsPerDay <= 0 {
		c.PeriodsPerDay = 6
	}
	if c.LabBlockLength <= 0 {
		c.LabBlockLength = 2
	}
	return c
}

// Subject is the engine's view of one catalog subject.
type Subject struct {
	ID           string
	Code         string
	Name         string
	Credits      int
	DepartmentID string
	SemesterID   string
}

// Faculty is the engine's view of one teacher and their eligibility set.
type Faculty struct {
	ID         string
	Name       string
	SubjectIDs []string
}

// Room is the engine's view of one teaching space.
type Room struct {
	ID           string
	RoomNumber   string
	DepartmentID string
	IsLab        bool
	Capacity     int
}

// Division is the engine's view of one student group. Size drives room
// capacity eligibility.
type Division struct {
	ID           string
	Name         string
	SemesterID   string
	DepartmentID string
	Size         int
}

// Catalog is the immutable input snapshot for a generation run.
type Catalog struct {
	Subjects  []Subject
	Faculty   []Faculty
	Rooms     []Room
	Divisions []Division
}

// Assignment is one committed (division, day, slot, subject, faculty, room)
// cell. A multi-period unit yields one Assignment per occupied slot.
type Assignment struct {
	DivisionID string
	Day        int
	Slot       int
	SubjectID  string
	FacultyID  string
	RoomID     string
}

// Unplaced reasons reported alongside a partial schedule.
const (
	ReasonNoFaculty = "no eligible faculty"
	ReasonNoRoom    = "no eligible room"
	ReasonNoSlot    = "no feasible day/slot"
)

// UnplacedUnit describes a teaching unit the placer could not commit.
type UnplacedUnit struct {
	DivisionID string `json:"division_id"`
	SubjectID  string `json:"subject_id"`
	Length     int    `json:"length"`
	IsLab      bool   `json:"is_lab"`
	Reason     string `json:"reason"`
}

// Result summarises a completed run. Placed < Attempted signals a degraded
// schedule, never an error.
type Result struct {
	Attempted   int
	Placed      int
	Assignments []Assignment
	Unplaced    []UnplacedUnit
}

// Engine runs one generation pass over a catalog snapshot. The random
// source is injected so tests and callers can fix the seed; shuffling of
// unit, day and slot order is the only source of run-to-run variation.
type Engine struct {
	cal Calendar
	cat Catalog
	idx *catalogIndex
	rng *rand.Rand
}

// New builds an engine for one run. rng must not be shared with other
// goroutines while the run is in progress.
func New(cal Calendar, cat Catalog, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Engine{
		cal: cal.Normalized(),
		cat: cat,
		idx: buildIndex(cat),
		rng: rng,
	}
}

// Run executes the full generation pass: every division's subjects are
// expanded into teaching units, shuffled, and placed greedily. The run
// always completes; units that cannot be placed are reported, not fatal.
func (e *Engine) Run() *Result {
	res := &Result{}
	occ := newOccupancy()

	for i := range e.cat.Divisions {
		div := &e.cat.Divisions[i]
		subjects := e.idx.SubjectsFor(div.SemesterID)
		units, totalCredits := expandAll(subjects, e.cal.LabBlockLength)
		if len(units) == 0 {
			continue
		}

		e.rng.Shuffle(len(units), func(a, b int) {
			units[a], units[b] = units[b], units[a]
		})

		res.Attempted += len(units)
		e.placeDivision(div, units, totalCredits, occ, res)
	}

	return res
}
