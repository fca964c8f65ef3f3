package engine

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestRunTrivialFeasibleCase(t *testing.T) {
	cat := Catalog{
		Subjects:  []Subject{{ID: "math", Code: "M1", Name: "Mathematics", Credits: 2, DepartmentID: "d1", SemesterID: "sem1"}},
		Faculty:   []Faculty{{ID: "f1", Name: "Prof A", SubjectIDs: []string{"math"}}},
		Rooms:     []Room{{ID: "r1", RoomNumber: "101", DepartmentID: "d1", Capacity: 40}},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30}},
	}
	res := New(Calendar{WorkingDays: 5, PeriodsPerDay: 6, LabBlockLength: 2}, cat, testRNG(7)).Run()

	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 2, res.Placed)
	require.Len(t, res.Assignments, 2)
	assert.Empty(t, res.Unplaced)

	seen := map[[2]int]bool{}
	for _, a := range res.Assignments {
		assert.Equal(t, "g1", a.DivisionID)
		assert.Equal(t, "f1", a.FacultyID)
		assert.Equal(t, "r1", a.RoomID)
		key := [2]int{a.Day, a.Slot}
		assert.False(t, seen[key], "group double-booked at day %d slot %d", a.Day, a.Slot)
		seen[key] = true
	}
}

func TestRunNoEligibleFaculty(t *testing.T) {
	cat := Catalog{
		Subjects:  []Subject{{ID: "math", Code: "M1", Name: "Mathematics", Credits: 3, DepartmentID: "d1", SemesterID: "sem1"}},
		Rooms:     []Room{{ID: "r1", RoomNumber: "101", DepartmentID: "d1", Capacity: 40}},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30}},
	}
	res := New(Calendar{WorkingDays: 5, PeriodsPerDay: 6, LabBlockLength: 2}, cat, testRNG(7)).Run()

	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 0, res.Placed)
	assert.Empty(t, res.Assignments)
	require.Len(t, res.Unplaced, 3)
	for _, u := range res.Unplaced {
		assert.Equal(t, ReasonNoFaculty, u.Reason)
	}
}

func TestRunNoEligibleRoom(t *testing.T) {
	cat := Catalog{
		Subjects:  []Subject{{ID: "bio", Code: "B1", Name: "Biology", Credits: 2, DepartmentID: "d1", SemesterID: "sem1"}},
		Faculty:   []Faculty{{ID: "f1", Name: "Prof A", SubjectIDs: []string{"bio"}}},
		Rooms:     []Room{{ID: "r1", RoomNumber: "101", DepartmentID: "d1", Capacity: 20}},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30}},
	}
	res := New(Calendar{}, cat, testRNG(7)).Run()

	assert.Equal(t, 0, res.Placed)
	require.Len(t, res.Unplaced, 2)
	for _, u := range res.Unplaced {
		assert.Equal(t, ReasonNoRoom, u.Reason)
	}
}

func TestRunLabBlockContiguity(t *testing.T) {
	cat := Catalog{
		Subjects:  []Subject{{ID: "chem", Code: "C1", Name: "Chemistry Lab", Credits: 4, DepartmentID: "d1", SemesterID: "sem1"}},
		Faculty:   []Faculty{{ID: "f1", Name: "Prof A", SubjectIDs: []string{"chem"}}},
		Rooms:     []Room{{ID: "r1", RoomNumber: "L1", DepartmentID: "d1", IsLab: true, Capacity: 40}},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30}},
	}
	res := New(Calendar{WorkingDays: 5, PeriodsPerDay: 6, LabBlockLength: 2}, cat, testRNG(11)).Run()

	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 2, res.Placed)
	require.Len(t, res.Assignments, 4)

	byDay := map[int][]Assignment{}
	for _, a := range res.Assignments {
		byDay[a.Day] = append(byDay[a.Day], a)
	}
	for day, cells := range byDay {
		require.Len(t, cells, 2, "day %d should hold one full lab block", day)
		sort.Slice(cells, func(i, j int) bool { return cells[i].Slot < cells[j].Slot })
		assert.Equal(t, cells[0].Slot+1, cells[1].Slot)
		assert.Equal(t, cells[0].FacultyID, cells[1].FacultyID)
		assert.Equal(t, cells[0].RoomID, cells[1].RoomID)
	}
}

func TestRunNoDoubleBooking(t *testing.T) {
	cat := Catalog{
		Subjects: []Subject{
			{ID: "math", Code: "M1", Name: "Mathematics", Credits: 4, DepartmentID: "d1", SemesterID: "sem1"},
			{ID: "phys", Code: "P1", Name: "Physics", Credits: 4, DepartmentID: "d1", SemesterID: "sem1"},
		},
		Faculty: []Faculty{
			{ID: "f1", Name: "Prof A", SubjectIDs: []string{"math", "phys"}},
			{ID: "f2", Name: "Prof B", SubjectIDs: []string{"math", "phys"}},
		},
		Rooms: []Room{
			{ID: "r1", RoomNumber: "101", DepartmentID: "d1", Capacity: 40},
			{ID: "r2", RoomNumber: "102", DepartmentID: "d1", Capacity: 60},
		},
		Divisions: []Division{
			{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30},
			{ID: "g2", Name: "B", SemesterID: "sem1", DepartmentID: "d1", Size: 30},
		},
	}
	res := New(Calendar{WorkingDays: 5, PeriodsPerDay: 6, LabBlockLength: 2}, cat, testRNG(3)).Run()

	facultyCells := map[cell]bool{}
	roomCells := map[cell]bool{}
	groupCells := map[cell]bool{}
	for _, a := range res.Assignments {
		fc := cell{a.FacultyID, a.Day, a.Slot}
		rc := cell{a.RoomID, a.Day, a.Slot}
		gc := cell{a.DivisionID, a.Day, a.Slot}
		assert.False(t, facultyCells[fc], "faculty clash at %+v", fc)
		assert.False(t, roomCells[rc], "room clash at %+v", rc)
		assert.False(t, groupCells[gc], "group clash at %+v", gc)
		facultyCells[fc] = true
		roomCells[rc] = true
		groupCells[gc] = true
	}
}

func TestRunCapacitySufficiency(t *testing.T) {
	cat := Catalog{
		Subjects: []Subject{{ID: "hist", Code: "H1", Name: "History", Credits: 3, DepartmentID: "d1", SemesterID: "sem1"}},
		Faculty:  []Faculty{{ID: "f1", Name: "Prof A", SubjectIDs: []string{"hist"}}},
		Rooms: []Room{
			{ID: "small", RoomNumber: "S", DepartmentID: "d1", Capacity: 40},
			{ID: "large", RoomNumber: "L", DepartmentID: "d1", Capacity: 60},
		},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 50}},
	}
	res := New(Calendar{}, cat, testRNG(5)).Run()

	assert.Equal(t, 3, res.Placed)
	for _, a := range res.Assignments {
		assert.Equal(t, "large", a.RoomID, "undersized room must never be committed")
	}
}

func TestRunPrefersSmallestAdequateRoom(t *testing.T) {
	cat := Catalog{
		Subjects: []Subject{{ID: "eng", Code: "E1", Name: "English", Credits: 1, DepartmentID: "d1", SemesterID: "sem1"}},
		Faculty:  []Faculty{{ID: "f1", Name: "Prof A", SubjectIDs: []string{"eng"}}},
		Rooms: []Room{
			{ID: "big", RoomNumber: "B", DepartmentID: "d1", Capacity: 100},
			{ID: "snug", RoomNumber: "S", DepartmentID: "d1", Capacity: 20},
		},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 15}},
	}
	res := New(Calendar{}, cat, testRNG(5)).Run()

	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "snug", res.Assignments[0].RoomID)
}

func TestRunGlobalFacultyLoadBalancing(t *testing.T) {
	cat := Catalog{
		Subjects: []Subject{{ID: "math", Code: "M1", Name: "Mathematics", Credits: 6, DepartmentID: "d1", SemesterID: "sem1"}},
		Faculty: []Faculty{
			{ID: "f1", Name: "Prof A", SubjectIDs: []string{"math"}},
			{ID: "f2", Name: "Prof B", SubjectIDs: []string{"math"}},
		},
		Rooms:     []Room{{ID: "r1", RoomNumber: "101", DepartmentID: "d1", Capacity: 40}},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30}},
	}
	res := New(Calendar{WorkingDays: 5, PeriodsPerDay: 6, LabBlockLength: 2}, cat, testRNG(9)).Run()

	assert.Equal(t, 6, res.Placed)
	loads := map[string]int{}
	for _, a := range res.Assignments {
		loads[a.FacultyID]++
	}
	assert.Equal(t, 3, loads["f1"])
	assert.Equal(t, 3, loads["f2"])
}

func TestRunDeterministicUnderFixedSeed(t *testing.T) {
	cat := Catalog{
		Subjects: []Subject{
			{ID: "math", Code: "M1", Name: "Mathematics", Credits: 3, DepartmentID: "d1", SemesterID: "sem1"},
			{ID: "chem", Code: "C1", Name: "Chemistry Lab", Credits: 4, DepartmentID: "d1", SemesterID: "sem1"},
		},
		Faculty: []Faculty{
			{ID: "f1", Name: "Prof A", SubjectIDs: []string{"math"}},
			{ID: "f2", Name: "Prof B", SubjectIDs: []string{"chem"}},
		},
		Rooms: []Room{
			{ID: "r1", RoomNumber: "101", DepartmentID: "d1", Capacity: 40},
			{ID: "l1", RoomNumber: "L1", DepartmentID: "d1", IsLab: true, Capacity: 40},
		},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30}},
	}
	cal := Calendar{WorkingDays: 5, PeriodsPerDay: 6, LabBlockLength: 2}

	first := New(cal, cat, testRNG(42)).Run()
	second := New(cal, cat, testRNG(42)).Run()

	assert.Equal(t, first.Attempted, second.Attempted)
	assert.Equal(t, first.Placed, second.Placed)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Unplaced, second.Unplaced)
}

func TestRunUnitConservation(t *testing.T) {
	cat := Catalog{
		Subjects: []Subject{
			{ID: "math", Code: "M1", Name: "Mathematics", Credits: 3, DepartmentID: "d1", SemesterID: "sem1"},
			{ID: "chem", Code: "C1", Name: "Chemistry Lab", Credits: 4, DepartmentID: "d1", SemesterID: "sem1"},
		},
		Faculty: []Faculty{{ID: "f1", Name: "Prof A", SubjectIDs: []string{"math", "chem"}}},
		Rooms: []Room{
			{ID: "r1", RoomNumber: "101", DepartmentID: "d1", Capacity: 40},
			{ID: "l1", RoomNumber: "L1", DepartmentID: "d1", IsLab: true, Capacity: 40},
		},
		Divisions: []Division{{ID: "g1", Name: "A", SemesterID: "sem1", DepartmentID: "d1", Size: 30}},
	}
	res := New(Calendar{WorkingDays: 5, PeriodsPerDay: 6, LabBlockLength: 2}, cat, testRNG(13)).Run()

	perSubject := map[string]int{}
	for _, a := range res.Assignments {
		perSubject[a.SubjectID]++
	}
	// 3 single-period units and up to 2 lab blocks of length 2.
	assert.LessOrEqual(t, perSubject["math"], 3)
	assert.LessOrEqual(t, perSubject["chem"], 4)
	assert.Equal(t, 0, perSubject["chem"]%2, "lab commits whole blocks only")
}

func TestCalendarNormalized(t *testing.T) {
	cal := Calendar{}.Normalized()
	assert.Equal(t, 5, cal.WorkingDays)
	assert.Equal(t, 6, cal.PeriodsPerDay)
	assert.Equal(t, 2, cal.LabBlockLength)

	assert.Equal(t, 6, Calendar{WorkingDays: 9, PeriodsPerDay: 8, LabBlockLength: 3}.Normalized().WorkingDays)
}
