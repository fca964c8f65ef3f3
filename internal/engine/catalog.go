package engine

import "sort"

type roomKey struct {
	departmentID string
	isLab        bool
}

// catalogIndex holds the lookup structures the placer consults for every
// teaching unit. Built once per run; never mutated afterwards.
type catalogIndex struct {
	subjectsBySemester map[string][]*Subject
	facultyBySubject   map[string][]*Faculty
	roomsByKey         map[roomKey][]*Room
}

func buildIndex(cat Catalog) *catalogIndex {
	idx := &catalogIndex{
		subjectsBySemester: make(map[string][]*Subject),
		facultyBySubject:   make(map[string][]*Faculty),
		roomsByKey:         make(map[roomKey][]*Room),
	}

	for i := range cat.Subjects {
		s := &cat.Subjects[i]
		idx.subjectsBySemester[s.SemesterID] = append(idx.subjectsBySemester[s.SemesterID], s)
	}

	for i := range cat.Faculty {
		f := &cat.Faculty[i]
		for _, subjectID := range f.SubjectIDs {
			idx.facultyBySubject[subjectID] = append(idx.facultyBySubject[subjectID], f)
		}
	}

	for i := range cat.Rooms {
		r := &cat.Rooms[i]
		key := roomKey{departmentID: r.DepartmentID, isLab: r.IsLab}
		idx.roomsByKey[key] = append(idx.roomsByKey[key], r)
	}
	// Ascending capacity so the smallest adequate room is tried first,
	// minimising capacity waste.
	for _, rooms := range idx.roomsByKey {
		sort.SliceStable(rooms, func(a, b int) bool {
			return rooms[a].Capacity < rooms[b].Capacity
		})
	}

	return idx
}

// SubjectsFor returns the subjects taught in a semester, in catalog order.
func (idx *catalogIndex) SubjectsFor(semesterID string) []*Subject {
	return idx.subjectsBySemester[semesterID]
}

// FacultyFor returns every faculty member eligible for the subject. An
// empty result makes the unit unplaceable.
func (idx *catalogIndex) FacultyFor(subjectID string) []*Faculty {
	return idx.facultyBySubject[subjectID]
}

// RoomsFor returns department rooms of the matching kind with capacity of
// at least minCapacity, ascending by capacity.
func (idx *catalogIndex) RoomsFor(departmentID string, isLab bool, minCapacity int) []*Room {
	rooms := idx.roomsByKey[roomKey{departmentID: departmentID, isLab: isLab}]
	eligible := make([]*Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Capacity >= minCapacity {
			eligible = append(eligible, r)
		}
	}
	return eligible
}
