package engine

// placeDivision greedily places the division's shuffled teaching units.
// Committed assignments are never revisited: a unit either finds a feasible
// (day, slot, faculty, room) combination or is reported unplaced.
func (e *Engine) placeDivision(div *Division, units []TeachingUnit, totalCredits int, occ *occupancy, res *Result) {
	// Soft per-day cap with one unit of slack keeps the week balanced
	// without making placement infeasible.
	dayTarget := (totalCredits+e.cal.WorkingDays-1)/e.cal.WorkingDays + 1
	dayLoad := make(map[int]int, e.cal.WorkingDays)

	for _, unit := range units {
		faculty := e.idx.FacultyFor(unit.SubjectID)
		if len(faculty) == 0 {
			res.Unplaced = append(res.Unplaced, unplaced(div, unit, ReasonNoFaculty))
			continue
		}
		rooms := e.idx.RoomsFor(div.DepartmentID, unit.IsLab, div.Size)
		if len(rooms) == 0 {
			res.Unplaced = append(res.Unplaced, unplaced(div, unit, ReasonNoRoom))
			continue
		}

		if e.placeUnit(div, unit, faculty, rooms, dayTarget, dayLoad, occ, res) {
			res.Placed++
		} else {
			res.Unplaced = append(res.Unplaced, unplaced(div, unit, ReasonNoSlot))
		}
	}
}

func (e *Engine) placeUnit(
	div *Division,
	unit TeachingUnit,
	faculty []*Faculty,
	rooms []*Room,
	dayTarget int,
	dayLoad map[int]int,
	occ *occupancy,
	res *Result,
) bool {
	for _, day := range e.shuffledDays() {
		if dayLoad[day]+unit.Length > dayTarget {
			continue
		}

		for _, start := range e.shuffledStarts(unit.Length) {
			end := start + unit.Length - 1

			if !groupBlockFree(occ, div.ID, day, start, end) {
				continue
			}

			facultyID := pickFaculty(occ, faculty, day, start, end)
			if facultyID == "" {
				continue
			}

			roomID := pickRoom(occ, rooms, day, start, end)
			if roomID == "" {
				continue
			}

			for slot := start; slot <= end; slot++ {
				a := Assignment{
					DivisionID: div.ID,
					Day:        day,
					Slot:       slot,
					SubjectID:  unit.SubjectID,
					FacultyID:  facultyID,
					RoomID:     roomID,
				}
				occ.Commit(a)
				res.Assignments = append(res.Assignments, a)
			}
			dayLoad[day] += unit.Length
			return true
		}
	}
	return false
}

// pickFaculty selects the free eligible faculty member with the lowest
// committed load across the whole run. Ties keep the earlier candidate in
// iteration order.
func pickFaculty(occ *occupancy, faculty []*Faculty, day, start, end int) string {
	best := ""
	minLoad := -1
	for _, f := range faculty {
		load := occ.FacultyLoad(f.ID)
		if minLoad >= 0 && load >= minLoad {
			continue
		}
		if !facultyBlockFree(occ, f.ID, day, start, end) {
			continue
		}
		best = f.ID
		minLoad = load
	}
	return best
}

// pickRoom returns the first room (smallest adequate capacity) free for the
// whole block.
func pickRoom(occ *occupancy, rooms []*Room, day, start, end int) string {
	for _, r := range rooms {
		if roomBlockFree(occ, r.ID, day, start, end) {
			return r.ID
		}
	}
	return ""
}

func groupBlockFree(occ *occupancy, divisionID string, day, start, end int) bool {
	for slot := start; slot <= end; slot++ {
		if !occ.GroupFree(divisionID, day, slot) {
			return false
		}
	}
	return true
}

func facultyBlockFree(occ *occupancy, facultyID string, day, start, end int) bool {
	for slot := start; slot <= end; slot++ {
		if !occ.FacultyFree(facultyID, day, slot) {
			return false
		}
	}
	return true
}

func roomBlockFree(occ *occupancy, roomID string, day, start, end int) bool {
	for slot := start; slot <= end; slot++ {
		if !occ.RoomFree(roomID, day, slot) {
			return false
		}
	}
	return true
}

func (e *Engine) shuffledDays() []int {
	days := make([]int, e.cal.WorkingDays)
	for i := range days {
		days[i] = i + 1
	}
	e.rng.Shuffle(len(days), func(a, b int) {
		days[a], days[b] = days[b], days[a]
	})
	return days
}

func (e *Engine) shuffledStarts(length int) []int {
	last := e.cal.PeriodsPerDay - length + 1
	if last < 1 {
		return nil
	}
	starts := make([]int, last)
	for i := range starts {
		starts[i] = i + 1
	}
	e.rng.Shuffle(len(starts), func(a, b int) {
		starts[a], starts[b] = starts[b], starts[a]
	})
	return starts
}

func unplaced(div *Division, unit TeachingUnit, reason string) UnplacedUnit {
	return UnplacedUnit{
		DivisionID: div.ID,
		SubjectID:  unit.SubjectID,
		Length:     unit.Length,
		IsLab:      unit.IsLab,
		Reason:     reason,
	}
}
