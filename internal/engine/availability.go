package engine

// cell identifies one entity's occupancy of a (day, slot) pair.
type cell struct {
	id   string
	day  int
	slot int
}

// occupancy answers whether a faculty member, room or division is free at a
// given cell, backed by the set of assignments committed so far in the run.
// Occupancy is monotonic: once a cell is taken it is never released.
type occupancy struct {
	faculty map[cell]struct{}
	rooms   map[cell]struct{}
	groups  map[cell]struct{}

	// facultyLoad counts committed slots per faculty across the whole
	// run; the placer uses it for global load balancing.
	facultyLoad map[string]int
}

func newOccupancy() *occupancy {
	return &occupancy{
		faculty:     make(map[cell]struct{}),
		rooms:       make(map[cell]struct{}),
		groups:      make(map[cell]struct{}),
		facultyLoad: make(map[string]int),
	}
}

func (o *occupancy) FacultyFree(facultyID string, day, slot int) bool {
	_, taken := o.faculty[cell{facultyID, day, slot}]
	return !taken
}

func (o *occupancy) RoomFree(roomID string, day, slot int) bool {
	_, taken := o.rooms[cell{roomID, day, slot}]
	return !taken
}

func (o *occupancy) GroupFree(divisionID string, day, slot int) bool {
	_, taken := o.groups[cell{divisionID, day, slot}]
	return !taken
}

// FacultyLoad returns the total number of slots committed to a faculty
// member so far in the run.
func (o *occupancy) FacultyLoad(facultyID string) int {
	return o.facultyLoad[facultyID]
}

// Commit marks one assignment's cell occupied for all three entities.
func (o *occupancy) Commit(a Assignment) {
	o.faculty[cell{a.FacultyID, a.Day, a.Slot}] = struct{}{}
	o.rooms[cell{a.RoomID, a.Day, a.Slot}] = struct{}{}
	o.groups[cell{a.DivisionID, a.Day, a.Slot}] = struct{}{}
	o.facultyLoad[a.FacultyID]++
}
