package models

import "time"

// Assignment is one committed timetable fact: a division occupies a room
// with a faculty member for one subject during one (day, slot) cell.
// A multi-period lab block commits one Assignment per occupied slot.
type Assignment struct {
	ID         string    `db:"id" json:"id"`
	DivisionID string    `db:"division_id" json:"division_id"`
	Day        int       `db:"day" json:"day"`
	Slot       int       `db:"slot" json:"slot"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	FacultyID  string    `db:"faculty_id" json:"faculty_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TimetableFilter narrows timetable reads to one division or one faculty
// member; zero values mean the whole institution.
type TimetableFilter struct {
	DivisionID string
	FacultyID  string
}

// AssignmentDetail joins an assignment with display names for the viewer.
type AssignmentDetail struct {
	Assignment
	SubjectCode  string `db:"subject_code" json:"subject_code"`
	SubjectName  string `db:"subject_name" json:"subject_name"`
	FacultyName  string `db:"faculty_name" json:"faculty_name"`
	RoomNumber   string `db:"room_number" json:"room_number"`
	DivisionName string `db:"division_name" json:"division_name"`
}

// TimetableGridCell is one filled period in a division's grid view.
type TimetableGridCell struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	FacultyName string `json:"faculty_name"`
	RoomNumber  string `json:"room_number"`
}

// TimetableGridDay is one working day's row; empty periods are null cells.
type TimetableGridDay struct {
	Day     int                  `json:"day"`
	DayName string               `json:"day_name"`
	Cells   []*TimetableGridCell `json:"cells"`
}

// TimetableGrid is one division's timetable as a day-by-slot matrix.
type TimetableGrid struct {
	DivisionID    string             `json:"division_id"`
	WorkingDays   int                `json:"working_days"`
	PeriodsPerDay int                `json:"periods_per_day"`
	Days          []TimetableGridDay `json:"days"`
}

// NewTimetableGrid builds an empty grid with the given dimensions.
func NewTimetableGrid(divisionID string, workingDays, periodsPerDay int) *TimetableGrid {
	grid := &TimetableGrid{
		DivisionID:    divisionID,
		WorkingDays:   workingDays,
		PeriodsPerDay: periodsPerDay,
		Days:          make([]TimetableGridDay, workingDays),
	}
	for i := range grid.Days {
		grid.Days[i] = TimetableGridDay{
			Day:     i + 1,
			DayName: DayName(i + 1),
			Cells:   make([]*TimetableGridCell, periodsPerDay),
		}
	}
	return grid
}

// Place fills the cell addressed by the assignment's day and slot.
// Out-of-range cells are ignored rather than grown; a stale assignment from
// a wider calendar must not distort the current grid.
func (g *TimetableGrid) Place(detail *AssignmentDetail) {
	if detail.Day < 1 || detail.Day > len(g.Days) {
		return
	}
	row := &g.Days[detail.Day-1]
	if detail.Slot < 1 || detail.Slot > len(row.Cells) {
		return
	}
	row.Cells[detail.Slot-1] = &TimetableGridCell{
		SubjectCode: detail.SubjectCode,
		SubjectName: detail.SubjectName,
		FacultyName: detail.FacultyName,
		RoomNumber:  detail.RoomNumber,
	}
}

// DayName maps a 1-based working-day index to its display name.
func DayName(day int) string {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if day < 1 || day > len(names) {
		return ""
	}
	return names[day-1]
}
