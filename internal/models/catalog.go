package models

import "time"

// Department groups semesters, subjects, faculty and rooms.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Semester is one numbered term within a department's programme.
type Semester struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Number       int       `db:"number" json:"number"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Subject represents an academic subject taught in a semester.
// Whether a subject is a lab is derived from its name and code, never stored.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Credits      int       `db:"credits" json:"credits"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	SemesterID   string    `db:"semester_id" json:"semester_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Faculty is a teacher who may be eligible for zero or more subjects.
type Faculty struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// SubjectIDs holds the eligibility set loaded from faculty_subjects.
	SubjectIDs []string `db:"-" json:"subject_ids,omitempty"`
}

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	DepartmentID string
	SemesterID   string
	Search       string
	Page         int
	PageSize     int
}

// RoomType distinguishes regular classrooms from lab rooms.
type RoomType string

const (
	RoomTypeClassroom RoomType = "CLASSROOM"
	RoomTypeLab       RoomType = "LAB"
)

// Room is a teaching space with a fixed capacity.
type Room struct {
	ID           string    `db:"id" json:"id"`
	RoomNumber   string    `db:"room_number" json:"room_number"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Type         RoomType  `db:"type" json:"type"`
	Capacity     int       `db:"capacity" json:"capacity"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Division is a student group following one semester's subjects together.
type Division struct {
	ID          string    `db:"id" json:"id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	Name        string    `db:"name" json:"name"`
	NumStudents int       `db:"num_students" json:"num_students"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DivisionDetail joins a division with its semester and department.
type DivisionDetail struct {
	Division
	DepartmentID   string `db:"department_id" json:"department_id"`
	SemesterName   string `db:"semester_name" json:"semester_name"`
	DepartmentName string `db:"department_name" json:"department_name"`
}
