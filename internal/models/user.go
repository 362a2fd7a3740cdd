package models

import "time"

// Role constants recognised across the API.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// Account status values.
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)

// User represents an account that can submit or review activity records.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Email     string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string     `gorm:"size:32;not null;default:student" json:"role"`
	Status    string     `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// FacultyAssignment maps a faculty reviewer to a student whose records they decide on.
type FacultyAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FacultyID uint      `gorm:"not null;index;uniqueIndex:idx_faculty_student" json:"faculty_id"`
	StudentID uint      `gorm:"not null;index;uniqueIndex:idx_faculty_student" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}
