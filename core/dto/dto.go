// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

// Package dto defines the entities mirrored from the SIMS backend.
//
// The client does not define identity beyond the server-assigned key; all
// structs here are plain DTOs whose json tags match the backend contract.
// Enum values are the backend's literal strings. Validate tags mirror the
// server's required-field checks so that a form buffer can be rejected
// before any network call.
package dto

// Student statuses.
const (
	StudentEnrolled  = "在读"
	StudentSuspended = "休学"
	StudentDropped   = "退学"
	StudentGraduated = "毕业"
)

// Score statuses.
const (
	ScoreEnrolled  = "选课中"
	ScoreCompleted = "已修完"
	ScoreCancelled = "已取消"
)

// Semesters.
const (
	SemesterSpring = "春季"
	SemesterAutumn = "秋季"
)

// User is the authenticated console user.
type User struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin returns true if the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == "admin" }

// Student mirrors the student table, denormalized with class and college
// names on read.
type Student struct {
	StudentID      int    `json:"student_id,omitempty"`
	StudentNo      string `json:"student_no" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Gender         string `json:"gender" validate:"required"`
	BirthDate      string `json:"birth_date"`
	IDCard         string `json:"id_card"`
	EnrollmentDate string `json:"enrollment_date" validate:"required"`
	ClassID        int    `json:"class_id" validate:"required"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	ClassName      string `json:"class_name,omitempty"`
	CollegeName    string `json:"college_name,omitempty"`
}

// Teacher mirrors the teacher table, denormalized with college and title
// names on read.
type Teacher struct {
	TeacherID   int    `json:"teacher_id,omitempty"`
	TeacherNo   string `json:"teacher_no" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
	BirthDate   string `json:"birth_date"`
	TitleID     int    `json:"title_id"`
	CollegeID   int    `json:"college_id"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	CollegeName string `json:"college_name,omitempty"`
	TitleName   string `json:"title_name,omitempty"`
}

// Course mirrors the course table.
type Course struct {
	CourseID    int     `json:"course_id,omitempty"`
	CourseCode  string  `json:"course_code" validate:"required"`
	CourseName  string  `json:"course_name" validate:"required"`
	Credit      float64 `json:"credit" validate:"required"`
	Hours       int     `json:"hours" validate:"required"`
	TypeID      int     `json:"type_id"`
	CollegeID   int     `json:"college_id"`
	TypeName    string  `json:"type_name,omitempty"`
	CollegeName string  `json:"college_name,omitempty"`
}

// Offering is a scheduled instance of a course taught by a teacher in a
// given semester and year.
type Offering struct {
	OfferingID  int    `json:"offering_id,omitempty"`
	CourseID    int    `json:"course_id" validate:"required"`
	TeacherID   int    `json:"teacher_id" validate:"required"`
	Semester    string `json:"semester" validate:"required"`
	Year        int    `json:"year" validate:"required"`
	Classroom   string `json:"classroom"`
	ClassTime   string `json:"class_time"`
	CourseName  string `json:"course_name,omitempty"`
	CourseCode  string `json:"course_code,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
}

// Score is the association record between a student and an offering. The
// score value is null unless the status is 已修完; the backend enforces the
// same rule.
type Score struct {
	ScID        int      `json:"sc_id,omitempty"`
	StudentID   int      `json:"student_id"`
	OfferingID  int      `json:"offering_id"`
	Score       *float64 `json:"score"`
	Status      string   `json:"status"`
	CourseName  string   `json:"course_name,omitempty"`
	Credit      float64  `json:"credit,omitempty"`
	TeacherName string   `json:"teacher_name,omitempty"`
	Semester    string   `json:"semester,omitempty"`
	Year        int      `json:"year,omitempty"`
}

// Class mirrors the class table.
type Class struct {
	ClassID       int    `json:"class_id,omitempty"`
	ClassName     string `json:"class_name" validate:"required"`
	ClassCode     string `json:"class_code" validate:"required"`
	CollegeID     int    `json:"college_id" validate:"required"`
	AdmissionYear int    `json:"admission_year"`
	CollegeName   string `json:"college_name,omitempty"`
}

// College mirrors the college table.
type College struct {
	CollegeID   int    `json:"college_id,omitempty"`
	CollegeName string `json:"college_name" validate:"required"`
	CollegeCode string `json:"college_code" validate:"required"`
}

// Title is a teacher title reference entry.
type Title struct {
	TitleID   int    `json:"title_id"`
	TitleName string `json:"title_name"`
	TitleCode string `json:"title_code"`
}

// CourseType is a course type reference entry.
type CourseType struct {
	TypeID   int    `json:"type_id"`
	TypeName string `json:"type_name"`
	TypeCode string `json:"type_code"`
}
