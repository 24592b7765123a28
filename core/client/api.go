// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package client

import (
	"context"
	"strconv"

	"github.com/edulab/sims-console/core/dto"
)

// AuthStatus is the response of the session check.
type AuthStatus struct {
	Authenticated bool      `json:"authenticated"`
	User          *dto.User `json:"user,omitempty"`
}

// CheckAuth asks the backend whether the session cookie is still valid.
func (c Client) CheckAuth(ctx context.Context) (AuthStatus, error) {
	var status AuthStatus
	_, err := c.RawGet(ctx, "/api/auth/check_auth", &status)
	return status, err
}

// Login authenticates with username and password. The session cookie from
// the response is kept for all subsequent calls.
func (c Client) Login(ctx context.Context, username, password string) (dto.User, error) {
	body := map[string]string{"username": username, "password": password}
	var result struct {
		Success bool     `json:"success"`
		User    dto.User `json:"user"`
	}
	_, err := c.RawPost(ctx, "/api/auth/login", body, &result)
	return result.User, err
}

// Logout invalidates the session on the backend.
func (c Client) Logout(ctx context.Context) error {
	_, err := c.RawPost(ctx, "/api/auth/logout", nil, nil)
	return err
}

// ListStudents fetches one page of students matching the search term.
func (c Client) ListStudents(ctx context.Context, page int, search string) ([]dto.Student, int, error) {
	var result struct {
		Students []dto.Student `json:"students"`
		Total    int           `json:"total"`
	}
	_, err := c.RawGet(ctx, "/api/student/"+listQuery(page, search), &result)
	return result.Students, result.Total, err
}

// GetStudent fetches a single student by id.
func (c Client) GetStudent(ctx context.Context, id int) (dto.Student, error) {
	var result struct {
		Student dto.Student `json:"student"`
	}
	_, err := c.RawGet(ctx, "/api/student/"+strconv.Itoa(id), &result)
	return result.Student, err
}

// CreateStudent adds a new student.
func (c Client) CreateStudent(ctx context.Context, s dto.Student) error {
	_, err := c.RawPost(ctx, "/api/student/", s, nil)
	return err
}

// UpdateStudent updates an existing student.
func (c Client) UpdateStudent(ctx context.Context, id int, s dto.Student) error {
	_, err := c.RawPut(ctx, "/api/student/"+strconv.Itoa(id), s, nil)
	return err
}

// DeleteStudent deletes a student.
func (c Client) DeleteStudent(ctx context.Context, id int) error {
	_, err := c.RawDelete(ctx, "/api/student/"+strconv.Itoa(id))
	return err
}

// ListTeachers fetches one page of teachers matching the search term.
func (c Client) ListTeachers(ctx context.Context, page int, search string) ([]dto.Teacher, int, error) {
	var result struct {
		Teachers []dto.Teacher `json:"teachers"`
		Total    int           `json:"total"`
	}
	_, err := c.RawGet(ctx, "/api/teacher/"+listQuery(page, search), &result)
	return result.Teachers, result.Total, err
}

// GetTeacher fetches a single teacher by id.
func (c Client) GetTeacher(ctx context.Context, id int) (dto.Teacher, error) {
	var result struct {
		Teacher dto.Teacher `json:"teacher"`
	}
	_, err := c.RawGet(ctx, "/api/teacher/"+strconv.Itoa(id), &result)
	return result.Teacher, err
}

// CreateTeacher adds a new teacher.
func (c Client) CreateTeacher(ctx context.Context, t dto.Teacher) error {
	_, err := c.RawPost(ctx, "/api/teacher/", t, nil)
	return err
}

// UpdateTeacher updates an existing teacher.
func (c Client) UpdateTeacher(ctx context.Context, id int, t dto.Teacher) error {
	_, err := c.RawPut(ctx, "/api/teacher/"+strconv.Itoa(id), t, nil)
	return err
}

// DeleteTeacher deletes a teacher.
func (c Client) DeleteTeacher(ctx context.Context, id int) error {
	_, err := c.RawDelete(ctx, "/api/teacher/"+strconv.Itoa(id))
	return err
}

// ListCourses fetches one page of courses matching the search term.
func (c Client) ListCourses(ctx context.Context, page int, search string) ([]dto.Course, int, error) {
	var result struct {
		Courses []dto.Course `json:"courses"`
		Total   int          `json:"total"`
	}
	_, err := c.RawGet(ctx, "/api/course/"+listQuery(page, search), &result)
	return result.Courses, result.Total, err
}

// GetCourse fetches a single course by id.
func (c Client) GetCourse(ctx context.Context, id int) (dto.Course, error) {
	var result struct {
		Course dto.Course `json:"course"`
	}
	_, err := c.RawGet(ctx, "/api/course/"+strconv.Itoa(id), &result)
	return result.Course, err
}

// CreateCourse adds a new course.
func (c Client) CreateCourse(ctx context.Context, course dto.Course) error {
	_, err := c.RawPost(ctx, "/api/course/", course, nil)
	return err
}

// UpdateCourse updates an existing course.
func (c Client) UpdateCourse(ctx context.Context, id int, course dto.Course) error {
	_, err := c.RawPut(ctx, "/api/course/"+strconv.Itoa(id), course, nil)
	return err
}

// DeleteCourse deletes a course.
func (c Client) DeleteCourse(ctx context.Context, id int) error {
	_, err := c.RawDelete(ctx, "/api/course/"+strconv.Itoa(id))
	return err
}

// ListOfferings fetches one page of course offerings matching the search term.
func (c Client) ListOfferings(ctx context.Context, page int, search string) ([]dto.Offering, int, error) {
	var result struct {
		Offerings []dto.Offering `json:"offerings"`
		Total     int            `json:"total"`
	}
	_, err := c.RawGet(ctx, "/api/offering/"+listQuery(page, search), &result)
	return result.Offerings, result.Total, err
}

// GetOffering fetches a single offering by id.
func (c Client) GetOffering(ctx context.Context, id int) (dto.Offering, error) {
	var result struct {
		Offering dto.Offering `json:"offering"`
	}
	_, err := c.RawGet(ctx, "/api/offering/"+strconv.Itoa(id), &result)
	return result.Offering, err
}

// CreateOffering adds a new offering.
func (c Client) CreateOffering(ctx context.Context, o dto.Offering) error {
	_, err := c.RawPost(ctx, "/api/offering/", o, nil)
	return err
}

// UpdateOffering updates an existing offering.
func (c Client) UpdateOffering(ctx context.Context, id int, o dto.Offering) error {
	_, err := c.RawPut(ctx, "/api/offering/"+strconv.Itoa(id), o, nil)
	return err
}

// DeleteOffering deletes an offering.
func (c Client) DeleteOffering(ctx context.Context, id int) error {
	_, err := c.RawDelete(ctx, "/api/offering/"+strconv.Itoa(id))
	return err
}

// ListClasses fetches the full class reference list.
func (c Client) ListClasses(ctx context.Context) ([]dto.Class, error) {
	var result struct {
		Classes []dto.Class `json:"classes"`
	}
	_, err := c.RawGet(ctx, "/api/student/class", &result)
	return result.Classes, err
}

// GetClass fetches a single class by id.
func (c Client) GetClass(ctx context.Context, id int) (dto.Class, error) {
	var result struct {
		Class dto.Class `json:"class"`
	}
	_, err := c.RawGet(ctx, "/api/student/class/"+strconv.Itoa(id), &result)
	return result.Class, err
}

// CreateClass adds a new class.
func (c Client) CreateClass(ctx context.Context, cl dto.Class) error {
	_, err := c.RawPost(ctx, "/api/student/class", cl, nil)
	return err
}

// UpdateClass updates an existing class.
func (c Client) UpdateClass(ctx context.Context, id int, cl dto.Class) error {
	_, err := c.RawPut(ctx, "/api/student/class/"+strconv.Itoa(id), cl, nil)
	return err
}

// DeleteClass deletes a class.
func (c Client) DeleteClass(ctx context.Context, id int) error {
	_, err := c.RawDelete(ctx, "/api/student/class/"+strconv.Itoa(id))
	return err
}

// ListColleges fetches the full college reference list.
func (c Client) ListColleges(ctx context.Context) ([]dto.College, error) {
	var result struct {
		Colleges []dto.College `json:"colleges"`
	}
	_, err := c.RawGet(ctx, "/api/student/college", &result)
	return result.Colleges, err
}

// GetCollege fetches a single college by id.
func (c Client) GetCollege(ctx context.Context, id int) (dto.College, error) {
	var result struct {
		College dto.College `json:"college"`
	}
	_, err := c.RawGet(ctx, "/api/student/college/"+strconv.Itoa(id), &result)
	return result.College, err
}

// CreateCollege adds a new college.
func (c Client) CreateCollege(ctx context.Context, col dto.College) error {
	_, err := c.RawPost(ctx, "/api/student/college", col, nil)
	return err
}

// UpdateCollege updates an existing college.
func (c Client) UpdateCollege(ctx context.Context, id int, col dto.College) error {
	_, err := c.RawPut(ctx, "/api/student/college/"+strconv.Itoa(id), col, nil)
	return err
}

// DeleteCollege deletes a college.
func (c Client) DeleteCollege(ctx context.Context, id int) error {
	_, err := c.RawDelete(ctx, "/api/student/college/"+strconv.Itoa(id))
	return err
}

// ListTitles fetches the teacher title reference list.
func (c Client) ListTitles(ctx context.Context) ([]dto.Title, error) {
	var result struct {
		Titles []dto.Title `json:"titles"`
	}
	_, err := c.RawGet(ctx, "/api/teacher/title", &result)
	return result.Titles, err
}

// ListCourseTypes fetches the course type reference list.
func (c Client) ListCourseTypes(ctx context.Context) ([]dto.CourseType, error) {
	var result struct {
		CourseTypes []dto.CourseType `json:"course_types"`
	}
	_, err := c.RawGet(ctx, "/api/course/type", &result)
	return result.CourseTypes, err
}

// StudentScores fetches the full score list of one student.
func (c Client) StudentScores(ctx context.Context, studentID int) ([]dto.Score, error) {
	var result struct {
		Scores []dto.Score `json:"scores"`
	}
	_, err := c.RawGet(ctx, "/api/score/"+strconv.Itoa(studentID), &result)
	return result.Scores, err
}

// CreateScore adds a score record.
func (c Client) CreateScore(ctx context.Context, s dto.Score) error {
	_, err := c.RawPost(ctx, "/api/score/", s, nil)
	return err
}

// ScoreUpdate carries the mutable fields of a score record.
type ScoreUpdate struct {
	Score  *float64 `json:"score"`
	Status string   `json:"status"`
}

// UpdateScore updates score and status of a score record.
func (c Client) UpdateScore(ctx context.Context, scID int, u ScoreUpdate) error {
	_, err := c.RawPut(ctx, "/api/score/"+strconv.Itoa(scID), u, nil)
	return err
}

// DeleteScore deletes a score record.
func (c Client) DeleteScore(ctx context.Context, scID int) error {
	_, err := c.RawDelete(ctx, "/api/score/"+strconv.Itoa(scID))
	return err
}
