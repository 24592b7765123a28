// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package simstest

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/edulab/sims-console/core/dto"
)

var (
	adminOnly      = []string{"admin"}
	teacherOrAdmin = []string{"admin", "teacher"}
)

func (s *Server) routes(router *mux.Router) {
	router.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", s.handleLogout).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/check_auth", s.handleCheckAuth).Methods(http.MethodGet)

	// reference lists are registered before the {id} routes so that
	// /api/student/class does not match the student id pattern
	router.HandleFunc("/api/student/class", s.loginRequired(s.handleListClasses)).Methods(http.MethodGet)
	router.HandleFunc("/api/student/class", s.loginRequired(s.handleCreateClass)).Methods(http.MethodPost)
	router.HandleFunc("/api/student/class/{id:[0-9]+}", s.loginRequired(s.handleGetClass)).Methods(http.MethodGet)
	router.HandleFunc("/api/student/class/{id:[0-9]+}", s.loginRequired(s.handleUpdateClass)).Methods(http.MethodPut)
	router.HandleFunc("/api/student/class/{id:[0-9]+}", s.loginRequired(s.handleDeleteClass)).Methods(http.MethodDelete)
	router.HandleFunc("/api/student/college", s.loginRequired(s.handleListColleges)).Methods(http.MethodGet)
	router.HandleFunc("/api/student/college", s.loginRequired(s.handleCreateCollege)).Methods(http.MethodPost)
	router.HandleFunc("/api/student/college/{id:[0-9]+}", s.loginRequired(s.handleGetCollege)).Methods(http.MethodGet)
	router.HandleFunc("/api/student/college/{id:[0-9]+}", s.loginRequired(s.handleUpdateCollege)).Methods(http.MethodPut)
	router.HandleFunc("/api/student/college/{id:[0-9]+}", s.loginRequired(s.handleDeleteCollege)).Methods(http.MethodDelete)

	router.HandleFunc("/api/student/", s.loginRequired(s.handleListStudents)).Methods(http.MethodGet)
	router.HandleFunc("/api/student/", s.roleRequired(adminOnly, s.handleCreateStudent)).Methods(http.MethodPost)
	router.HandleFunc("/api/student/{id:[0-9]+}", s.loginRequired(s.handleGetStudent)).Methods(http.MethodGet)
	router.HandleFunc("/api/student/{id:[0-9]+}", s.roleRequired(adminOnly, s.handleUpdateStudent)).Methods(http.MethodPut)
	router.HandleFunc("/api/student/{id:[0-9]+}", s.roleRequired(adminOnly, s.handleDeleteStudent)).Methods(http.MethodDelete)

	router.HandleFunc("/api/teacher/title", s.loginRequired(s.handleListTitles)).Methods(http.MethodGet)
	router.HandleFunc("/api/teacher/", s.loginRequired(s.handleListTeachers)).Methods(http.MethodGet)
	router.HandleFunc("/api/teacher/", s.roleRequired(adminOnly, s.handleCreateTeacher)).Methods(http.MethodPost)
	router.HandleFunc("/api/teacher/{id:[0-9]+}", s.loginRequired(s.handleGetTeacher)).Methods(http.MethodGet)
	router.HandleFunc("/api/teacher/{id:[0-9]+}", s.roleRequired(adminOnly, s.handleUpdateTeacher)).Methods(http.MethodPut)
	router.HandleFunc("/api/teacher/{id:[0-9]+}", s.roleRequired(adminOnly, s.handleDeleteTeacher)).Methods(http.MethodDelete)

	router.HandleFunc("/api/course/type", s.loginRequired(s.handleListCourseTypes)).Methods(http.MethodGet)
	router.HandleFunc("/api/course/", s.loginRequired(s.handleListCourses)).Methods(http.MethodGet)
	router.HandleFunc("/api/course/", s.loginRequired(s.handleCreateCourse)).Methods(http.MethodPost)
	router.HandleFunc("/api/course/{id:[0-9]+}", s.loginRequired(s.handleGetCourse)).Methods(http.MethodGet)
	router.HandleFunc("/api/course/{id:[0-9]+}", s.loginRequired(s.handleUpdateCourse)).Methods(http.MethodPut)
	router.HandleFunc("/api/course/{id:[0-9]+}", s.loginRequired(s.handleDeleteCourse)).Methods(http.MethodDelete)

	router.HandleFunc("/api/offering/", s.loginRequired(s.handleListOfferings)).Methods(http.MethodGet)
	router.HandleFunc("/api/offering/", s.loginRequired(s.handleCreateOffering)).Methods(http.MethodPost)
	router.HandleFunc("/api/offering/{id:[0-9]+}", s.loginRequired(s.handleGetOffering)).Methods(http.MethodGet)
	router.HandleFunc("/api/offering/{id:[0-9]+}", s.loginRequired(s.handleUpdateOffering)).Methods(http.MethodPut)
	router.HandleFunc("/api/offering/{id:[0-9]+}", s.loginRequired(s.handleDeleteOffering)).Methods(http.MethodDelete)

	router.HandleFunc("/api/score/{student_id:[0-9]+}", s.loginRequired(s.handleStudentScores)).Methods(http.MethodGet)
	router.HandleFunc("/api/score/", s.roleRequired(teacherOrAdmin, s.handleCreateScore)).Methods(http.MethodPost)
	router.HandleFunc("/api/score/{sc_id:[0-9]+}", s.roleRequired(teacherOrAdmin, s.handleUpdateScore)).Methods(http.MethodPut)
	router.HandleFunc("/api/score/{sc_id:[0-9]+}", s.roleRequired(teacherOrAdmin, s.handleDeleteScore)).Methods(http.MethodDelete)
}

func pathID(r *http.Request, name string) int {
	id, _ := strconv.Atoi(mux.Vars(r)[name])
	return id
}

func listParams(r *http.Request) (page int, search string) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return page, r.URL.Query().Get("search")
}

// paginate slices one page out of the matching items, like the backend's
// LIMIT offset, perPage.
func paginate[T any](items []T, page int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// ---- students

// AddStudent seeds a student and returns its id.
func (s *Server) AddStudent(st dto.Student) int {
	id := s.allocID()
	st.StudentID = id
	s.mu.Lock()
	if class, ok := s.classes[st.ClassID]; ok {
		st.ClassName = class.ClassName
		if college, ok := s.colleges[class.CollegeID]; ok {
			st.CollegeName = college.CollegeName
		}
	}
	if st.Status == "" {
		st.Status = dto.StudentEnrolled
	}
	s.students[id] = st
	s.mu.Unlock()
	return id
}

func (s *Server) studentList() []dto.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]dto.Student, 0, len(s.students))
	for _, st := range s.students {
		list = append(list, st)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StudentID < list[j].StudentID })
	return list
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	page, search := listParams(r)
	var filtered []dto.Student
	for _, st := range s.studentList() {
		if matches(search, st.Name, st.StudentNo) {
			filtered = append(filtered, st)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": paginate(filtered, page),
		"total":    len(filtered),
		"page":     page,
	})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	st, ok := s.students[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "学生不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]dto.Student{"student": st})
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	body, _ := io.ReadAll(r.Body)
	if message, ok := validateBody(s.studentSchema, body); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}
	var st dto.Student
	if err := unmarshalBody(body, &st); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	s.AddStudent(st)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "学生添加成功"})
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	body, _ := io.ReadAll(r.Body)
	if message, ok := validateBody(s.studentSchema, body); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}
	var st dto.Student
	if err := unmarshalBody(body, &st); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	s.mu.Lock()
	_, ok := s.students[id]
	if ok {
		st.StudentID = id
		s.students[id] = st
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "学生不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "学生信息更新成功"})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	s.mu.Lock()
	_, ok := s.students[id]
	delete(s.students, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "学生不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "学生删除成功"})
}

// ---- teachers

// AddTeacher seeds a teacher and returns its id.
func (s *Server) AddTeacher(t dto.Teacher) int {
	id := s.allocID()
	t.TeacherID = id
	s.mu.Lock()
	if college, ok := s.colleges[t.CollegeID]; ok {
		t.CollegeName = college.CollegeName
	}
	s.teachers[id] = t
	s.mu.Unlock()
	return id
}

func (s *Server) teacherList() []dto.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]dto.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TeacherID < list[j].TeacherID })
	return list
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	page, search := listParams(r)
	var filtered []dto.Teacher
	for _, t := range s.teacherList() {
		if matches(search, t.Name, t.TeacherNo) {
			filtered = append(filtered, t)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teachers": paginate(filtered, page),
		"total":    len(filtered),
		"page":     page,
	})
}

func (s *Server) handleGetTeacher(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	t, ok := s.teachers[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "教师不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]dto.Teacher{"teacher": t})
}

func (s *Server) handleCreateTeacher(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	var t dto.Teacher
	if err := readJSON(r, &t); err != nil || t.TeacherNo == "" || t.Name == "" {
		writeError(w, http.StatusBadRequest, "字段 teacher_no 不能为空")
		return
	}
	s.AddTeacher(t)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "教师添加成功"})
}

func (s *Server) handleUpdateTeacher(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	var t dto.Teacher
	if err := readJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	s.mu.Lock()
	_, ok := s.teachers[id]
	if ok {
		t.TeacherID = id
		s.teachers[id] = t
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "教师不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "教师信息更新成功"})
}

func (s *Server) handleDeleteTeacher(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	s.mu.Lock()
	_, ok := s.teachers[id]
	delete(s.teachers, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "教师不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "教师删除成功"})
}

// ---- courses

// AddCourse seeds a course and returns its id.
func (s *Server) AddCourse(c dto.Course) int {
	id := s.allocID()
	c.CourseID = id
	s.mu.Lock()
	s.courses[id] = c
	s.mu.Unlock()
	return id
}

func (s *Server) courseList() []dto.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]dto.Course, 0, len(s.courses))
	for _, c := range s.courses {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CourseID < list[j].CourseID })
	return list
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	page, search := listParams(r)
	var filtered []dto.Course
	for _, c := range s.courseList() {
		if matches(search, c.CourseName, c.CourseCode) {
			filtered = append(filtered, c)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": paginate(filtered, page),
		"total":   len(filtered),
		"page":    page,
	})
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	c, ok := s.courses[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "课程不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]dto.Course{"course": c})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	var c dto.Course
	if err := readJSON(r, &c); err != nil || c.CourseCode == "" || c.CourseName == "" {
		writeError(w, http.StatusBadRequest, "字段 course_code 不能为空")
		return
	}
	s.AddCourse(c)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "课程添加成功"})
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	var c dto.Course
	if err := readJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	s.mu.Lock()
	_, ok := s.courses[id]
	if ok {
		c.CourseID = id
		s.courses[id] = c
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "课程不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "课程信息更新成功"})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	s.mu.Lock()
	_, ok := s.courses[id]
	delete(s.courses, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "课程不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "课程删除成功"})
}

// ---- offerings

// AddOffering seeds an offering and returns its id. Course and teacher
// names are denormalized on read, like the backend's JOIN.
func (s *Server) AddOffering(o dto.Offering) int {
	id := s.allocID()
	o.OfferingID = id
	s.mu.Lock()
	if c, ok := s.courses[o.CourseID]; ok {
		o.CourseName = c.CourseName
		o.CourseCode = c.CourseCode
	}
	if t, ok := s.teachers[o.TeacherID]; ok {
		o.TeacherName = t.Name
	}
	s.offerings[id] = o
	s.mu.Unlock()
	return id
}

func (s *Server) offeringList() []dto.Offering {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]dto.Offering, 0, len(s.offerings))
	for _, o := range s.offerings {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OfferingID < list[j].OfferingID })
	return list
}

func (s *Server) handleListOfferings(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	page, search := listParams(r)
	var filtered []dto.Offering
	for _, o := range s.offeringList() {
		if matches(search, o.CourseName, o.TeacherName) {
			filtered = append(filtered, o)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"offerings": paginate(filtered, page),
		"total":     len(filtered),
		"page":      page,
	})
}

func (s *Server) handleGetOffering(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	o, ok := s.offerings[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "授课安排不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]dto.Offering{"offering": o})
}

func (s *Server) handleCreateOffering(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	var o dto.Offering
	if err := readJSON(r, &o); err != nil || o.CourseID == 0 || o.TeacherID == 0 {
		writeError(w, http.StatusBadRequest, "字段 course_id 不能为空")
		return
	}
	s.AddOffering(o)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "授课安排添加成功"})
}

func (s *Server) handleUpdateOffering(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	var o dto.Offering
	if err := readJSON(r, &o); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	s.mu.Lock()
	_, ok := s.offerings[id]
	if ok {
		o.OfferingID = id
		s.offerings[id] = o
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "授课安排不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "授课安排更新成功"})
}

func (s *Server) handleDeleteOffering(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	s.mu.Lock()
	_, ok := s.offerings[id]
	delete(s.offerings, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "授课安排不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "授课安排删除成功"})
}

// ---- classes and colleges

// AddClass seeds a class and returns its id.
func (s *Server) AddClass(c dto.Class) int {
	id := s.allocID()
	c.ClassID = id
	s.mu.Lock()
	if college, ok := s.colleges[c.CollegeID]; ok {
		c.CollegeName = college.CollegeName
	}
	s.classes[id] = c
	s.mu.Unlock()
	return id
}

// AddCollege seeds a college and returns its id.
func (s *Server) AddCollege(c dto.College) int {
	id := s.allocID()
	c.CollegeID = id
	s.mu.Lock()
	s.colleges[id] = c
	s.mu.Unlock()
	return id
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	list := make([]dto.Class, 0, len(s.classes))
	for _, c := range s.classes {
		list = append(list, c)
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ClassID < list[j].ClassID })
	writeJSON(w, http.StatusOK, map[string][]dto.Class{"classes": list})
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	c, ok := s.classes[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "班级不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]dto.Class{"class": c})
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	var c dto.Class
	if err := readJSON(r, &c); err != nil || c.ClassName == "" || c.ClassCode == "" {
		writeError(w, http.StatusBadRequest, "字段 class_name 不能为空")
		return
	}
	s.AddClass(c)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "班级添加成功"})
}

func (s *Server) handleUpdateClass(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	var c dto.Class
	if err := readJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	s.mu.Lock()
	_, ok := s.classes[id]
	if ok {
		c.ClassID = id
		s.classes[id] = c
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "班级不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "班级更新成功"})
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	s.mu.Lock()
	_, ok := s.classes[id]
	delete(s.classes, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "班级不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "班级删除成功"})
}

func (s *Server) handleListColleges(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	list := make([]dto.College, 0, len(s.colleges))
	for _, c := range s.colleges {
		list = append(list, c)
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CollegeID < list[j].CollegeID })
	writeJSON(w, http.StatusOK, map[string][]dto.College{"colleges": list})
}

func (s *Server) handleGetCollege(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	c, ok := s.colleges[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "学院不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]dto.College{"college": c})
}

func (s *Server) handleCreateCollege(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	var c dto.College
	if err := readJSON(r, &c); err != nil || c.CollegeName == "" || c.CollegeCode == "" {
		writeError(w, http.StatusBadRequest, "字段 college_name 不能为空")
		return
	}
	s.AddCollege(c)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "学院添加成功"})
}

func (s *Server) handleUpdateCollege(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	var c dto.College
	if err := readJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	s.mu.Lock()
	_, ok := s.colleges[id]
	if ok {
		c.CollegeID = id
		s.colleges[id] = c
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "学院不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "学院更新成功"})
}

func (s *Server) handleDeleteCollege(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "id")
	s.mu.Lock()
	_, ok := s.colleges[id]
	delete(s.colleges, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "学院不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "学院删除成功"})
}

// ---- titles and course types

// SetTitles seeds the title reference list.
func (s *Server) SetTitles(titles []dto.Title) {
	s.mu.Lock()
	s.titles = titles
	s.mu.Unlock()
}

// SetCourseTypes seeds the course type reference list.
func (s *Server) SetCourseTypes(types []dto.CourseType) {
	s.mu.Lock()
	s.types = types
	s.mu.Unlock()
}

func (s *Server) handleListTitles(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	titles := s.titles
	s.mu.Unlock()
	if titles == nil {
		titles = []dto.Title{}
	}
	writeJSON(w, http.StatusOK, map[string][]dto.Title{"titles": titles})
}

func (s *Server) handleListCourseTypes(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	s.mu.Lock()
	types := s.types
	s.mu.Unlock()
	if types == nil {
		types = []dto.CourseType{}
	}
	writeJSON(w, http.StatusOK, map[string][]dto.CourseType{"course_types": types})
}

// ---- scores

// AddScore seeds a score record and returns its id. Course, teacher and
// offering details are denormalized on read, like the backend's JOIN.
func (s *Server) AddScore(sc dto.Score) int {
	id := s.allocID()
	sc.ScID = id
	s.mu.Lock()
	if o, ok := s.offerings[sc.OfferingID]; ok {
		sc.Semester = o.Semester
		sc.Year = o.Year
		sc.TeacherName = o.TeacherName
		if c, ok := s.courses[o.CourseID]; ok {
			sc.CourseName = c.CourseName
			sc.Credit = c.Credit
		}
	}
	s.scores[id] = sc
	s.mu.Unlock()
	return id
}

func (s *Server) handleStudentScores(w http.ResponseWriter, r *http.Request, claims *sessionClaims) {
	studentID := pathID(r, "student_id")
	if claims.Role == "student" && claims.RelatedID != studentID {
		writeError(w, http.StatusForbidden, "无权限查看其他学生成绩")
		return
	}

	s.mu.Lock()
	list := make([]dto.Score, 0)
	for _, sc := range s.scores {
		if sc.StudentID == studentID {
			list = append(list, sc)
		}
	}
	s.mu.Unlock()
	// newest term first, like the backend's ORDER BY year DESC
	sort.Slice(list, func(i, j int) bool {
		if list[i].Year != list[j].Year {
			return list[i].Year > list[j].Year
		}
		return list[i].ScID < list[j].ScID
	})
	writeJSON(w, http.StatusOK, map[string][]dto.Score{"scores": list})
}

func (s *Server) handleCreateScore(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	body, _ := io.ReadAll(r.Body)
	if message, ok := validateBody(s.scoreSchema, body); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}
	var sc dto.Score
	if err := unmarshalBody(body, &sc); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	if sc.Status == dto.ScoreCompleted && sc.Score == nil {
		writeError(w, http.StatusBadRequest, "已修完状态必须填写成绩")
		return
	}
	if sc.Status != dto.ScoreCompleted {
		sc.Score = nil
	}
	s.AddScore(sc)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "成绩添加成功"})
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "sc_id")
	var update struct {
		Score  *float64 `json:"score"`
		Status string   `json:"status"`
	}
	if err := readJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求数据")
		return
	}
	if update.Score != nil && (*update.Score < 0 || *update.Score > 100) {
		writeError(w, http.StatusBadRequest, "成绩必须在0-100之间")
		return
	}
	if update.Status == dto.ScoreCompleted && update.Score == nil {
		writeError(w, http.StatusBadRequest, "已修完状态必须填写成绩")
		return
	}

	s.mu.Lock()
	sc, ok := s.scores[id]
	if ok {
		sc.Score = update.Score
		if update.Status != "" {
			sc.Status = update.Status
		}
		s.scores[id] = sc
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "成绩记录不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "成绩更新成功"})
}

func (s *Server) handleDeleteScore(w http.ResponseWriter, r *http.Request, _ *sessionClaims) {
	id := pathID(r, "sc_id")
	s.mu.Lock()
	_, ok := s.scores[id]
	delete(s.scores, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "成绩记录不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "成绩记录删除成功"})
}
