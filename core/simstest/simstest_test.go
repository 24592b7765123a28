// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package simstest

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulab/sims-console/core/dto"
)

func do(t *testing.T, s *Server, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, r)
	return rec
}

func login(t *testing.T, s *Server, username, password string) []*http.Cookie {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error
}

var testAccounts = []Account{
	{UserID: 1, Username: "admin", Password: "admin123", Role: "admin"},
	{UserID: 2, Username: "teacher1", Password: "teacher123", Role: "teacher"},
}

func TestLoginValidation(t *testing.T) {
	s := NewServer(testAccounts...)

	rec := do(t, s, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "用户名和密码不能为空", errorMessage(t, rec))

	rec = do(t, s, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "用户名或密码错误", errorMessage(t, rec))
}

func TestSessionCookieGates(t *testing.T) {
	s := NewServer(testAccounts...)

	// anonymous
	rec := do(t, s, http.MethodGet, "/api/student/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "请先登录", errorMessage(t, rec))

	// a tampered cookie does not pass signature verification
	forged := []*http.Cookie{{Name: sessionCookie, Value: "not-a-token"}}
	rec = do(t, s, http.MethodGet, "/api/student/", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookies := login(t, s, "admin", "admin123")
	rec = do(t, s, http.MethodGet, "/api/student/", nil, cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGates(t *testing.T) {
	s := NewServer(testAccounts...)
	teacher := login(t, s, "teacher1", "teacher123")

	student := dto.Student{
		StudentNo: "2023001", Name: "张三", Gender: "男",
		EnrollmentDate: "2023-09-01", ClassID: 1, Status: dto.StudentEnrolled,
	}
	rec := do(t, s, http.MethodPost, "/api/student/", student, teacher)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "无权限访问", errorMessage(t, rec))

	// admins pass the same gate
	admin := login(t, s, "admin", "admin123")
	rec = do(t, s, http.MethodPost, "/api/student/", student, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSchemaValidation(t *testing.T) {
	s := NewServer(testAccounts...)
	admin := login(t, s, "admin", "admin123")

	// gender outside the enum
	rec := do(t, s, http.MethodPost, "/api/student/", map[string]interface{}{
		"student_no": "2023001", "name": "张三", "gender": "其他",
		"enrollment_date": "2023-09-01", "class_id": 1,
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "参数校验失败")

	// missing required field
	rec = do(t, s, http.MethodPost, "/api/student/", map[string]interface{}{
		"student_no": "2023001", "gender": "男",
		"enrollment_date": "2023-09-01", "class_id": 1,
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreRules(t *testing.T) {
	s := NewServer(testAccounts...)
	teacher := login(t, s, "teacher1", "teacher123")

	// completed needs a score value
	rec := do(t, s, http.MethodPost, "/api/score/", map[string]interface{}{
		"student_id": 1, "offering_id": 1, "status": "已修完",
	}, teacher)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "已修完状态必须填写成绩", errorMessage(t, rec))

	// range is enforced by the schema
	rec = do(t, s, http.MethodPost, "/api/score/", map[string]interface{}{
		"student_id": 1, "offering_id": 1, "score": 120, "status": "已修完",
	}, teacher)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/score/", map[string]interface{}{
		"student_id": 1, "offering_id": 1, "score": 88.5, "status": "已修完",
	}, teacher)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPagination(t *testing.T) {
	s := NewServer(testAccounts...)
	admin := login(t, s, "admin", "admin123")

	college := s.AddCollege(dto.College{CollegeName: "计算机学院", CollegeCode: "CS"})
	class := s.AddClass(dto.Class{ClassName: "计算机2023-1班", ClassCode: "CS2301", CollegeID: college})
	for i := 0; i < 23; i++ {
		s.AddStudent(dto.Student{
			StudentNo: "20230" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			Name:      "学生", Gender: "男", EnrollmentDate: "2023-09-01", ClassID: class,
		})
	}

	var page struct {
		Students []dto.Student `json:"students"`
		Total    int           `json:"total"`
		Page     int           `json:"page"`
	}

	rec := do(t, s, http.MethodGet, "/api/student/?page=1", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Students, 10)
	assert.Equal(t, 23, page.Total)
	assert.Equal(t, 1, page.Page)

	rec = do(t, s, http.MethodGet, "/api/student/?page=3", nil, admin)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Students, 3)

	rec = do(t, s, http.MethodGet, "/api/student/?page=9", nil, admin)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Students)
	assert.Equal(t, 23, page.Total)
}

func TestCallRecording(t *testing.T) {
	s := NewServer(testAccounts...)
	admin := login(t, s, "admin", "admin123")

	s.ResetCalls()
	do(t, s, http.MethodGet, "/api/student/", nil, admin)
	do(t, s, http.MethodGet, "/api/student/class", nil, admin)

	calls := s.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, Call{Method: http.MethodGet, Path: "/api/student/"}, calls[0])
	assert.Equal(t, Call{Method: http.MethodGet, Path: "/api/student/class"}, calls[1])
}
