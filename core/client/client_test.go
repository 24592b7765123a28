// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package client_test

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/dto"
	"github.com/edulab/sims-console/core/simstest"
)

var adminAccount = simstest.Account{UserID: 1, Username: "admin", Password: "admin123", Role: "admin"}

func TestLoginKeepsSessionCookie(t *testing.T) {
	backend := simstest.NewServer(adminAccount)
	api := client.NewWithRouter(backend.Router)
	ctx := context.Background()

	// anonymous requests are rejected by the backend
	_, _, err := api.ListStudents(ctx, 1, "")
	require.Error(t, err)
	apiErr := &client.APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "请先登录", apiErr.Message)

	user, err := api.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin())

	// the cookie from the login response is replayed on subsequent calls,
	// including calls through derived clients
	_, _, err = api.ListStudents(ctx, 1, "")
	assert.NoError(t, err)
	_, _, err = api.WithContext(ctx).ListStudents(ctx, 1, "")
	assert.NoError(t, err)

	status, err := api.CheckAuth(ctx)
	require.NoError(t, err)
	assert.True(t, status.Authenticated)
	require.NotNil(t, status.User)
	assert.Equal(t, "admin", status.User.Username)

	// clearing the session makes the client anonymous again
	api.ClearSession()
	status, err = api.CheckAuth(ctx)
	require.NoError(t, err)
	assert.False(t, status.Authenticated)
}

func TestLoginFailure(t *testing.T) {
	backend := simstest.NewServer(adminAccount)
	api := client.NewWithRouter(backend.Router)

	_, err := api.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	apiErr := &client.APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "用户名或密码错误", apiErr.Message)
}

func TestListQueryReachesBackend(t *testing.T) {
	backend := simstest.NewServer(adminAccount)
	api := client.NewWithRouter(backend.Router)
	ctx := context.Background()
	_, err := api.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	college := backend.AddCollege(dto.College{CollegeName: "计算机学院", CollegeCode: "CS"})
	class := backend.AddClass(dto.Class{ClassName: "计算机2023-1班", ClassCode: "CS2301", CollegeID: college})
	backend.AddStudent(dto.Student{StudentNo: "2023001", Name: "张三", Gender: "男", EnrollmentDate: "2023-09-01", ClassID: class})
	backend.AddStudent(dto.Student{StudentNo: "2023002", Name: "李四", Gender: "女", EnrollmentDate: "2023-09-01", ClassID: class})

	students, total, err := api.ListStudents(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, students, 2)
	// denormalized names come back with the list
	assert.Equal(t, "计算机2023-1班", students[0].ClassName)
	assert.Equal(t, "计算机学院", students[0].CollegeName)

	students, total, err = api.ListStudents(ctx, 1, "李四")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "2023002", students[0].StudentNo)

	// only pagination and search go to the server
	backend.ResetCalls()
	_, _, err = api.ListStudents(ctx, 2, "张")
	require.NoError(t, err)
	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "/api/student/", calls[0].Path)
}

func TestCRUDRoundTrip(t *testing.T) {
	backend := simstest.NewServer(adminAccount)
	api := client.NewWithRouter(backend.Router)
	ctx := context.Background()
	_, err := api.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	college := backend.AddCollege(dto.College{CollegeName: "计算机学院", CollegeCode: "CS"})
	class := backend.AddClass(dto.Class{ClassName: "计算机2023-1班", ClassCode: "CS2301", CollegeID: college})

	err = api.CreateStudent(ctx, dto.Student{
		StudentNo: "2023001", Name: "张三", Gender: "男",
		EnrollmentDate: "2023-09-01", ClassID: class,
		Status: dto.StudentEnrolled,
	})
	require.NoError(t, err)

	students, _, err := api.ListStudents(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, students, 1)
	id := students[0].StudentID

	student, err := api.GetStudent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "张三", student.Name)

	student.Name = "张三丰"
	require.NoError(t, api.UpdateStudent(ctx, id, student))
	student, err = api.GetStudent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "张三丰", student.Name)

	require.NoError(t, api.DeleteStudent(ctx, id))
	_, _, err = api.ListStudents(ctx, 1, "")
	require.NoError(t, err)
	_, err = api.GetStudent(ctx, id)
	require.Error(t, err)
}

func TestCookieJarConcurrentUse(t *testing.T) {
	// module activation fires several loads at once through the shared
	// client while the backend refreshes the session cookie on every
	// response; the jar must tolerate that (run with -race)
	var serial int64
	var mu sync.Mutex
	router := mux.NewRouter()
	router.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		serial++
		value := strconv.FormatInt(serial, 10)
		mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "sims_session", Value: value, Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	})

	api := client.NewWithRouter(router)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := api.RawGet(ctx, "/refresh", nil)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// the jar ends up with the cookie from some response, and a later
	// request still carries exactly one copy of it
	var got *http.Cookie
	router.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		cookies := r.Cookies()
		require.Len(t, cookies, 1)
		got = cookies[0]
		_, _ = w.Write([]byte("{}"))
	})
	_, err := api.RawGet(ctx, "/echo", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sims_session", got.Name)
}

func TestUserMessage(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"permission denied", &client.APIError{StatusCode: 403, Message: "无权限访问"}, "权限不足，无法执行此操作"},
		{"server message", &client.APIError{StatusCode: 400, Message: "字段 name 不能为空"}, "字段 name 不能为空"},
		{"empty message", &client.APIError{StatusCode: 500}, "出错了"},
		{"transport error", context.DeadlineExceeded, "出错了"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, client.UserMessage(tc.err, "出错了"))
		})
	}
}

func TestIsPermissionDenied(t *testing.T) {
	assert.True(t, client.IsPermissionDenied(&client.APIError{StatusCode: 403}))
	assert.False(t, client.IsPermissionDenied(&client.APIError{StatusCode: 401}))
	assert.False(t, client.IsPermissionDenied(context.Canceled))
}
