// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

// Package console assembles the application state: the session gateway, one
// entity store per backend collection, the reference stores feeding form
// pickers, the score board and the module router.
package console

import (
	"context"
	"sync"
	"time"

	"github.com/edulab/sims-console/core/alert"
	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/dto"
	"github.com/edulab/sims-console/core/score"
	"github.com/edulab/sims-console/core/session"
	"github.com/edulab/sims-console/core/store"
)

// Module is a named console mode.
type Module string

// The console's modules.
const (
	ModuleStudent  Module = "student"
	ModuleTeacher  Module = "teacher"
	ModuleCourse   Module = "course"
	ModuleOffering Module = "offering"
	ModuleScore    Module = "score"
	ModuleClass    Module = "class"
)

// App is the root application state object. It is constructed once at
// startup and lives for the whole session.
type App struct {
	api    client.Client
	alerts alert.Sink

	Session *session.Gateway

	Students  *store.Store[dto.Student]
	Teachers  *store.Store[dto.Teacher]
	Courses   *store.Store[dto.Course]
	Offerings *store.Store[dto.Offering]
	Classes   *store.Store[dto.Class]
	Colleges  *store.Store[dto.College]

	ClassRef    *store.RefStore[dto.Class]
	CollegeRef  *store.RefStore[dto.College]
	Titles      *store.RefStore[dto.Title]
	CourseTypes *store.RefStore[dto.CourseType]

	Scores *score.Board

	mu     sync.Mutex
	active Module
}

// New wires the application state against the given backend client.
func New(api client.Client, alerts alert.Sink) *App {
	if alerts == nil {
		alerts = alert.Log()
	}
	a := &App{api: api, alerts: alerts, active: ModuleStudent}
	a.Session = session.NewGateway(api, alerts)

	a.Students = store.New(store.Config[dto.Student]{
		Name:   "student",
		Label:  "学生",
		List:   api.ListStudents,
		Get:    api.GetStudent,
		Create: api.CreateStudent,
		Update: api.UpdateStudent,
		Delete: api.DeleteStudent,
		Defaults: func() dto.Student {
			return dto.Student{
				Gender:         "男",
				Status:         dto.StudentEnrolled,
				BirthDate:      dto.Today(),
				EnrollmentDate: dto.Today(),
			}
		},
		NormalizeDates: func(s *dto.Student) {
			s.BirthDate = dto.NormalizeDate(s.BirthDate)
			s.EnrollmentDate = dto.NormalizeDate(s.EnrollmentDate)
		},
		Gate: a.Session.RequireAdmin,
	}, alerts)

	a.Teachers = store.New(store.Config[dto.Teacher]{
		Name:   "teacher",
		Label:  "教师",
		List:   api.ListTeachers,
		Get:    api.GetTeacher,
		Create: api.CreateTeacher,
		Update: api.UpdateTeacher,
		Delete: api.DeleteTeacher,
		Defaults: func() dto.Teacher {
			return dto.Teacher{Gender: "男", BirthDate: dto.Today()}
		},
		NormalizeDates: func(t *dto.Teacher) {
			t.BirthDate = dto.NormalizeDate(t.BirthDate)
		},
		Gate: a.Session.RequireAdmin,
	}, alerts)

	a.Courses = store.New(store.Config[dto.Course]{
		Name:   "course",
		Label:  "课程",
		List:   api.ListCourses,
		Get:    api.GetCourse,
		Create: api.CreateCourse,
		Update: api.UpdateCourse,
		Delete: api.DeleteCourse,
	}, alerts)

	a.Offerings = store.New(store.Config[dto.Offering]{
		Name:   "offering",
		Label:  "授课安排",
		List:   api.ListOfferings,
		Get:    api.GetOffering,
		Create: api.CreateOffering,
		Update: api.UpdateOffering,
		Delete: api.DeleteOffering,
		Defaults: func() dto.Offering {
			return dto.Offering{Semester: dto.SemesterSpring, Year: time.Now().Year()}
		},
	}, alerts)

	// class and college lists are not paginated by the backend; the store
	// reports the list length as the total
	a.Classes = store.New(store.Config[dto.Class]{
		Name:  "class",
		Label: "班级",
		List: func(ctx context.Context, page int, search string) ([]dto.Class, int, error) {
			classes, err := api.ListClasses(ctx)
			return classes, len(classes), err
		},
		Get:    api.GetClass,
		Create: api.CreateClass,
		Update: api.UpdateClass,
		Delete: api.DeleteClass,
	}, alerts)

	a.Colleges = store.New(store.Config[dto.College]{
		Name:  "college",
		Label: "学院",
		List: func(ctx context.Context, page int, search string) ([]dto.College, int, error) {
			colleges, err := api.ListColleges(ctx)
			return colleges, len(colleges), err
		},
		Get:    api.GetCollege,
		Create: api.CreateCollege,
		Update: api.UpdateCollege,
		Delete: api.DeleteCollege,
	}, alerts)

	a.ClassRef = store.NewRef(store.RefConfig[dto.Class]{
		Name:  "class",
		Label: "班级",
		List:  api.ListClasses,
		Fields: func(c dto.Class) []string {
			return []string{c.ClassName, c.ClassCode}
		},
	}, alerts)

	a.CollegeRef = store.NewRef(store.RefConfig[dto.College]{
		Name:  "college",
		Label: "学院",
		List:  api.ListColleges,
		Fields: func(c dto.College) []string {
			return []string{c.CollegeName, c.CollegeCode}
		},
	}, alerts)

	a.Titles = store.NewRef(store.RefConfig[dto.Title]{
		Name:  "title",
		Label: "职称",
		List:  api.ListTitles,
		Fields: func(t dto.Title) []string {
			return []string{t.TitleName, t.TitleCode}
		},
	}, alerts)

	a.CourseTypes = store.NewRef(store.RefConfig[dto.CourseType]{
		Name:  "course type",
		Label: "课程类型",
		List:  api.ListCourseTypes,
		Fields: func(t dto.CourseType) []string {
			return []string{t.TypeName, t.TypeCode}
		},
	}, alerts)

	a.Scores = score.NewBoard(api, alerts)

	// the initial load after login, so the default module is usable right away
	a.Session.SetLoginHook(func(ctx context.Context) {
		a.fanOut(ctx,
			func(ctx context.Context) { _ = a.Students.Load(ctx) },
			func(ctx context.Context) { _ = a.ClassRef.Load(ctx) },
			func(ctx context.Context) { _ = a.CollegeRef.Load(ctx) },
		)
	})

	return a
}

// ActiveModule returns the currently active module.
func (a *App) ActiveModule() Module {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Activate switches to the given module and fires the loads its views need.
// Activation is idempotent; in-flight loads from the previous module are not
// cancelled, a late response still lands in its own store.
func (a *App) Activate(ctx context.Context, m Module) {
	a.mu.Lock()
	a.active = m
	a.mu.Unlock()

	switch m {
	case ModuleStudent:
		a.fanOut(ctx,
			func(ctx context.Context) { _ = a.Students.Load(ctx) },
			func(ctx context.Context) { _ = a.ClassRef.Load(ctx) },
		)
	case ModuleTeacher:
		a.fanOut(ctx,
			func(ctx context.Context) { _ = a.Teachers.Load(ctx) },
			func(ctx context.Context) { _ = a.Titles.Load(ctx) },
			func(ctx context.Context) { _ = a.CollegeRef.Load(ctx) },
		)
	case ModuleCourse:
		a.fanOut(ctx,
			func(ctx context.Context) { _ = a.Courses.Load(ctx) },
			func(ctx context.Context) { _ = a.CourseTypes.Load(ctx) },
			func(ctx context.Context) { _ = a.CollegeRef.Load(ctx) },
		)
	case ModuleOffering:
		a.fanOut(ctx,
			func(ctx context.Context) { _ = a.Offerings.Load(ctx) },
			func(ctx context.Context) { _ = a.Courses.Load(ctx) },
			func(ctx context.Context) { _ = a.Teachers.Load(ctx) },
		)
	case ModuleClass:
		a.fanOut(ctx,
			func(ctx context.Context) { _ = a.Classes.Load(ctx) },
			func(ctx context.Context) { _ = a.CollegeRef.Load(ctx) },
		)
	case ModuleScore:
		// nothing to load until a student is selected
	}
}

// fanOut runs the loads concurrently and returns when all have landed.
// Stores never share mutable fields, so completion order does not matter.
func (a *App) fanOut(ctx context.Context, loads ...func(ctx context.Context)) {
	var wg sync.WaitGroup
	for _, load := range loads {
		wg.Add(1)
		go func(load func(ctx context.Context)) {
			defer wg.Done()
			load(ctx)
		}(load)
	}
	wg.Wait()
}
