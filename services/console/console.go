// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

// The console service runs the admin console against a SIMS backend. With no
// backend configured it starts the embedded in-memory backend with demo data,
// which is handy for local development of the rendering layer.
package main

import (
	"context"
	"net/http"

	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/edulab/sims-console/core/alert"
	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/console"
	"github.com/edulab/sims-console/core/dto"
	"github.com/edulab/sims-console/core/logger"
	"github.com/edulab/sims-console/core/simstest"
)

// Service holds the configuration for this service
//
// use SIMS_BACKEND="http://localhost:5000" to run against a real backend
type Service struct {
	Backend  string `env:"SIMS_BACKEND,default=" description:"base URL of the backend; empty starts the embedded demo backend"`
	Port     string `env:"PORT,default=3000" description:"port the embedded demo backend listens on"`
	Username string `env:"SIMS_USERNAME,default=admin" description:"login user"`
	Password string `env:"SIMS_PASSWORD,default=admin123" description:"login password"`
}

func main() {
	logger.InitLogger(logrus.InfoLevel)
	rlog := logger.Default()

	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	var api client.Client
	var demo *simstest.Server
	if service.Backend == "" {
		demo = demoBackend()
		api = client.NewWithRouter(demo.Router)
		rlog.Infoln("using embedded demo backend")
	} else {
		api = client.NewWithURL(service.Backend)
		rlog.Infof("using backend at %s", service.Backend)
	}

	app := console.New(api, alert.Func(func(message string) {
		rlog.Warnln(message)
	}))

	ctx := context.Background()
	app.Session.CheckSession(ctx)
	if !app.Session.IsAuthenticated() {
		if err := app.Session.Login(ctx, service.Username, service.Password); err != nil {
			rlog.WithError(err).Fatalln("login failed")
		}
	}
	user, _ := app.Session.User()
	rlog.Infof("logged in as %s (%s)", user.Username, user.Role)

	app.Activate(ctx, console.ModuleStudent)
	rlog.Infof("loaded %d of %d students", len(app.Students.Items()), app.Students.Total())

	if demo != nil {
		rlog.Infof("demo backend listening on port :%s", service.Port)
		if err := http.ListenAndServe(":"+service.Port, demo.Handler()); err != nil {
			rlog.WithError(err).Fatalln("server stopped")
		}
	}
}

// demoBackend seeds an in-memory backend with a small but complete data set.
func demoBackend() *simstest.Server {
	s := simstest.NewServer(
		simstest.Account{UserID: 1, Username: "admin", Password: "admin123", Role: "admin"},
		simstest.Account{UserID: 2, Username: "teacher1", Password: "teacher123", Role: "teacher", RelatedID: 1},
	)

	cs := s.AddCollege(dto.College{CollegeName: "计算机学院", CollegeCode: "CS"})
	math := s.AddCollege(dto.College{CollegeName: "数学学院", CollegeCode: "MATH"})
	class1 := s.AddClass(dto.Class{ClassName: "计算机2023-1班", ClassCode: "CS2301", CollegeID: cs, AdmissionYear: 2023})
	class2 := s.AddClass(dto.Class{ClassName: "数学2023-1班", ClassCode: "MA2301", CollegeID: math, AdmissionYear: 2023})

	s.SetTitles([]dto.Title{
		{TitleID: 1, TitleName: "教授", TitleCode: "PROF"},
		{TitleID: 2, TitleName: "副教授", TitleCode: "APROF"},
		{TitleID: 3, TitleName: "讲师", TitleCode: "LECT"},
	})
	s.SetCourseTypes([]dto.CourseType{
		{TypeID: 1, TypeName: "必修", TypeCode: "REQ"},
		{TypeID: 2, TypeName: "选修", TypeCode: "ELE"},
	})

	teacher := s.AddTeacher(dto.Teacher{TeacherNo: "T001", Name: "王教授", Gender: "男", TitleID: 1, CollegeID: cs})
	course := s.AddCourse(dto.Course{CourseCode: "CS101", CourseName: "程序设计基础", Credit: 4, Hours: 64, TypeID: 1, CollegeID: cs})
	offering := s.AddOffering(dto.Offering{CourseID: course, TeacherID: teacher, Semester: dto.SemesterAutumn, Year: 2023, Classroom: "A101", ClassTime: "周一 1-2节"})

	student := s.AddStudent(dto.Student{StudentNo: "2023001", Name: "张三", Gender: "男", BirthDate: "2005-03-15", EnrollmentDate: "2023-09-01", ClassID: class1, Status: dto.StudentEnrolled})
	s.AddStudent(dto.Student{StudentNo: "2023002", Name: "李四", Gender: "女", BirthDate: "2005-07-22", EnrollmentDate: "2023-09-01", ClassID: class2, Status: dto.StudentEnrolled})

	score := 88.5
	s.AddScore(dto.Score{StudentID: student, OfferingID: offering, Score: &score, Status: dto.ScoreCompleted})

	s.ResetCalls()
	return s
}
