// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

/*
Package simstest provides an in-memory implementation of the SIMS backend
contract for tests and demos.

The server speaks the same routes, payloads and role gates as the real
backend: a signed JWT session cookie stands in for the server-side session,
request bodies are validated against embedded JSON schemas, and every call
is recorded so tests can assert on what reached the backend boundary.
*/
package simstest

import (
	"embed"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/xeipuuv/gojsonschema"

	"github.com/edulab/sims-console/core/dto"
	"github.com/edulab/sims-console/core/logger"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	sessionCookie = "sims_session"
	perPage       = 10
)

// Call is one request that reached the backend boundary.
type Call struct {
	Method string
	Path   string
}

// Account is a login account with its role and, for students, the linked
// student id.
type Account struct {
	UserID    int
	Username  string
	Password  string
	Role      string
	RelatedID int
}

type sessionClaims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	RelatedID int    `json:"related_id"`
	jwt.RegisteredClaims
}

// Server is the in-memory backend.
type Server struct {
	Router *mux.Router

	mu        sync.Mutex
	accounts  map[string]Account
	students  map[int]dto.Student
	teachers  map[int]dto.Teacher
	courses   map[int]dto.Course
	offerings map[int]dto.Offering
	classes   map[int]dto.Class
	colleges  map[int]dto.College
	titles    []dto.Title
	types     []dto.CourseType
	scores    map[int]dto.Score
	nextID    int
	calls     []Call

	jwtKey        []byte
	studentSchema *gojsonschema.Schema
	scoreSchema   *gojsonschema.Schema
}

// NewServer creates an empty backend with the given login accounts.
func NewServer(accounts ...Account) *Server {
	s := &Server{
		accounts:  map[string]Account{},
		students:  map[int]dto.Student{},
		teachers:  map[int]dto.Teacher{},
		courses:   map[int]dto.Course{},
		offerings: map[int]dto.Offering{},
		classes:   map[int]dto.Class{},
		colleges:  map[int]dto.College{},
		scores:    map[int]dto.Score{},
		nextID:    1000,
		jwtKey:    []byte("simstest-signing-key"),
	}
	for _, a := range accounts {
		s.accounts[a.Username] = a
	}
	s.studentSchema = mustLoadSchema("schemas/student.json")
	s.scoreSchema = mustLoadSchema("schemas/score.json")

	router := mux.NewRouter()
	logger.AddRequestID(router)
	router.Use(s.record)
	s.routes(router)
	s.Router = router
	return s
}

func mustLoadSchema(name string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(err)
	}
	return schema
}

// Handler returns the router wrapped with access logging and compression,
// suitable for http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	return handlers.CompressHandler(handlers.CombinedLoggingHandler(logger.Default().Writer(), s.Router))
}

// Calls returns a copy of the recorded call log.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]Call, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// ResetCalls clears the recorded call log.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) record(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path})
		s.mu.Unlock()
		h.ServeHTTP(w, r)
	})
}

func (s *Server) allocID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, into interface{}) error {
	return json.NewDecoder(r.Body).Decode(into)
}

// unmarshalBody decodes a body that was already consumed for schema
// validation.
func unmarshalBody(body []byte, into interface{}) error {
	return json.Unmarshal(body, into)
}

// session returns the claims of the request's session cookie, if valid.
func (s *Server) session(r *http.Request) (*sessionClaims, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

// loginRequired mirrors the backend's login_required decorator.
func (s *Server) loginRequired(h func(w http.ResponseWriter, r *http.Request, claims *sessionClaims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.session(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "请先登录")
			return
		}
		h(w, r, claims)
	}
}

// roleRequired mirrors admin_required / teacher_required: the listed roles
// may pass, everyone else gets a 403.
func (s *Server) roleRequired(roles []string, h func(w http.ResponseWriter, r *http.Request, claims *sessionClaims)) http.HandlerFunc {
	return s.loginRequired(func(w http.ResponseWriter, r *http.Request, claims *sessionClaims) {
		for _, role := range roles {
			if claims.Role == role {
				h(w, r, claims)
				return
			}
		}
		writeError(w, http.StatusForbidden, "无权限访问")
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &body); err != nil || body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "用户名和密码不能为空")
		return
	}

	s.mu.Lock()
	account, ok := s.accounts[body.Username]
	s.mu.Unlock()
	if !ok || account.Password != body.Password {
		writeError(w, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	claims := sessionClaims{
		UserID:    account.UserID,
		Username:  account.Username,
		Role:      account.Role,
		RelatedID: account.RelatedID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "登录失败")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": dto.User{
			UserID:   account.UserID,
			Username: account.Username,
			Role:     account.Role,
		},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.session(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user": dto.User{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		},
	})
}

// validateBody validates the raw request body against a JSON schema and
// returns the first violation as the error message.
func validateBody(schema *gojsonschema.Schema, body []byte) (string, bool) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "无效的请求数据", false
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.Field()+" "+desc.Description())
		}
		return "参数校验失败: " + strings.Join(violations, "; "), false
	}
	return "", true
}
