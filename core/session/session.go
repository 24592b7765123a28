// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

// Package session owns the authenticated/anonymous state of the console and
// the identity of the current user.
package session

import (
	"context"
	"sync"

	"github.com/edulab/sims-console/core/alert"
	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/dto"
	"github.com/edulab/sims-console/core/logger"
)

// Gateway wraps the authentication calls of the backend. The zero state is
// anonymous.
type Gateway struct {
	api    client.Client
	alerts alert.Sink

	mu            sync.Mutex
	authenticated bool
	user          dto.User
	loginError    string
	onLogin       func(ctx context.Context)
}

// NewGateway creates an anonymous gateway.
func NewGateway(api client.Client, alerts alert.Sink) *Gateway {
	if alerts == nil {
		alerts = alert.Log()
	}
	return &Gateway{api: api, alerts: alerts}
}

// SetLoginHook registers the initial data load fired after a successful
// login, so the default module is immediately usable.
func (g *Gateway) SetLoginHook(hook func(ctx context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onLogin = hook
}

// CheckSession asks the backend whether the session cookie is still valid.
// It is called once at startup and never fails outward; a transport failure
// is logged and leaves the gateway anonymous.
func (g *Gateway) CheckSession(ctx context.Context) {
	ctx, rlog := logger.ContextWithLogger(ctx)
	status, err := g.api.CheckAuth(ctx)
	if err != nil {
		rlog.WithError(err).Errorln("session check failed")
		return
	}
	if !status.Authenticated || status.User == nil {
		return
	}
	g.mu.Lock()
	g.authenticated = true
	g.user = *status.User
	g.mu.Unlock()
}

// Login authenticates with the backend. On success the gateway flips to
// authenticated and the login hook fires. On failure the server's error
// message (or a generic fallback) is kept for display.
func (g *Gateway) Login(ctx context.Context, username, password string) error {
	ctx, rlog := logger.ContextWithLogger(ctx)
	user, err := g.api.Login(ctx, username, password)
	if err != nil {
		rlog.WithError(err).Errorln("login failed")
		g.mu.Lock()
		g.loginError = client.UserMessage(err, "登录失败，请稍后重试")
		g.mu.Unlock()
		return err
	}

	g.mu.Lock()
	g.authenticated = true
	g.user = user
	g.loginError = ""
	hook := g.onLogin
	g.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	return nil
}

// Logout is a best-effort server call; local state is cleared regardless of
// the server response.
func (g *Gateway) Logout(ctx context.Context) {
	ctx, rlog := logger.ContextWithLogger(ctx)
	if err := g.api.Logout(ctx); err != nil {
		rlog.WithError(err).Errorln("logout failed")
	}
	g.api.ClearSession()
	g.mu.Lock()
	g.authenticated = false
	g.user = dto.User{}
	g.mu.Unlock()
}

// IsAuthenticated reports whether a user is logged in.
func (g *Gateway) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// User returns the current user identity.
func (g *Gateway) User() (dto.User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user, g.authenticated
}

// LoginError returns the message of the last failed login attempt, empty
// after a successful one.
func (g *Gateway) LoginError() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loginError
}

// PermissionError is a locally enforced role failure; no network call was
// made.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// RequireAdmin is the client-side gate applied to student and teacher
// create/update. Other entity mutations and all deletes are not gated here;
// the backend remains the authority for those.
func (g *Gateway) RequireAdmin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.authenticated || !g.user.IsAdmin() {
		return &PermissionError{Message: "只有管理员可以执行此操作"}
	}
	return nil
}
