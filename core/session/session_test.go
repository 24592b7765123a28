// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulab/sims-console/core/alert"
	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/session"
	"github.com/edulab/sims-console/core/simstest"
)

func newGateway(t *testing.T) (*session.Gateway, *simstest.Server) {
	t.Helper()
	backend := simstest.NewServer(
		simstest.Account{UserID: 1, Username: "admin", Password: "admin123", Role: "admin"},
		simstest.Account{UserID: 2, Username: "teacher1", Password: "teacher123", Role: "teacher"},
	)
	api := client.NewWithRouter(backend.Router)
	return session.NewGateway(api, alert.Log()), backend
}

func TestLoginSuccess(t *testing.T) {
	g, _ := newGateway(t)
	ctx := context.Background()

	assert.False(t, g.IsAuthenticated())

	var mu sync.Mutex
	hookFired := false
	g.SetLoginHook(func(ctx context.Context) {
		mu.Lock()
		hookFired = true
		mu.Unlock()
	})

	require.NoError(t, g.Login(ctx, "admin", "admin123"))
	assert.True(t, g.IsAuthenticated())
	assert.Empty(t, g.LoginError())
	mu.Lock()
	assert.True(t, hookFired)
	mu.Unlock()

	user, ok := g.User()
	require.True(t, ok)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin())
}

func TestLoginFailureKeepsMessage(t *testing.T) {
	g, _ := newGateway(t)
	ctx := context.Background()

	hookFired := false
	g.SetLoginHook(func(ctx context.Context) { hookFired = true })

	require.Error(t, g.Login(ctx, "admin", "wrong"))
	assert.False(t, g.IsAuthenticated())
	assert.False(t, hookFired)
	// the server's message is kept for display
	assert.Equal(t, "用户名或密码错误", g.LoginError())

	// a successful login clears it
	require.NoError(t, g.Login(ctx, "admin", "admin123"))
	assert.Empty(t, g.LoginError())
}

func TestCheckSessionRestoresIdentity(t *testing.T) {
	backend := simstest.NewServer(
		simstest.Account{UserID: 1, Username: "admin", Password: "admin123", Role: "admin"},
	)
	api := client.NewWithRouter(backend.Router)

	// login through the shared client, then let a fresh gateway pick the
	// session up from the cookie
	_, err := api.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	g := session.NewGateway(api, alert.Log())
	g.CheckSession(context.Background())
	assert.True(t, g.IsAuthenticated())
	user, _ := g.User()
	assert.Equal(t, "admin", user.Username)
}

func TestCheckSessionAnonymous(t *testing.T) {
	g, _ := newGateway(t)
	g.CheckSession(context.Background())
	assert.False(t, g.IsAuthenticated())
}

func TestLogoutClearsState(t *testing.T) {
	g, _ := newGateway(t)
	ctx := context.Background()
	require.NoError(t, g.Login(ctx, "admin", "admin123"))

	g.Logout(ctx)
	assert.False(t, g.IsAuthenticated())
	_, ok := g.User()
	assert.False(t, ok)

	// the session cookie is gone too
	g.CheckSession(ctx)
	assert.False(t, g.IsAuthenticated())
}

func TestRequireAdmin(t *testing.T) {
	g, _ := newGateway(t)
	ctx := context.Background()

	// anonymous
	err := g.RequireAdmin()
	require.Error(t, err)
	permErr := &session.PermissionError{}
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "只有管理员可以执行此操作", permErr.Message)

	// teacher role is not enough
	require.NoError(t, g.Login(ctx, "teacher1", "teacher123"))
	assert.Error(t, g.RequireAdmin())

	g.Logout(ctx)
	require.NoError(t, g.Login(ctx, "admin", "admin123"))
	assert.NoError(t, g.RequireAdmin())
}
