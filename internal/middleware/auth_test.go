package middleware

import (
	"context"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/service"
	"estudiapro_backend/internal/testutil"
	"estudiapro_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	auth   *service.AuthService
	engine *gin.Engine
	t      *testing.T
}

func newFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	auth := service.NewAuthService(db, repository.NewUserRepository(db),
		service.NewDBSessionStore(repository.NewSessionRepository(db)), cfg)

	r := gin.New()
	api := r.Group("/api", AuthMiddleware(auth))
	api.GET("/me", func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c))
	})
	api.GET("/creator", RoleMiddleware(model.Creator), func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/admin", RoleMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	return &fixture{auth: auth, engine: r, t: t}
}

func (f *fixture) token(role model.UserRole) (string, *util.Claims) {
	f.t.Helper()
	user := testutil.CreateUser(f.t, f.auth.DB, role)
	token, claims, err := util.GenerateJWT(user, f.auth.Cfg.JWT.Secret, f.auth.Cfg.JWT.ExpireTime)
	require.NoError(f.t, err)
	require.NoError(f.t, f.auth.Sessions.Save(context.Background(), claims.ID, user.ID, claims.ExpiresAt.Time))
	return token, claims
}

func (f *fixture) get(path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	f := newFixture(t)
	token, claims := f.token(model.Student)

	assert.Equal(t, http.StatusUnauthorized, f.get("/api/me", ""))
	assert.Equal(t, http.StatusUnauthorized, f.get("/api/me", "garbage"))
	assert.Equal(t, http.StatusOK, f.get("/api/me", token))
	assert.Equal(t, http.StatusOK, f.get("/api/me?token="+token, ""))

	require.NoError(t, f.auth.Logout(context.Background(), claims))
	assert.Equal(t, http.StatusUnauthorized, f.get("/api/me", token))
}

func TestRoleMiddleware(t *testing.T) {
	f := newFixture(t)
	student, _ := f.token(model.Student)
	creator, _ := f.token(model.Creator)
	admin, _ := f.token(model.Admin)

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/api/creator", student, http.StatusForbidden},
		{"/api/creator", creator, http.StatusOK},
		{"/api/creator", admin, http.StatusOK},
		{"/api/admin", creator, http.StatusForbidden},
		{"/api/admin", admin, http.StatusOK},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, f.get(tc.path, tc.token), tc.path)
	}
}
