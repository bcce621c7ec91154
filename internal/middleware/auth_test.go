package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stocktrack/internal/database"
	"stocktrack/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testSecret = []byte("test-session-secret-at-least-32-bytes!!")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role, status string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("irrelevant"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{Username: username, PasswordHash: string(hash), Role: role, Status: status}
	require.NoError(t, db.Create(user).Error)
	return user
}

func sessionRequest(token string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/items", nil)
	if token != "" {
		c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return c, w
}

func TestResolveSession_ValidCookie(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", model.RoleAdmin, model.StatusActive)

	token, err := IssueSessionToken(user, testSecret)
	require.NoError(t, err)

	c, _ := sessionRequest(token)
	resolved := ResolveSession(c, db, testSecret)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, model.RoleAdmin, resolved.Role)
}

func TestResolveSession_BearerFallback(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", model.RoleEmployee, model.StatusActive)

	token, err := IssueSessionToken(user, testSecret)
	require.NoError(t, err)

	c, _ := sessionRequest("")
	c.Request.Header.Set("Authorization", "Bearer "+token)
	resolved := ResolveSession(c, db, testSecret)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestResolveSession_Failures(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", model.RoleEmployee, model.StatusActive)
	suspended := seedUser(t, db, "bob", model.RoleEmployee, model.StatusSuspended)

	valid, err := IssueSessionToken(user, testSecret)
	require.NoError(t, err)

	forged, err := IssueSessionToken(user, []byte("some-other-secret-of-32-bytes-min!!!!"))
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	expiredToken, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	suspendedToken, err := IssueSessionToken(suspended, testSecret)
	require.NoError(t, err)

	deletedToken, err := IssueSessionToken(&model.User{ID: 424242, Role: model.RoleEmployee}, testSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing cookie", token: ""},
		{name: "garbage token", token: "not.a.jwt"},
		{name: "tampered signature", token: valid + "xx"},
		{name: "wrong key", token: forged},
		{name: "expired", token: expiredToken},
		{name: "suspended user", token: suspendedToken},
		{name: "deleted user", token: deletedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := sessionRequest(tt.token)
			assert.Nil(t, ResolveSession(c, db, testSecret))
		})
	}
}

func newGatedRouter(db *gorm.DB, adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{RequireAuth(db, testSecret)}
	if adminOnly {
		handlers = append(handlers, RequireAdmin())
	}
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	r.GET("/api/items", handlers...)
	return r
}

func TestRequireAuth_APIClientGets401(t *testing.T) {
	db := newTestDB(t)
	r := newGatedRouter(db, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// The session cookie is not touched on failure.
	assert.Empty(t, w.Result().Cookies())
}

func TestRequireAuth_BrowserRedirectsToLogin(t *testing.T) {
	db := newTestDB(t)
	r := newGatedRouter(db, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fapi%2Fitems", w.Header().Get("Location"))
}

func TestRequireAuth_AdmitsActiveUser(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", model.RoleEmployee, model.StatusActive)
	r := newGatedRouter(db, false)

	token, err := IssueSessionToken(user, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestRequireAdmin_EmployeeForbidden(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", model.RoleEmployee, model.StatusActive)
	r := newGatedRouter(db, true)

	token, err := IssueSessionToken(user, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_BrowserRedirectsHome(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", model.RoleEmployee, model.StatusActive)
	r := newGatedRouter(db, true)

	token, err := IssueSessionToken(user, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRequireAdmin_AdminAllowed(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "root", model.RoleAdmin, model.StatusActive)
	r := newGatedRouter(db, true)

	token, err := IssueSessionToken(user, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNoStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
