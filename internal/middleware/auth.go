package middleware

import (
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"stocktrack/internal/model"
	"stocktrack/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// SessionCookieName is the browser cookie carrying the signed session token.
const SessionCookieName = "session"

// SessionTTL is the fixed validity window of a session token.
const SessionTTL = 24 * time.Hour

const minSecretLen = 32

const devFallbackSecret = "stocktrack_dev_only_session_secret_key"

const currentUserKey = "currentUser"

// GetSessionSecret returns the symmetric signing key. SESSION_SECRET must be
// at least 32 bytes; anything shorter falls back to the hardcoded development
// default. Production refuses to run on the fallback.
func GetSessionSecret() []byte {
	secret := os.Getenv("SESSION_SECRET")
	if len(secret) < minSecretLen {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: SESSION_SECRET of at least 32 bytes is required in release mode")
		}
		if secret != "" {
			log.Println("WARNING: SESSION_SECRET shorter than 32 bytes, using development fallback")
		}
		secret = devFallbackSecret
	}
	return []byte(secret)
}

// IssueSessionToken signs a token asserting {userId, role} for SessionTTL.
func IssueSessionToken(user *model.User, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(SessionTTL).Unix(),
	})
	return token.SignedString(secret)
}

// SetSessionCookie sets the session token as an HttpOnly cookie.
// Secure is enabled outside local development.
func SetSessionCookie(c *gin.Context, token string) {
	secure := os.Getenv("GIN_MODE") == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(SessionTTL.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie removes the session cookie. This is the only revocation
// mechanism: the token itself stays valid until natural expiry.
func ClearSessionCookie(c *gin.Context) {
	secure := os.Getenv("GIN_MODE") == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}

// ResolveSession verifies the request's session token and resolves it to a
// live user record. Every failure mode degrades to nil: missing cookie,
// malformed/expired/forged token, unknown user, suspended user. The cookie is
// deliberately left untouched on failure. The user lookup filters on active
// status on every call so suspension is never cached away.
func ResolveSession(c *gin.Context, db *gorm.DB, secret []byte) *model.User {
	tokenString, err := c.Cookie(SessionCookieName)
	if err != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil
	}

	var user model.User
	err = db.WithContext(c.Request.Context()).
		First(&user, "id = ? AND status = ?", uint(sub), model.StatusActive).Error
	if err != nil {
		return nil
	}
	return &user
}

// RequireAuth admits any authenticated active user and stores the resolved
// record in the request context. Browser navigations are redirected to the
// login page with the original path preserved; API clients get a 401 envelope.
func RequireAuth(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := ResolveSession(c, db, secret)
		if user == nil {
			if wantsHTML(c) {
				c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "You must be logged in to do this"))
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != model.RoleAdmin {
			if wantsHTML(c) {
				c.Redirect(http.StatusFound, "/")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Only administrators can do this"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireAuth for this request.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// NoStore forbids caching of every handler response; all reads re-query the
// store.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
