package handler

import (
	"net/http"

	"stocktrack/internal/middleware"
	"stocktrack/internal/service"
	"stocktrack/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService service.AuthService
	db          *gorm.DB
	secret      []byte
}

// NewAuthHandler sets up the routing dependencies for session endpoints
func NewAuthHandler(authService service.AuthService, db *gorm.DB, secret []byte) *AuthHandler {
	return &AuthHandler{authService: authService, db: db, secret: secret}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/me", middleware.RequireAuth(h.db, h.secret), h.GetMe)
}

// Login handles POST /login to authenticate and open a session
// @Summary      Login
// @Description  Authenticates a user by username and password and sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		// Failed attempts never set a cookie.
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	middleware.SetSessionCookie(c, res.Token)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logout handles POST /logout to clear the session cookie. The token itself
// remains valid until expiry; there is no server-side revocation.
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// GetMe handles GET /me to return the currently authenticated user
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SessionUser}
// @Failure      401  {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "You must be logged in to do this"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}))
}
