package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/internal/auth"
	"github.com/indra474/flower-project/internal/session"
	"github.com/indra474/flower-project/internal/utils"
)

// GET /login
func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login", nil)
}

// POST /login
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")

	user, err := h.auth.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.serverError(c, "login failed", err)
			return
		}
		h.log.Info("login rejected", zap.String("username", username))
		session.From(c).Flash(session.Error, "Invalid username or password")
		h.render(c, http.StatusUnauthorized, "login", gin.H{"username": username})
		return
	}

	session.From(c).Login(user.ID)
	h.redirect(c, "/", "", "")
}

// POST /logout
func (h *Handler) Logout(c *gin.Context) {
	session.From(c).Logout()
	h.redirect(c, "/login", "", "")
}

// GET /logout does not sign out.
func (h *Handler) LogoutRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

// GET /register
func (h *Handler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register", nil)
}

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	_, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			h.render(c, http.StatusConflict, "register", gin.H{
				"form":   in,
				"errors": map[string]string{"username": err.Error()},
			})
		case len(utils.FormatValidationError(err)) > 0:
			h.render(c, http.StatusBadRequest, "register", gin.H{
				"form":   in,
				"errors": utils.FormatValidationError(err),
			})
		default:
			h.serverError(c, "registration failed", err)
		}
		return
	}

	h.redirect(c, "/login", session.Success, "Registration successful. Please login.")
}
