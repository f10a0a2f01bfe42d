package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/internal/models"
	"github.com/indra474/flower-project/internal/session"
)

const userContextKey = "user"

// RequireAuth redirects to /login unless the session belongs to a known user,
// and puts that *models.User on the context for handlers. Storage failures
// are a 500 and leave the session alone.
func RequireAuth(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.From(c)
		userID, ok := sess.UserID()
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		user, err := svc.FindUser(c.Request.Context(), userID)
		if errors.Is(err, ErrUserNotFound) {
			sess.Logout()
			_ = sess.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if err != nil {
			svc.log.Error("failed to load session user", zap.Uint("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth puts the signed-in user on the context when there is one and
// never blocks the request.
func OptionalAuth(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := session.From(c).UserID(); ok {
			if user, err := svc.FindUser(c.Request.Context(), userID); err == nil {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

// RequireStaff must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
