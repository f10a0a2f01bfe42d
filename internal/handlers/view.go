package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/internal/auth"
	"github.com/indra474/flower-project/internal/session"
)

// render writes a view as JSON. Pending flash messages are consumed and
// sent along under "messages".
func (h *Handler) render(c *gin.Context, status int, view string, data gin.H) {
	sess := session.From(c)

	body := gin.H{"view": view}
	for k, v := range data {
		body[k] = v
	}
	body["messages"] = sess.Messages()

	if err := sess.Save(); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
	}
	c.JSON(status, body)
}

// redirect saves the session, adding a flash first when msg is set.
func (h *Handler) redirect(c *gin.Context, location, level, msg string) {
	sess := session.From(c)
	if msg != "" {
		sess.Flash(level, msg)
	}
	if err := sess.Save(); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) serverError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// userID is only valid behind auth.RequireAuth.
func userID(c *gin.Context) uint {
	if u := auth.CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}
