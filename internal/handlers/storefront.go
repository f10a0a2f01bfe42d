package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indra474/flower-project/internal/auth"
	"github.com/indra474/flower-project/internal/models"
)

// GET /
func (h *Handler) Home(c *gin.Context) {
	data := gin.H{"categories": models.Categories}
	if u := auth.CurrentUser(c); u != nil {
		data["user"] = u
	}
	h.render(c, http.StatusOK, "home", data)
}

// Category serves one of the category listing pages.
func (h *Handler) Category(category models.Category, view string) gin.HandlerFunc {
	return func(c *gin.Context) {
		flowers, err := h.catalog.ListByCategory(c.Request.Context(), category)
		if err != nil {
			h.serverError(c, "failed to list flowers", err)
			return
		}
		h.render(c, http.StatusOK, view, gin.H{"category": category, "flowers": flowers})
	}
}

func (h *Handler) Map(c *gin.Context) {
	h.render(c, http.StatusOK, "map", nil)
}

func (h *Handler) Contact(c *gin.Context) {
	h.render(c, http.StatusOK, "contact", nil)
}
