package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indra474/flower-project/internal/session"
	"github.com/indra474/flower-project/internal/shop"
	"github.com/indra474/flower-project/internal/utils"
)

// GET /cart
func (h *Handler) Cart(c *gin.Context) {
	cart, err := h.cart.List(c.Request.Context(), userID(c))
	if err != nil {
		h.serverError(c, "failed to load cart", err)
		return
	}
	h.render(c, http.StatusOK, "cart", gin.H{"cart_items": cart.Lines, "total": cart.Total})
}

// /add/:flowerId
func (h *Handler) AddToCart(c *gin.Context) {
	flowerID, ok := utils.ParseID(c.Param("flowerId"))
	if !ok {
		h.redirect(c, "/cart", session.Warning, flashText(shop.ErrFlowerNotFound))
		return
	}

	if err := h.cart.Add(c.Request.Context(), userID(c), flowerID); err != nil {
		h.cartError(c, "/cart", err)
		return
	}
	h.redirect(c, "/cart", "", "")
}

// /remove/:flowerId
func (h *Handler) RemoveFromCart(c *gin.Context) {
	flowerID, ok := utils.ParseID(c.Param("flowerId"))
	if !ok {
		h.redirect(c, "/cart", "", "")
		return
	}

	if err := h.cart.Remove(c.Request.Context(), userID(c), flowerID); err != nil {
		h.serverError(c, "failed to remove cart line", err)
		return
	}
	h.redirect(c, "/cart", "", "")
}

// /buy/:flowerId empties the cart down to this one flower.
func (h *Handler) BuyNow(c *gin.Context) {
	flowerID, ok := utils.ParseID(c.Param("flowerId"))
	if !ok {
		h.redirect(c, "/cart", session.Warning, flashText(shop.ErrFlowerNotFound))
		return
	}

	if err := h.cart.BuyNow(c.Request.Context(), userID(c), flowerID); err != nil {
		h.cartError(c, "/cart", err)
		return
	}
	h.redirect(c, "/checkout", "", "")
}

// cartError sends checkout aborts back with a warning and everything else to 500.
func (h *Handler) cartError(c *gin.Context, location string, err error) {
	if shop.IsAbort(err) {
		h.redirect(c, location, session.Warning, flashText(err))
		return
	}
	h.serverError(c, "cart operation failed", err)
}

var abortMessages = []struct {
	err error
	msg string
}{
	{shop.ErrEmptySelection, "Please select at least one item to checkout."},
	{shop.ErrNoSelection, "Please select items first."},
	{shop.ErrSelectionNotFound, "Selected items not found."},
	{shop.ErrFlowerNotFound, "Flower not found."},
}

func flashText(err error) string {
	for _, m := range abortMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}
