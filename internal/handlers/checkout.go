package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indra474/flower-project/internal/session"
	"github.com/indra474/flower-project/internal/shop"
	"github.com/indra474/flower-project/internal/utils"
)

// POST /checkout stores the ticked cart lines for the payment step.
func (h *Handler) Checkout(c *gin.Context) {
	ids := utils.ParseIDs(c.PostFormArray("selected_items"))

	sess := session.From(c)
	if err := h.checkout.Begin(sess, ids); err != nil {
		h.cartError(c, "/cart", err)
		return
	}
	h.redirect(c, "/payment", "", "")
}

// GET /checkout has nothing to show.
func (h *Handler) CheckoutRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, "/cart")
}

// GET /payment
func (h *Handler) PaymentForm(c *gin.Context) {
	checkout, err := h.payment.Prepare(c.Request.Context(), userID(c), session.From(c))
	if err != nil {
		h.cartError(c, "/cart", err)
		return
	}
	h.render(c, http.StatusOK, "payment", gin.H{"cart_items": checkout.Lines, "total": checkout.Total})
}

// POST /payment
func (h *Handler) Pay(c *gin.Context) {
	var buyer shop.BuyerDetails
	if err := c.ShouldBind(&buyer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	ctx := c.Request.Context()
	sess := session.From(c)

	_, err := h.payment.Place(ctx, userID(c), sess, buyer)
	switch {
	case err == nil:
		h.redirect(c, "/payment-success", "", "")
	case errors.Is(err, shop.ErrInvalidBuyer):
		checkout, perr := h.payment.Prepare(ctx, userID(c), sess)
		if perr != nil {
			h.cartError(c, "/cart", perr)
			return
		}
		h.render(c, http.StatusBadRequest, "payment", gin.H{
			"cart_items": checkout.Lines,
			"total":      checkout.Total,
			"form":       buyer,
			"errors":     utils.FormatValidationError(err),
		})
	case shop.IsAbort(err):
		h.redirect(c, "/cart", session.Warning, flashText(err))
	default:
		h.serverError(c, "payment failed", err)
	}
}

// GET /payment-success
func (h *Handler) PaymentSuccess(c *gin.Context) {
	orders, err := h.payment.Confirmation(c.Request.Context(), userID(c), session.From(c))
	if err != nil {
		h.serverError(c, "failed to load confirmation", err)
		return
	}
	h.render(c, http.StatusOK, "payment_success", gin.H{"orders": orders, "total": shop.SumOrders(orders)})
}

// GET /orders
func (h *Handler) Orders(c *gin.Context) {
	page, size := utils.ParsePage(c.Query("page"), c.Query("page_size"))

	orders, err := h.history.ListPage(c.Request.Context(), userID(c), page, size)
	if err != nil {
		h.serverError(c, "failed to list orders", err)
		return
	}

	data := gin.H{"orders": orders}
	if size > 0 {
		data["page"] = page
		data["page_size"] = size
	}
	h.render(c, http.StatusOK, "orders", data)
}
