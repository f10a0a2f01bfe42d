// Package handlers is the storefront's HTTP surface.
package handlers

import (
	"go.uber.org/zap"

	"github.com/indra474/flower-project/internal/auth"
	"github.com/indra474/flower-project/internal/catalog"
	"github.com/indra474/flower-project/internal/shop"
)

type Handler struct {
	catalog  catalog.Service
	cart     *shop.CartManager
	checkout *shop.CheckoutSelector
	payment  *shop.PaymentOrchestrator
	history  *shop.OrderHistory
	auth     *auth.Service
	log      *zap.Logger
}

type Deps struct {
	Catalog  catalog.Service
	Cart     *shop.CartManager
	Checkout *shop.CheckoutSelector
	Payment  *shop.PaymentOrchestrator
	History  *shop.OrderHistory
	Auth     *auth.Service
	Log      *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		catalog:  d.Catalog,
		cart:     d.Cart,
		checkout: d.Checkout,
		payment:  d.Payment,
		history:  d.History,
		auth:     d.Auth,
		log:      d.Log,
	}
}
