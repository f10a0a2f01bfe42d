package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/configs"
	"github.com/indra474/flower-project/internal/auth"
	"github.com/indra474/flower-project/internal/logger"
	"github.com/indra474/flower-project/internal/models"
)

// NewRouter wires every route. oidc may be nil when single sign-on is not
// configured.
func NewRouter(cfg config.HTTPConfig, h *Handler, oidc *auth.OIDC, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logger.Recovery(log), logger.Requests(log))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((14 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionName, store))

	r.GET("/health", h.Health)
	r.GET("/", auth.OptionalAuth(h.auth), h.Home)

	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.LogoutRedirect)
	r.POST("/logout", h.Logout)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)

	if oidc != nil {
		r.GET("/auth/oidc/login", oidc.Login)
		r.GET("/auth/oidc/callback", oidc.Callback)
	}

	protected := r.Group("/", auth.RequireAuth(h.auth))
	{
		protected.GET("/flowers", h.Category(models.CategoryFlower, "flowers"))
		protected.GET("/shopplants", h.Category(models.CategoryShopPlant, "shopplants"))
		protected.GET("/weddings", h.Category(models.CategoryWedding, "weddings"))
		protected.GET("/workshop", h.Category(models.CategoryWorkshop, "workshop"))
		protected.GET("/map", h.Map)
		protected.GET("/contact", h.Contact)

		getOrPost := []string{http.MethodGet, http.MethodPost}
		protected.GET("/cart", h.Cart)
		protected.Match(getOrPost, "/add/:flowerId", h.AddToCart)
		protected.Match(getOrPost, "/remove/:flowerId", h.RemoveFromCart)
		protected.Match(getOrPost, "/buy/:flowerId", h.BuyNow)

		protected.GET("/checkout", h.CheckoutRedirect)
		protected.POST("/checkout", h.Checkout)
		protected.GET("/payment", h.PaymentForm)
		protected.POST("/payment", h.Pay)
		protected.GET("/payment-success", h.PaymentSuccess)
		protected.GET("/orders", h.Orders)
	}

	admin := r.Group("/admin", auth.RequireAuth(h.auth), auth.RequireStaff())
	{
		admin.GET("/flowers", h.AdminFlowers)
		admin.POST("/flowers", h.AdminCreateFlower)
		admin.PUT("/flowers/:id", h.AdminUpdateFlower)
		admin.DELETE("/flowers/:id", h.AdminDeleteFlower)
		admin.GET("/orders", h.AdminOrders)
		admin.GET("/orders/export", h.AdminExportOrders)
	}

	return r
}
