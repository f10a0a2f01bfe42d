package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/indra474/flower-project/configs"
	"github.com/indra474/flower-project/internal/auth"
	"github.com/indra474/flower-project/internal/catalog"
	"github.com/indra474/flower-project/internal/handlers"
	"github.com/indra474/flower-project/internal/models"
	"github.com/indra474/flower-project/internal/shop"
	"github.com/indra474/flower-project/internal/testutil"
)

type view map[string]interface{}

// messages returns the flashes of one level.
func (v view) messages(level string) []string {
	all, _ := v["messages"].(map[string]interface{})
	raw, _ := all[level].([]interface{})
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(string))
	}
	return out
}

func (v view) list(key string) []map[string]interface{} {
	raw, _ := v[key].([]interface{})
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]interface{}))
	}
	return out
}

func (v view) amount(key string) decimal.Decimal {
	s, _ := v[key].(string)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NewFromInt(-1)
	}
	return d
}

// client is one browser: it keeps its cookie and does not follow redirects.
type client struct {
	s    *HandlersSuite
	http *http.Client
}

func (c *client) do(method, path string, form url.Values) *http.Response {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, c.s.srv.URL+path, body)
	c.s.Require().NoError(err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	c.s.Require().NoError(err)
	c.s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) get(path string) *http.Response {
	return c.do(http.MethodGet, path, nil)
}

func (c *client) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	return c.do(http.MethodPost, path, form)
}

func (c *client) view(path string) view {
	resp := c.get(path)
	c.s.Require().Equal(http.StatusOK, resp.StatusCode, path)
	return c.s.decode(resp)
}

func (c *client) login(username, password string) {
	resp := c.post("/login", url.Values{"username": {username}, "password": {password}})
	c.s.Require().Equal(http.StatusFound, resp.StatusCode)
	c.s.Require().Equal("/", resp.Header.Get("Location"))
}

type HandlersSuite struct {
	testutil.DBSuite

	srv   *httptest.Server
	rose  models.Flower
	tulip models.Flower
	alice models.User
	bob   models.User
	staff models.User
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	s.DBSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	h := handlers.New(handlers.Deps{
		Catalog:  catalog.NewService(s.DB),
		Cart:     shop.NewCartManager(s.DB, log),
		Checkout: shop.NewCheckoutSelector(),
		Payment:  shop.NewPaymentOrchestrator(s.DB, log, nil),
		History:  shop.NewOrderHistory(s.DB),
		Auth:     auth.NewService(s.DB, log).WithBcryptCost(bcrypt.MinCost),
		Log:      log,
	})
	cfg := config.HTTPConfig{SessionName: "flowersess", SessionSecret: "test-secret"}

	s.srv = httptest.NewServer(handlers.NewRouter(cfg, h, nil, log))
	s.T().Cleanup(s.srv.Close)

	s.rose = testutil.CreateFlower(s.T(), s.DB, "Rose", models.CategoryFlower, "10.00")
	s.tulip = testutil.CreateFlower(s.T(), s.DB, "Tulip", models.CategoryFlower, "5.00")
	s.alice = testutil.CreateUser(s.T(), s.DB, "alice", "secret123", false)
	s.bob = testutil.CreateUser(s.T(), s.DB, "bob", "secret123", false)
	s.staff = testutil.CreateUser(s.T(), s.DB, "admin", "secret123", true)
}

func (s *HandlersSuite) newClient() *client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	return &client{
		s: s,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (s *HandlersSuite) loggedIn(username string) *client {
	c := s.newClient()
	c.login(username, "secret123")
	return c
}

func (s *HandlersSuite) decode(resp *http.Response) view {
	var v view
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *HandlersSuite) redirectsTo(resp *http.Response, location string) {
	s.Require().Equal(http.StatusFound, resp.StatusCode)
	s.Require().Equal(location, resp.Header.Get("Location"))
}

func path(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}

func lineIDs(v view) []string {
	var ids []string
	for _, item := range v.list("cart_items") {
		ids = append(ids, strconv.FormatFloat(item["id"].(float64), 'f', 0, 64))
	}
	return ids
}

func (s *HandlersSuite) TestRoseTulipCheckout() {
	c := s.loggedIn("alice")

	s.redirectsTo(c.post(path("/add/", s.rose.ID), nil), "/cart")
	s.redirectsTo(c.get(path("/add/", s.rose.ID)), "/cart")
	s.redirectsTo(c.post(path("/add/", s.tulip.ID), nil), "/cart")

	cart := c.view("/cart")
	s.Require().Len(cart.list("cart_items"), 2)
	s.True(decimal.NewFromInt(25).Equal(cart.amount("total")), cart["total"])

	ids := lineIDs(cart)
	s.redirectsTo(c.post("/checkout", url.Values{"selected_items": ids}), "/payment")

	payment := c.view("/payment")
	s.True(decimal.NewFromInt(25).Equal(payment.amount("total")))

	resp := c.post("/payment", url.Values{
		"name":           {"Alice"},
		"phone":          {"+254700000001"},
		"email":          {"alice@example.com"},
		"order_type":     {"delivery"},
		"address":        {"1 Petal Road"},
		"payment_method": {"cash"},
	})
	s.redirectsTo(resp, "/payment-success")

	s.Equal(int64(2), s.CountRows(&models.Order{}, "user_id = ?", s.alice.ID))
	s.Equal(int64(0), s.CountRows(&models.CartLine{}, "user_id = ?", s.alice.ID))

	success := c.view("/payment-success")
	orders := success.list("orders")
	s.Require().Len(orders, 2)
	names := []string{
		orders[0]["flower"].(map[string]interface{})["name"].(string),
		orders[1]["flower"].(map[string]interface{})["name"].(string),
	}
	s.ElementsMatch([]string{"Rose", "Tulip"}, names)
	s.True(decimal.NewFromInt(25).Equal(success.amount("total")))

	s.Empty(c.view("/cart").list("cart_items"))

	history := c.view("/orders")
	s.Len(history.list("orders"), 2)

	// The selection is gone after payment.
	s.redirectsTo(c.get("/payment"), "/cart")
}

func (s *HandlersSuite) TestCheckoutWithoutSelectionWarns() {
	c := s.loggedIn("alice")

	s.redirectsTo(c.post("/checkout", nil), "/cart")
	cart := c.view("/cart")
	s.Equal([]string{"Please select at least one item to checkout."}, cart.messages("warning"))

	// Flashes are shown once.
	s.Empty(c.view("/cart").messages("warning"))
}

func (s *HandlersSuite) TestCheckoutGetRedirectsToCart() {
	c := s.loggedIn("alice")
	s.redirectsTo(c.get("/checkout"), "/cart")
}

func (s *HandlersSuite) TestPaymentWithoutSelectionWarns() {
	c := s.loggedIn("alice")

	s.redirectsTo(c.get("/payment"), "/cart")
	s.Equal([]string{"Please select items first."}, c.view("/cart").messages("warning"))
}

func (s *HandlersSuite) TestForeignSelectionIsNotFound() {
	bob := s.loggedIn("bob")
	s.redirectsTo(bob.post(path("/add/", s.rose.ID), nil), "/cart")
	bobLines := lineIDs(bob.view("/cart"))

	alice := s.loggedIn("alice")
	s.redirectsTo(alice.post("/checkout", url.Values{"selected_items": bobLines}), "/payment")
	s.redirectsTo(alice.get("/payment"), "/cart")
	s.Equal([]string{"Selected items not found."}, alice.view("/cart").messages("warning"))

	s.Equal(int64(1), s.CountRows(&models.CartLine{}, "user_id = ?", s.bob.ID))
}

func (s *HandlersSuite) TestInvalidBuyerRerendersPayment() {
	c := s.loggedIn("alice")
	s.redirectsTo(c.post(path("/add/", s.rose.ID), nil), "/cart")
	s.redirectsTo(c.post("/checkout", url.Values{"selected_items": lineIDs(c.view("/cart"))}), "/payment")

	resp := c.post("/payment", url.Values{"order_type": {"delivery"}, "payment_method": {"cash"}})
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)

	v := s.decode(resp)
	s.Equal("payment", v["view"])
	errs := v["errors"].(map[string]interface{})
	s.Contains(errs, "name")
	s.Contains(errs, "phone")
	s.Contains(errs, "address")
	s.Len(v.list("cart_items"), 1)

	s.Equal(int64(0), s.CountRows(&models.Order{}, "user_id = ?", s.alice.ID))
}

func (s *HandlersSuite) TestBuyNowReplacesCart() {
	c := s.loggedIn("alice")
	s.redirectsTo(c.post(path("/add/", s.rose.ID), nil), "/cart")

	s.redirectsTo(c.get(path("/buy/", s.tulip.ID)), "/checkout")

	items := c.view("/cart").list("cart_items")
	s.Require().Len(items, 1)
	s.Equal(float64(s.tulip.ID), items[0]["flower_id"])
}

func (s *HandlersSuite) TestAddUnknownFlowerWarns() {
	c := s.loggedIn("alice")

	s.redirectsTo(c.post("/add/999", nil), "/cart")
	s.Equal([]string{"Flower not found."}, c.view("/cart").messages("warning"))
}

func (s *HandlersSuite) TestRemoveIsIdempotent() {
	c := s.loggedIn("alice")
	s.redirectsTo(c.post(path("/add/", s.rose.ID), nil), "/cart")

	s.redirectsTo(c.post(path("/remove/", s.rose.ID), nil), "/cart")
	s.redirectsTo(c.post(path("/remove/", s.rose.ID), nil), "/cart")
	s.Empty(c.view("/cart").list("cart_items"))
}

func (s *HandlersSuite) TestProtectedRoutesRedirectToLogin() {
	c := s.newClient()
	for _, p := range []string{"/cart", "/flowers", "/payment", "/orders", "/map", "/admin/orders"} {
		s.redirectsTo(c.get(p), "/login")
	}
	s.redirectsTo(c.post(path("/add/", s.rose.ID), nil), "/login")
	s.Equal(int64(0), s.CountRows(&models.CartLine{}, "1 = 1"))
}

func (s *HandlersSuite) TestHomeIsPublic() {
	v := s.newClient().view("/")
	s.Equal("home", v["view"])
	s.Len(v["categories"], len(models.Categories))
	s.Nil(v["user"])

	v = s.loggedIn("alice").view("/")
	s.Equal("alice", v["user"].(map[string]interface{})["username"])
}

func (s *HandlersSuite) TestCategoryPage() {
	testutil.CreateFlower(s.T(), s.DB, "Fern", models.CategoryShopPlant, "3.00")
	c := s.loggedIn("alice")

	v := c.view("/shopplants")
	flowers := v.list("flowers")
	s.Require().Len(flowers, 1)
	s.Equal("Fern", flowers[0]["name"])

	s.Len(c.view("/flowers").list("flowers"), 2)
}

func (s *HandlersSuite) TestBadLoginRendersError() {
	c := s.newClient()

	resp := c.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	v := s.decode(resp)
	s.Equal("login", v["view"])
	s.Equal([]string{"Invalid username or password"}, v.messages("error"))

	s.redirectsTo(c.get("/cart"), "/login")
}

func (s *HandlersSuite) TestLogout() {
	c := s.loggedIn("alice")

	s.redirectsTo(c.get("/logout"), "/")
	c.view("/cart")

	s.redirectsTo(c.post("/logout", nil), "/login")
	s.redirectsTo(c.get("/cart"), "/login")
}

func (s *HandlersSuite) TestRegister() {
	c := s.newClient()

	resp := c.post("/register", url.Values{
		"username":   {"carol"},
		"password":   {"bloom1234"},
		"email":      {"carol@example.com"},
		"first_name": {"Carol"},
		"phone":      {"555"},
		"address":    {"2 Stem St"},
	})
	s.redirectsTo(resp, "/login")
	s.Equal([]string{"Registration successful. Please login."}, c.view("/login").messages("success"))

	c.login("carol", "bloom1234")

	resp = c.post("/register", url.Values{"username": {"carol"}, "password": {"bloom1234"}})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp = c.post("/register", url.Values{"username": {"dave"}, "password": {"short"}})
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(s.decode(resp)["errors"], "password")
}

func (s *HandlersSuite) TestOrdersPaging() {
	for i := 1; i <= 3; i++ {
		o := models.Order{UserID: s.alice.ID, FlowerID: s.rose.ID, Quantity: i, UnitPrice: s.rose.Price}
		s.Require().NoError(s.DB.Create(&o).Error)
	}
	c := s.loggedIn("alice")

	v := c.view("/orders?page=1&page_size=2")
	orders := v.list("orders")
	s.Require().Len(orders, 2)
	s.Equal(float64(3), orders[0]["quantity"])
	s.Equal(float64(2), v["page_size"])

	s.Len(c.view("/orders").list("orders"), 3)
}

func (s *HandlersSuite) TestAdminRequiresStaff() {
	c := s.loggedIn("alice")

	for _, p := range []string{"/admin/flowers", "/admin/orders", "/admin/orders/export"} {
		s.Equal(http.StatusForbidden, c.get(p).StatusCode, p)
	}
}

func (s *HandlersSuite) TestAdminFlowerCRUD() {
	c := s.loggedIn("admin")

	resp := c.post("/admin/flowers", url.Values{"name": {"Orchid"}, "category": {"wedding"}, "price": {"42.50"}})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	created := s.decode(resp)["flower"].(map[string]interface{})
	id := uint(created["id"].(float64))

	resp = c.post("/admin/flowers", url.Values{"name": {"Cactus"}, "category": {"desert"}, "price": {"1"}})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	v := c.view("/admin/flowers?category=wedding")
	s.Require().Len(v.list("flowers"), 1)
	s.Equal("Orchid", v.list("flowers")[0]["name"])
	s.Len(c.view("/admin/flowers?q=ROS").list("flowers"), 1)

	resp = c.do(http.MethodPut, path("/admin/flowers/", id), url.Values{"name": {"Orchid"}, "category": {"wedding"}, "price": {"40"}})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("40", s.decode(resp)["flower"].(map[string]interface{})["price"])

	resp = c.do(http.MethodPut, "/admin/flowers/999", url.Values{"name": {"X"}, "category": {"wedding"}, "price": {"1"}})
	s.Equal(http.StatusNotFound, resp.StatusCode)

	s.Equal(http.StatusNoContent, c.do(http.MethodDelete, path("/admin/flowers/", id), nil).StatusCode)
	s.Equal(http.StatusNotFound, c.do(http.MethodDelete, path("/admin/flowers/", id), nil).StatusCode)
}

func (s *HandlersSuite) TestAdminCannotDeleteOrderedFlower() {
	s.Require().NoError(s.DB.Create(&models.Order{UserID: s.alice.ID, FlowerID: s.rose.ID, Quantity: 1, UnitPrice: s.rose.Price}).Error)
	c := s.loggedIn("admin")

	s.Equal(http.StatusConflict, c.do(http.MethodDelete, path("/admin/flowers/", s.rose.ID), nil).StatusCode)
}

func (s *HandlersSuite) TestAdminOrdersAndExport() {
	seed := []models.Order{
		{UserID: s.alice.ID, FlowerID: s.rose.ID, Quantity: 2, UnitPrice: s.rose.Price, CustomerName: "Alice", OrderType: models.OrderTypeDelivery},
		{UserID: s.bob.ID, FlowerID: s.tulip.ID, Quantity: 1, UnitPrice: s.tulip.Price, CustomerName: "Bob", OrderType: models.OrderTypePickup},
	}
	for i := range seed {
		s.Require().NoError(s.DB.Create(&seed[i]).Error)
	}
	c := s.loggedIn("admin")

	v := c.view("/admin/orders")
	rows := v.list("orders")
	s.Require().Len(rows, 2)
	s.Equal("Bob", rows[0]["customer_name"])
	s.Equal("flower", rows[0]["category"])
	s.Equal("20", rows[1]["total_price"])

	s.Len(c.view("/admin/orders?order_type=pickup").list("orders"), 1)
	s.Len(c.view("/admin/orders?q=rose").list("orders"), 1)

	resp := c.get("/admin/orders/export")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	s.Contains(resp.Header.Get("Content-Disposition"), "orders.xlsx")

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	// XLSX files are zip archives.
	s.Equal("PK", string(body[:2]))
}

func (s *HandlersSuite) TestHealth() {
	v := s.newClient().view("/health")
	s.Equal("ok", v["status"])
}
