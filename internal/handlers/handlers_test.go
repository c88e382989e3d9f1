package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/config"
	"github.com/steinhorstbr/d-shop-craft/internal/database"
	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	h     *Handlers
	audit *audit.Writer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	auth := middleware.NewAuth("test-secret")
	aw := audit.NewWriter(db, logrus.New())
	cfg := config.Config{
		PublicUploadDir:  t.TempDir(),
		PrivateUploadDir: t.TempDir(),
	}
	h := New(db, auth, aw, cfg)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/auth/signup", h.Signup)
	api.Post("/auth/login", h.Login)

	public := api.Group("/public/stores/:id")
	public.Get("", h.GetPublicStore)
	public.Get("/products", h.ListPublicProducts)
	public.Get("/categories", h.ListPublicCategories)
	public.Post("/checkout", h.Checkout)

	api.Use(auth.Protected())
	store := api.Group("", middleware.RoleRequired(models.RoleStoreAdmin), middleware.TenantRequired())
	store.Get("/products", h.ListProducts)
	store.Post("/products", h.CreateProduct)
	store.Put("/products/:id", h.UpdateProduct)
	store.Delete("/products/:id", h.DeleteProduct)
	store.Get("/filaments", h.ListFilaments)
	store.Post("/filaments", h.CreateFilament)
	store.Post("/filaments/:id/purchases", h.RegisterFilamentPurchase)
	store.Post("/orders", h.CreateOrder)
	store.Patch("/orders/:id/production-status", h.UpdateProductionStatus)
	store.Get("/audit", h.ListAuditLog)
	store.Get("/dashboard", h.Dashboard)

	return &testEnv{app: app, db: db, h: h, audit: aw}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (e *testEnv) signup(t *testing.T, email string) (token, storeID string) {
	t.Helper()
	resp := e.request(t, "POST", "/api/v1/auth/signup", "", fiber.Map{
		"email":     email,
		"password":  "secret123",
		"full_name": "Test Operator",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Token   string `json:"token"`
		StoreID string `json:"store_id"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	require.NotEmpty(t, body.StoreID)
	return body.Token, body.StoreID
}

func TestSignupCreatesStoreOnTrialPlan(t *testing.T) {
	e := newTestEnv(t)
	_, storeID := e.signup(t, "owner@example.com")

	var store models.Store
	require.NoError(t, e.db.Preload("SubscriptionPlan").First(&store, "id = ?", storeID).Error)
	assert.Equal(t, models.SubscriptionTrial, store.SubscriptionStatus)
	require.NotNil(t, store.SubscriptionPlan)
	assert.True(t, store.SubscriptionPlan.IsTrial)
	assert.True(t, store.IsActive)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email":    "owner@example.com",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.request(t, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email":    "owner@example.com",
		"password": "secret123",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPromotionalPriceCannotExceedBase(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name":                   "Vaso",
		"sale_price":             50.0,
		"sale_price_promotional": 80.0,
		"is_on_sale":             true,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Same prices without the sale flag are fine.
	resp = e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name":                   "Vaso",
		"sale_price":             50.0,
		"sale_price_promotional": 80.0,
		"is_on_sale":             false,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestPlanProductLimit(t *testing.T) {
	e := newTestEnv(t)
	token, storeID := e.signup(t, "owner@example.com")

	var store models.Store
	require.NoError(t, e.db.Preload("SubscriptionPlan").First(&store, "id = ?", storeID).Error)
	limit := store.SubscriptionPlan.MaxProducts
	require.Greater(t, limit, 0)

	for i := 0; i < limit; i++ {
		resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
			"name":       fmt.Sprintf("Produto %d", i),
			"sale_price": 10.0,
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name":       "Um a mais",
		"sale_price": 10.0,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCheckoutBuildsWhatsAppLink(t *testing.T) {
	e := newTestEnv(t)
	token, storeID := e.signup(t, "owner@example.com")

	require.NoError(t, e.db.Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("whatsapp_number", "5511999990000").Error)

	resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name":       "Suporte de fone",
		"sale_price": 35.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)

	resp = e.request(t, "POST", "/api/v1/public/stores/"+storeID+"/checkout", "", fiber.Map{
		"items": []fiber.Map{
			{"product_id": product.ID, "quantity": 2, "color": "Preto"},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Message      string  `json:"message"`
		Total        float64 `json:"total"`
		WhatsAppLink string  `json:"whatsapp_link"`
	}
	decode(t, resp, &body)
	assert.InDelta(t, 70.0, body.Total, 1e-9)
	assert.Contains(t, body.Message, "Suporte de fone")
	assert.Contains(t, body.Message, "Cor: Preto")
	assert.Contains(t, body.WhatsAppLink, "https://wa.me/5511999990000?text=")
}

func TestCheckoutRejectsInactiveProduct(t *testing.T) {
	e := newTestEnv(t)
	token, storeID := e.signup(t, "owner@example.com")

	require.NoError(t, e.db.Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("whatsapp_number", "5511999990000").Error)

	resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name":       "Oculto",
		"sale_price": 10.0,
		"is_active":  false,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)

	resp = e.request(t, "POST", "/api/v1/public/stores/"+storeID+"/checkout", "", fiber.Map{
		"items": []fiber.Map{{"product_id": product.ID, "quantity": 1}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeactivatedStoreIsHiddenFromPublic(t *testing.T) {
	e := newTestEnv(t)
	_, storeID := e.signup(t, "owner@example.com")

	require.NoError(t, e.db.Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("is_active", false).Error)

	resp := e.request(t, "GET", "/api/v1/public/stores/"+storeID, "", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.request(t, "GET", "/api/v1/public/stores/"+storeID+"/products", "", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPublicProductsExcludeInactive(t *testing.T) {
	e := newTestEnv(t)
	token, storeID := e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name": "Visível", "sale_price": 10.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name": "Invisível", "sale_price": 10.0, "is_active": false,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = e.request(t, "GET", "/api/v1/public/stores/"+storeID+"/products", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var products []models.Product
	decode(t, resp, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Visível", products[0].Name)
}

func TestFilamentPurchaseAddsStock(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/filaments", token, fiber.Map{
		"name":           "PLA Preto",
		"material":       "PLA",
		"color":          "Preto",
		"quantity_grams": 200.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var filament models.Filament
	decode(t, resp, &filament)

	// Prime the cached list; the purchase must invalidate it.
	resp = e.request(t, "GET", "/api/v1/filaments", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.request(t, "POST", "/api/v1/filaments/"+filament.ID+"/purchases", token, fiber.Map{
		"quantity_grams": 1000.0,
		"supplier":       "Voolt",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = e.request(t, "GET", "/api/v1/filaments", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed []models.Filament
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.InDelta(t, 1200.0, listed[0].QuantityGrams, 1e-9)

	var updated models.Filament
	require.NoError(t, e.db.First(&updated, "id = ?", filament.ID).Error)
	assert.InDelta(t, 1200.0, updated.QuantityGrams, 1e-9)
	assert.Equal(t, "Voolt", updated.Supplier)
	assert.NotNil(t, updated.LastPurchaseDate)

	var purchases []models.FilamentPurchase
	require.NoError(t, e.db.Where("filament_id = ?", filament.ID).Find(&purchases).Error)
	require.Len(t, purchases, 1)
	assert.InDelta(t, 1000.0, purchases[0].QuantityGrams, 1e-9)
}

func TestProductionDoneDeductsFilamentOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/filaments", token, fiber.Map{
		"name":           "PLA Branco",
		"material":       "PLA",
		"color":          "Branco",
		"quantity_grams": 1000.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var filament models.Filament
	decode(t, resp, &filament)

	resp = e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name":         "Miniatura",
		"sale_price":   40.0,
		"weight_grams": 120.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)

	resp = e.request(t, "POST", "/api/v1/orders", token, fiber.Map{
		"filament_id": filament.ID,
		"items": []fiber.Map{
			{"product_id": product.ID, "quantity": 2},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.InDelta(t, 80.0, order.TotalAmount, 1e-9)

	// Prime the cached filament list so the deduction has a stale view to
	// invalidate.
	resp = e.request(t, "GET", "/api/v1/filaments", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.request(t, "PATCH", "/api/v1/orders/"+order.ID+"/production-status", token, fiber.Map{
		"status": "done",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Filament
	require.NoError(t, e.db.First(&updated, "id = ?", filament.ID).Error)
	assert.InDelta(t, 760.0, updated.QuantityGrams, 1e-9)

	// The list view must reflect the deduction, not the cached pre-done
	// quantity.
	resp = e.request(t, "GET", "/api/v1/filaments", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed []models.Filament
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.InDelta(t, 760.0, listed[0].QuantityGrams, 1e-9)
}

func TestProductCreatedInactiveStaysInactive(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name":       "Rascunho",
		"sale_price": 10.0,
		"is_active":  false,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)
	assert.False(t, product.IsActive)

	var stored models.Product
	require.NoError(t, e.db.First(&stored, "id = ?", product.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestTenantRequiredWithoutStore(t *testing.T) {
	e := newTestEnv(t)

	// A store admin token without a resolved store cannot touch tenant data.
	orphan := models.User{Email: "orphan@example.com", Password: "x", FullName: "Orphan", Role: models.RoleStoreAdmin}
	require.NoError(t, e.db.Create(&orphan).Error)
	token, err := e.h.Auth.GenerateToken(orphan.ID, orphan.Role, "")
	require.NoError(t, err)

	resp := e.request(t, "GET", "/api/v1/products", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDashboardAggregatesStoreFigures(t *testing.T) {
	e := newTestEnv(t)
	token, storeID := e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/filaments", token, fiber.Map{
		"name":           "PLA Quase Vazio",
		"material":       "PLA",
		"color":          "Cinza",
		"quantity_grams": 120.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name": "Chaveiro", "sale_price": 25.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)

	paid := models.Order{
		StoreID:       storeID,
		PaymentStatus: models.PaymentPaid,
		TotalAmount:   50.0,
	}
	require.NoError(t, e.db.Create(&paid).Error)
	awaiting := models.Order{
		StoreID:       storeID,
		PaymentStatus: models.PaymentAwaiting,
		TotalAmount:   25.0,
	}
	require.NoError(t, e.db.Create(&awaiting).Error)

	resp = e.request(t, "GET", "/api/v1/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Orders struct {
			Pending int `json:"pending"`
			Total   int `json:"total"`
		} `json:"orders"`
		Revenue        float64 `json:"revenue"`
		PendingRevenue float64 `json:"pending_revenue"`
		Products       struct {
			Total  int `json:"total"`
			Active int `json:"active"`
		} `json:"products"`
		LowStockFilaments []models.Filament `json:"low_stock_filaments"`
	}
	decode(t, resp, &body)

	assert.Equal(t, 2, body.Orders.Total)
	assert.Equal(t, 2, body.Orders.Pending)
	assert.InDelta(t, 50.0, body.Revenue, 1e-9)
	assert.InDelta(t, 25.0, body.PendingRevenue, 1e-9)
	assert.Equal(t, 1, body.Products.Total)
	assert.Equal(t, 1, body.Products.Active)
	require.Len(t, body.LowStockFilaments, 1)
	assert.Equal(t, "PLA Quase Vazio", body.LowStockFilaments[0].Name)
}

func TestAuditLogListsStoreActivity(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.signup(t, "owner@example.com")

	resp := e.request(t, "POST", "/api/v1/products", token, fiber.Map{
		"name": "Auditado", "sale_price": 5.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	e.audit.Flush()

	resp = e.request(t, "GET", "/api/v1/audit", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entries []models.AuditLogEntry
	decode(t, resp, &entries)
	require.NotEmpty(t, entries)
	assert.Equal(t, "product", entries[0].EntityType)
	assert.Equal(t, models.AuditCreated, entries[0].Action)
}
