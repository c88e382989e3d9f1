package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/cart"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

// publicStore loads an active store for the unauthenticated routes. Missing
// stores 404, deactivated stores 403 so crawlers drop them.
func (h *Handlers) publicStore(c *fiber.Ctx) (*models.Store, error) {
	var store models.Store
	err := h.DB.First(&store, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Store not found"})
	}
	if err != nil {
		logrus.WithError(err).Error("load store")
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	if !store.IsActive {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Store is deactivated"})
	}
	return &store, nil
}

// GetPublicStore returns the branding a storefront needs to render itself.
func (h *Handlers) GetPublicStore(c *fiber.Ctx) error {
	store, err := h.publicStore(c)
	if store == nil {
		return err
	}
	return c.JSON(fiber.Map{
		"id":                        store.ID,
		"name":                      store.Name,
		"logo_url":                  store.LogoURL,
		"header_text":               store.HeaderText,
		"footer_text":               store.FooterText,
		"primary_color":             store.PrimaryColor,
		"secondary_color":           store.SecondaryColor,
		"product_columns":           store.ProductColumns,
		"whatsapp_number":           store.WhatsAppNumber,
		"whatsapp_floating_enabled": store.WhatsAppFloating,
	})
}

// ListPublicProducts returns the store's active products, optionally
// filtered by category. Inactive products never leave the back office.
func (h *Handlers) ListPublicProducts(c *fiber.Ctx) error {
	store, err := h.publicStore(c)
	if store == nil {
		return err
	}

	query := h.DB.Where("store_id = ? AND is_active = ?", store.ID, true)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := query.Order("created_at desc").Find(&products).Error; err != nil {
		logrus.WithError(err).Error("list public products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(products)
}

func (h *Handlers) ListPublicCategories(c *fiber.Ctx) error {
	store, err := h.publicStore(c)
	if store == nil {
		return err
	}

	var categories []models.ProductCategory
	err = h.DB.Where("store_id = ?", store.ID).
		Order("sort_order asc").
		Find(&categories).Error
	if err != nil {
		logrus.WithError(err).Error("list public categories")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(categories)
}

type CheckoutItemRequest struct {
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	Color             string `json:"color"`
	CustomizationText string `json:"customization_text"`
}

type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items"`
}

// Checkout resolves the cart server-side (names and prices come from the
// catalog, never from the client) and hands back the wa.me link that opens
// the conversation with the seller.
func (h *Handlers) Checkout(c *fiber.Ctx) error {
	store, err := h.publicStore(c)
	if store == nil {
		return err
	}
	if store.WhatsAppNumber == "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Store has no WhatsApp number configured"})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return badRequest(c, "Cart is empty")
	}

	basket := cart.Cart{}
	for _, r := range req.Items {
		var product models.Product
		err := h.DB.Where("store_id = ? AND id = ? AND is_active = ?", store.ID, r.ProductID, true).
			First(&product).Error
		if err == gorm.ErrRecordNotFound {
			return badRequest(c, "Product not available: "+r.ProductID)
		}
		if err != nil {
			logrus.WithError(err).Error("checkout product lookup")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
		basket.Add(cart.Item{
			ProductID:         product.ID,
			Name:              product.Name,
			UnitPrice:         product.EffectivePrice(),
			Quantity:          r.Quantity,
			Color:             r.Color,
			CustomizationText: r.CustomizationText,
		})
	}

	message := cart.BuildMessage(basket.Items)
	return c.JSON(fiber.Map{
		"message":       message,
		"total":         basket.Total(),
		"whatsapp_link": cart.Link(store.WhatsAppNumber, message),
	})
}

// StorefrontPage renders the public product grid.
func (h *Handlers) StorefrontPage(c *fiber.Ctx) error {
	var store models.Store
	err := h.DB.First(&store, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).Render("store_closed", fiber.Map{
			"Title":  "Loja não encontrada",
			"Reason": "Esta loja não existe.",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	if !store.IsActive {
		return c.Status(fiber.StatusForbidden).Render("store_closed", fiber.Map{
			"Title":  store.Name,
			"Reason": "Esta loja está temporariamente desativada.",
		})
	}

	var products []models.Product
	h.DB.Where("store_id = ? AND is_active = ?", store.ID, true).
		Order("created_at desc").
		Find(&products)

	var categories []models.ProductCategory
	h.DB.Where("store_id = ?", store.ID).Order("sort_order asc").Find(&categories)

	return c.Render("storefront", fiber.Map{
		"Store":      store,
		"Products":   products,
		"Categories": categories,
	})
}

// ProductPage renders a single product with its discount badge.
func (h *Handlers) ProductPage(c *fiber.Ctx) error {
	var store models.Store
	err := h.DB.First(&store, "id = ?", c.Params("id")).Error
	if err != nil || !store.IsActive {
		return c.Status(fiber.StatusNotFound).Render("store_closed", fiber.Map{
			"Title":  "Loja não encontrada",
			"Reason": "Esta loja não está disponível.",
		})
	}

	var product models.Product
	err = h.DB.Where("store_id = ? AND id = ? AND is_active = ?", store.ID, c.Params("productID"), true).
		First(&product).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("store_closed", fiber.Map{
			"Title":  store.Name,
			"Reason": "Produto não encontrado.",
		})
	}

	return c.Render("product", fiber.Map{
		"Store":           store,
		"Product":         product,
		"EffectivePrice":  product.EffectivePrice(),
		"DiscountPercent": product.DiscountPercent(),
		"ShortCode":       models.ShortCode(product.ID),
	})
}
