package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

// GetMyStore returns the caller's store with its plan attached.
func (h *Handlers) GetMyStore(c *fiber.Ctx) error {
	var store models.Store
	err := h.DB.Preload("SubscriptionPlan").
		First(&store, "id = ?", middleware.StoreID(c)).Error
	if err != nil {
		return repoError(c, err, "Store not found")
	}
	return c.JSON(store)
}

type StoreSettingsRequest struct {
	Name             string `json:"name"`
	LogoURL          string `json:"logo_url"`
	HeaderText       string `json:"header_text"`
	FooterText       string `json:"footer_text"`
	PrimaryColor     string `json:"primary_color"`
	SecondaryColor   string `json:"secondary_color"`
	ProductColumns   int    `json:"product_columns"`
	WhatsAppNumber   string `json:"whatsapp_number"`
	WhatsAppFloating *bool  `json:"whatsapp_floating_enabled"`
}

// UpdateMyStore lets the store admin edit branding and contact settings.
// Subscription fields and the active flag stay with the platform operator.
func (h *Handlers) UpdateMyStore(c *fiber.Ctx) error {
	var req StoreSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "Name is required")
	}
	if req.ProductColumns < 1 || req.ProductColumns > 6 {
		return badRequest(c, "Product columns must be between 1 and 6")
	}

	storeID := middleware.StoreID(c)
	var store models.Store
	if err := h.DB.First(&store, "id = ?", storeID).Error; err != nil {
		return repoError(c, err, "Store not found")
	}

	store.Name = req.Name
	store.LogoURL = req.LogoURL
	store.HeaderText = req.HeaderText
	store.FooterText = req.FooterText
	store.PrimaryColor = req.PrimaryColor
	store.SecondaryColor = req.SecondaryColor
	store.ProductColumns = req.ProductColumns
	store.WhatsAppNumber = req.WhatsAppNumber
	if req.WhatsAppFloating != nil {
		store.WhatsAppFloating = *req.WhatsAppFloating
	}

	err := h.DB.Model(&store).
		Select("name", "logo_url", "header_text", "footer_text", "primary_color",
			"secondary_color", "product_columns", "whatsapp_number", "whatsapp_floating_enabled").
		Updates(&store).Error
	if err != nil {
		logrus.WithError(err).Error("update store settings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update store"})
	}

	h.Audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     middleware.UserID(c),
		EntityType: "store",
		EntityID:   storeID,
		Action:     models.AuditUpdated,
	})
	return c.JSON(store)
}

// AdminListStores returns every store with its owner profile and plan for
// the platform dashboard.
func (h *Handlers) AdminListStores(c *fiber.Ctx) error {
	var stores []models.Store
	err := h.DB.Preload("SubscriptionPlan").
		Order("created_at desc").
		Find(&stores).Error
	if err != nil {
		logrus.WithError(err).Error("admin list stores")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	userIDs := make([]string, 0, len(stores))
	for _, s := range stores {
		userIDs = append(userIDs, s.UserID)
	}
	var owners []models.User
	if len(userIDs) > 0 {
		h.DB.Where("id IN ?", userIDs).Find(&owners)
	}
	ownerByID := make(map[string]models.User, len(owners))
	for _, u := range owners {
		ownerByID[u.ID] = u
	}

	out := make([]fiber.Map, 0, len(stores))
	for _, s := range stores {
		entry := fiber.Map{"store": s}
		if owner, ok := ownerByID[s.UserID]; ok {
			entry["owner"] = owner
		}
		out = append(out, entry)
	}
	return c.JSON(out)
}

type StoreActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// AdminSetStoreActive flips a store's public availability. A deactivated
// store keeps all its data; only the storefront goes dark.
func (h *Handlers) AdminSetStoreActive(c *fiber.Ctx) error {
	var req StoreActiveRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return badRequest(c, "is_active is required")
	}

	var store models.Store
	if err := h.DB.First(&store, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Store not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if err := h.DB.Model(&store).Update("is_active", *req.IsActive).Error; err != nil {
		logrus.WithError(err).Error("set store active")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update store"})
	}
	store.IsActive = *req.IsActive

	h.Audit.Record(audit.Entry{
		StoreID:    store.ID,
		UserID:     middleware.UserID(c),
		EntityType: "store",
		EntityID:   store.ID,
		Action:     models.AuditUpdated,
		Details:    map[string]any{"is_active": *req.IsActive},
	})
	return c.JSON(store)
}

type StorePlanRequest struct {
	SubscriptionPlanID *string                    `json:"subscription_plan_id"`
	SubscriptionStatus *models.SubscriptionStatus `json:"subscription_status"`
}

// AdminSetStorePlan moves a store to another plan or subscription state.
func (h *Handlers) AdminSetStorePlan(c *fiber.Ctx) error {
	var req StorePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var store models.Store
	if err := h.DB.First(&store, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Store not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	updates := map[string]interface{}{}
	if req.SubscriptionPlanID != nil {
		var plan models.SubscriptionPlan
		if err := h.DB.First(&plan, "id = ?", *req.SubscriptionPlanID).Error; err != nil {
			return badRequest(c, "Plan not found")
		}
		updates["subscription_plan_id"] = *req.SubscriptionPlanID
	}
	if req.SubscriptionStatus != nil {
		switch *req.SubscriptionStatus {
		case models.SubscriptionTrial, models.SubscriptionActive,
			models.SubscriptionPastDue, models.SubscriptionCanceled:
			updates["subscription_status"] = *req.SubscriptionStatus
		default:
			return badRequest(c, "Invalid subscription status")
		}
	}
	if len(updates) == 0 {
		return badRequest(c, "Nothing to update")
	}

	if err := h.DB.Model(&store).Updates(updates).Error; err != nil {
		logrus.WithError(err).Error("set store plan")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update store"})
	}

	err := h.DB.Preload("SubscriptionPlan").First(&store, "id = ?", store.ID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(store)
}

// GetPlatformConfig returns the single platform configuration row. Secrets
// never serialize; they are write-only from the API's point of view.
func (h *Handlers) GetPlatformConfig(c *fiber.Ctx) error {
	var cfg models.PlatformConfig
	if err := h.DB.First(&cfg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Platform config not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(cfg)
}

type PlatformConfigRequest struct {
	WhatsAppNumber *string `json:"platform_whatsapp_number"`
	SMTPHost       *string `json:"smtp_host"`
	SMTPPort       *int    `json:"smtp_port"`
	SMTPUser       *string `json:"smtp_user"`
	SMTPPassword   *string `json:"smtp_password"`
	SMTPFromEmail  *string `json:"smtp_from_email"`
	S3Endpoint     *string `json:"s3_endpoint"`
	S3Region       *string `json:"s3_region"`
	S3BucketName   *string `json:"s3_bucket_name"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
}

// UpdatePlatformConfig patches only the fields present in the payload, so a
// config save never blanks a stored secret.
func (h *Handlers) UpdatePlatformConfig(c *fiber.Ctx) error {
	var req PlatformConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var cfg models.PlatformConfig
	if err := h.DB.First(&cfg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	updates := map[string]interface{}{}
	set := func(column string, v any) { updates[column] = v }
	if req.WhatsAppNumber != nil {
		set("platform_whatsapp_number", *req.WhatsAppNumber)
	}
	if req.SMTPHost != nil {
		set("smtp_host", *req.SMTPHost)
	}
	if req.SMTPPort != nil {
		set("smtp_port", *req.SMTPPort)
	}
	if req.SMTPUser != nil {
		set("smtp_user", *req.SMTPUser)
	}
	if req.SMTPPassword != nil {
		set("smtp_password", *req.SMTPPassword)
	}
	if req.SMTPFromEmail != nil {
		set("smtp_from_email", *req.SMTPFromEmail)
	}
	if req.S3Endpoint != nil {
		set("s3_endpoint", *req.S3Endpoint)
	}
	if req.S3Region != nil {
		set("s3_region", *req.S3Region)
	}
	if req.S3BucketName != nil {
		set("s3_bucket_name", *req.S3BucketName)
	}
	if req.S3AccessKey != nil {
		set("s3_access_key", *req.S3AccessKey)
	}
	if req.S3SecretKey != nil {
		set("s3_secret_key", *req.S3SecretKey)
	}
	if len(updates) == 0 {
		return badRequest(c, "Nothing to update")
	}

	if err := h.DB.Model(&cfg).Updates(updates).Error; err != nil {
		logrus.WithError(err).Error("update platform config")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update config"})
	}

	if err := h.DB.First(&cfg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(cfg)
}
