package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates the operator account plus its store, parked on the active
// trial plan. New accounts are always store admins; the platform operator is
// provisioned out of band.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.FullName == "" {
		return badRequest(c, "Email and full name are required")
	}
	if len(req.Password) < 6 {
		return badRequest(c, "Password must have at least 6 characters")
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return badRequest(c, "Email already registered")
	}

	hashed, err := middleware.HashPassword(req.Password)
	if err != nil {
		logrus.WithError(err).Error("hash password")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error processing request"})
	}

	user := models.User{
		Email:    req.Email,
		Password: hashed,
		FullName: req.FullName,
		Role:     models.RoleStoreAdmin,
	}
	var store models.Store

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		var trialPlan models.SubscriptionPlan
		planErr := tx.Where("is_trial = ? AND is_active = ?", true, true).
			Limit(1).Find(&trialPlan).Error
		if planErr != nil {
			return planErr
		}

		now := time.Now()
		store = models.Store{
			UserID:                user.ID,
			Name:                  "Minha Loja 3D",
			SubscriptionStatus:    models.SubscriptionTrial,
			SubscriptionStartedAt: &now,
			IsActive:              true,
		}
		if trialPlan.ID != "" {
			store.SubscriptionPlanID = &trialPlan.ID
		}
		return tx.Create(&store).Error
	})
	if err != nil {
		logrus.WithError(err).Error("signup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error creating account"})
	}

	token, err := h.Auth.GenerateToken(user.ID, user.Role, store.ID)
	if err != nil {
		logrus.WithError(err).Error("generate token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating authentication token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":    token,
		"role":     user.Role,
		"store_id": store.ID,
	})
}

// Login authenticates an operator and resolves their tenant once; the store
// id rides in the token from here on.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		logrus.WithError(err).Error("login lookup")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if err := middleware.CheckPassword(req.Password, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	var storeID string
	if user.Role == models.RoleStoreAdmin {
		var store models.Store
		if err := h.DB.Select("id").Where("user_id = ?", user.ID).First(&store).Error; err == nil {
			storeID = store.ID
		}
	}

	token, err := h.Auth.GenerateToken(user.ID, user.Role, storeID)
	if err != nil {
		logrus.WithError(err).Error("generate token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating authentication token"})
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"role":     user.Role,
		"store_id": storeID,
	})
}

// Profile returns the authenticated operator.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	var user models.User
	if err := h.DB.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(user)
}
