package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/steinhorstbr/d-shop-craft/internal/middleware"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

const (
	defaultMaxPhotos = 6
	designLinkTTL    = 365 * 24 * time.Hour
	maxUploadBytes   = 20 << 20
)

var photoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

var designExtensions = map[string]bool{
	".stl": true, ".3mf": true,
}

// maxPhotosFor reads the store plan's photo cap, falling back to the default
// when the store has no plan attached.
func (h *Handlers) maxPhotosFor(storeID string) int {
	var store models.Store
	err := h.DB.Preload("SubscriptionPlan").First(&store, "id = ?", storeID).Error
	if err == nil && store.SubscriptionPlan != nil && store.SubscriptionPlan.MaxPhotosPerProduct > 0 {
		return store.SubscriptionPlan.MaxPhotosPerProduct
	}
	return defaultMaxPhotos
}

// UploadProductPhoto stores one photo under the public upload root and
// appends its URL to the product. The plan caps how many photos a product
// carries.
func (h *Handlers) UploadProductPhoto(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	product, err := h.Products.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Product not found")
	}

	if len(product.Photos) >= h.maxPhotosFor(storeID) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Photo limit for your plan reached"})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return badRequest(c, "Photo file is required")
	}
	if file.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "File too large"})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !photoExtensions[ext] {
		return badRequest(c, "Unsupported image format")
	}

	dir := filepath.Join(h.Cfg.PublicUploadDir, "products", storeID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logrus.WithError(err).Error("create upload dir")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store photo"})
	}

	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
		logrus.WithError(err).Error("save photo")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store photo"})
	}

	photoURL := fmt.Sprintf("/public/uploads/products/%s/%s", storeID, name)
	product.Photos = append(product.Photos, photoURL)
	if err := h.Products.Update(storeID, middleware.UserID(c), product); err != nil {
		return repoError(c, err, "Product not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url":    photoURL,
		"photos": product.Photos,
	})
}

// DeleteProductPhoto removes one photo URL from the product. The file on
// disk is removed best-effort; a missing file is not an error.
func (h *Handlers) DeleteProductPhoto(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return badRequest(c, "Photo URL is required")
	}

	storeID := middleware.StoreID(c)
	product, err := h.Products.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Product not found")
	}

	kept := product.Photos[:0]
	found := false
	for _, p := range product.Photos {
		if p == req.URL {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	}
	product.Photos = kept

	if err := h.Products.Update(storeID, middleware.UserID(c), product); err != nil {
		return repoError(c, err, "Product not found")
	}

	if rel, ok := strings.CutPrefix(req.URL, "/public/uploads/"); ok {
		_ = os.Remove(filepath.Join(h.Cfg.PublicUploadDir, filepath.Clean(rel)))
	}

	return c.JSON(fiber.Map{"photos": product.Photos})
}

// UploadDesignFile stores the printable model privately and records a signed
// download URL on the product. Only slicer formats are accepted.
func (h *Handlers) UploadDesignFile(c *fiber.Ctx) error {
	storeID := middleware.StoreID(c)
	product, err := h.Products.Get(storeID, c.Params("id"))
	if err != nil {
		return repoError(c, err, "Product not found")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Design file is required")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !designExtensions[ext] {
		return badRequest(c, "Only .stl and .3mf files are accepted")
	}

	dir := filepath.Join(h.Cfg.PrivateUploadDir, storeID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logrus.WithError(err).Error("create design dir")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store file"})
	}

	name := product.ID + ext
	if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
		logrus.WithError(err).Error("save design file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store file"})
	}

	relPath := filepath.ToSlash(filepath.Join(storeID, name))
	token, err := h.Auth.GenerateFileToken(relPath, designLinkTTL)
	if err != nil {
		logrus.WithError(err).Error("sign design url")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign download URL"})
	}

	product.DesignFileURL = "/api/v1/files/designs?token=" + token
	if err := h.Products.Update(storeID, middleware.UserID(c), product); err != nil {
		return repoError(c, err, "Product not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"stl_file_url": product.DesignFileURL})
}

// DownloadDesignFile streams a private design file to whoever holds a valid
// signed URL.
func (h *Handlers) DownloadDesignFile(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return badRequest(c, "Token is required")
	}

	relPath, err := h.Auth.VerifyFileToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired link"})
	}

	clean := filepath.Clean(relPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired link"})
	}

	full := filepath.Join(h.Cfg.PrivateUploadDir, clean)
	if _, err := os.Stat(full); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}
	return c.Download(full)
}
