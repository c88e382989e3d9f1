package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type Claims struct {
	UserID  string      `json:"user_id"`
	Role    models.Role `json:"role"`
	StoreID string      `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// Auth issues and verifies the HS256 tokens that carry identity, role and
// the resolved tenant. The store id is resolved once at login and travels in
// the token; tenant-scoped handlers read it from locals and never from any
// ambient state.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(password, hashed string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

func (a *Auth) GenerateToken(userID string, role models.Role, storeID string) (string, error) {
	claims := &Claims{
		UserID:  userID,
		Role:    role,
		StoreID: storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// FileClaims sign a single private file path into a long-lived download URL.
type FileClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// GenerateFileToken signs access to one private file. Links are meant to be
// pasted into slicers and chats, so they live long.
func (a *Auth) GenerateFileToken(path string, ttl time.Duration) (string, error) {
	claims := &FileClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyFileToken returns the signed path or an error for anything expired
// or tampered with.
func (a *Auth) VerifyFileToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &FileClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*FileClaims)
	if !ok || !token.Valid || claims.Path == "" {
		return "", errors.New("invalid file token")
	}
	return claims.Path, nil
}

// Protected rejects requests without a valid bearer token and stashes the
// caller's identity in locals.
func (a *Auth) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header is missing"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Bearer token not found"})
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("userRole", claims.Role)
		c.Locals("storeID", claims.StoreID)
		return c.Next()
	}
}

// RoleRequired gates a route group to the given roles.
func RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals("userRole").(models.Role)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		for _, role := range roles {
			if userRole == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't have permission to access this resource"})
	}
}

// TenantRequired blocks tenant-scoped routes until a store id was resolved
// for the caller.
func TenantRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if StoreID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No store resolved for this account"})
		}
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

func StoreID(c *fiber.Ctx) string {
	id, _ := c.Locals("storeID").(string)
	return id
}
