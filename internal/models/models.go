package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the uuid primary key shared by every table. IDs are generated
// application-side so handlers can reference new rows before the insert
// round-trips.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// ==========================================
// AUTH & TENANCY
// ==========================================

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleStoreAdmin Role = "store_admin"
)

type User struct {
	Base
	Email    string `gorm:"not null;unique" json:"email"`
	Password string `gorm:"column:password_hash;not null" json:"-"`
	FullName string `gorm:"not null" json:"full_name"`
	Phone    string `json:"phone"`
	Role     Role   `gorm:"type:varchar(20);not null" json:"role"`
}

type SubscriptionStatus string

const (
	SubscriptionTrial    SubscriptionStatus = "trial"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Store is the tenant root. Every business row below hangs off one of these.
type Store struct {
	Base
	UserID                string             `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                  string             `gorm:"not null" json:"name"`
	LogoURL               string             `json:"logo_url"`
	HeaderText            string             `json:"header_text"`
	FooterText            string             `json:"footer_text"`
	PrimaryColor          string             `gorm:"default:#06b6d4" json:"primary_color"`
	SecondaryColor        string             `gorm:"default:#0f172a" json:"secondary_color"`
	ProductColumns        int                `gorm:"default:3" json:"product_columns"`
	WhatsAppNumber        string             `gorm:"column:whatsapp_number" json:"whatsapp_number"`
	WhatsAppFloating      bool               `gorm:"column:whatsapp_floating_enabled;default:true" json:"whatsapp_floating_enabled"`
	IsActive              bool               `gorm:"default:true" json:"is_active"`
	SubscriptionPlanID    *string            `gorm:"type:uuid" json:"subscription_plan_id"`
	SubscriptionStatus    SubscriptionStatus `gorm:"type:varchar(20);default:trial" json:"subscription_status"`
	SubscriptionStartedAt *time.Time         `json:"subscription_started_at"`
	UpdatedAt             time.Time          `json:"updated_at"`

	SubscriptionPlan *SubscriptionPlan `gorm:"foreignKey:SubscriptionPlanID" json:"subscription_plan,omitempty"`
}

type SubscriptionPlan struct {
	Base
	Name                string   `gorm:"not null" json:"name"`
	Description         string   `json:"description"`
	PriceMonthly        float64  `gorm:"not null;default:0" json:"price_monthly"`
	// Limits and flags default in code (see handlers/plans.go and the seed),
	// not in the schema: default tags would resurrect zero values on insert.
	MaxProducts         int      `gorm:"not null" json:"max_products"`
	MaxPhotosPerProduct int      `gorm:"not null" json:"max_photos_per_product"`
	PaymentMethods      []string `gorm:"serializer:json" json:"payment_methods"`
	IsTrial             bool     `gorm:"not null;default:false" json:"is_trial"`
	IsActive            bool     `gorm:"not null" json:"is_active"`
}

// PlatformConfig is the single-row platform operator configuration.
type PlatformConfig struct {
	Base
	WhatsAppNumber string    `gorm:"column:platform_whatsapp_number" json:"platform_whatsapp_number"`
	SMTPHost       string    `gorm:"column:smtp_host" json:"smtp_host"`
	SMTPPort       int       `gorm:"column:smtp_port" json:"smtp_port"`
	SMTPUser       string    `gorm:"column:smtp_user" json:"smtp_user"`
	SMTPPassword   string    `gorm:"column:smtp_password" json:"-"`
	SMTPFromEmail  string    `gorm:"column:smtp_from_email" json:"smtp_from_email"`
	S3Endpoint     string    `gorm:"column:s3_endpoint" json:"s3_endpoint"`
	S3Region       string    `gorm:"column:s3_region" json:"s3_region"`
	S3BucketName   string    `gorm:"column:s3_bucket_name" json:"s3_bucket_name"`
	S3AccessKey    string    `gorm:"column:s3_access_key" json:"-"`
	S3SecretKey    string    `gorm:"column:s3_secret_key" json:"-"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (PlatformConfig) TableName() string { return "platform_config" }

// ==========================================
// CATALOG
// ==========================================

type ProductCategory struct {
	Base
	StoreID   string `gorm:"type:uuid;not null;index" json:"store_id"`
	Name      string `gorm:"not null" json:"name"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}

type Product struct {
	Base
	StoreID               string    `gorm:"type:uuid;not null;index" json:"store_id"`
	CategoryID            *string   `gorm:"type:uuid" json:"category_id"`
	Name                  string    `gorm:"not null" json:"name"`
	Description           string    `json:"description"`
	SalePrice             float64   `gorm:"not null;default:0" json:"sale_price"`
	SalePricePromotional  *float64  `json:"sale_price_promotional"`
	IsOnSale              bool      `gorm:"default:false" json:"is_on_sale"`
	WeightGrams           float64   `gorm:"default:0" json:"weight_grams"`
	ProductionTimeMinutes float64   `gorm:"default:0" json:"production_time_minutes"`
	ProductionCost        float64   `gorm:"default:0" json:"production_cost"`
	PackagingCost         float64   `gorm:"default:0" json:"packaging_cost"`
	PostProductionCost    float64   `gorm:"default:0" json:"post_production_cost"`
	CardFeePercent        float64   `gorm:"default:0" json:"card_fee_percent"`
	WasteRatePercent      float64   `gorm:"default:0" json:"waste_rate_percent"`
	HasColorVariation     bool      `gorm:"default:false" json:"has_color_variation"`
	ColorOptions          []string  `gorm:"serializer:json" json:"color_options"`
	IsCustomizable        bool      `gorm:"default:false" json:"is_customizable"`
	CustomizationType     string    `json:"customization_type"`
	// No gorm default on IsActive: a default tag makes inserts skip the
	// zero value, so a product created inactive would come back active.
	IsActive              bool      `json:"is_active"`
	Photos                []string  `gorm:"serializer:json" json:"photos"`
	DesignFileURL         string    `gorm:"column:stl_file_url" json:"stl_file_url"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// EffectivePrice is what a customer pays right now: the promotional price
// when the product is flagged on sale and one is set, the base price
// otherwise.
func (p Product) EffectivePrice() float64 {
	if p.IsOnSale && p.SalePricePromotional != nil {
		return *p.SalePricePromotional
	}
	return p.SalePrice
}

// DiscountPercent returns the rounded storefront badge percentage, 0 when
// the product is not discounted.
func (p Product) DiscountPercent() int {
	if !p.IsOnSale || p.SalePricePromotional == nil || p.SalePrice <= 0 {
		return 0
	}
	pct := (1 - *p.SalePricePromotional/p.SalePrice) * 100
	if pct < 0 {
		return 0
	}
	return int(pct + 0.5)
}

// ==========================================
// INVENTORY
// ==========================================

type Filament struct {
	Base
	StoreID          string     `gorm:"type:uuid;not null;index" json:"store_id"`
	Name             string     `gorm:"not null" json:"name"`
	Material         string     `gorm:"not null" json:"material"`
	Color            string     `gorm:"not null" json:"color"`
	Brand            string     `json:"brand"`
	Supplier         string     `json:"supplier"`
	PricePerKg       float64    `gorm:"default:0" json:"price_per_kg"`
	QuantityGrams    float64    `gorm:"default:0" json:"quantity_grams"`
	LastPurchaseDate *time.Time `json:"last_purchase_date"`
	Notes            string     `json:"notes"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FilamentPurchase is append-only: rows are inserted when stock comes in and
// never updated or deleted afterwards.
type FilamentPurchase struct {
	Base
	FilamentID    string     `gorm:"type:uuid;not null;index" json:"filament_id"`
	QuantityGrams float64    `gorm:"not null" json:"quantity_grams"`
	PricePaid     *float64   `json:"price_paid"`
	Supplier      string     `json:"supplier"`
	Brand         string     `json:"brand"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	Notes         string     `json:"notes"`
}

type Printer struct {
	Base
	StoreID                string  `gorm:"type:uuid;not null;index" json:"store_id"`
	Name                   string  `gorm:"not null" json:"name"`
	Model                  string  `json:"model"`
	PowerConsumptionWatts  float64 `gorm:"default:0" json:"power_consumption_watts"`
	MaintenanceCostMonthly float64 `gorm:"default:0" json:"maintenance_cost_monthly"`
	Notes                  string  `json:"notes"`
}

type Packaging struct {
	Base
	StoreID    string  `gorm:"type:uuid;not null;index" json:"store_id"`
	Name       string  `gorm:"not null" json:"name"`
	Type       string  `gorm:"default:box" json:"type"`
	Cost       float64 `gorm:"default:0" json:"cost"`
	Quantity   int     `gorm:"default:0" json:"quantity"`
	Dimensions string  `json:"dimensions"`
	Supplier   string  `json:"supplier"`
	Notes      string  `json:"notes"`
}

func (Packaging) TableName() string { return "packaging" }

// ==========================================
// CUSTOMERS & ORDERS
// ==========================================

type Customer struct {
	Base
	StoreID string `gorm:"type:uuid;not null;index" json:"store_id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Source  string `json:"source"`
	Notes   string `json:"notes"`
}

func (Customer) TableName() string { return "store_customers" }

type ProductionStatus string

const (
	ProductionAwaiting     ProductionStatus = "awaiting"
	ProductionInProduction ProductionStatus = "in_production"
	ProductionDone         ProductionStatus = "done"
)

type PaymentStatus string

const (
	PaymentAwaiting PaymentStatus = "awaiting"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentCanceled PaymentStatus = "canceled"
)

type Order struct {
	Base
	StoreID          string           `gorm:"type:uuid;not null;index" json:"store_id"`
	CustomerID       *string          `gorm:"type:uuid" json:"customer_id"`
	PrinterID        *string          `gorm:"type:uuid" json:"printer_id"`
	FilamentID       *string          `gorm:"type:uuid" json:"filament_id"`
	PackagingID      *string          `gorm:"type:uuid" json:"packaging_id"`
	ProductionStatus ProductionStatus `gorm:"type:varchar(20);default:awaiting" json:"production_status"`
	PaymentStatus    PaymentStatus    `gorm:"type:varchar(20);default:awaiting" json:"payment_status"`
	TotalAmount      float64          `gorm:"default:0" json:"total_amount"`
	ProductionNotes  string           `json:"production_notes"`
	UpdatedAt        time.Time        `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem snapshots the unit price at order-creation time so later product
// edits do not rewrite order history. ProductID goes null when the product
// is deleted; the row itself stays.
type OrderItem struct {
	Base
	OrderID           string  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID         *string `gorm:"type:uuid" json:"product_id"`
	Quantity          int     `gorm:"not null;default:1" json:"quantity"`
	UnitPrice         float64 `gorm:"not null;default:0" json:"unit_price"`
	ColorSelected     string  `json:"color_selected"`
	CustomizationText string  `json:"customization_text"`
	Notes             string  `json:"notes"`
}

// ==========================================
// AUDIT
// ==========================================

type AuditAction string

const (
	AuditCreated       AuditAction = "created"
	AuditUpdated       AuditAction = "updated"
	AuditDeleted       AuditAction = "deleted"
	AuditStatusChanged AuditAction = "status_changed"
)

// AuditLogEntry is append-only and written best-effort; see internal/audit.
type AuditLogEntry struct {
	Base
	StoreID    string      `gorm:"type:uuid;index" json:"store_id"`
	UserID     string      `gorm:"type:uuid" json:"user_id"`
	EntityType string      `gorm:"not null" json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Action     AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	Details    string      `json:"details"`
}

func (AuditLogEntry) TableName() string { return "audit_log" }

// ==========================================
// TENANT SCOPING
// ==========================================

// TenantEntity is implemented by every store-owned record so the repository
// can stamp ownership and name the entity in audit and cache keys.
type TenantEntity interface {
	StampStore(storeID string)
	RecordID() string
	EntityName() string
}

func (p *ProductCategory) StampStore(id string) { p.StoreID = id }
func (p *ProductCategory) RecordID() string     { return p.ID }
func (*ProductCategory) EntityName() string     { return "category" }

func (p *Product) StampStore(id string) { p.StoreID = id }
func (p *Product) RecordID() string     { return p.ID }
func (*Product) EntityName() string     { return "product" }

func (f *Filament) StampStore(id string) { f.StoreID = id }
func (f *Filament) RecordID() string     { return f.ID }
func (*Filament) EntityName() string     { return "filament" }

func (p *Printer) StampStore(id string) { p.StoreID = id }
func (p *Printer) RecordID() string     { return p.ID }
func (*Printer) EntityName() string     { return "printer" }

func (p *Packaging) StampStore(id string) { p.StoreID = id }
func (p *Packaging) RecordID() string     { return p.ID }
func (*Packaging) EntityName() string     { return "packaging" }

func (c *Customer) StampStore(id string) { c.StoreID = id }
func (c *Customer) RecordID() string     { return c.ID }
func (*Customer) EntityName() string     { return "customer" }

func (o *Order) StampStore(id string) { o.StoreID = id }
func (o *Order) RecordID() string     { return o.ID }
func (*Order) EntityName() string     { return "order" }

// ShortCode is the customer-facing reference printed on storefront pages and
// order messages: first 8 chars of the uuid, upper-cased.
func ShortCode(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
