// Package database opens the Postgres connection and owns schema migration.
package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/steinhorstbr/d-shop-craft/internal/config"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

func Connect(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	logrus.Info("database connection established")
	return db, nil
}

// Migrate creates/updates the schema and seeds the trial plan new signups
// land on.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.SubscriptionPlan{},
		&models.Store{},
		&models.PlatformConfig{},
		&models.ProductCategory{},
		&models.Product{},
		&models.Filament{},
		&models.FilamentPurchase{},
		&models.Printer{},
		&models.Packaging{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditLogEntry{},
	)
	if err != nil {
		return err
	}
	return seed(db)
}

func seed(db *gorm.DB) error {
	var trialCount int64
	err := db.Model(&models.SubscriptionPlan{}).
		Where("is_trial = ? AND is_active = ?", true, true).
		Count(&trialCount).Error
	if err != nil {
		return err
	}
	if trialCount == 0 {
		trial := models.SubscriptionPlan{
			Name:                "Trial",
			Description:         "Plano gratuito de avaliação",
			PriceMonthly:        0,
			MaxProducts:         10,
			MaxPhotosPerProduct: 6,
			IsTrial:             true,
			IsActive:            true,
		}
		if err := db.Create(&trial).Error; err != nil {
			return err
		}
		logrus.Info("seeded trial subscription plan")
	}

	var configCount int64
	if err := db.Model(&models.PlatformConfig{}).Count(&configCount).Error; err != nil {
		return err
	}
	if configCount == 0 {
		if err := db.Create(&models.PlatformConfig{}).Error; err != nil {
			return err
		}
	}
	return nil
}
