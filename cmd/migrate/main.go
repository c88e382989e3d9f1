package main

import (
	"github.com/sirupsen/logrus"

	"github.com/steinhorstbr/d-shop-craft/internal/config"
	"github.com/steinhorstbr/d-shop-craft/internal/database"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	logrus.Info("migration completed")
}
