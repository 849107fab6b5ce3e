package db

import (
	"fmt"
	"os"
	"path/filepath"

	"commentflow/config"
	"commentflow/models"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Connect opens the configured database (sqlite3 by default).
func Connect(conf config.Configuration, logger glog.Logger) (*gorm.DB, error) {
	logger = glog.Ensure(logger)

	var (
		db  *gorm.DB
		err error
	)

	switch conf.Database {
	case "postgres", "postgresql":
		logger.Info("connecting to postgresql", "host", conf.DbHost, "db", conf.DbName)
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass
		db, err = gorm.Open("postgres", path)
	default:
		path := conf.DbPath
		if path == "" {
			path = "db/database.db"
		}
		if path != ":memory:" {
			if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
				return nil, fmt.Errorf("creating database dir: %w", mkErr)
			}
		}
		logger.Info("connecting to sqlite3", "path", path)
		db, err = gorm.Open("sqlite3", path)
		if err == nil {
			// sqlite allows a single writer.
			db.DB().SetMaxOpenConns(1)
		}
	}

	if err != nil {
		logger.Error("failed to connect database", "error", err)
		return nil, err
	}

	db.LogMode(conf.DbDebug)
	return db, nil
}

// Migrate creates or updates the tables the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SocialIntegration{},
		&models.CommentAutomation{},
		&models.ChatbotAutomation{},
		&models.WebhookSubscription{},
		&models.AutomationRun{},
	).Error
}
