package database

import (
	"fmt"
	"time"

	"shopnotes-app/config"
	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/contacts"
	"shopnotes-app/internal/domain/mentions"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		// tenants
		&shops.Shop{},
		&billing.Subscription{},

		// notes
		&notes.Folder{},
		&notes.Note{},
		&notes.NoteVersion{},

		// contacts
		&contacts.ContactFolder{},
		&contacts.Contact{},

		&mentions.CustomMention{},
	}
}

// Open connects to PostgreSQL without migrating.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// InitDB opens config.DB_URL, migrates it and stores the handle in DB.
func InitDB() error {
	db, err := Open(config.DB_URL)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	DB = db

	logger.WithComponent("database").Info("connected and migrated")
	return nil
}
