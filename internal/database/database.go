package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"back_scan/internal/config"
	"back_scan/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database and migrates it
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Type {
	case "mysql":
		db, err = connectMySQL(cfg)
	case "postgres", "postgresql":
		db, err = connectPostgreSQL(cfg)
	case "sqlite":
		db, err = OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	log.Printf("DEBUG: Database (%s) connected and migrated", cfg.Type)
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
}

// connectMySQL connects to MySQL database
func connectMySQL(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=10s&readTimeout=30s&writeTimeout=30s",
		orDefault(cfg.User, "root"), cfg.Password, cfg.Host, orDefault(cfg.Port, "3306"), cfg.Name)

	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	return db, configurePool(db, 100)
}

// connectPostgreSQL connects to PostgreSQL database
func connectPostgreSQL(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		cfg.Host, orDefault(cfg.Port, "5432"), orDefault(cfg.User, "postgres"), cfg.Password, cfg.Name)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, configurePool(db, 100)
}

// OpenSQLite opens a SQLite file through the pure-Go driver. It does not migrate.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(&sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, gormConfig())
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	return db, configurePool(db, 1)
}

func configurePool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(min(10, maxOpen))
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

// Migrate creates/updates database tables and secondary indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.Document{},
		&models.Page{},
		&models.KVEntry{},
	); err != nil {
		return err
	}
	return ensureIndexes(db)
}

// Ping checks that the database connection is alive
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
