package db

import (
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/mysite/internal/models"
)

// ErrUnsupportedURL is returned for a DATABASE_URL without a known scheme.
var ErrUnsupportedURL = errors.New("database url must start with 'postgres://' or 'sqlite://'")

// Init opens a GORM connection for dbURL.
// "postgres://..." URLs use the Postgres driver, "sqlite://<path>" the pure-Go SQLite one.
func Init(dbURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch {
	case strings.HasPrefix(dbURL, "postgres://"):
		// pgx parses the URL form itself.
		dialector = postgres.Open(dbURL)
		log.Println("Connecting to PostgreSQL database...")
	case strings.HasPrefix(dbURL, "sqlite://"):
		dsn := strings.TrimPrefix(dbURL, "sqlite://")
		dialector = sqlite.Open(dsn)
		log.Println("Connecting to SQLite database at", dsn)
	default:
		return nil, errors.Wrapf(ErrUnsupportedURL, "got %q", dbURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	if dialector.Name() == "sqlite" {
		// SQLite serializes writers anyway; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	log.Println("Database connection established.")
	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Question{},
		&models.Choice{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	log.Println("Migrations complete.")
	return nil
}
