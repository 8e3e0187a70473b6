package services

import (
	"fmt"
	"strings"

	"swiss-tournament/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const sqliteScheme = "sqlite://"

// OpenDatabase opens Postgres for regular DSNs and the pure-Go SQLite driver
// for sqlite://<path> DSNs. SQLite connections always enforce foreign keys so
// player deletion cascades the same way on both backends.
func OpenDatabase(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(dsn, sqliteScheme); ok {
		dialector = sqlite.Open(withForeignKeys(path))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, storageErr(err)
	}
	return db, nil
}

func withForeignKeys(path string) string {
	if strings.Contains(path, "foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// AutoMigrate creates or updates the players and matches tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Player{}, &models.Match{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
