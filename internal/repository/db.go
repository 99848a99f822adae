package repository

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/soracom/connectivity-benchmark/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the run database and migrates the schema. Any driver
// other than mysql means SQLite at dsn.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		// Default to SQLite (pure Go)
		if dsn == "" {
			dsn = "cellbench.db"
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect database (%s): %w", driver, err)
	}
	if err := db.AutoMigrate(&model.Run{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
