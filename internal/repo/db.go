package repo

import (
	"FormIntake/internal/model"
	"fmt"
	"path/filepath"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// InitDB открывает SQL-бэкенд и выполняет миграции.
// Для sqlite с пустым dsn база создаётся в dataDir/formintake.db.
func InitDB(storage, dsn, dataDir string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch storage {
	case StorageSQLite:
		if dsn == "" {
			dsn = filepath.Join(dataDir, "formintake.db")
		}
		// чистый Go-драйвер modernc регистрируется под именем "sqlite"
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	case StoragePostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres storage requires DATABASE_URI")
		}
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql storage %q", storage)
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", storage, err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Record{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}
