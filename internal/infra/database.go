package infra

import (
	"fmt"

	"siso/internal/config"
	"siso/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteDSN builds a glebarez/sqlite DSN for a database file with foreign
// keys enforced and a busy timeout for concurrent writers.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewDatabase opens a GORM connection for cfg.DBDriver ("postgres" or
// "sqlite") and tunes the pool. It does not touch the schema; call Migrate.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.DBDriver)
	}

	logLevel := logger.Warn
	if cfg.Env == "production" || cfg.Env == "test" {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		// one writer at a time; avoids SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}
	return db, nil
}

// Migrate creates/updates every table and then applies the idempotent
// patches GORM cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Receita{},
		&model.Despesa{},
		&model.Fornecedor{},
		&model.Dentista{},
		&model.Caixa{},
		&model.ItemMovimento{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs DDL that both postgres and sqlite accept and that
// is safe to re-run.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Storage-level guard for "one open drawer per user": a concurrent
		// second open fails on insert even if both transactions saw no row.
		{"partial unique index on open caixas", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_caixas_usuario_aberto
    ON caixas (usuario_id)
    WHERE fechamento IS NULL`},
		{"index itens_movimento (caixa_id, data_hora_movimento)", `
CREATE INDEX IF NOT EXISTS idx_itens_movimento_caixa_data
    ON itens_movimento (caixa_id, data_hora_movimento)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
