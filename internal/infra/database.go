package infra

import (
	"fmt"

	"github.com/onnez7/lenzoocrm-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the DDL
// GORM cannot express (partial unique index, order number sequence).
//
// TranslateError is on so driver unique-violation errors surface as
// gorm.ErrDuplicatedKey, which the cashier service relies on when two
// concurrent opens race for the same franchise.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates all tables and applies schema patches.
// Also used by integration tests against a disposable database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Franchise{},
		&model.User{},
		&model.Employee{},
		&model.Client{},
		&model.Product{},
		&model.CashierSession{},
		&model.CashierSangria{},
		&model.ServiceOrder{},
		&model.ServiceOrderItem{},
		&model.Receivable{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// fully handle on its own.  Each statement uses IF NOT EXISTS / existence-check
// semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open session per franchise, enforced at the database
		// level. The application pre-check alone cannot stop two concurrent
		// opens; this index makes the second insert fail with a unique
		// violation that the service maps to a conflict.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cashier_sessions_one_open') THEN
		    CREATE UNIQUE INDEX idx_cashier_sessions_one_open
		        ON cashier_sessions (franchise_id)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Sequence backing atomic order number generation (OS-000001, ...).
		`CREATE SEQUENCE IF NOT EXISTS service_orders_number_seq`,
		// Partial index for the overdue sweep query.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_receivables_pending_due') THEN
		    CREATE INDEX idx_receivables_pending_due
		        ON receivables (due_date)
		        WHERE status = 'pending';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
