package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"medstock/internal/model"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY,
  username      TEXT        NOT NULL UNIQUE,
  name          TEXT        NOT NULL DEFAULT '',
  password_hash TEXT        NOT NULL,
  role          TEXT        NOT NULL DEFAULT 'admin',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_medicines",
		SQL: `CREATE TABLE IF NOT EXISTS medicines (
  id          UUID        PRIMARY KEY,
  name        TEXT        NOT NULL,
  unit        TEXT        NOT NULL,
  dosage_form TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_medicines_name",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_medicines_name_lower ON medicines (lower(name));`,
	},
	{
		Name: "create_table_transaction_types",
		SQL: `CREATE TABLE IF NOT EXISTS transaction_types (
  id        INT  PRIMARY KEY,
  code      TEXT NOT NULL UNIQUE,
  label     TEXT NOT NULL,
  direction TEXT NOT NULL CHECK (direction IN ('opening', 'in', 'out'))
);`,
	},
	{
		Name: "create_table_stock_transactions",
		SQL: `CREATE TABLE IF NOT EXISTS stock_transactions (
  id          UUID        PRIMARY KEY,
  medicine_id UUID        NOT NULL REFERENCES medicines (id) ON DELETE RESTRICT,
  txn_type_id INT         NOT NULL REFERENCES transaction_types (id),
  txn_date    DATE        NOT NULL,
  quantity    BIGINT      NOT NULL CHECK (quantity > 0),
  remarks     TEXT        NOT NULL DEFAULT '',
  created_by  TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_stock_transactions_medicine_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stock_transactions_medicine_date ON stock_transactions (medicine_id, txn_date);`,
	},
	{
		Name: "create_index_stock_transactions_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stock_transactions_date ON stock_transactions (txn_date);`,
	},
	{
		Name: "create_table_month_closes",
		SQL: `CREATE TABLE IF NOT EXISTS month_closes (
  id              UUID        PRIMARY KEY,
  year            INT         NOT NULL,
  month           INT         NOT NULL CHECK (month BETWEEN 1 AND 12),
  closed_by       TEXT        NOT NULL,
  closed_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  forwarded_count INT         NOT NULL DEFAULT 0,
  archive_key     TEXT        NOT NULL DEFAULT '',
  UNIQUE (year, month)
);`,
	},
	{
		Name: "create_table_revoked_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS revoked_tokens (
  jti        TEXT        PRIMARY KEY,
  expires_at TIMESTAMPTZ NOT NULL
);`,
	},
}

const seedTransactionTypeSQL = `
INSERT INTO transaction_types (id, code, label, direction)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, label = EXCLUDED.label, direction = EXCLUDED.direction`

// EnsureMigrated checks if the schema exists and runs migrations if it doesn't.
// The transaction type enumeration is re-seeded on every call.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public.revoked_tokens') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		log.Info("db_migration_start", "status", "in_progress")

		for _, step := range steps {
			stepStart := time.Now()
			if _, err := db.ExecContext(ctx, step.SQL); err != nil {
				log.Error("db_migration_failed",
					"status", "error",
					"migration_step", step.Name,
					"error_message", err.Error(),
					"duration_ms", time.Since(start).Milliseconds(),
					"step_duration_ms", time.Since(stepStart).Milliseconds(),
				)
				return fmt.Errorf("migration step %s failed: %w", step.Name, err)
			}
			log.Info("db_migration_step",
				"status", "success",
				"migration_step", step.Name,
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
		}
	}

	for _, t := range model.TransactionTypes {
		if _, err := db.ExecContext(ctx, seedTransactionTypeSQL, t.ID, t.Code, t.Label, string(t.Direction)); err != nil {
			log.Error("db_seed_failed", "status", "error", "error_message", err.Error())
			return fmt.Errorf("seed transaction type %s: %w", t.Code, err)
		}
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
