package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type migration struct {
	version string
	sql     map[Dialect]string
}

var migrations = []migration{
	{
		version: "001_create_users",
		sql: map[Dialect]string{
			MySQL: `
				CREATE TABLE IF NOT EXISTS users (
					id    BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
					email VARCHAR(255) NOT NULL UNIQUE,
					name  VARCHAR(255) NOT NULL
				)`,
			Postgres: `
				CREATE TABLE IF NOT EXISTS users (
					id    BIGSERIAL PRIMARY KEY,
					email TEXT NOT NULL UNIQUE,
					name  TEXT NOT NULL
				)`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS users (
					id    INTEGER PRIMARY KEY AUTOINCREMENT,
					email TEXT NOT NULL UNIQUE,
					name  TEXT NOT NULL
				)`,
		},
	},
	{
		version: "002_create_bmi_records",
		sql: map[Dialect]string{
			MySQL: `
				CREATE TABLE IF NOT EXISTS bmi_records (
					id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
					user_id  BIGINT UNSIGNED NOT NULL,
					weight   DOUBLE NOT NULL,
					height   DOUBLE NOT NULL,
					bmi      DOUBLE NOT NULL,
					category VARCHAR(50) NOT NULL,
					date     DATETIME(6) NOT NULL,
					INDEX idx_bmi_records_user_date (user_id, date),
					FOREIGN KEY (user_id) REFERENCES users(id)
				)`,
			Postgres: `
				CREATE TABLE IF NOT EXISTS bmi_records (
					id       BIGSERIAL PRIMARY KEY,
					user_id  BIGINT NOT NULL REFERENCES users(id),
					weight   DOUBLE PRECISION NOT NULL,
					height   DOUBLE PRECISION NOT NULL,
					bmi      DOUBLE PRECISION NOT NULL,
					category TEXT NOT NULL,
					date     TIMESTAMPTZ NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_bmi_records_user_date ON bmi_records(user_id, date)`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS bmi_records (
					id       INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id  INTEGER NOT NULL REFERENCES users(id),
					weight   REAL NOT NULL,
					height   REAL NOT NULL,
					bmi      REAL NOT NULL,
					category TEXT NOT NULL,
					date     DATETIME NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_bmi_records_user_date ON bmi_records(user_id, date)`,
		},
	},
}

var schemaMigrationsDDL = map[Dialect]string{
	MySQL: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	Postgres: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT now()
		)`,
	SQLite: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
}

// RunMigrations applies every pending migration once, in order.
func RunMigrations(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, schemaMigrationsDDL[db.dialect]); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := executeMigration(ctx, db, m); err != nil {
			return err
		}

		logrus.WithField("version", m.version).Info("applied migration")
	}

	return nil
}

func isMigrationApplied(ctx context.Context, db *DB, version string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		db.Rebind("SELECT COUNT(*) FROM schema_migrations WHERE version = ?"),
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return count > 0, nil
}

func executeMigration(ctx context.Context, db *DB, m migration) error {
	script, ok := m.sql[db.dialect]
	if !ok {
		return fmt.Errorf("migration %s has no %s variant", m.version, db.dialect)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", m.version, err)
	}

	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		db.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"),
		m.version,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", m.version, err)
	}

	return tx.Commit()
}
