package database

import "github.com/jmoiron/sqlx"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meters (
		id             BIGSERIAL PRIMARY KEY,
		meter_id       TEXT NOT NULL UNIQUE,
		name           TEXT NOT NULL,
		owner          TEXT NOT NULL DEFAULT '',
		role           TEXT NOT NULL,
		voltage        DOUBLE PRECISION NOT NULL DEFAULT 0,
		current        DOUBLE PRECISION NOT NULL DEFAULT 0,
		apparent_power DOUBLE PRECISION NOT NULL DEFAULT 0,
		watts          DOUBLE PRECISION NOT NULL DEFAULT 0,
		status         TEXT NOT NULL DEFAULT 'Offline',
		last_updated   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS usage_logs (
		id              BIGSERIAL PRIMARY KEY,
		bucket          TIMESTAMPTZ NOT NULL,
		cadence         TEXT NOT NULL,
		street_input    DOUBLE PRECISION NOT NULL DEFAULT 0,
		to_next         DOUBLE PRECISION NOT NULL DEFAULT 0,
		house_total     DOUBLE PRECISION NOT NULL DEFAULT 0,
		power_loss      DOUBLE PRECISION NOT NULL DEFAULT 0,
		theft_alert     TEXT NOT NULL DEFAULT 'No Theft',
		total_consumed  DOUBLE PRECISION NOT NULL DEFAULT 0,
		loss_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (bucket, cadence)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_logs_cadence_bucket ON usage_logs (cadence, bucket DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_logs_alert_bucket ON usage_logs (theft_alert, bucket DESC)`,
}

// migrate applies the schema idempotently at startup.
func migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
