package db

import (
	"context"
	"fmt"

	"github.com/Raimguhinov/alarm-go/pkg/postgres"
	"github.com/jackc/pgx/v5"
)

// Schema v1 shipped without ringtone_uri; the column lands as a
// backward-compatible nullable addition so existing rows survive as-is.
var migrations = []string{
	`CREATE SCHEMA IF NOT EXISTS alarm`,
	`CREATE TABLE IF NOT EXISTS alarm.alarms (
		id          INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		hour        SMALLINT NOT NULL CHECK (hour BETWEEN 0 AND 23),
		minute      SMALLINT NOT NULL CHECK (minute BETWEEN 0 AND 59),
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		repeat_days TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE alarm.alarms ADD COLUMN IF NOT EXISTS ringtone_uri TEXT`,
	`CREATE TABLE IF NOT EXISTS alarm.ringing_state (
		singleton  BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
		is_ringing BOOLEAN NOT NULL DEFAULT FALSE,
		alarm_ids  INTEGER[] NOT NULL DEFAULT '{}',
		session_id UUID,
		started_at TIMESTAMPTZ
	)`,
	`INSERT INTO alarm.ringing_state (singleton) VALUES (TRUE)
		ON CONFLICT (singleton) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS alarm.settings (
		name  TEXT PRIMARY KEY,
		value DOUBLE PRECISION NOT NULL
	)`,
}

// Migrate applies the alarm schema idempotently, inside one transaction
// so a half-applied schema is never observable.
func Migrate(ctx context.Context, client *postgres.Postgres) error {
	return client.WithinTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range migrations {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("db - Migrate: %w", client.ToPgErr(err))
			}
		}
		return nil
	})
}
