package db

import (
	"context"

	"github.com/Raimguhinov/alarm-go/internal/alarm"
	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/Raimguhinov/alarm-go/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type guard struct {
	client *postgres.Postgres
	logger *logger.Logger
}

// NewGuard returns the Postgres-backed ringing state guard. The guard is
// a single row; acquisition is one compare-and-set statement, so two
// concurrent fire callbacks cannot both win.
func NewGuard(client *postgres.Postgres, l *logger.Logger) alarm.RingingGuard {
	return &guard{client: client, logger: l}
}

func (g *guard) IsRinging(ctx context.Context) (bool, error) {
	g.logger.Debug("postgres.IsRinging")

	var ringing bool
	err := g.client.Pool.QueryRow(ctx, `
		SELECT is_ringing FROM alarm.ringing_state WHERE singleton
	`).Scan(&ringing)
	if err != nil {
		err = g.client.ToPgErr(err)
		g.logger.Error("postgres.IsRinging", logger.Err(err))
		return false, err
	}
	return ringing, nil
}

func (g *guard) SetRinging(ctx context.Context, ids []int) (bool, error) {
	g.logger.Debug("postgres.SetRinging")

	tag, err := g.client.Pool.Exec(ctx, `
		UPDATE alarm.ringing_state
		SET is_ringing = TRUE, alarm_ids = $1, session_id = $2, started_at = now()
		WHERE singleton AND NOT is_ringing
	`, toInt32(ids), uuid.New())
	if err != nil {
		err = g.client.ToPgErr(err)
		g.logger.Error("postgres.SetRinging", logger.Err(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (g *guard) Clear(ctx context.Context) error {
	g.logger.Debug("postgres.ClearRinging")

	_, err := g.client.Pool.Exec(ctx, `
		UPDATE alarm.ringing_state
		SET is_ringing = FALSE, alarm_ids = '{}', session_id = NULL, started_at = NULL
		WHERE singleton
	`)
	if err != nil {
		err = g.client.ToPgErr(err)
		g.logger.Error("postgres.ClearRinging", logger.Err(err))
		return err
	}
	return nil
}

func (g *guard) Current(ctx context.Context) (alarm.RingingState, error) {
	g.logger.Debug("postgres.CurrentRinging")

	var (
		st        alarm.RingingState
		ids       []int32
		sessionID pgtype.UUID
		startedAt pgtype.Timestamptz
	)
	err := g.client.Pool.QueryRow(ctx, `
		SELECT is_ringing, alarm_ids, session_id, started_at
		FROM alarm.ringing_state
		WHERE singleton
	`).Scan(&st.IsRinging, &ids, &sessionID, &startedAt)
	if err != nil {
		err = g.client.ToPgErr(err)
		g.logger.Error("postgres.CurrentRinging", logger.Err(err))
		return alarm.RingingState{}, err
	}

	st.AlarmIDs = make([]int, len(ids))
	for i, id := range ids {
		st.AlarmIDs[i] = int(id)
	}
	if sessionID.Valid {
		st.SessionID = uuid.UUID(sessionID.Bytes)
	}
	if startedAt.Valid {
		st.StartedAt = startedAt.Time
	}
	return st, nil
}
