package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Raimguhinov/alarm-go/internal/alarm"
	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/Raimguhinov/alarm-go/pkg/postgres"
	"github.com/jackc/pgx/v5"
)

const alarmsTable = "alarm.alarms"

type store struct {
	client *postgres.Postgres
	logger *logger.Logger
	bcast  *broadcaster
}

// NewStore returns the Postgres-backed alarm table.
func NewStore(client *postgres.Postgres, l *logger.Logger) alarm.Store {
	return &store{
		client: client,
		logger: l,
		bcast:  newBroadcaster(),
	}
}

func (s *store) Insert(ctx context.Context, a *alarm.Alarm) (int, error) {
	s.logger.Debug("postgres.InsertAlarm")

	sql, args, err := s.client.Builder.
		Insert(alarmsTable).
		Columns("hour", "minute", "is_active", "repeat_days", "ringtone_uri").
		Values(a.Hour, a.Minute, a.IsActive, a.RepeatDays.String(), ringtoneValue(a.RingtoneURI)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("db - Insert - Builder: %w", err)
	}

	var id int
	if err := s.client.Pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.InsertAlarm", logger.Err(err))
		return 0, err
	}

	s.notify(ctx)
	return id, nil
}

func (s *store) Update(ctx context.Context, a *alarm.Alarm) error {
	s.logger.Debug("postgres.UpdateAlarm")

	sql, args, err := s.client.Builder.
		Update(alarmsTable).
		Set("hour", a.Hour).
		Set("minute", a.Minute).
		Set("is_active", a.IsActive).
		Set("repeat_days", a.RepeatDays.String()).
		Set("ringtone_uri", ringtoneValue(a.RingtoneURI)).
		Set("modified_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("db - Update - Builder: %w", err)
	}

	if _, err := s.client.Pool.Exec(ctx, sql, args...); err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.UpdateAlarm", logger.Err(err))
		return err
	}

	s.notify(ctx)
	return nil
}

func (s *store) Delete(ctx context.Context, id int) error {
	s.logger.Debug("postgres.DeleteAlarm")

	sql, args, err := s.client.Builder.
		Delete(alarmsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("db - Delete - Builder: %w", err)
	}

	if _, err := s.client.Pool.Exec(ctx, sql, args...); err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.DeleteAlarm", logger.Err(err))
		return err
	}

	s.notify(ctx)
	return nil
}

func (s *store) GetByID(ctx context.Context, id int) (*alarm.Alarm, error) {
	s.logger.Debug("postgres.GetAlarmByID")

	var row alarmRow
	err := s.client.Pool.QueryRow(ctx, `
		SELECT id, hour, minute, is_active, repeat_days, ringtone_uri
		FROM alarm.alarms
		WHERE id = $1
	`, id).Scan(&row.ID, &row.Hour, &row.Minute, &row.IsActive, &row.RepeatDays, &row.RingtoneURI)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, alarm.ErrNotFound
		}
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.GetAlarmByID", logger.Err(err))
		return nil, err
	}

	a, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *store) GetAll(ctx context.Context) ([]alarm.Alarm, error) {
	return s.list(ctx, squirrel.Sqlizer(nil))
}

func (s *store) GetActive(ctx context.Context) ([]alarm.Alarm, error) {
	return s.list(ctx, squirrel.Eq{"is_active": true})
}

func (s *store) list(ctx context.Context, where squirrel.Sqlizer) ([]alarm.Alarm, error) {
	s.logger.Debug("postgres.ListAlarms")

	q := s.client.Builder.
		Select("id", "hour", "minute", "is_active", "repeat_days", "ringtone_uri").
		From(alarmsTable).
		OrderBy("id ASC")
	if where != nil {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("db - list - Builder: %w", err)
	}

	rows, err := s.client.Pool.Query(ctx, sql, args...)
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.ListAlarms", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	var alarms []alarm.Alarm
	for rows.Next() {
		var row alarmRow
		if err := rows.Scan(
			&row.ID, &row.Hour, &row.Minute, &row.IsActive, &row.RepeatDays, &row.RingtoneURI,
		); err != nil {
			err = s.client.ToPgErr(err)
			s.logger.Error("postgres.ListAlarms", logger.Err(err))
			return nil, err
		}
		a, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}

func (s *store) DeactivateOneShot(ctx context.Context, ids []int) error {
	s.logger.Debug("postgres.DeactivateOneShot")

	if len(ids) == 0 {
		return nil
	}

	_, err := s.client.Pool.Exec(ctx, `
		UPDATE alarm.alarms
		SET is_active = FALSE, modified_at = now()
		WHERE id = ANY($1) AND repeat_days = ''
	`, toInt32(ids))
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.DeactivateOneShot", logger.Err(err))
		return err
	}

	s.notify(ctx)
	return nil
}

// Watch registers a live view over the table. A slow consumer only ever
// loses intermediate snapshots, never the latest one.
func (s *store) Watch(ctx context.Context) <-chan []alarm.Alarm {
	snapshot, err := s.GetAll(ctx)
	if err != nil {
		s.logger.Warn("postgres.Watch: initial snapshot failed", logger.Err(err))
		snapshot = nil
	}
	return s.bcast.subscribe(ctx, snapshot)
}

func (s *store) notify(ctx context.Context) {
	if !s.bcast.hasSubscribers() {
		return
	}

	snapshot, err := s.GetAll(ctx)
	if err != nil {
		s.logger.Warn("postgres.notify: snapshot failed", logger.Err(err))
		return
	}

	s.bcast.publish(snapshot)
}

func toInt32(ids []int) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}
