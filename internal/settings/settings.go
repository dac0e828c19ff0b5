// Package settings persists the user-tunable knobs that live outside
// the alarm table. Today that is one value: the ambient light level
// required to dismiss a ringing alarm.
package settings

import (
	"context"
	"errors"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/Raimguhinov/alarm-go/pkg/postgres"
	"github.com/jackc/pgx/v5"
)

const keyRequiredLightLevel = "required_light_level"

type Bounds struct {
	Default float64
	Min     float64
	Max     float64
}

type Store struct {
	client *postgres.Postgres
	logger *logger.Logger
	bounds Bounds
}

func New(client *postgres.Postgres, l *logger.Logger, b Bounds) *Store {
	return &Store{client: client, logger: l, bounds: b}
}

func (s *Store) Bounds() Bounds {
	return s.bounds
}

func (s *Store) RequiredLightLevel(ctx context.Context) (float64, error) {
	s.logger.Debug("postgres.RequiredLightLevel")

	var level float64
	err := s.client.Pool.QueryRow(ctx, `
		SELECT value FROM alarm.settings WHERE name = $1
	`, keyRequiredLightLevel).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.bounds.Default, nil
		}
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.RequiredLightLevel", logger.Err(err))
		return 0, err
	}
	return s.clamp(level), nil
}

// SetRequiredLightLevel stores the level clamped into bounds and
// returns what was actually stored.
func (s *Store) SetRequiredLightLevel(ctx context.Context, level float64) (float64, error) {
	s.logger.Debug("postgres.SetRequiredLightLevel")

	level = s.clamp(level)
	_, err := s.client.Pool.Exec(ctx, `
		INSERT INTO alarm.settings (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`, keyRequiredLightLevel, level)
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.SetRequiredLightLevel", logger.Err(err))
		return 0, err
	}
	return level, nil
}

func (s *Store) clamp(level float64) float64 {
	if level < s.bounds.Min {
		return s.bounds.Min
	}
	if level > s.bounds.Max {
		return s.bounds.Max
	}
	return level
}
