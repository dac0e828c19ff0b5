package db

import (
	"github.com/Raimguhinov/alarm-go/internal/alarm"
	"github.com/jackc/pgx/v5/pgtype"
)

type alarmRow struct {
	ID          int
	Hour        int
	Minute      int
	IsActive    bool
	RepeatDays  string
	RingtoneURI pgtype.Text
}

func (r *alarmRow) ToDomain() (alarm.Alarm, error) {
	days, err := alarm.ParseWeekdays(r.RepeatDays)
	if err != nil {
		return alarm.Alarm{}, err
	}
	return alarm.Alarm{
		ID:          r.ID,
		Hour:        r.Hour,
		Minute:      r.Minute,
		IsActive:    r.IsActive,
		RepeatDays:  days,
		RingtoneURI: r.RingtoneURI.String,
	}, nil
}

func ringtoneValue(uri string) pgtype.Text {
	return pgtype.Text{String: uri, Valid: uri != ""}
}
