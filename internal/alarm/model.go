package alarm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekday tokens follow the persisted row format: 1..7, Sunday = 1.
const (
	Sunday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Alarm is one persisted alarm record. An empty RepeatDays set means the
// alarm is one-shot: it fires once and deactivates itself.
type Alarm struct {
	ID          int      `json:"id"`
	Hour        int      `json:"hour"`
	Minute      int      `json:"minute"`
	IsActive    bool     `json:"isActive"`
	RepeatDays  Weekdays `json:"repeatDays"`
	RingtoneURI string   `json:"ringtoneUri,omitempty"`
}

func (a *Alarm) IsOneShot() bool {
	return len(a.RepeatDays) == 0
}

func (a *Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("%w: hour %d", ErrInvalidTime, a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("%w: minute %d", ErrInvalidTime, a.Minute)
	}
	return a.RepeatDays.Validate()
}

// Weekdays is a normalized (sorted, deduplicated) set of weekday tokens.
type Weekdays []int

func NewWeekdays(days ...int) Weekdays {
	seen := make(map[int]bool, len(days))
	wd := make(Weekdays, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			wd = append(wd, d)
		}
	}
	sort.Ints(wd)
	return wd
}

func (wd Weekdays) Validate() error {
	for _, d := range wd {
		if d < Sunday || d > Saturday {
			return fmt.Errorf("%w: weekday token %d", ErrInvalidWeekday, d)
		}
	}
	return nil
}

func (wd Weekdays) Contains(day int) bool {
	for _, d := range wd {
		if d == day {
			return true
		}
	}
	return false
}

// Token converts a time.Weekday into the persisted 1..7 token.
func Token(day time.Weekday) int {
	return int(day) + 1
}

// String serializes the set in the legacy comma-joined row format.
// An empty set serializes to the empty string.
func (wd Weekdays) String() string {
	if len(wd) == 0 {
		return ""
	}
	parts := make([]string, len(wd))
	for i, d := range wd {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// ParseWeekdays is the inverse of Weekdays.String.
func ParseWeekdays(s string) (Weekdays, error) {
	if s == "" {
		return Weekdays{}, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, p)
		}
		days = append(days, d)
	}
	wd := NewWeekdays(days...)
	return wd, wd.Validate()
}

// RingingState is the persisted singleton behind the at-most-one-ringing
// guarantee. AlarmIDs is non-empty iff IsRinging.
type RingingState struct {
	IsRinging bool      `json:"isRinging"`
	AlarmIDs  []int     `json:"alarmIds"`
	SessionID uuid.UUID `json:"sessionId,omitempty"`
	StartedAt time.Time `json:"startedAt,omitempty"`
}
