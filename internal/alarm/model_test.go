package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdays_LegacyRowFormat(t *testing.T) {
	wd, err := ParseWeekdays("2,3,6")
	require.NoError(t, err)
	assert.Equal(t, NewWeekdays(Monday, Tuesday, Friday), wd)
	assert.Equal(t, "2,3,6", wd.String())

	empty, err := ParseWeekdays("")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, "", empty.String())
}

func TestWeekdays_RejectsBadTokens(t *testing.T) {
	_, err := ParseWeekdays("0,3")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = ParseWeekdays("monday")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	assert.ErrorIs(t, Weekdays{8}.Validate(), ErrInvalidWeekday)
}

func TestNewWeekdays_NormalizesInput(t *testing.T) {
	assert.Equal(t, Weekdays{Sunday, Tuesday, Friday}, NewWeekdays(Friday, Tuesday, Sunday, Tuesday))
}

func TestToken(t *testing.T) {
	assert.Equal(t, Sunday, Token(time.Sunday))
	assert.Equal(t, Saturday, Token(time.Saturday))
}

func TestAlarm_Validate(t *testing.T) {
	a := Alarm{Hour: 7, Minute: 30, RepeatDays: NewWeekdays(Monday)}
	assert.NoError(t, a.Validate())

	assert.ErrorIs(t, (&Alarm{Hour: 24}).Validate(), ErrInvalidTime)
	assert.ErrorIs(t, (&Alarm{Minute: 60}).Validate(), ErrInvalidTime)
}
