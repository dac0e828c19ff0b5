package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deadlineRecorder struct {
	*httptest.ResponseRecorder
	deadline time.Time
	set      bool
}

func (r *deadlineRecorder) SetWriteDeadline(t time.Time) error {
	r.deadline = t
	r.set = true
	return nil
}

func TestLiftWriteDeadline(t *testing.T) {
	rec := &deadlineRecorder{ResponseRecorder: httptest.NewRecorder()}

	require.NoError(t, liftWriteDeadline(rec))

	assert.True(t, rec.set)
	assert.True(t, rec.deadline.IsZero(), "deadline must be cleared, not extended")
}

func TestLiftWriteDeadline_Unsupported(t *testing.T) {
	err := liftWriteDeadline(httptest.NewRecorder())

	assert.ErrorIs(t, err, http.ErrNotSupported)
}
