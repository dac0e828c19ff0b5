// Package boothook registers the daemon for start-on-boot while at
// least one alarm is active, so the schedule gets rebuilt after a
// restart. Armed timers do not survive a reboot; the registration does.
package boothook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/emersion/go-autostart"
)

type Hook struct {
	app *autostart.App
	l   *logger.Logger
}

func New(name, displayName string, l *logger.Logger) (*Hook, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("boothook - New - os.Executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, fmt.Errorf("boothook - New - filepath.EvalSymlinks: %w", err)
	}

	return &Hook{
		app: &autostart.App{
			Name:        name,
			DisplayName: displayName,
			Exec:        []string{execPath},
		},
		l: l,
	}, nil
}

// SetEnabled is idempotent: enabling an enabled hook or disabling a
// disabled one is a no-op.
func (h *Hook) SetEnabled(enabled bool) error {
	if enabled == h.app.IsEnabled() {
		return nil
	}

	if enabled {
		if err := h.app.Enable(); err != nil {
			return fmt.Errorf("boothook - SetEnabled - app.Enable: %w", err)
		}
		h.l.Info("boothook: enabled")
		return nil
	}

	if err := h.app.Disable(); err != nil {
		return fmt.Errorf("boothook - SetEnabled - app.Disable: %w", err)
	}
	h.l.Info("boothook: disabled")
	return nil
}
