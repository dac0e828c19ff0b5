package app

import (
	"net/http"

	"github.com/Raimguhinov/alarm-go/internal/alarm"
	"github.com/Raimguhinov/alarm-go/internal/config"
	"github.com/Raimguhinov/alarm-go/internal/settings"
	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(
	l *logger.Logger,
	cfg *config.Config,
	svc *alarm.Service,
	sets *settings.Store,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(corsMiddleware(cfg))

	h := &handler{svc: svc, sets: sets, l: l}

	r.Route("/alarms", func(r chi.Router) {
		r.Get("/", h.listAlarms)
		r.Post("/", h.createAlarm)
		r.Get("/events", h.alarmEvents)
		r.Get("/export.ics", h.exportICS)
		r.Route("/{alarmID}", func(r chi.Router) {
			r.Delete("/", h.deleteAlarm)
			r.Patch("/active", h.toggleAlarm)
			r.Patch("/time", h.updateAlarmTime)
			r.Patch("/repeat", h.setRepeatDays)
			r.Patch("/ringtone", h.setRingtone)
		})
	})

	r.Get("/ringing", h.ringingState)
	r.Post("/ringing/stop", h.stopRinging)

	r.Get("/settings/light", h.getLightLevel)
	r.Put("/settings/light", h.setLightLevel)

	return r
}
