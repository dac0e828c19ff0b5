package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Raimguhinov/alarm-go/internal/alarm"
	"github.com/Raimguhinov/alarm-go/internal/export"
	"github.com/Raimguhinov/alarm-go/internal/settings"
	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type handler struct {
	svc  *alarm.Service
	sets *settings.Store
	l    *logger.Logger
}

func (h *handler) listAlarms(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if alarms == nil {
		alarms = []alarm.Alarm{}
	}
	h.writeJSON(w, http.StatusOK, alarms)
}

func (h *handler) createAlarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hour   int `json:"hour"`
		Minute int `json:"minute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: %s", errBadRequest, err))
		return
	}

	id, err := h.svc.Add(r.Context(), req.Hour, req.Minute)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (h *handler) deleteAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := h.alarmID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) toggleAlarm(w http.ResponseWriter, r *http.Request) {
	id, err := h.alarmID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: %s", errBadRequest, err))
		return
	}
	if err := h.svc.Toggle(r.Context(), id, req.Active); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) updateAlarmTime(w http.ResponseWriter, r *http.Request) {
	id, err := h.alarmID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Hour   int `json:"hour"`
		Minute int `json:"minute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: %s", errBadRequest, err))
		return
	}
	if err := h.svc.UpdateTime(r.Context(), id, req.Hour, req.Minute); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) setRepeatDays(w http.ResponseWriter, r *http.Request) {
	id, err := h.alarmID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Days []int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: %s", errBadRequest, err))
		return
	}
	if err := h.svc.SetRepeatDays(r.Context(), id, alarm.NewWeekdays(req.Days...)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) setRingtone(w http.ResponseWriter, r *http.Request) {
	id, err := h.alarmID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: %s", errBadRequest, err))
		return
	}
	if err := h.svc.SetRingtone(r.Context(), id, req.URI); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// alarmEvents streams the full alarm list as server-sent events after
// every mutation, the stream analogue of the live list query.
func (h *handler) alarmEvents(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The stream outlives the server's write timeout; lift the deadline
	// for this response only.
	if err := liftWriteDeadline(w); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.l.Warn("http: clearing write deadline failed", logger.Err(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for alarms := range h.svc.Watch(r.Context()) {
		b, err := json.Marshal(alarms)
		if err != nil {
			h.l.Error("http: encoding alarm event failed", logger.Err(err))
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", b)
		fl.Flush()
	}
}

func (h *handler) exportICS(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	ics, err := export.ICS(alarms, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="alarms.ics"`)
	_, _ = w.Write(ics)
}

func (h *handler) ringingState(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.RingingState(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, st)
}

func (h *handler) stopRinging(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.HandleStop(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getLightLevel(w http.ResponseWriter, r *http.Request) {
	level, err := h.sets.RequiredLightLevel(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	b := h.sets.Bounds()
	h.writeJSON(w, http.StatusOK, map[string]float64{
		"level": level, "min": b.Min, "max": b.Max,
	})
}

func (h *handler) setLightLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level float64 `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: %s", errBadRequest, err))
		return
	}
	level, err := h.sets.SetRequiredLightLevel(r.Context(), req.Level)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{"level": level})
}

func liftWriteDeadline(w http.ResponseWriter) error {
	return http.NewResponseController(w).SetWriteDeadline(time.Time{})
}

var errBadRequest = errors.New("bad request")

func (h *handler) alarmID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "alarmID"))
	if err != nil {
		return 0, fmt.Errorf("%w: alarm id", errBadRequest)
	}
	return id, nil
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.l.Error("http: encoding response failed", logger.Err(err))
	}
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, alarm.ErrPermissionDenied):
		// The speculative mutation was already rolled back; tell the
		// user why their change did not stick.
		status = http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, alarm.ErrInvalidTime),
		errors.Is(err, alarm.ErrInvalidWeekday):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.l.Error("http: request failed", logger.Err(err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
