package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/elcilc/clicle/api/middleware"
	"github.com/elcilc/clicle/api/responses"
	"github.com/elcilc/clicle/internal/alarms"
	pkgerrors "github.com/elcilc/clicle/pkg/errors"
	"github.com/elcilc/clicle/pkg/logger"
	"github.com/elcilc/clicle/pkg/sse"
)

// currentUserID resolves the authenticated user id seeded by the auth
// middleware.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authenticated user")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid authenticated user")
	}
	return id, nil
}

// SubscribeAlarms opens a server-sent event stream for the caller and blocks
// until the stream ends or the client disconnects.
func SubscribeAlarms(svc alarms.Service, streamLifetime time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alarm service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stream, err := sse.NewStream(w, streamLifetime)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotificationConnect, err, "open alarm stream"))
			return
		}

		if err := svc.Subscribe(r.Context(), userID, stream); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The handler owns the connection for the stream's whole life. The
		// client dropping closes the request context; the lifetime timer or a
		// superseding subscription closes the stream.
		select {
		case <-stream.Done():
		case <-r.Context().Done():
		}
		stream.Close()
	}
}

// ListAlarms returns a page of the caller's alarm history, newest first.
func ListAlarms(svc alarms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alarm service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := alarms.ListParams{
			UserID: userID,
			Cursor: r.URL.Query().Get("cursor"),
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = limit
		}
		if raw := r.URL.Query().Get("unreadOnly"); raw != "" {
			unread, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unreadOnly must be a boolean"))
				return
			}
			params.UnreadOnly = unread
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MarkAlarmRead marks one alarm of the caller as read.
func MarkAlarmRead(svc alarms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alarm service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alarmID, err := uuid.Parse(chi.URLParam(r, "alarmId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid alarm id"))
			return
		}

		if err := svc.MarkRead(r.Context(), userID, alarmID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// MarkAllAlarmsRead marks every unread alarm of the caller as read.
func MarkAllAlarmsRead(svc alarms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alarm service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.MarkAllRead(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": count})
	}
}
