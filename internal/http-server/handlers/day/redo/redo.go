package redo

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type DayRedoer interface {
	Redo(ctx context.Context, dateStr string) error
}

func New(log *slog.Logger, redoer DayRedoer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.day.redo.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		date := chi.URLParam(r, "date")
		if date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required"))
			return
		}

		err := redoer.Redo(r.Context(), date)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid date", slog.String("date", date))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid date"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("nothing to redo", slog.String("date", date))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "nothing to redo"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("day is locked", slog.String("date", date))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.LOCKED), "day is being edited elsewhere"))
			return
		}

		if err != nil {
			log.Error("Failed to redo", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to redo"))
			return
		}

		log.Info("Day change redone", slog.String("date", date))
		render.JSON(w, r, response.Response{})
	}
}
