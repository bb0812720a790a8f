package delete

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

type AbsenceDeleter interface {
	DeleteAbsence(ctx context.Context, recordID string) error
}

func New(log *slog.Logger, deleter AbsenceDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.absences.delete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		err := deleter.DeleteAbsence(r.Context(), id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("absence not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "absence not found"))
			return
		}

		if err != nil {
			log.Error("Failed to delete absence", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete absence"))
			return
		}

		log.Info("Absence deleted", slog.String("id", id))
		render.JSON(w, r, response.Response{})
	}
}
