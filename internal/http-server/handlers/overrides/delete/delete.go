package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type OverrideDeleter interface {
	DeleteOverride(ctx context.Context, dateStr, sectionID string) error
}

func New(log *slog.Logger, deleter OverrideDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.overrides.delete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		date := r.URL.Query().Get("date")
		sectionID := r.URL.Query().Get("section_id")
		if date == "" || sectionID == "" {
			log.Error("date or section_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date and section_id are required"))
			return
		}

		err := deleter.DeleteOverride(r.Context(), date, sectionID)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid date")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid date"))
			return
		}

		if err != nil {
			log.Error("Failed to delete override", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete override"))
			return
		}

		log.Info("Override deleted", slog.String("date", date), slog.String("section_id", sectionID))
		render.JSON(w, r, response.Response{})
	}
}
