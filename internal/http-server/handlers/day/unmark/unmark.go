package unmark

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

type SectionUnmarker interface {
	UnmarkAll(ctx context.Context, dateStr, sectionID string) (int, error)
}

type Request struct {
	SectionID string `json:"section_id"`
}

type Response struct {
	response.Response
	Removed int `json:"removed"`
}

func New(log *slog.Logger, unmarker SectionUnmarker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.day.unmark.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.SectionID == "" {
			log.Error("section_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "section_id is required"))
			return
		}

		removed, err := unmarker.UnmarkAll(r.Context(), date, req.SectionID)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid date", slog.String("date", date))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid date"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("day is locked", slog.String("date", date))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.LOCKED), "day is being edited elsewhere"))
			return
		}

		if err != nil {
			log.Error("Failed to unmark section", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to unmark section"))
			return
		}

		log.Info("Section unmarked",
			slog.String("date", date),
			slog.String("section_id", req.SectionID),
			slog.Int("removed", removed),
		)
		render.JSON(w, r, Response{Removed: removed})
	}
}
