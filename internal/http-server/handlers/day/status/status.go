package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"attendance-service/api"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type StatusSetter interface {
	SetStatus(ctx context.Context, dateStr string, req *api.StatusChangeRequest) error
}

type Request struct {
	api.StatusChangeRequest
}

func New(log *slog.Logger, setter StatusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.day.status.New"

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

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		err := setter.SetStatus(r.Context(), date, &req.StatusChangeRequest)

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
			log.Error("Failed to set status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to set status"))
			return
		}

		log.Info("Status set",
			slog.String("date", date),
			slog.String("person_id", req.PersonID),
			slog.String("section_id", req.SectionID),
			slog.String("status", req.Status),
		)
		render.JSON(w, r, response.Response{})
	}
}
