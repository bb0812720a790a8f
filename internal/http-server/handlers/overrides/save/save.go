package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"attendance-service/api"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type OverrideSaver interface {
	SaveOverride(ctx context.Context, req *api.OverrideRequest) error
}

type Request struct {
	api.OverrideRequest
}

func New(log *slog.Logger, saver OverrideSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.overrides.save.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		err := saver.SaveOverride(r.Context(), &req.OverrideRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid override")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid override"))
			return
		}

		if err != nil {
			log.Error("Failed to save override", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to save override"))
			return
		}

		log.Info("Override saved", slog.String("date", req.Date), slog.String("section_id", req.SectionID))
		render.JSON(w, r, response.Response{})
	}
}
