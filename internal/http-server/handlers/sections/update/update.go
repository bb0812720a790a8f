package update

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

type SectionUpdater interface {
	UpdateSection(ctx context.Context, id string, req *api.SectionRequest) (*api.SectionResponse, error)
}

type Request struct {
	api.SectionRequest
}

type Response struct {
	response.Response
	Section api.SectionResponse `json:"section,omitempty"`
}

func New(log *slog.Logger, updater SectionUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sections.update.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		section, err := updater.UpdateSection(r.Context(), id, &req.SectionRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("section not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "section not found"))
			return
		}

		if err != nil {
			log.Error("Failed to update section", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update section"))
			return
		}

		log.Info("Section updated", slog.Any("section", section))
		responseOK(w, r, section)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, section *api.SectionResponse) {
	render.JSON(w, r, Response{
		Section: *section,
	})
}
