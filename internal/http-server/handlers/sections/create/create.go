package create

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

type SectionCreator interface {
	CreateSection(ctx context.Context, req *api.SectionRequest) (*api.SectionResponse, error)
}

type Request struct {
	api.SectionRequest
}

type Response struct {
	response.Response
	Section api.SectionResponse `json:"section,omitempty"`
}

func New(log *slog.Logger, creator SectionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sections.create.New"

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

		section, err := creator.CreateSection(r.Context(), &req.SectionRequest)

		if errors.Is(err, response.ErrConflict) {
			log.Error("section already exists")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "section already exists"))
			return
		}

		if err != nil {
			log.Error("Failed to create section", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create section"))
			return
		}

		log.Info("Section created", slog.Any("section", section))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, section)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, section *api.SectionResponse) {
	render.JSON(w, r, Response{
		Section: *section,
	})
}
