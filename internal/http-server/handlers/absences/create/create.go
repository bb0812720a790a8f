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

type AbsenceCreator interface {
	CreateAbsence(ctx context.Context, req *api.AbsenceRequest) (*api.AbsenceResponse, error)
}

type Request struct {
	api.AbsenceRequest
}

type Response struct {
	response.Response
	Absence api.AbsenceResponse `json:"absence,omitempty"`
}

func New(log *slog.Logger, creator AbsenceCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.absences.create.New"

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

		absence, err := creator.CreateAbsence(r.Context(), &req.AbsenceRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid absence range")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "end date precedes start date"))
			return
		}

		if err != nil {
			log.Error("Failed to create absence", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create absence"))
			return
		}

		log.Info("Absence created", slog.Any("absence", absence))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, absence)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, absence *api.AbsenceResponse) {
	render.JSON(w, r, Response{
		Absence: *absence,
	})
}
