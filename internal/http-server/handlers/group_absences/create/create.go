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

type GroupAbsenceCreator interface {
	CreateGroupAbsence(ctx context.Context, req *api.GroupAbsenceRequest) ([]*api.AbsenceResponse, error)
}

type Request struct {
	api.GroupAbsenceRequest
}

type Response struct {
	response.Response
	Absences []*api.AbsenceResponse `json:"absences,omitempty"`
}

func New(log *slog.Logger, creator GroupAbsenceCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.group_absences.create.New"

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

		absences, err := creator.CreateGroupAbsence(r.Context(), &req.GroupAbsenceRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid group absence")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid group absence"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("group is locked")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.LOCKED), "group is being edited elsewhere"))
			return
		}

		if err != nil {
			log.Error("Failed to create group absence", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create group absence"))
			return
		}

		log.Info("Group absence created", slog.Int("records", len(absences)))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Absences: absences})
	}
}
