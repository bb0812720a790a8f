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

type PersonCreator interface {
	CreatePerson(ctx context.Context, req *api.PersonRequest) (*api.PersonResponse, error)
}

type Request struct {
	api.PersonRequest
}

type Response struct {
	response.Response
	Person api.PersonResponse `json:"person,omitempty"`
}

func New(log *slog.Logger, creator PersonCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.people.create.New"

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

		person, err := creator.CreatePerson(r.Context(), &req.PersonRequest)

		if errors.Is(err, response.ErrConflict) {
			log.Error("person already exists")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "person already exists"))
			return
		}

		if err != nil {
			log.Error("Failed to create person", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create person"))
			return
		}

		log.Info("Person created", slog.Any("person", person))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, person)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, person *api.PersonResponse) {
	render.JSON(w, r, Response{
		Person: *person,
	})
}
