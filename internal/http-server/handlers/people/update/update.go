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

type PersonUpdater interface {
	UpdatePerson(ctx context.Context, id string, req *api.PersonRequest) (*api.PersonResponse, error)
}

type Request struct {
	api.PersonRequest
}

type Response struct {
	response.Response
	Person api.PersonResponse `json:"person,omitempty"`
}

func New(log *slog.Logger, updater PersonUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.people.update.New"

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

		person, err := updater.UpdatePerson(r.Context(), id, &req.PersonRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("person not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "person not found"))
			return
		}

		if err != nil {
			log.Error("Failed to update person", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update person"))
			return
		}

		log.Info("Person updated", slog.Any("person", person))
		responseOK(w, r, person)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, person *api.PersonResponse) {
	render.JSON(w, r, Response{
		Person: *person,
	})
}
