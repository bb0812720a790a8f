package list

import (
	"context"
	"log/slog"
	"net/http"

	"attendance-service/api"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type PeopleLister interface {
	ListPeople(ctx context.Context) ([]*api.PersonResponse, error)
}

type Response struct {
	response.Response
	People []*api.PersonResponse `json:"people"`
}

func New(log *slog.Logger, lister PeopleLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.people.list.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		people, err := lister.ListPeople(r.Context())
		if err != nil {
			log.Error("Failed to list people", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list people"))
			return
		}

		render.JSON(w, r, Response{People: people})
	}
}
