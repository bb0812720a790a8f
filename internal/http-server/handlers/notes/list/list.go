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

type NoteLister interface {
	ListNotes(ctx context.Context) ([]*api.NoteResponse, error)
}

type Response struct {
	response.Response
	Notes []*api.NoteResponse `json:"notes"`
}

func New(log *slog.Logger, lister NoteLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.list.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		notes, err := lister.ListNotes(r.Context())
		if err != nil {
			log.Error("Failed to list notes", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list notes"))
			return
		}

		render.JSON(w, r, Response{Notes: notes})
	}
}
