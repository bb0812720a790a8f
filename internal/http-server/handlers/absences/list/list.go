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

type AbsenceLister interface {
	ListAbsences(ctx context.Context) ([]*api.AbsenceResponse, error)
}

type Response struct {
	response.Response
	Absences []*api.AbsenceResponse `json:"absences"`
}

func New(log *slog.Logger, lister AbsenceLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.absences.list.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		absences, err := lister.ListAbsences(r.Context())
		if err != nil {
			log.Error("Failed to list absences", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list absences"))
			return
		}

		render.JSON(w, r, Response{Absences: absences})
	}
}
