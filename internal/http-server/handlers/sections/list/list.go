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

type SectionLister interface {
	ListSections(ctx context.Context) ([]*api.SectionResponse, error)
}

type Response struct {
	response.Response
	Sections []*api.SectionResponse `json:"sections"`
}

func New(log *slog.Logger, lister SectionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sections.list.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sections, err := lister.ListSections(r.Context())
		if err != nil {
			log.Error("Failed to list sections", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list sections"))
			return
		}

		render.JSON(w, r, Response{Sections: sections})
	}
}
