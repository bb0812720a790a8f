package summary

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
)

type Summarizer interface {
	Summary(ctx context.Context, personID, fromStr, toStr string) (*api.SummaryResponse, error)
}

type Response struct {
	response.Response
	Summary api.SummaryResponse `json:"summary,omitempty"`
}

func New(log *slog.Logger, summarizer Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.summary.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		personID := chi.URLParam(r, "personId")
		if personID == "" {
			log.Error("personId is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "personId is required"))
			return
		}

		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")

		summary, err := summarizer.Summary(r.Context(), personID, from, to)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid range", slog.String("from", from), slog.String("to", to))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid date range"))
			return
		}

		if err != nil {
			log.Error("Failed to compute summary", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to compute summary"))
			return
		}

		responseOK(w, r, summary)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, summary *api.SummaryResponse) {
	render.JSON(w, r, Response{
		Summary: *summary,
	})
}
