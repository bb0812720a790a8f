package weekly

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

type SeriesProvider interface {
	WeeklySeries(ctx context.Context, personID, fromStr, toStr string) ([]api.WeekPointResponse, error)
}

type Response struct {
	response.Response
	Series []api.WeekPointResponse `json:"series"`
}

func New(log *slog.Logger, provider SeriesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.weekly.New"

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

		series, err := provider.WeeklySeries(r.Context(), personID, from, to)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid range", slog.String("from", from), slog.String("to", to))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid date range"))
			return
		}

		if err != nil {
			log.Error("Failed to compute weekly series", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to compute weekly series"))
			return
		}

		render.JSON(w, r, Response{Series: series})
	}
}
