package get

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

type DayGetter interface {
	GetDay(ctx context.Context, dateStr string) (*api.DayResponse, error)
}

type Response struct {
	response.Response
	Day api.DayResponse `json:"day,omitempty"`
}

func New(log *slog.Logger, getter DayGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.day.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		date := chi.URLParam(r, "date")
		if date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required"))
			return
		}

		day, err := getter.GetDay(r.Context(), date)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid date", slog.String("date", date))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid date"))
			return
		}

		if err != nil {
			log.Error("Failed to get day", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get day"))
			return
		}

		responseOK(w, r, day)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, day *api.DayResponse) {
	render.JSON(w, r, Response{
		Day: *day,
	})
}
