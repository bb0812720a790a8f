package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type GroupAbsenceDeleter interface {
	DeleteGroupAbsence(ctx context.Context, groupID string) error
}

func New(log *slog.Logger, deleter GroupAbsenceDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.group_absences.delete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		groupID := chi.URLParam(r, "groupId")
		if groupID == "" {
			log.Error("groupId is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "groupId is required"))
			return
		}

		err := deleter.DeleteGroupAbsence(r.Context(), groupID)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("group not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "group not found"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("group is locked")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.LOCKED), "group is being edited elsewhere"))
			return
		}

		if err != nil {
			log.Error("Failed to delete group absence", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete group absence"))
			return
		}

		log.Info("Group absence deleted", slog.String("group_id", groupID))
		render.JSON(w, r, response.Response{})
	}
}
