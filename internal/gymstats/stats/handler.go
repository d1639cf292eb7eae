package stats

import (
	"context"
	"net/http"
	"strconv"

	"github.com/2beens/reprush/internal/auth"
	"github.com/2beens/reprush/internal/telemetry/tracing"
	"github.com/2beens/reprush/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=stats_test

type exercisesStats interface {
	ExerciseHistory(ctx context.Context, userID string, exerciseID int) (*ExerciseHistory, error)
}

type Handler struct {
	stats exercisesStats
}

func NewHandler(stats exercisesStats) *Handler {
	return &Handler{
		stats: stats,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workouts/exercises/{id}/history", h.HandleExerciseHistory).Methods("GET", "OPTIONS").Name("exercise-history")
}

func (h *Handler) HandleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.exerciseHistory")
	defer span.End()

	userID, err := auth.UserID(ctx)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	exerciseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || exerciseID <= 0 {
		http.Error(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	history, err := h.stats.ExerciseHistory(ctx, userID, exerciseID)
	if err != nil {
		log.Errorf("exercise [%d] history for [%s]: %s", exerciseID, userID, err)
		http.Error(w, "failed to get exercise history", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, history, http.StatusOK)
}
