package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/reprush/internal/auth"
	"github.com/2beens/reprush/internal/gymstats/achievements"
	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/telemetry/tracing"
	"github.com/2beens/reprush/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

const maxPageSize = 100

type workoutsService interface {
	Complete(ctx context.Context, result Result) (Committed, error)
	List(ctx context.Context, params ListParams) ([]Workout, int, error)
	Profile(ctx context.Context, userID string) (Profile, error)
}

type exerciseLookup interface {
	Get(ctx context.Context, id int) (exercises.Exercise, error)
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type Handler struct {
	service  workoutsService
	exercise exerciseLookup
}

func NewHandler(service workoutsService, exercise exerciseLookup) *Handler {
	return &Handler{
		service:  service,
		exercise: exercise,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workouts/page/{page}/size/{size}", h.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts/sync", h.HandleSync).Methods("POST", "OPTIONS").Name("sync-workout")
	r.HandleFunc("/profile", h.HandleProfile).Methods("GET", "OPTIONS").Name("get-profile")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, err := auth.UserID(ctx)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil || size < 1 || size > maxPageSize {
		http.Error(w, "invalid size", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("page", page), attribute.Int("size", size))

	list, total, err := h.service.List(ctx, ListParams{
		UserID: userID,
		Page:   page,
		Size:   size,
	})
	if err != nil {
		log.Errorf("list workouts for [%s]: %s", userID, err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}

	if list == nil {
		list = []Workout{}
	}
	pkg.WriteJSON(w, ListResponse{Workouts: list, Total: total}, http.StatusOK)
}

// HandleSync stores a workout that was logged offline. Entry XP is computed
// again from the catalog, client values are not trusted.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sync")
	defer span.End()

	userID, err := auth.UserID(ctx)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("sync workout, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.LocalID == "" {
		http.Error(w, "missing local id", http.StatusBadRequest)
		return
	}
	if !req.Payload.Summary.Mode.IsValid() {
		http.Error(w, "invalid session mode", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("local_id", req.LocalID))

	logEntries := make([]exercises.LogEntry, 0, len(req.Payload.Entries))
	for _, entry := range req.Payload.Entries {
		ex, err := h.exercise.Get(ctx, entry.ExerciseID)
		if errors.Is(err, exercises.ErrExerciseNotFound) {
			http.Error(w, "unknown exercise", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Errorf("sync workout [%s], get exercise [%d]: %s", req.LocalID, entry.ExerciseID, err)
			http.Error(w, "failed to get exercise", http.StatusInternalServerError)
			return
		}
		logEntries = append(logEntries, exercises.NewLogEntry(ex, entry.Inputs))
	}

	summary := req.Payload.Summary
	summary.UserID = userID
	result, err := Finalize(summary, logEntries)
	if errors.Is(err, ErrEmptySession) {
		http.Error(w, "workout has no xp", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("sync workout [%s], finalize: %s", req.LocalID, err)
		http.Error(w, "failed to finalize workout", http.StatusInternalServerError)
		return
	}
	result.LocalID = req.LocalID

	committed, err := h.service.Complete(ctx, result)
	if errors.Is(err, ErrAlreadySynced) {
		pkg.WriteJSON(w, committed, http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("sync workout [%s]: %s", req.LocalID, err)
		http.Error(w, "failed to store workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("offline workout [%s] synced as [%d]", req.LocalID, committed.WorkoutID)
	pkg.WriteJSON(w, committed, http.StatusCreated)
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.profile")
	defer span.End()

	userID, err := auth.UserID(ctx)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.service.Profile(ctx, userID)
	if err != nil {
		log.Errorf("get profile for [%s]: %s", userID, err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	if profile.Achievements == nil {
		profile.Achievements = []achievements.Achievement{}
	}
	pkg.WriteJSON(w, profile, http.StatusOK)
}
