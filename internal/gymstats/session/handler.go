package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/reprush/internal/auth"
	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/gymstats/workouts"
	"github.com/2beens/reprush/internal/middleware"
	"github.com/2beens/reprush/internal/telemetry/metrics"
	"github.com/2beens/reprush/internal/telemetry/tracing"
	"github.com/2beens/reprush/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=session_test

type sessionManager interface {
	Start(ctx context.Context, userID string, params StartParams) (View, error)
	Get(userID string) (View, error)
	SetEntry(ctx context.Context, userID string, exerciseID int, in exercises.Inputs) (exercises.LogEntry, error)
	RemoveExercise(ctx context.Context, userID string, exerciseID int) error
	ToggleCompleted(ctx context.Context, userID string, exerciseID int) (bool, error)
	Pause(ctx context.Context, userID string) (View, error)
	Resume(ctx context.Context, userID string) (View, error)
	Finish(ctx context.Context, userID string) (workouts.Committed, error)
	Discard(ctx context.Context, userID string) error
}

type ToggleResponse struct {
	ExerciseID int  `json:"exerciseId"`
	Completed  bool `json:"completed"`
}

type Handler struct {
	manager sessionManager
}

func NewHandler(manager sessionManager) *Handler {
	return &Handler{
		manager: manager,
	}
}

func (h *Handler) SetupRoutes(
	r *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	finishAllowedPerMin int,
) {
	r.HandleFunc("/sessions", h.HandleStart).Methods("POST", "OPTIONS").Name("start-session")
	r.HandleFunc("/sessions/current", h.HandleGet).Methods("GET", "OPTIONS").Name("get-session")
	r.HandleFunc("/sessions/current/entries/{exerciseId}", h.HandleSetEntry).Methods("PUT", "OPTIONS").Name("set-session-entry")
	r.HandleFunc("/sessions/current/entries/{exerciseId}", h.HandleRemoveExercise).Methods("DELETE").Name("remove-session-exercise")
	r.HandleFunc("/sessions/current/entries/{exerciseId}/toggle", h.HandleToggle).Methods("POST", "OPTIONS").Name("toggle-session-exercise")
	r.HandleFunc("/sessions/current/pause", h.HandlePause).Methods("POST", "OPTIONS").Name("pause-session")
	r.HandleFunc("/sessions/current/resume", h.HandleResume).Methods("POST", "OPTIONS").Name("resume-session")
	r.HandleFunc("/sessions/current/discard", h.HandleDiscard).Methods("POST", "OPTIONS").Name("discard-session")

	// finishing writes to the database, keep clients from hammering it on retries
	finish := middleware.RateLimit(rateLimiter, metricsManager, "finish-session", finishAllowedPerMin)(http.HandlerFunc(h.HandleFinish))
	r.Handle("/sessions/current/finish", finish).Methods("POST", "OPTIONS").Name("finish-session")
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.start")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var params StartParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Tracef("start session, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("mode", string(params.Mode)))

	view, err := h.manager.Start(ctx, userID, params)
	if err != nil {
		h.writeError(w, "start session", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusCreated)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.get")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.manager.Get(userID)
	if err != nil {
		h.writeError(w, "get session", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (h *Handler) HandleSetEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.setentry")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}
	exerciseID, ok := exerciseIDFromRequest(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var in exercises.Inputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Tracef("set entry, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.manager.SetEntry(ctx, userID, exerciseID, in)
	if err != nil {
		h.writeError(w, "set entry", err)
		return
	}

	pkg.WriteJSON(w, entry, http.StatusOK)
}

func (h *Handler) HandleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.removeexercise")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}
	exerciseID, ok := exerciseIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.manager.RemoveExercise(ctx, userID, exerciseID); err != nil {
		h.writeError(w, "remove exercise", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.toggle")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}
	exerciseID, ok := exerciseIDFromRequest(w, r)
	if !ok {
		return
	}

	completed, err := h.manager.ToggleCompleted(ctx, userID, exerciseID)
	if err != nil {
		h.writeError(w, "toggle exercise", err)
		return
	}

	pkg.WriteJSON(w, ToggleResponse{ExerciseID: exerciseID, Completed: completed}, http.StatusOK)
}

func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.pause")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.manager.Pause(ctx, userID)
	if err != nil {
		h.writeError(w, "pause session", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.resume")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.manager.Resume(ctx, userID)
	if err != nil {
		h.writeError(w, "resume session", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.finish")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	committed, err := h.manager.Finish(ctx, userID)
	if err != nil {
		h.writeError(w, "finish session", err)
		return
	}

	span.SetAttributes(attribute.Int("xp", committed.Result.FinalXP))
	pkg.WriteJSON(w, committed, http.StatusCreated)
}

func (h *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.discard")
	defer span.End()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.manager.Discard(ctx, userID); err != nil {
		h.writeError(w, "discard session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNoActiveSession):
		pkg.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSessionExists),
		errors.Is(err, ErrSessionNotActive),
		errors.Is(err, ErrInvalidTransition):
		pkg.WriteJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrInvalidGoal),
		errors.Is(err, ErrExerciseNotInSession),
		errors.Is(err, exercises.ErrExerciseNotFound):
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, workouts.ErrEmptySession):
		pkg.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, workouts.ErrStoreWrite):
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSONError(w, "failed to store workout, try again", http.StatusServiceUnavailable)
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

func userFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func exerciseIDFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	exerciseID, err := strconv.Atoi(mux.Vars(r)["exerciseId"])
	if err != nil || exerciseID <= 0 {
		http.Error(w, "invalid exercise id", http.StatusBadRequest)
		return 0, false
	}
	return exerciseID, true
}
