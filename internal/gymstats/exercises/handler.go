package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/reprush/internal/telemetry/tracing"
	"github.com/2beens/reprush/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=exercises_test

type catalog interface {
	List(ctx context.Context, filter Filter) ([]Exercise, error)
	Get(ctx context.Context, id int) (Exercise, error)
}

type XPPreviewRequest struct {
	ExerciseID int    `json:"exerciseId"`
	Inputs     Inputs `json:"inputs"`
}

type Handler struct {
	catalog catalog
}

func NewHandler(catalog catalog) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/exercises", h.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/xp", h.HandleXPPreview).Methods("POST", "OPTIONS").Name("preview-xp")
	r.HandleFunc("/exercises/{id}", h.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
}

// HandleList serves GET /exercises?category=<c>&q=<search>.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	filter := Filter{
		Search: r.URL.Query().Get("q"),
	}
	if category := r.URL.Query().Get("category"); category != "" && category != "all" {
		filter.Category = ParseCategory(category)
	}
	span.SetAttributes(attribute.String("category", string(filter.Category)))

	list, err := h.catalog.List(ctx, filter)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, list, http.StatusOK)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	ex, err := h.catalog.Get(ctx, id)
	if errors.Is(err, ErrExerciseNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get exercise [%d]: %s", id, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ex, http.StatusOK)
}

// HandleXPPreview computes the log entry for inputs without storing anything.
func (h *Handler) HandleXPPreview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.xppreview")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req XPPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("xp preview, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ex, err := h.catalog.Get(ctx, req.ExerciseID)
	if errors.Is(err, ErrExerciseNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("xp preview, get exercise [%d]: %s", req.ExerciseID, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, NewLogEntry(ex, req.Inputs), http.StatusOK)
}
