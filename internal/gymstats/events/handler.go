package events

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/reprush/internal/auth"
	"github.com/2beens/reprush/internal/telemetry/tracing"
	"github.com/2beens/reprush/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=events_test

type service interface {
	List(ctx context.Context, params ListParams) ([]*Event, int, error)
}

type ListResponse struct {
	Events []*Event `json:"events"`
	Total  int      `json:"total"`
}

type Handler struct {
	service service
}

func NewHandler(service service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/sessions/events/page/{page}/size/{size}", h.HandleList).Methods("GET", "OPTIONS").Name("list-session-events")
}

// HandleList serves the user's session history, optionally filtered with
// ?type=<event type>&from=<RFC3339>&to=<RFC3339>.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.events.list")
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
	if err != nil || size < 1 || size > 100 {
		http.Error(w, "invalid size", http.StatusBadRequest)
		return
	}

	params := ListParams{
		EventParams: EventParams{UserID: userID},
		Page:        page,
		Size:        size,
	}

	query := r.URL.Query()
	if typeParam := query.Get("type"); typeParam != "" {
		eventType := EventType(typeParam)
		if !eventType.IsValid() {
			http.Error(w, "invalid event type", http.StatusBadRequest)
			return
		}
		params.Type = &eventType
	}
	if fromParam := query.Get("from"); fromParam != "" {
		from, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		params.From = &from
	}
	if toParam := query.Get("to"); toParam != "" {
		to, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		params.To = &to
	}

	events, total, err := h.service.List(ctx, params)
	if err != nil {
		log.Errorf("list session events for [%s]: %s", userID, err)
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{Events: events, Total: total}, http.StatusOK)
}
