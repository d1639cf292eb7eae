package misc

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/reprush/internal/telemetry/tracing"
	"github.com/2beens/reprush/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=misc_test

const healthCheckTimeout = 2 * time.Second

// Pinger is a backing service the health check depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

type Handler struct {
	versionInfo string
	services    map[string]Pinger
}

func NewHandler(versionInfo string, services map[string]Pinger) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		services:    services,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponseBytes(w, pkg.ContentType.Text, []byte("I'm OK, thanks ;)"), http.StatusOK)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponseBytes(w, pkg.ContentType.Text, []byte(handler.versionInfo), http.StatusOK)
}

// handleHealth pings every backing service; any failure turns the response
// into a 503 so the load balancer stops routing to this instance.
func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Services: make(map[string]string, len(handler.services)),
	}
	for name, service := range handler.services {
		if err := service.Ping(ctx); err != nil {
			log.Warnf("health check, %s: %s", name, err)
			resp.Services[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Services[name] = "ok"
	}
	span.SetAttributes(attribute.String("status", resp.Status))

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	pkg.WriteJSON(w, resp, status)
}
