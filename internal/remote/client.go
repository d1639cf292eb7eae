package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/reprush/internal/auth"
	"github.com/2beens/reprush/internal/gymstats/workouts"
	"github.com/2beens/reprush/internal/offline"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

var _ offline.Uploader = (*Client)(nil)

// Client uploads queued records to the service.
type Client struct {
	baseURL      string
	gatewayToken string
	userID       string
	httpClient   *http.Client
}

func NewClient(baseURL, gatewayToken, userID string) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		gatewayToken: gatewayToken,
		userID:       userID,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

// Upload posts the record. The service dedupes by local id, so both 2xx and
// 409 (already stored) acknowledge the record. Other client errors, except
// auth failures, timeouts and throttling, wrap offline.ErrRejected.
func (c *Client) Upload(ctx context.Context, record offline.Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "remote.upload")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("local-id", record.LocalID))

	var payload workouts.OfflineWorkout
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal record [%s] payload: %w", record.LocalID, err)
	}

	body, err := json.Marshal(workouts.SyncRequest{
		LocalID:   record.LocalID,
		Kind:      record.Kind,
		Payload:   payload,
		CreatedAt: record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal sync request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/workouts/sync", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "RepRush/offline-sync")
	req.Header.Set(auth.GatewayTokenHeader, c.gatewayToken)
	req.Header.Set(auth.UserIDHeader, c.userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post sync: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	span.SetAttributes(attribute.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300, resp.StatusCode == http.StatusConflict:
		return nil
	case isPermanentRejection(resp.StatusCode):
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w [%d]: %s", offline.ErrRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sync failed [%d]: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

func isPermanentRejection(status int) bool {
	switch status {
	case http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusRequestTimeout,
		http.StatusTooManyRequests:
		return false
	default:
		return status >= 400 && status < 500
	}
}
