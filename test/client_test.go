package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/reprush/internal/auth"

	"github.com/stretchr/testify/require"
)

// do sends a request as userID through the gateway; an empty userID sends
// it unauthenticated.
func (s *IntegrationTestSuite) do(ctx context.Context, method, path, userID string, body any) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(auth.GatewayTokenHeader, testGatewaySecret)
		req.Header.Set(auth.UserIDHeader, userID)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) doJSON(ctx context.Context, method, path, userID string, body any, wantStatus int, dst any) {
	status, respBytes := s.do(ctx, method, path, userID, body)
	require.Equal(s.T(), wantStatus, status, string(respBytes))
	if dst != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, dst))
	}
}
