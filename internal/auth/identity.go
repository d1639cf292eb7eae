package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
)

// Headers set by the auth gateway in front of the service.
const (
	GatewayTokenHeader = "X-REPRUSH-TOKEN"
	UserIDHeader       = "X-User-ID"
)

var ErrNoUser = errors.New("no user in request context")

type userIDKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}

// GatewayChecker verifies that a request went through the auth gateway, which
// authenticates users and forwards their id.
type GatewayChecker struct {
	secret []byte
}

func NewGatewayChecker(secret string) *GatewayChecker {
	return &GatewayChecker{
		secret: []byte(secret),
	}
}

func (c *GatewayChecker) Verify(token string) bool {
	if len(c.secret) == 0 || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare(c.secret, []byte(token)) == 1
}

// ValidUserID accepts the opaque ids issued by the identity provider.
func ValidUserID(userID string) bool {
	userID = strings.TrimSpace(userID)
	return userID != "" && len(userID) <= 128 && !strings.ContainsAny(userID, " \t\r\n")
}
