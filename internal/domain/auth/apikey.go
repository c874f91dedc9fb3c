package auth

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
)

// ScopeManagePromotions allows creating and deactivating promotion codes.
const ScopeManagePromotions = "manage_promotions"

// ErrKeyNotFound is returned when no active API key matches the given hash.
var ErrKeyNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key carries the given scope.
func (k *APIKeyInfo) HasScope(scope string) bool {
	return slices.Contains(k.Scopes, scope)
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
