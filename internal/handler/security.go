package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/AnQE180187/aura-checkout/internal/domain/auth"
)

// APIKeyHeader carries the admin API key on incoming requests.
const APIKeyHeader = "X-Api-Key"

// Security authenticates admin requests via HMAC-SHA256 hashed API keys.
type Security struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurity creates a Security with the given API key repository and
// HMAC pepper.
func NewSecurity(apikeys auth.Repository, pepper []byte) *Security {
	return &Security{apikeys: apikeys, pepper: pepper}
}

// RequireScope returns a middleware that rejects requests whose API key is
// missing, unknown, or lacks the given scope.
func (s *Security) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing api key")
				return
			}

			mac := hmac.New(sha256.New, s.pepper)
			mac.Write([]byte(key))
			hash := mac.Sum(nil)

			info, err := s.apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid api key")
				return
			}

			stored, err := hex.DecodeString(info.KeyHash)
			if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid api key")
				return
			}

			if !info.HasScope(scope) {
				respondError(w, http.StatusForbidden, "FORBIDDEN", "api key lacks required scope")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
