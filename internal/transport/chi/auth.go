package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/logger"
)

// Routes served without an API key.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// apiKey is a configured key reduced to its digest. Presented keys are hashed
// the same way so comparisons run over equal-length values.
type apiKey struct {
	digest      [sha256.Size]byte
	fingerprint string
}

func newAPIKey(raw string) apiKey {
	sum := sha256.Sum256([]byte(raw))
	return apiKey{digest: sum, fingerprint: hex.EncodeToString(sum[:4])}
}

// BearerAuthMiddleware authenticates the calling application by its API key.
// The end user's backend token travels separately in the X-User-Token header.
// With no non-blank keys configured every request passes through and a
// warning is logged once.
func BearerAuthMiddleware(apiKeys []string, log *zap.Logger) func(http.Handler) http.Handler {
	keys := make([]apiKey, 0, len(apiKeys))
	for _, k := range apiKeys {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, newAPIKey(k))
		}
	}
	if len(keys) == 0 {
		log.Warn("API key authentication disabled, no auth.api_keys configured")
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			presented, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "authorization header must carry a Bearer api key")
				return
			}

			key, ok := matchKey(keys, presented)
			if !ok {
				logger.FromContext(r.Context()).Info("Rejected unknown api key")
				unauthorized(w, "invalid api key")
				return
			}

			ctx := logger.With(r.Context(), zap.String("api_key", key.fingerprint))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential of an RFC 6750 Authorization header.
// The scheme name is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// matchKey checks every configured key so the time taken does not depend on
// which one matched.
func matchKey(keys []apiKey, presented string) (apiKey, bool) {
	sum := sha256.Sum256([]byte(presented))
	var (
		found apiKey
		match int
	)
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k.digest[:], sum[:]) == 1 {
			found = k
			match = 1
		}
	}
	return found, match == 1
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="sitetrends"`)
	writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
}
