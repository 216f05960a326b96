package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyAuth guards mutating requests with the X-API-Key header. Reads
// (GET, HEAD, OPTIONS) stay public so the gallery renders for everyone.
// An empty key list disables the check.
func APIKeyAuth(apiKeys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(apiKeys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				http.Error(w, "Unauthorized: missing API key", http.StatusUnauthorized)
				return
			}

			valid := false
			for _, validKey := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(key), []byte(validKey)) == 1 {
					valid = true
				}
			}
			if !valid {
				http.Error(w, "Unauthorized: invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
