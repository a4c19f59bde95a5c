package rest

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerSecret protects cron triggered endpoints with a shared secret.
// With bypass enabled every request passes, which is used for local runs.
func BearerSecret(secret string, bypass bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass {
				next.ServeHTTP(w, r)
				return
			}

			tok := bearerToken(r.Header.Get("Authorization"))
			if secret == "" || tok == "" || subtle.ConstantTimeCompare([]byte(tok), []byte(secret)) != 1 {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
