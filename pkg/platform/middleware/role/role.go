// Package role guards routes that only certain authenticated roles may
// call, such as correction approval and audit chain inspection.
package role

import (
	"fmt"
	"log/slog"
	"net/http"

	authmw "shiftguard/pkg/platform/middleware/auth"
)

// Require rejects authenticated requests whose role is not in allowed.
// It must sit behind the auth middleware; a request without a role in
// context is treated as forbidden.
func Require(logger *slog.Logger, allowed ...string) func(http.Handler) http.Handler {
	permitted := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		permitted[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := authmw.GetRole(r.Context())
			if _, ok := permitted[got]; !ok {
				if logger != nil {
					logger.WarnContext(r.Context(), "role not permitted",
						"role", got,
						"path", r.URL.Path,
					)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write(fmt.Appendf(nil, `{"error":"forbidden","error_description":"role %q may not access this resource"}`, got))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
