package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/forgemail/internal"
)

// ScopeLocals returns middleware that sets the locals returned by fn on the
// request's mailer scope. Requests without a scope pass through untouched.
func ScopeLocals(fn func(r *http.Request) map[string]any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if scope, ok := internal.FromContext(r.Context()); ok {
				for k, v := range fn(r) {
					scope.SetLocal(k, v)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
