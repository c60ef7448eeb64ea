package app

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/roombook/roombook/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {

	// Resolve the bearer token issued at handoff into the current user and
	// propagate it through the request context.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			header := req.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
				u, err := deps.Sessions.Resolve(token)
				if err != nil {
					log.Debugf("session token rejected: %v", err)
					http.Error(w, "invalid session token", http.StatusUnauthorized)
					return
				}
				ctx = user.WithUser(ctx, u)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
