package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"jobgrid.org/internal/board"
	"jobgrid.org/internal/gate"
	"jobgrid.org/internal/session"
)

const (
	authHeader     = "Authorization"
	bearer         = "Bearer "
	clientIDHeader = "X-Client-ID"
)

// withSession resolves the actor for every request and attaches it to the
// context. Resolution never rejects: pages without an actor are handled by the
// per-route gate, not here.
func (a *API) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		creds := session.Credentials{
			ClientID: strings.TrimSpace(r.Header.Get(clientIDHeader)),
		}
		if token, err := extractBearerToken(r.Header.Get(authHeader)); err == nil {
			creds.Token = token
		}

		ctx := r.Context()
		if actor := a.resolver.Resolve(ctx, creds); actor != nil {
			ctx = session.ContextWithActor(ctx, actor)
			if creds.Token != "" {
				ctx = session.ContextWithToken(ctx, creds.Token)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole runs the authorization gate for the request. The returned actor
// is non-nil exactly when the decision allowed; otherwise the redirect has
// already been written.
func (a *API) requireRole(w http.ResponseWriter, r *http.Request, roles ...board.UserType) *board.User {
	actor, _ := session.ActorFromContext(r.Context())
	d := gate.Authorize(actor, roles...)
	if !d.Allow {
		writeRedirect(w, r, d.Target)
		return nil
	}
	return actor
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
