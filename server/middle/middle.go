// Package middle contains middleware for use with the branchling server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/branchling/server/result"
	"github.com/dekarrin/branchling/server/token"
	"github.com/google/uuid"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthSession
)

// AuthHandler is middleware that will accept a request, extract the token used
// for authentication, and find the session the token was issued for.
//
// Keys are added to the request context before the request is passed to the
// next step in the chain. AuthSession will contain the ID of the session the
// client holds a token for (uuid.Nil if none), and AuthLoggedIn will contain
// whether the token was valid. That only matters for optional auth; when auth
// is required, a missing or invalid token results in an HTTP error being
// returned before the request is passed to the next handler.
type AuthHandler struct {
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	log           *log.Logger
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	session := uuid.Nil

	tok, err := token.Get(req)
	if err == nil {
		session, err = token.Validate(tok, ah.secret)
		loggedIn = err == nil
	}

	// deliberately leaving as embedded if instead of &&
	if err != nil {
		if ah.required {
			r := result.Unauthorized("", err.Error())
			ah.log.Error("request rejected", "remote", req.RemoteAddr, "method", req.Method, "path", req.URL.Path, "status", r.Status, "msg", r.InternalMsg)
			time.Sleep(ah.unauthedDelay)
			r.WriteResponse(w)
			return
		}
		session = uuid.Nil
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthSession, session)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns middleware that rejects any request that does not carry
// a valid session token.
func RequireAuth(secret []byte, unauthDelay time.Duration, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			secret:        secret,
			unauthedDelay: unauthDelay,
			log:           logger,
			required:      true,
			next:          next,
		}
	}
}

// OptionalAuth returns middleware that records the session of a valid token
// if one is given but lets every request through.
func OptionalAuth(secret []byte, unauthDelay time.Duration, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			secret:        secret,
			unauthedDelay: unauthDelay,
			log:           logger,
			required:      false,
			next:          next,
		}
	}
}
