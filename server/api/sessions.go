package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/server/middle"
	"github.com/dekarrin/branchling/server/result"
	"github.com/dekarrin/branchling/server/serr"
	"github.com/dekarrin/branchling/server/token"
	"github.com/google/uuid"
)

func sessionModel(s store.Session) SessionModel {
	m := SessionModel{
		URI:                       PathPrefix + "/sessions/" + s.ID.String(),
		ID:                        s.ID.String(),
		Locale:                    s.State.Locale,
		FlipTreeY:                 s.State.FlipTreeY,
		LevelInstructionsDisabled: s.State.LevelInstructionsDisabled,
		Aliases:                   s.State.Aliases,
		Created:                   s.Created.Format(time.RFC3339),
		Modified:                  s.Updated.Format(time.RFC3339),
	}
	if m.Aliases == nil {
		m.Aliases = map[string]string{}
	}
	return m
}

// checkSessionOwner returns a non-nil Result if the client's token was not
// issued for the session being operated on.
func checkSessionOwner(req *http.Request, id uuid.UUID) *result.Result {
	owner := req.Context().Value(middle.AuthSession).(uuid.UUID)
	if owner != id {
		r := result.Forbidden("session %s: token is for session %s", id, owner)
		return &r
	}
	return nil
}

// HTTPCreateSession returns a HandlerFunc that creates a new session and a
// token for accessing it.
func (api API) HTTPCreateSession() http.HandlerFunc {
	return api.httpEndpoint(api.epCreateSession)
}

func (api API) epCreateSession(req *http.Request) result.Result {
	sesh, err := api.Backend.CreateSession(req.Context())
	if err != nil {
		return result.InternalServerError("could not create session: " + err.Error())
	}

	tok, err := token.Generate(api.Secret, sesh.ID)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := CreateSessionResponse{
		ID:    sesh.ID.String(),
		Token: tok,
	}
	return result.Created(resp, "session %s created", sesh.ID)
}

// HTTPGetSession returns a HandlerFunc that gets the state of a session.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the ID of the session being operated on and the session the client holds a
// token for.
func (api API) HTTPGetSession() http.HandlerFunc {
	return api.httpEndpoint(api.epGetSession)
}

func (api API) epGetSession(req *http.Request) result.Result {
	id := requireIDParam(req)
	if r := checkSessionOwner(req, id); r != nil {
		return *r
	}

	sesh, err := api.Backend.GetSession(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get session: " + err.Error())
	}

	return result.OK(sessionModel(sesh), "session %s retrieved", id)
}

// HTTPDeleteSession returns a HandlerFunc that deletes a session.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the ID of the session being operated on and the session the client holds a
// token for.
func (api API) HTTPDeleteSession() http.HandlerFunc {
	return api.httpEndpoint(api.epDeleteSession)
}

func (api API) epDeleteSession(req *http.Request) result.Result {
	id := requireIDParam(req)
	if r := checkSessionOwner(req, id); r != nil {
		return *r
	}

	_, err := api.Backend.DeleteSession(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete session: " + err.Error())
	}

	return result.NoContent("session %s deleted", id)
}
