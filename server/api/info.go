package api

import (
	"net/http"

	"github.com/dekarrin/branchling/internal/version"
	"github.com/dekarrin/branchling/server/middle"
	"github.com/dekarrin/branchling/server/result"
	"github.com/google/uuid"
)

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API and
// server.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// a value denoting whether the client making the request holds a valid token.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return api.httpEndpoint(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	loggedIn := req.Context().Value(middle.AuthLoggedIn).(bool)

	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Branchling = version.Current

	clientStr := "unauthed client"
	if loggedIn {
		session := req.Context().Value(middle.AuthSession).(uuid.UUID)
		clientStr = "session " + session.String()
	}
	return result.OK(resp, "%s got API info", clientStr)
}
