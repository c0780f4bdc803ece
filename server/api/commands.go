package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/branchling/server/result"
	"github.com/dekarrin/branchling/server/serr"
)

// HTTPRunCommands returns a HandlerFunc that runs a chain of commands in a
// session.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the ID of the session being operated on and the session the client holds a
// token for.
func (api API) HTTPRunCommands() http.HandlerFunc {
	return api.httpEndpoint(api.epRunCommands)
}

func (api API) epRunCommands(req *http.Request) result.Result {
	id := requireIDParam(req)
	if r := checkSessionOwner(req, id); r != nil {
		return *r
	}

	var cmdReq CommandRequest
	err := parseJSON(req, &cmdReq)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	results, err := api.Backend.RunCommands(req.Context(), id, cmdReq.Input)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not run commands: " + err.Error())
	}

	resp := CommandResponse{Outcomes: make([]OutcomeModel, len(results))}
	for i, res := range results {
		m := OutcomeModel{
			Input:    res.Input,
			Kind:     res.Outcome.Kind.String(),
			Message:  res.Outcome.Message,
			Renderer: res.Outcome.Renderer,
			Final:    res.Outcome.Final,
		}
		if res.Route != nil {
			m.Route = &RouteModel{
				Event:    res.Route.Event,
				Method:   res.Route.Method,
				Captures: res.Route.Captures,
			}
		}
		for _, sig := range res.Signals {
			m.Signals = append(m.Signals, SignalModel{Event: sig.Event, Payload: sig.Payload})
		}
		resp.Outcomes[i] = m
	}

	return result.OK(resp, "session %s ran %d command(s)", id, len(results))
}

// HTTPGetCommands returns a HandlerFunc that lists every command the
// interpreter knows, in the locale given by the "locale" query parameter.
func (api API) HTTPGetCommands() http.HandlerFunc {
	return api.httpEndpoint(api.epGetCommands)
}

func (api API) epGetCommands(req *http.Request) result.Result {
	loc := req.URL.Query().Get("locale")
	resp := CatalogueModel{Lines: api.Backend.Commands(loc)}
	return result.OK(resp, "got command catalogue (locale %q)", loc)
}
