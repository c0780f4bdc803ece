package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/branchling/internal/version"
	"github.com/dekarrin/branchling/server/api"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) *Server {
	srv, err := New(Config{UnauthDelayMillis: -1}, nil)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func do(h http.Handler, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler) api.CreateSessionResponse {
	w := do(h, http.MethodPost, "/api/v1/sessions", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: got HTTP-%d: %s", w.Code, w.Body.String())
	}

	var resp api.CreateSessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return resp
}

func Test_Server_RunCommands(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)
	sesh := createSession(t, srv)

	input := `alias st="git status"; st; ls; refresh; rollup 2; foo bar; show goal`
	w := do(srv, http.MethodPost, "/api/v1/sessions/"+sesh.ID+"/commands", sesh.Token, api.CommandRequest{Input: input})
	if !assert.Equal(http.StatusOK, w.Code, w.Body.String()) {
		return
	}

	var resp api.CommandResponse
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp)) {
		return
	}
	if !assert.Len(resp.Outcomes, 7) {
		return
	}

	alias := resp.Outcomes[0]
	assert.Equal("result", alias.Kind)
	assert.Equal(`Set alias "st" to "git status"`, alias.Message)

	routed := resp.Outcomes[1]
	assert.Equal("st", routed.Input)
	assert.Equal("result", routed.Kind)
	if assert.NotNil(routed.Route) {
		assert.Equal("processEngineCommand", routed.Route.Event)
		assert.Equal("git status", routed.Route.Method)
	}

	assert.Equal("DontWorryAboutFilesInThisDemo.txt", resp.Outcomes[2].Message)
	assert.Nil(resp.Outcomes[2].Route)

	assert.Equal("Refreshing tree...", resp.Outcomes[3].Message)
	assert.Equal([]api.SignalModel{{Event: "refreshTree"}}, resp.Outcomes[3].Signals)

	assert.Equal([]api.SignalModel{{Event: "rollupCommands", Payload: "2"}}, resp.Outcomes[4].Signals)

	miss := resp.Outcomes[5]
	assert.Equal("command-process-error", miss.Kind)
	assert.True(miss.Final)
	assert.Equal(`The command "foo bar" isn't supported, sorry!`, miss.Message)

	level := resp.Outcomes[6]
	if assert.NotNil(level.Route) {
		assert.Equal("processLevelCommand", level.Route.Event)
		assert.Equal("show goal", level.Route.Method)
	}

	// the alias was persisted to the session
	w = do(srv, http.MethodGet, "/api/v1/sessions/"+sesh.ID, sesh.Token, nil)
	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}
	var model api.SessionModel
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &model)) {
		return
	}
	assert.Equal(sesh.ID, model.ID)
	assert.Equal("en_US", model.Locale)
	assert.Equal(map[string]string{"st": "git status"}, model.Aliases)
}

func Test_Server_localeCarriesBetweenRequests(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)
	sesh := createSession(t, srv)
	path := "/api/v1/sessions/" + sesh.ID + "/commands"

	w := do(srv, http.MethodPost, path, sesh.Token, api.CommandRequest{Input: "locale de_DE"})
	assert.Equal(http.StatusOK, w.Code)

	w = do(srv, http.MethodPost, path, sesh.Token, api.CommandRequest{Input: "ls"})
	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}
	var resp api.CommandResponse
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp)) {
		return
	}
	if assert.Len(resp.Outcomes, 1) {
		assert.Equal("KümmerDichNichtUmDateienInDieserDemo.txt", resp.Outcomes[0].Message)
	}
}

func Test_Server_sessionAuth(t *testing.T) {
	srv := newTestServer(t)
	sesh := createSession(t, srv)
	other := createSession(t, srv)

	testCases := []struct {
		name       string
		method     string
		path       string
		tok        string
		body       interface{}
		expectCode int
	}{
		{
			name:       "no token",
			method:     http.MethodPost,
			path:       "/api/v1/sessions/" + sesh.ID + "/commands",
			body:       api.CommandRequest{Input: "ls"},
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			method:     http.MethodGet,
			path:       "/api/v1/sessions/" + sesh.ID,
			tok:        "not-a-jwt",
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "token for another session",
			method:     http.MethodPost,
			path:       "/api/v1/sessions/" + sesh.ID + "/commands",
			tok:        other.Token,
			body:       api.CommandRequest{Input: "ls"},
			expectCode: http.StatusForbidden,
		},
		{
			name:       "delete with another session's token",
			method:     http.MethodDelete,
			path:       "/api/v1/sessions/" + sesh.ID,
			tok:        other.Token,
			expectCode: http.StatusForbidden,
		},
		{
			name:       "own token",
			method:     http.MethodGet,
			path:       "/api/v1/sessions/" + sesh.ID,
			tok:        sesh.Token,
			expectCode: http.StatusOK,
		},
		{
			name:       "body is not JSON",
			method:     http.MethodPost,
			path:       "/api/v1/sessions/" + sesh.ID + "/commands",
			tok:        sesh.Token,
			expectCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			w := do(srv, tc.method, tc.path, tc.tok, tc.body)

			assert.Equal(tc.expectCode, w.Code, w.Body.String())
		})
	}
}

func Test_Server_DeleteSession(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)
	sesh := createSession(t, srv)

	w := do(srv, http.MethodDelete, "/api/v1/sessions/"+sesh.ID, sesh.Token, nil)
	assert.Equal(http.StatusNoContent, w.Code)

	w = do(srv, http.MethodGet, "/api/v1/sessions/"+sesh.ID, sesh.Token, nil)
	assert.Equal(http.StatusNotFound, w.Code)

	w = do(srv, http.MethodPost, "/api/v1/sessions/"+sesh.ID+"/commands", sesh.Token, api.CommandRequest{Input: "ls"})
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_Server_GetCommands(t *testing.T) {
	testCases := []struct {
		name        string
		query       string
		expectFirst string
	}{
		{
			name:        "default locale",
			expectFirst: "Here is a list of all the commands available:",
		},
		{
			name:        "requested locale",
			query:       "?locale=de",
			expectFirst: "Hier ist eine Liste aller verfügbaren Befehle:",
		},
	}

	srv := newTestServer(t)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			w := do(srv, http.MethodGet, "/api/v1/commands"+tc.query, "", nil)
			if !assert.Equal(http.StatusOK, w.Code) {
				return
			}

			var resp api.CatalogueModel
			if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp)) {
				return
			}
			if assert.NotEmpty(resp.Lines) {
				assert.Equal(tc.expectFirst, resp.Lines[0])
			}
			assert.Contains(resp.Lines, "git commit")
			assert.Contains(resp.Lines, "levels")
			assert.Contains(resp.Lines, "echo")
		})
	}
}

func Test_Server_GetInfo(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/api/v1/info", "", nil)
	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}

	var resp api.InfoModel
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp)) {
		return
	}
	assert.Equal(version.ServerCurrent, resp.Version.Server)
	assert.Equal(version.Current, resp.Version.Branchling)
}

func Test_Server_notFound(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/api/v1/nothing-here", "", nil)

	assert.Equal(http.StatusNotFound, w.Code)
	assert.Equal("application/json", w.Header().Get("Content-Type"))
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{
			name: "defaults",
			cfg:  Config{}.FillDefaults(),
		},
		{
			name:      "secret too short",
			cfg:       Config{TokenSecret: []byte("short")}.FillDefaults(),
			expectErr: true,
		},
		{
			name:      "secret too long",
			cfg:       Config{TokenSecret: bytes.Repeat([]byte("a"), MaxSecretSize+1)}.FillDefaults(),
			expectErr: true,
		},
		{
			name:      "nothing filled",
			cfg:       Config{},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			err := tc.cfg.Validate()

			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}
