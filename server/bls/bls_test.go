package bls

import (
	"context"
	"sync"
	"testing"

	"github.com/dekarrin/branchling/internal/outcome"
	"github.com/dekarrin/branchling/internal/store/inmem"
	"github.com/dekarrin/branchling/server/serr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T, locale string) *Service {
	svc, err := New(inmem.NewSessionsRepository(), locale, nil)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return svc
}

func Test_Service_RunCommands(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectKind    outcome.Kind
		expectMessage string
		expectEvent   string
		expectMethod  string
		expectSignals []Signal
	}{
		{
			name:          "instant",
			input:         "cd somewhere",
			expectKind:    outcome.KindResult,
			expectMessage: "directories/dont/matter/in/this/demo",
		},
		{
			name:         "engine command",
			input:        "git commit -m 'hi'",
			expectKind:   outcome.KindResult,
			expectEvent:  "processEngineCommand",
			expectMethod: "git commit",
		},
		{
			name:         "shortcut",
			input:        "gb",
			expectKind:   outcome.KindResult,
			expectEvent:  "processEngineCommand",
			expectMethod: "git branch",
		},
		{
			name:         "sandbox command",
			input:        "levels",
			expectKind:   outcome.KindResult,
			expectEvent:  "processSandboxCommand",
			expectMethod: "levels",
		},
		{
			name:         "level builder command",
			input:        "define goal",
			expectKind:   outcome.KindResult,
			expectEvent:  "processLevelBuilderCommand",
			expectMethod: "define goal",
		},
		{
			name:          "flip",
			input:         "flip",
			expectKind:    outcome.KindResult,
			expectMessage: "Flipping tree...",
			expectSignals: []Signal{{Event: "refreshTree"}},
		},
		{
			name:          "unrecognized",
			input:         "make me a sandwich",
			expectKind:    outcome.KindCommandProcessError,
			expectMessage: `The command "make me a sandwich" isn't supported, sorry!`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc := newTestService(t, "en_US")
			ctx := context.Background()
			sesh, err := svc.CreateSession(ctx)
			if !assert.NoError(err) {
				return
			}

			results, err := svc.RunCommands(ctx, sesh.ID, tc.input)
			if !assert.NoError(err) || !assert.Len(results, 1) {
				return
			}
			res := results[0]

			assert.Equal(tc.input, res.Input)
			assert.Equal(tc.expectKind, res.Outcome.Kind)
			assert.Equal(tc.expectMessage, res.Outcome.Message)
			assert.Equal(tc.expectSignals, res.Signals)
			if tc.expectEvent == "" {
				assert.Nil(res.Route)
				return
			}
			if assert.NotNil(res.Route) {
				assert.Equal(tc.expectEvent, res.Route.Event)
				assert.Equal(tc.expectMethod, res.Route.Method)
			}
		})
	}
}

func Test_Service_RunCommands_chain(t *testing.T) {
	assert := assert.New(t)
	svc := newTestService(t, "en_US")
	ctx := context.Background()
	sesh, _ := svc.CreateSession(ctx)

	results, err := svc.RunCommands(ctx, sesh.ID, "git status; flip;; refresh; ls")
	if !assert.NoError(err) || !assert.Len(results, 4) {
		return
	}

	assert.Equal("git status", results[0].Input)
	if assert.NotNil(results[0].Route) {
		assert.Equal("git status", results[0].Route.Method)
	}
	assert.Empty(results[0].Signals)

	assert.Equal("flip", results[1].Input)
	assert.Nil(results[1].Route)
	assert.Equal([]Signal{{Event: "refreshTree"}}, results[1].Signals)

	assert.Equal("refresh", results[2].Input)
	assert.Equal([]Signal{{Event: "refreshTree"}}, results[2].Signals)

	assert.Equal("ls", results[3].Input)
	assert.Nil(results[3].Route)
	assert.Empty(results[3].Signals)
}

func Test_Service_RunCommands_persists(t *testing.T) {
	assert := assert.New(t)
	svc := newTestService(t, "")
	ctx := context.Background()
	sesh, _ := svc.CreateSession(ctx)

	_, err := svc.RunCommands(ctx, sesh.ID, `alias gco="git checkout"; flip; locale ru_RU`)
	if !assert.NoError(err) {
		return
	}

	actual, err := svc.GetSession(ctx, sesh.ID)
	if !assert.NoError(err) {
		return
	}
	assert.Equal("ru_RU", actual.State.Locale)
	assert.True(actual.State.FlipTreeY)
	assert.Equal(map[string]string{"gco": "git checkout"}, actual.State.Aliases)
}

func Test_Service_RunCommands_concurrent(t *testing.T) {
	assert := assert.New(t)
	svc := newTestService(t, "en_US")
	ctx := context.Background()
	sesh, _ := svc.CreateSession(ctx)

	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, n := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			_, err := svc.RunCommands(ctx, sesh.ID, "alias "+n+`="git status"`)
			assert.NoError(err)
		}(n)
	}
	wg.Wait()

	actual, err := svc.GetSession(ctx, sesh.ID)
	if !assert.NoError(err) {
		return
	}
	assert.Len(actual.State.Aliases, len(names))
	assert.Empty(svc.sessionLocks.held)
}

func Test_Service_missingSession(t *testing.T) {
	assert := assert.New(t)
	svc := newTestService(t, "en_US")
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.RunCommands(ctx, id, "ls")
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.GetSession(ctx, id)
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.DeleteSession(ctx, id)
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_Commands(t *testing.T) {
	testCases := []struct {
		name        string
		defLocale   string
		locale      string
		expectFirst string
	}{
		{
			name:        "default locale",
			defLocale:   "en_US",
			expectFirst: "Here is a list of all the commands available:",
		},
		{
			name:        "configured default",
			defLocale:   "ru",
			expectFirst: "Вот список всех доступных команд:",
		},
		{
			name:        "requested locale",
			defLocale:   "en_US",
			locale:      "de_DE",
			expectFirst: "Hier ist eine Liste aller verfügbaren Befehle:",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc := newTestService(t, tc.defLocale)

			lines := svc.Commands(tc.locale)

			if assert.NotEmpty(lines) {
				assert.Equal(tc.expectFirst, lines[0])
			}
		})
	}
}
