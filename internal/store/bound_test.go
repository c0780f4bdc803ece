package store_test

import (
	"context"
	"testing"

	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/internal/store/inmem"
	"github.com/stretchr/testify/assert"
)

func Test_Bound(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := inmem.NewSessionsRepository()

	sesh, err := repo.Create(ctx, store.Session{State: store.NewState("en_US")})
	if !assert.NoError(err) {
		return
	}

	b, err := store.Bind(ctx, repo, sesh.ID, "en_US")
	if !assert.NoError(err) {
		return
	}

	assert.NoError(b.SetLocale("de_DE"))
	assert.NoError(b.SetFlipTreeY(true))
	assert.NoError(b.DisableLevelInstructions())
	assert.NoError(b.AddAlias("gco", "git checkout"))
	assert.NoError(b.AddAlias("gs", "git status"))
	assert.NoError(b.RemoveAlias("gs"))
	assert.NoError(b.RemoveAlias("never-defined"))

	assert.Equal("en_US", b.DefaultLocale())
	assert.Equal("de_DE", b.Locale())
	assert.True(b.FlipTreeY())
	assert.True(b.LevelInstructionsDisabled())
	assert.Equal(map[string]string{"gco": "git checkout"}, b.AliasMap())

	// writes went through to the repo
	reloaded, err := repo.GetByID(ctx, sesh.ID)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(b.State(), reloaded.State)
}

func Test_Bound_AliasMapIsACopy(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := inmem.NewSessionsRepository()
	sesh, _ := repo.Create(ctx, store.Session{State: store.NewState("en_US")})
	b, _ := store.Bind(ctx, repo, sesh.ID, "en_US")

	m := b.AliasMap()
	m["sneaky"] = "value"

	assert.Empty(b.AliasMap())
}

func Test_State_binaryRoundTrip(t *testing.T) {
	assert := assert.New(t)

	input := store.State{
		Locale:                    "ru_RU",
		FlipTreeY:                 true,
		LevelInstructionsDisabled: false,
		Aliases: map[string]string{
			"gco": "git checkout",
			"x":   `echo "multi word; with separator"`,
		},
	}

	data, err := input.MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	var actual store.State
	assert.NoError(actual.UnmarshalBinary(data))
	assert.Equal(input, actual)
}

func Test_Bound_Restore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := inmem.NewSessionsRepository()
	b, err := store.Open(ctx, repo, "en_US")
	if !assert.NoError(err) {
		return
	}

	before := b.State()
	assert.NoError(b.SetLocale("de_DE"))
	assert.NoError(b.AddAlias("gco", "git checkout"))

	assert.NoError(b.Restore(before))

	assert.Equal("en_US", b.Locale())
	assert.Empty(b.AliasMap())
	reloaded, err := repo.GetByID(ctx, b.ID())
	if !assert.NoError(err) {
		return
	}
	assert.True(before.Equal(reloaded.State))
}

func Test_State_Equal(t *testing.T) {
	testCases := []struct {
		name   string
		a      store.State
		b      store.State
		expect bool
	}{
		{name: "nil and empty aliases", a: store.State{Locale: "en_US"}, b: store.NewState("en_US"), expect: true},
		{name: "different locale", a: store.NewState("en_US"), b: store.NewState("de_DE"), expect: false},
		{name: "different flip", a: store.State{FlipTreeY: true}, b: store.State{}, expect: false},
		{
			name:   "different alias value",
			a:      store.State{Aliases: map[string]string{"a": "b"}},
			b:      store.State{Aliases: map[string]string{"a": "c"}},
			expect: false,
		},
		{
			name:   "same aliases",
			a:      store.State{Aliases: map[string]string{"a": "b"}},
			b:      store.State{Aliases: map[string]string{"a": "b"}},
			expect: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.a.Equal(tc.b))
		})
	}
}
