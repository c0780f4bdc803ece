package alias

import (
	"context"
	"testing"

	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/branchling/internal/store/inmem"
	"github.com/stretchr/testify/assert"
)

func newTestMap(t *testing.T, defs map[string]string) *Map {
	ctx := context.Background()
	repo := inmem.NewSessionsRepository()
	st := store.NewState("en_US")
	for k, v := range defs {
		st.Aliases[k] = v
	}
	sesh, err := repo.Create(ctx, store.Session{State: st})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	b, err := store.Bind(ctx, repo, sesh.ID, "en_US")
	if err != nil {
		t.Fatalf("bind session: %v", err)
	}
	return New(b)
}

func Test_Map_Expand(t *testing.T) {
	defs := map[string]string{
		"gco":  "git checkout",
		"loop": "loop",
		"a":    "b",
		"b":    "git branch",
	}

	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "exact alias",
			input:  "gco",
			expect: "git checkout",
		},
		{
			name:   "alias with args",
			input:  "gco main",
			expect: "git checkout main",
		},
		{
			name:   "alias only matches whole token",
			input:  "gcomain",
			expect: "gcomain",
		},
		{
			name:   "alias not leading is untouched",
			input:  "echo gco",
			expect: "echo gco",
		},
		{
			name:   "not recursive",
			input:  "a",
			expect: "b",
		},
		{
			name:   "self-referencing alias expands once",
			input:  "loop x",
			expect: "loop x",
		},
		{
			name:   "empty",
			input:  "",
			expect: "",
		},
		{
			name:   "no aliases in input",
			input:  "git commit",
			expect: "git commit",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			m := newTestMap(t, defs)

			assert.Equal(tc.expect, m.Expand(tc.input))
		})
	}
}

func Test_Map_Define(t *testing.T) {
	assert := assert.New(t)
	m := newTestMap(t, nil)

	assert.NoError(m.Define("gco", "git checkout"))
	assert.NoError(m.Define("gco", "git switch"))
	exp, ok := m.Get("gco")
	assert.True(ok)
	assert.Equal("git switch", exp)

	assert.Error(m.Define("has space", "x"))
	assert.Error(m.Define("", "x"))
	assert.Equal([]string{"gco"}, m.Names())
}

func Test_Map_Remove(t *testing.T) {
	assert := assert.New(t)
	m := newTestMap(t, map[string]string{"gco": "git checkout"})

	assert.NoError(m.Remove("never"))
	assert.NoError(m.Remove("gco"))
	_, ok := m.Get("gco")
	assert.False(ok)
	assert.Equal("gco main", m.Expand("gco main"))
}
