package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Builtin(t *testing.T) {
	assert := assert.New(t)

	cmds, err := Builtin()
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{"git", "hg"}, cmds.Subsystems())

	gitMethods := cmds.Methods("git")
	assert.Equal("commit", gitMethods[0])
	assert.Contains(gitMethods, "checkout")
	assert.Contains(gitMethods, "rebase")
	assert.Nil(cmds.Methods("svn"))

	regexes := cmds.RegexMap()
	assert.Len(regexes["git"], len(gitMethods))
	assert.True(regexes["git"]["commit"].MatchString("git commit -m hello"))
	assert.False(regexes["git"]["commit"].MatchString("git commitx"))
	assert.True(regexes["hg"]["commit"].MatchString("hg ci"))

	opts := cmds.OptionMap()
	assert.Nil(opts["git"]["add"])
	assert.Contains(opts["git"]["commit"], "--amend")
	assert.Equal(Option{Name: "--amend"}, opts["git"]["commit"]["--amend"])

	assert.Equal([]Option{{Name: "--amend"}, {Name: "-a"}, {Name: "-am"}, {Name: "-m"}}, cmds.Options("git", "commit"))
	assert.Nil(cmds.Options("git", "add"))
	assert.Nil(cmds.Options("git", "nope"))
}

func Test_Commands_ExpandShortcut(t *testing.T) {
	cmds, err := Builtin()
	if !assert.NoError(t, err) {
		return
	}

	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "gc alone", input: "gc", expect: "git commit"},
		{name: "gc with args", input: "gc -m hello", expect: "git commit -m hello"},
		{name: "git ci", input: "git ci", expect: "git commit"},
		{name: "ga", input: "ga .", expect: "git add ."},
		{name: "go", input: "go main", expect: "git checkout main"},
		{name: "git co", input: "git co -b feature", expect: "git checkout -b feature"},
		{name: "gr", input: "gr main", expect: "git rebase main"},
		{name: "gb", input: "gb", expect: "git branch"},
		{name: "git br", input: "git br -d old", expect: "git branch -d old"},
		{name: "gst", input: "gst", expect: "git status"},
		{name: "gs", input: "gs", expect: "git status"},
		{name: "git st", input: "git st", expect: "git status"},
		{name: "bare git", input: "git", expect: "git help"},
		{name: "full command unchanged", input: "git commit", expect: "git commit"},
		{name: "git status unchanged", input: "git status", expect: "git status"},
		{name: "prefix is not a shortcut", input: "gcc", expect: "gcc"},
		{name: "unrelated", input: "levels", expect: "levels"},
		{name: "empty", input: "", expect: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, cmds.ExpandShortcut(tc.input))
		})
	}
}

func Test_Decode(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{
			name: "valid",
			input: `
[[subsystem]]
name = "git"
  [[subsystem.method]]
  name = "commit"
  regex = '^git +commit($|\s)'
`,
		},
		{
			name: "unanchored regex",
			input: `
[[subsystem]]
name = "git"
  [[subsystem.method]]
  name = "commit"
  regex = 'git +commit'
`,
			expectErr: true,
		},
		{
			name: "unanchored shortcut",
			input: `
[[subsystem]]
name = "git"
  [[subsystem.method]]
  name = "commit"
  regex = '^git +commit'
  shortcut = 'gc'
`,
			expectErr: true,
		},
		{
			name: "bad regex",
			input: `
[[subsystem]]
name = "git"
  [[subsystem.method]]
  name = "commit"
  regex = '^git +commit('
`,
			expectErr: true,
		},
		{
			name: "duplicate method",
			input: `
[[subsystem]]
name = "git"
  [[subsystem.method]]
  name = "commit"
  regex = '^git +commit'
  [[subsystem.method]]
  name = "commit"
  regex = '^git +ci'
`,
			expectErr: true,
		},
		{
			name: "duplicate subsystem",
			input: `
[[subsystem]]
name = "git"
[[subsystem]]
name = "git"
`,
			expectErr: true,
		},
		{
			name:      "blank subsystem name",
			input:     "[[subsystem]]\n",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := Decode([]byte(tc.input))
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}
