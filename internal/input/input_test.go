package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DirectReader_ReadCommand(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		allowBlank  bool
		expect      []string
		expectFinal error
	}{
		{
			name:        "lines",
			input:       "ls\ngit commit\n",
			expect:      []string{"ls", "git commit"},
			expectFinal: io.EOF,
		},
		{
			name:        "blank lines skipped",
			input:       "\n   \nlevels\n",
			expect:      []string{"levels"},
			expectFinal: io.EOF,
		},
		{
			name:        "blank lines allowed",
			input:       "\nlevels\n",
			allowBlank:  true,
			expect:      []string{"", "levels"},
			expectFinal: io.EOF,
		},
		{
			name:        "no trailing newline",
			input:       "  undo  ",
			expect:      []string{"undo"},
			expectFinal: io.EOF,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			r := NewDirectReader(strings.NewReader(tc.input))
			r.AllowBlank(tc.allowBlank)

			var actual []string
			for range tc.expect {
				line, err := r.ReadCommand()
				if !assert.NoError(err) {
					return
				}
				actual = append(actual, line)
			}
			_, err := r.ReadCommand()

			assert.Equal(tc.expect, actual)
			assert.ErrorIs(err, tc.expectFinal)
			assert.NoError(r.AddHistory("anything"))
			assert.NoError(r.Close())
		})
	}
}

func Test_completer(t *testing.T) {
	assert := assert.New(t)

	pc := completer([]string{"git commit", "git checkout", "levels"})

	children := pc.GetChildren()
	if !assert.Len(children, 2) {
		return
	}
	assert.Equal("git ", string(children[0].GetName()))
	assert.Len(children[0].GetChildren(), 2)
	assert.Equal("levels ", string(children[1].GetName()))
}
