package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Outcome_IsRoutingMiss(t *testing.T) {
	testCases := []struct {
		name   string
		input  Outcome
		expect bool
	}{
		{
			name:   "result",
			input:  Result("ok"),
			expect: false,
		},
		{
			name:   "warning",
			input:  Warning("careful"),
			expect: false,
		},
		{
			name:   "engine error",
			input:  EngineError("bad ref"),
			expect: false,
		},
		{
			name:   "command process error",
			input:  CommandProcessError("bogus"),
			expect: true,
		},
		{
			name:   "final command process error",
			input:  Unrecognized("bogus"),
			expect: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.input.IsRoutingMiss())
		})
	}
}

func Test_Message(t *testing.T) {
	assert := assert.New(t)

	wrapped := fmt.Errorf("while doing a thing: %w", Warning("nope"))
	assert.Equal("nope", Message(wrapped))
	assert.Equal("plain", Message(errors.New("plain")))
}

func Test_From(t *testing.T) {
	assert := assert.New(t)

	cause := errors.New("disk on fire")
	o := From(cause)

	assert.Equal(KindEngineError, o.Kind)
	assert.Equal("disk on fire", o.Message)
	assert.ErrorIs(o, cause)

	passthrough := From(fmt.Errorf("ctx: %w", Result("fine")))
	assert.Equal(KindResult, passthrough.Kind)
	assert.Equal("fine", passthrough.Message)
}
