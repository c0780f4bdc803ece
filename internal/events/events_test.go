package events

import (
	"testing"

	"github.com/dekarrin/branchling/internal/outcome"
	"github.com/stretchr/testify/assert"
)

func Test_Bus_Trigger(t *testing.T) {
	assert := assert.New(t)
	b := New(nil)

	var got []any
	b.On(RollupCommands, Notify(func(payload any) {
		got = append(got, payload)
	}))
	b.On(RollupCommands, Notify(func(payload any) {
		got = append(got, "second")
	}))

	b.Trigger(RollupCommands, "3")
	b.Trigger(RefreshTree, nil)

	assert.Equal([]any{"3", "second"}, got)
}

func Test_Bus_Request(t *testing.T) {
	assert := assert.New(t)
	b := New(nil)

	_, ok := b.Request(ProcessLevelCommand, "x")
	assert.False(ok)

	b.On(ProcessLevelCommand, Notify(func(any) {}))
	b.On(ProcessLevelCommand, func(payload any) (outcome.Outcome, bool) {
		return outcome.Result("handled " + payload.(string)), true
	})
	b.On(ProcessLevelCommand, func(payload any) (outcome.Outcome, bool) {
		return outcome.Result("should not be reached"), true
	})

	o, ok := b.Request(ProcessLevelCommand, "x")
	assert.True(ok)
	assert.Equal("handled x", o.Message)
}

func Test_Bus_On_off(t *testing.T) {
	assert := assert.New(t)
	b := New(nil)

	var calls int
	off := b.On(RefreshTree, Notify(func(any) { calls++ }))
	assert.True(b.HasListeners(RefreshTree))

	b.Trigger(RefreshTree, nil)
	off()
	b.Trigger(RefreshTree, nil)

	assert.Equal(1, calls)
	assert.False(b.HasListeners(RefreshTree))
}
