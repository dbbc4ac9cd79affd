package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleHappyPath(t *testing.T) {
	steps := []struct {
		action Action
		want   State
	}{
		{ActionDraft, StateDrafting},
		{ActionSubmit, StateSubmitted},
		{ActionEdit, StateEditing},
		{ActionSave, StateSubmitted},
		{ActionEdit, StateEditing},
		{ActionCancel, StateSubmitted},
		{ActionDelete, StateDeleted},
		{ActionSettle, StateNoReview},
	}

	s := StateNoReview
	for _, step := range steps {
		next, err := Transition(s, step.action, true)
		require.NoError(t, err, "%s from %s", step.action, s)
		assert.Equal(t, step.want, next)
		s = next
	}
}

func TestDraftCancel(t *testing.T) {
	s, err := Transition(StateDrafting, ActionCancel, true)
	require.NoError(t, err)
	assert.Equal(t, StateNoReview, s)
}

func TestOnlyAuthorLeavesSubmitted(t *testing.T) {
	for _, a := range []Action{ActionEdit, ActionDelete} {
		s, err := Transition(StateSubmitted, a, false)
		assert.ErrorIs(t, err, ErrNotAuthor)
		assert.Equal(t, StateSubmitted, s)
	}
}

func TestInvalidTransitions(t *testing.T) {
	cases := []struct {
		from   State
		action Action
	}{
		{StateNoReview, ActionSubmit},
		{StateNoReview, ActionEdit},
		{StateNoReview, ActionDelete},
		{StateDrafting, ActionEdit},
		{StateSubmitted, ActionDraft},
		{StateSubmitted, ActionSave},
		{StateEditing, ActionDelete},
		{StateDeleted, ActionEdit},
	}
	for _, c := range cases {
		s, err := Transition(c.from, c.action, true)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s from %s", c.action, c.from)
		assert.Equal(t, c.from, s)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "submitted", StateSubmitted.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.Equal(t, "delete", ActionDelete.String())
}
