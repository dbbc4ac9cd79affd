package review

import (
	"errors"
	"fmt"
)

// State of one reviewer's review on one material
type State int

const (
	StateNoReview State = iota
	StateDrafting
	StateSubmitted
	StateEditing
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateNoReview:
		return "no review"
	case StateDrafting:
		return "drafting"
	case StateSubmitted:
		return "submitted"
	case StateEditing:
		return "editing"
	case StateDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action moves a review between states
type Action int

const (
	ActionDraft Action = iota
	ActionSubmit
	ActionCancel
	ActionEdit
	ActionSave
	ActionDelete
	ActionSettle // deleted review is gone from the list
)

func (a Action) String() string {
	switch a {
	case ActionDraft:
		return "draft"
	case ActionSubmit:
		return "submit"
	case ActionCancel:
		return "cancel"
	case ActionEdit:
		return "edit"
	case ActionSave:
		return "save"
	case ActionDelete:
		return "delete"
	case ActionSettle:
		return "settle"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

var (
	ErrNotAuthor         = errors.New("only the author may change this review")
	ErrInvalidTransition = errors.New("invalid review transition")
)

type edge struct {
	from   State
	action Action
}

var transitions = map[edge]State{
	{StateNoReview, ActionDraft}:   StateDrafting,
	{StateDrafting, ActionSubmit}:  StateSubmitted,
	{StateDrafting, ActionCancel}:  StateNoReview,
	{StateSubmitted, ActionEdit}:   StateEditing,
	{StateEditing, ActionSave}:     StateSubmitted,
	{StateEditing, ActionCancel}:   StateSubmitted,
	{StateSubmitted, ActionDelete}: StateDeleted,
	{StateDeleted, ActionSettle}:   StateNoReview,
}

// Transition applies an action. Leaving Submitted requires the author.
func Transition(from State, action Action, isAuthor bool) (State, error) {
	to, ok := transitions[edge{from, action}]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
	}
	if from == StateSubmitted && !isAuthor {
		return from, ErrNotAuthor
	}
	return to, nil
}
