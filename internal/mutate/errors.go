package mutate

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// CycleError rejects a move or reassignment that would make a node its own
// ancestor (TargetID == NodeID or TargetID inside NodeID's subtree).
type CycleError struct {
	NodeID   string
	TargetID string
}

func (e CycleError) Error() string {
	if e.NodeID == e.TargetID {
		return fmt.Sprintf("cannot place %s under itself", e.NodeID)
	}
	return fmt.Sprintf("cannot place %s under its descendant %s", e.NodeID, e.TargetID)
}

type EmptyNameError struct{}

func (EmptyNameError) Error() string { return "name is empty" }

type DuplicateIDError struct {
	ID string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("id already in use: %s", e.ID)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

func IsCycle(err error) bool {
	var ce CycleError
	return errors.As(err, &ce)
}

func IsEmptyName(err error) bool {
	var en EmptyNameError
	return errors.As(err, &en)
}
