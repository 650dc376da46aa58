// Package txn provides scoped mutation: an action either completes or leaves
// no visible change.
package txn

import (
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/internal/logging"
)

// Scope runs an action as one logical unit over the state target covers.
type Scope interface {
	Run(name string, target Checkpointer, action func() error) error
}

// Checkpointer captures state that restore can bring back. release drops
// the capture once the action has committed.
type Checkpointer interface {
	Checkpoint() (restore, release func())
}

// Memory is a Scope that checkpoints the target before the action and
// restores it when the action fails or panics.
type Memory struct{}

// Run implements Scope. A nil target runs action without a checkpoint. A
// panic inside action is restored and returned as an ErrInternal error.
func (Memory) Run(name string, target Checkpointer, action func() error) (err error) {
	restore, release := func() {}, func() {}
	if target != nil {
		restore, release = target.Checkpoint()
	}
	defer release()
	defer func() {
		if r := recover(); r != nil {
			restore()
			err = errors.Wrapf(errors.ErrInternal, "%s: panic: %v", name, r)
			logging.Error("scope panicked", "scope", name, "panic", r)
		}
	}()
	if err = action(); err != nil {
		restore()
		logging.Debug("scope rolled back", "scope", name, "error", err)
	}
	return err
}

// None runs actions directly with no rollback.
type None struct{}

// Run implements Scope.
func (None) Run(_ string, _ Checkpointer, action func() error) error {
	return action()
}
