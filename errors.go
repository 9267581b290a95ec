package bramble

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a component contributes a property that
	// another component on the same object already owns.
	ErrConflict = errors.New("bramble: property conflict")
	// ErrDependency is returned when a component requires an identity the
	// host does not have.
	ErrDependency = errors.New("bramble: missing component dependency")
	// ErrRequired is returned by Unuse when another component still requires
	// the one being removed.
	ErrRequired = errors.New("bramble: component is required by another component")
	// ErrCycle is returned when a reparent would make an object its own ancestor.
	ErrCycle = errors.New("bramble: operation would create a cycle")
	// ErrUnknownMaskMode is returned for mask modes other than intersect or subtract.
	ErrUnknownMaskMode = errors.New("bramble: unknown mask mode")
	// ErrNotChild is returned by Remove when the object is not a direct child.
	ErrNotChild = errors.New("bramble: object is not a child of this object")
	// ErrDestroyed is returned for structural operations on destroyed objects.
	ErrDestroyed = errors.New("bramble: object has been destroyed")
	// ErrInvalidComponent is returned when a nil or non-component value is used.
	ErrInvalidComponent = errors.New("bramble: invalid component")
	// ErrDetachedParent is returned when a live object would be moved under
	// a parent that is not part of a live tree.
	ErrDetachedParent = errors.New("bramble: cannot move a live object under a detached parent")
	// ErrUnknownLayer is returned when an object names a layer the tree does not define.
	ErrUnknownLayer = errors.New("bramble: unknown layer")
)

// anonymousOwner names the owner of properties contributed by components
// without an identity.
const anonymousOwner = "<anonymous>"

// ConflictError reports two components contributing the same property.
type ConflictError struct {
	Property string
	Existing string // identity of the component that already owns Property
	Incoming string // identity of the component being attached
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("bramble: property %q of component %q conflicts with component %q",
		e.Property, e.Incoming, e.Existing)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// DependencyError reports a broken component requirement.
type DependencyError struct {
	Component string // the component being attached or removed
	Requires  string // the identity that is missing or still needed
	removal   bool
}

func (e *DependencyError) Error() string {
	if e.removal {
		return fmt.Sprintf("bramble: cannot unuse %q, component %q requires it", e.Requires, e.Component)
	}
	return fmt.Sprintf("bramble: component %q requires %q", e.Component, e.Requires)
}

func (e *DependencyError) Unwrap() error {
	if e.removal {
		return ErrRequired
	}
	return ErrDependency
}

// HookError wraps a panic recovered from a lifecycle hook or event handler
// during traversal.
type HookError struct {
	ObjectID uint64
	Name     string
	Hook     string
	Value    any
}

func (e *HookError) Error() string {
	return fmt.Sprintf("bramble: %s hook of object %d (%q) failed: %v", e.Hook, e.ObjectID, e.Name, e.Value)
}

// Unwrap returns the recovered value if it was an error.
func (e *HookError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
