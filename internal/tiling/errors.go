package tiling

import "errors"

// ErrWindowNotFound is returned when an operation references a window id the
// tree is not tracking. Callers removing or replacing windows should tolerate
// it: a destroy notification may have raced a user-initiated move.
var ErrWindowNotFound = errors.New("window not found in tree")

// ErrInvalidInsertPosition is returned when no tile action can be derived for
// a drop position. Callers should leave the dragged window where it is.
var ErrInvalidInsertPosition = errors.New("no tile action for position")
