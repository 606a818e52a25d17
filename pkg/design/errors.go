package design

import "errors"

// Sentinel errors returned by tree operations. A rejected operation leaves the
// tree unchanged.
var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrRootImmutable     = errors.New("root node cannot be deleted or moved")
	ErrNotLayout         = errors.New("node is not a layout")
	ErrCycle             = errors.New("move would make a node its own descendant")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrNotPercentage     = errors.New("constraint is not a percentage")
	ErrInvalidConstraint = errors.New("invalid constraint")
	ErrInvalidProps      = errors.New("invalid node properties")
	ErrNoRoom            = errors.New("no room for another percentage pane")
	ErrCorruptLayout     = errors.New("layout children and constraints differ in length")
	ErrInvalidSnapshot   = errors.New("invalid design snapshot")
	ErrDuplicateID       = errors.New("id generator returned an id already in use")
	ErrEditorClosed      = errors.New("editor closed")
)
