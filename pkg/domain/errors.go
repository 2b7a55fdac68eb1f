package domain

import "errors"

// Construction errors. They signal programmer mistakes and are returned, never recovered.
var (
	// ErrDuplicateNode is returned when adding a node whose id already exists.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrDuplicateEdge is returned when an edge id is reused for a different connection.
	ErrDuplicateEdge = errors.New("duplicate edge id")
	// ErrNodeNotFound is returned when an operation names a node that is not in the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when disconnecting an unknown edge.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrDuplicatePort is returned by CardSignature.Validate.
	ErrDuplicatePort = errors.New("duplicate port name")
)

// ErrNotNamespaced is returned when registering a custom port type without a namespace.
var ErrNotNamespaced = errors.New("port type must be built-in or namespaced")

// ErrCycle is returned by operations that need an acyclic graph.
var ErrCycle = errors.New("graph contains a cycle")

// ErrCardNotFound is returned when a card id cannot be resolved.
var ErrCardNotFound = errors.New("card not found")

// ErrInvalidVersion is returned when card metadata carries a malformed version.
var ErrInvalidVersion = errors.New("invalid card version")

// ErrSnapshotNotFound is returned when a snapshot id cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrSessionNotFound is returned when an edit session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// ErrNothingToUndo is returned when a session has no previous version.
var ErrNothingToUndo = errors.New("nothing to undo")
