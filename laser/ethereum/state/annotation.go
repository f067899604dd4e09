package state

// StateAnnotation attaches analysis data to a GlobalState.
type StateAnnotation interface {
	// PersistToWorldState reports whether the annotation is carried into the
	// world state when the transaction ends.
	PersistToWorldState() bool
	// PersistOverCalls reports whether the annotation follows the state into
	// nested calls.
	PersistOverCalls() bool
	Copy() StateAnnotation
}
