package engine

import "errors"

var (
	// ErrStructural is returned when a layer or shape is constructed outside
	// of an enclosing surface or layer, or used after it was disposed.
	ErrStructural = errors.New("no enclosing canvas/surface")

	// ErrPreconditionViolation is returned for programmer errors such as
	// painting an unsized surface or addressing pixels outside an image.
	ErrPreconditionViolation = errors.New("precondition violated")

	// ErrUnrecognizedInput is returned when geometry arguments cannot be
	// mapped onto a value, e.g. too many vector components.
	ErrUnrecognizedInput = errors.New("unrecognized input")
)
