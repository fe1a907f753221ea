package bitmap

import "errors"

// Errors returned by Image constructors and methods.
var (
	// ErrInvalidDimensions is returned when a width or height is not positive.
	ErrInvalidDimensions = errors.New("bitmap: invalid dimensions")

	// ErrDimensionOverflow is returned when a dimension does not fit in 32
	// bits or width*height does not fit in an int.
	ErrDimensionOverflow = errors.New("bitmap: dimensions overflow")

	// ErrInsufficientPixelData is returned when fewer than width*height
	// pixels are supplied.
	ErrInsufficientPixelData = errors.New("bitmap: insufficient pixel data")

	// ErrEmptySource is returned when a scale source has no pixels.
	ErrEmptySource = errors.New("bitmap: empty scale source")

	// ErrEmptyTarget is returned when a scale target box has no pixels.
	ErrEmptyTarget = errors.New("bitmap: empty scale target")

	// ErrMismatchedDimensions is returned when blending images of different
	// sizes.
	ErrMismatchedDimensions = errors.New("bitmap: mismatched dimensions")

	// ErrInvalidPath is returned for output paths that are empty or contain a
	// NUL byte.
	ErrInvalidPath = errors.New("bitmap: invalid path")

	// ErrClosed is returned by operations on a closed image.
	ErrClosed = errors.New("bitmap: image closed")
)

// EngineError reports a failure of the pixel engine, codec or renderer. Err
// is the collaborator's error as returned at the point of failure.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return "bitmap: " + e.Op + ": " + e.Err.Error()
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func engineError(op string, err error) error {
	if err == nil {
		err = errors.New("no result")
	}
	return &EngineError{Op: op, Err: err}
}
