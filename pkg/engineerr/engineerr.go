package engineerr

import "fmt"

// Kind classifies why an operation failed, per §7.
type Kind int

const (
	// InvalidInput covers unparseable geometry, unsupported file formats,
	// degenerate polygons, and bad filenames.
	InvalidInput Kind = iota
	// MissingPrerequisite covers operations requested before the state
	// they depend on exists: carve with no field, validate with no
	// carved state, export with no CRS.
	MissingPrerequisite
	// GeometricFailure covers a boolean operation producing an empty
	// result where one was required, a validity repair that still
	// failed, or the pathfinder failing to snap start/goal to an open
	// cell.
	GeometricFailure
	// ResourceFailure covers I/O failures writing an output path,
	// surfaced as-is from the collaborator that reported them.
	ResourceFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case MissingPrerequisite:
		return "missing_prerequisite"
	case GeometricFailure:
		return "geometric_failure"
	case ResourceFailure:
		return "resource_failure"
	default:
		return "unknown"
	}
}

// Error is the structured error every public engine contract returns on
// failure. Op names the operation that failed (e.g. "carve.Apply",
// "field.Import"); Kind classifies the failure per §7; the wrapped error,
// if any, carries the underlying detail.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind, so callers can write
// errors.Is(err, engineerr.MissingPrerequisite)-style classification
// checks against a Kind value directly.
func (e *Error) Is(target error) bool {
	if ks, ok := target.(kindSentinel); ok {
		return e.Kind == ks.kind
	}
	return false
}

type kindSentinel struct{ kind Kind }

func (s kindSentinel) Error() string { return s.kind.String() }

// Sentinels let callers write errors.Is(err, engineerr.ErrMissingPrerequisite).
var (
	ErrInvalidInput        error = kindSentinel{InvalidInput}
	ErrMissingPrerequisite error = kindSentinel{MissingPrerequisite}
	ErrGeometricFailure    error = kindSentinel{GeometricFailure}
	ErrResourceFailure     error = kindSentinel{ResourceFailure}
)

// New builds an Error of the given kind, wrapping err (which may be nil).
func New(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Newf builds an Error of the given kind from a formatted message.
func Newf(op string, kind Kind, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}
